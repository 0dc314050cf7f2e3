package lang

import (
	"errors"
	"testing"
	"time"

	"github.com/goodsign/monday"
)

func TestMoment_Shift(t *testing.T) {
	base := NewMoment(time.Date(2024, time.January, 31, 8, 0, 0, 0, time.UTC), "")

	tests := []struct {
		name   string
		amount any
		unit   string
		want   string
	}{
		{"month clamps to leap day", 1, "months", "2024-02-29 08:00"},
		{"month shorthand", 2, "M", "2024-03-31 08:00"},
		{"negative month", -2, "month", "2023-11-30 08:00"},
		{"year", 1, "y", "2025-01-31 08:00"},
		{"quarter", 1, "Q", "2024-04-30 08:00"},
		{"week", 1, "weeks", "2024-02-07 08:00"},
		{"days rounded", 1.6, "days", "2024-02-02 08:00"},
		{"fractional hours", 0.5, "h", "2024-01-31 08:30"},
		{"minutes", 90, "m", "2024-01-31 09:30"},
		{"string amount", "3", "Days", "2024-02-03 08:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := base.Add(tt.amount, tt.unit)
			if err != nil {
				t.Fatalf("Add error: %v", err)
			}

			if s := got.Format("YYYY-MM-DD HH:mm"); s != tt.want {
				t.Errorf("expected %s, got %s", tt.want, s)
			}

			back, err := got.Subtract(tt.amount, tt.unit)
			if err != nil {
				t.Fatalf("Subtract error: %v", err)
			}

			if back.Time().After(base.Time().Add(time.Hour)) {
				t.Errorf("subtract did not move back: %s", back.Format(""))
			}
		})
	}

	if base.Format("YYYY-MM-DD") != "2024-01-31" {
		t.Error("Add must not modify the receiver")
	}
}

func TestMoment_ShiftErrors(t *testing.T) {
	m := NewMoment(time.Unix(0, 0).UTC(), "")

	if _, err := m.Add(1, "fortnight"); !errors.Is(err, ErrUnit) {
		t.Errorf("expected ErrUnit, got %v", err)
	}

	if _, err := m.Add("many", "days"); !errors.Is(err, ErrAmount) {
		t.Errorf("expected ErrAmount, got %v", err)
	}

	if _, err := m.StartOf("eon"); !errors.Is(err, ErrUnit) {
		t.Errorf("expected ErrUnit, got %v", err)
	}
}

func TestMoment_StartEnd(t *testing.T) {
	// Wednesday
	m := NewMoment(time.Date(2024, time.May, 15, 13, 45, 30, 0, time.UTC), "")

	tests := []struct {
		unit  string
		start string
		end   string
	}{
		{"year", "2024-01-01 00:00:00.000", "2024-12-31 23:59:59.999"},
		{"quarter", "2024-04-01 00:00:00.000", "2024-06-30 23:59:59.999"},
		{"month", "2024-05-01 00:00:00.000", "2024-05-31 23:59:59.999"},
		{"week", "2024-05-12 00:00:00.000", "2024-05-18 23:59:59.999"},
		{"day", "2024-05-15 00:00:00.000", "2024-05-15 23:59:59.999"},
		{"hour", "2024-05-15 13:00:00.000", "2024-05-15 13:59:59.999"},
	}

	const layout = "YYYY-MM-DD HH:mm:ss.SSS"

	for _, tt := range tests {
		t.Run(tt.unit, func(t *testing.T) {
			start, err := m.StartOf(tt.unit)
			if err != nil {
				t.Fatalf("StartOf error: %v", err)
			}

			end, err := m.EndOf(tt.unit)
			if err != nil {
				t.Fatalf("EndOf error: %v", err)
			}

			if got := start.Format(layout); got != tt.start {
				t.Errorf("start: expected %s, got %s", tt.start, got)
			}

			if got := end.Format(layout); got != tt.end {
				t.Errorf("end: expected %s, got %s", tt.end, got)
			}
		})
	}
}

func TestMoment_Accessors(t *testing.T) {
	m := NewMoment(time.Date(2024, time.March, 15, 10, 30, 45, 0, time.UTC), "")

	if m.Year() != 2024 || m.Month() != 2 || m.Date() != 15 || m.Day() != 5 {
		t.Errorf("unexpected date parts: %d %d %d %d", m.Year(), m.Month(), m.Date(), m.Day())
	}

	if m.Hour() != 10 || m.Minute() != 30 || m.Second() != 45 {
		t.Errorf("unexpected time parts: %d %d %d", m.Hour(), m.Minute(), m.Second())
	}

	if m.DaysInMonth() != 31 {
		t.Errorf("expected 31 days, got %d", m.DaysInMonth())
	}

	if got := m.ToISOString(); got != "2024-03-15T10:30:45.000Z" {
		t.Errorf("unexpected ISO string %s", got)
	}

	if got := m.Format(""); got != "2024-03-15T10:30:45+00:00" {
		t.Errorf("unexpected default format %s", got)
	}

	if m.ValueOf() != m.Unix()*1000 {
		t.Errorf("ValueOf %d does not match Unix %d", m.ValueOf(), m.Unix())
	}

	later, _ := m.Add(1, "d")
	if !m.IsBefore(later) || !later.IsAfter(m) {
		t.Error("expected ordering to hold")
	}

	same, err := m.IsSame(later, "month")
	if err != nil || !same {
		t.Errorf("expected same month, got %v %v", same, err)
	}

	if got := m.String(); got != "Fri Mar 15 2024 10:30:45 GMT+0000" {
		t.Errorf("unexpected String %s", got)
	}
}

func TestMomentFactory(t *testing.T) {
	f := &momentFactory{
		clock:    func() time.Time { return fixedNow },
		location: time.UTC,
		locale:   monday.LocaleEnUS,
	}

	tests := []struct {
		name string
		args []any
		want string
	}{
		{"now", nil, "2024-03-15"},
		{"iso text", []any{"2023-07-04"}, "2023-07-04"},
		{"slash text", []any{"07/04/2023"}, "2023-07-04"},
		{"chinese text", []any{"2023年07月04日"}, "2023-07-04"},
		{"epoch millis", []any{int64(86_400_000)}, "1970-01-02"},
		{"pattern", []any{"04.07.2023", "DD.MM.YYYY"}, "2023-07-04"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := f.call(tt.args...)
			if err != nil {
				t.Fatalf("call error: %v", err)
			}

			m, ok := v.(Moment)
			if !ok {
				t.Fatalf("expected Moment, got %T", v)
			}

			if got := m.Format("YYYY-MM-DD"); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}

	if _, err := f.call([]any{nil}...); !errors.Is(err, ErrDate) {
		t.Errorf("expected ErrDate for null, got %v", err)
	}

	if _, err := f.call("31/31/2023", "DD/MM/YYYY"); !errors.Is(err, ErrDate) {
		t.Errorf("expected ErrDate for bad pattern input, got %v", err)
	}

	if _, err := f.call("2023", "X"); !errors.Is(err, ErrDate) {
		t.Errorf("expected ErrDate for unsupported token, got %v", err)
	}
}
