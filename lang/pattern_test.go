package lang

import (
	"testing"
	"time"

	"github.com/goodsign/monday"
)

func TestFormatPattern(t *testing.T) {
	tm := time.Date(2024, time.March, 5, 14, 7, 9, 123_000_000,
		time.FixedZone("", 8*60*60))

	tests := []struct {
		pattern string
		locale  monday.Locale
		want    string
	}{
		{"YYYY-MM-DD", monday.LocaleEnUS, "2024-03-05"},
		{"YY/M/D", monday.LocaleEnUS, "24/3/5"},
		{"YYYY年MM月", monday.LocaleEnUS, "2024年03月"},
		{"HH:mm:ss.SSS", monday.LocaleEnUS, "14:07:09.123"},
		{"h:m:s A", monday.LocaleEnUS, "2:7:9 PM"},
		{"hh a", monday.LocaleEnUS, "02 pm"},
		{"Q DDD DDDD d", monday.LocaleEnUS, "1 65 065 2"},
		{"dddd, MMMM D", monday.LocaleEnUS, "Tuesday, March 5"},
		{"ddd MMM", monday.LocaleEnUS, "Tue Mar"},
		{"MMMM", monday.LocaleDeDE, "März"},
		{"Z ZZ", monday.LocaleEnUS, "+08:00 +0800"},
		{"[Today is] dddd", monday.LocaleEnUS, "Today is Tuesday"},
		{"[", monday.LocaleEnUS, "["},
		{"X", monday.LocaleEnUS, "1709618829"},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			if got := formatPattern(tm, tt.pattern, tt.locale); got != tt.want {
				t.Errorf("formatPattern(%q) = %q, want %q", tt.pattern, got, tt.want)
			}
		})
	}
}

func TestParsePattern(t *testing.T) {
	got, err := parsePattern("2024-03-05 14:07", "YYYY-MM-DD HH:mm", time.UTC)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	want := time.Date(2024, time.March, 5, 14, 7, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}
