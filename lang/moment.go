package lang

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/goodsign/monday"
)

// Moment is an immutable point in time with a formatting locale. Scripts
// create one with Moment() and derive others from it; every method returns
// a new value.
type Moment struct {
	t      time.Time
	locale monday.Locale
}

// NewMoment returns a Moment for t formatted in locale.
func NewMoment(t time.Time, locale monday.Locale) Moment {
	if locale == "" {
		locale = DefaultLocale
	}

	return Moment{t: t, locale: locale}
}

// Time returns the instant as a time.Time.
func (m Moment) Time() time.Time { return m.t }

// unit is a calendar or clock unit accepted by Add, Subtract, StartOf and
// EndOf.
type unit int

const (
	unitMillisecond unit = iota
	unitSecond
	unitMinute
	unitHour
	unitDay
	unitWeek
	unitMonth
	unitQuarter
	unitYear
)

// unitShorthand is matched case-sensitively, so "m" is a minute and "M" a
// month.
var unitShorthand = map[string]unit{
	"ms": unitMillisecond,
	"s":  unitSecond,
	"m":  unitMinute,
	"h":  unitHour,
	"d":  unitDay,
	"w":  unitWeek,
	"M":  unitMonth,
	"Q":  unitQuarter,
	"y":  unitYear,
}

var unitNames = map[string]unit{
	"millisecond": unitMillisecond,
	"second":      unitSecond,
	"minute":      unitMinute,
	"hour":        unitHour,
	"day":         unitDay,
	"week":        unitWeek,
	"month":       unitMonth,
	"quarter":     unitQuarter,
	"year":        unitYear,
}

func parseUnit(s string) (unit, error) {
	if u, ok := unitShorthand[s]; ok {
		return u, nil
	}

	name := strings.TrimSuffix(strings.ToLower(s), "s")
	if u, ok := unitNames[name]; ok {
		return u, nil
	}

	return 0, ErrUnit.With(slog.String("unit", s))
}

// Add returns the moment shifted forward by amount units. Hours and smaller
// units accept fractions; days and larger round to the nearest whole unit.
// Adding months clamps to the last day of the target month.
func (m Moment) Add(amount any, unit string) (Moment, error) {
	n, err := toNumber(amount)
	if err != nil {
		return Moment{}, err
	}

	u, err := parseUnit(unit)
	if err != nil {
		return Moment{}, err
	}

	return m.shift(n, u), nil
}

// Subtract returns the moment shifted backward by amount units.
func (m Moment) Subtract(amount any, unit string) (Moment, error) {
	n, err := toNumber(amount)
	if err != nil {
		return Moment{}, err
	}

	u, err := parseUnit(unit)
	if err != nil {
		return Moment{}, err
	}

	return m.shift(-n, u), nil
}

func (m Moment) shift(n float64, u unit) Moment {
	t := m.t

	switch u {
	case unitMillisecond:
		t = t.Add(time.Duration(n * float64(time.Millisecond)))
	case unitSecond:
		t = t.Add(time.Duration(n * float64(time.Second)))
	case unitMinute:
		t = t.Add(time.Duration(n * float64(time.Minute)))
	case unitHour:
		t = t.Add(time.Duration(n * float64(time.Hour)))
	case unitDay:
		t = t.AddDate(0, 0, round(n))
	case unitWeek:
		t = t.AddDate(0, 0, 7*round(n))
	case unitMonth:
		t = addMonths(t, round(n))
	case unitQuarter:
		t = addMonths(t, 3*round(n))
	case unitYear:
		t = addMonths(t, 12*round(n))
	}

	return Moment{t: t, locale: m.locale}
}

// addMonths adds n months, clamping the day to the end of the target month
// so that Jan 31 plus one month is the last day of February.
func addMonths(t time.Time, n int) time.Time {
	y, mo, d := t.Date()
	first := time.Date(y, mo+time.Month(n), 1,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())

	if last := daysIn(first); d > last {
		d = last
	}

	return first.AddDate(0, 0, d-1)
}

func daysIn(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}

func round(f float64) int {
	return int(math.Round(f))
}

// StartOf returns the first instant of the unit containing the moment.
// Weeks start on Sunday.
func (m Moment) StartOf(unit string) (Moment, error) {
	u, err := parseUnit(unit)
	if err != nil {
		return Moment{}, err
	}

	return Moment{t: startOf(m.t, u), locale: m.locale}, nil
}

// EndOf returns the last millisecond of the unit containing the moment.
func (m Moment) EndOf(unit string) (Moment, error) {
	u, err := parseUnit(unit)
	if err != nil {
		return Moment{}, err
	}

	start := Moment{t: startOf(m.t, u), locale: m.locale}

	return Moment{
		t:      start.shift(1, u).t.Add(-time.Millisecond),
		locale: m.locale,
	}, nil
}

func startOf(t time.Time, u unit) time.Time {
	y, mo, d := t.Date()
	loc := t.Location()

	switch u {
	case unitMillisecond:
		return t.Truncate(time.Millisecond)
	case unitSecond:
		return time.Date(y, mo, d, t.Hour(), t.Minute(), t.Second(), 0, loc)
	case unitMinute:
		return time.Date(y, mo, d, t.Hour(), t.Minute(), 0, 0, loc)
	case unitHour:
		return time.Date(y, mo, d, t.Hour(), 0, 0, 0, loc)
	case unitDay:
		return time.Date(y, mo, d, 0, 0, 0, 0, loc)
	case unitWeek:
		return time.Date(y, mo, d-int(t.Weekday()), 0, 0, 0, 0, loc)
	case unitMonth:
		return time.Date(y, mo, 1, 0, 0, 0, 0, loc)
	case unitQuarter:
		return time.Date(y, mo-(mo-1)%3, 1, 0, 0, 0, 0, loc)
	default:
		return time.Date(y, time.January, 1, 0, 0, 0, 0, loc)
	}
}

// Format renders the moment with a format pattern such as "YYYY年MM月".
// An empty pattern renders ISO 8601 with the UTC offset.
func (m Moment) Format(pattern string) string {
	if pattern == "" {
		pattern = isoPattern
	}

	return formatPattern(m.t, pattern, m.locale)
}

// Locale returns a copy of the moment that formats names in the locale
// identified by tag.
func (m Moment) Locale(tag string) (Moment, error) {
	l, err := ParseLocale(tag)
	if err != nil {
		return Moment{}, err
	}

	return Moment{t: m.t, locale: l}, nil
}

// Year returns the four digit year.
func (m Moment) Year() int { return m.t.Year() }

// Month returns the month numbered from 0 for January.
func (m Moment) Month() int { return int(m.t.Month()) - 1 }

// Date returns the day of the month.
func (m Moment) Date() int { return m.t.Day() }

// Day returns the day of the week numbered from 0 for Sunday.
func (m Moment) Day() int { return int(m.t.Weekday()) }

func (m Moment) Hour() int   { return m.t.Hour() }
func (m Moment) Minute() int { return m.t.Minute() }
func (m Moment) Second() int { return m.t.Second() }

// DaysInMonth returns the number of days in the moment's month.
func (m Moment) DaysInMonth() int { return daysIn(m.t) }

// ValueOf returns milliseconds since the Unix epoch.
func (m Moment) ValueOf() int64 { return m.t.UnixMilli() }

// Unix returns seconds since the Unix epoch.
func (m Moment) Unix() int64 { return m.t.Unix() }

// ToISOString renders the moment in UTC with millisecond precision.
func (m Moment) ToISOString() string {
	return m.t.UTC().Format("2006-01-02T15:04:05.000Z")
}

func (m Moment) IsBefore(other Moment) bool { return m.t.Before(other.t) }
func (m Moment) IsAfter(other Moment) bool  { return m.t.After(other.t) }

// IsSame reports whether both moments fall in the same unit, or are the same
// instant when unit is empty.
func (m Moment) IsSame(other Moment, unit string) (bool, error) {
	if unit == "" {
		return m.t.Equal(other.t), nil
	}

	u, err := parseUnit(unit)
	if err != nil {
		return false, err
	}

	return startOf(m.t, u).Equal(startOf(other.t.In(m.t.Location()), u)), nil
}

func (m Moment) Clone() Moment { return m }

// String renders the moment the way it reads when concatenated to a string.
func (m Moment) String() string {
	return m.t.Format("Mon Jan 02 2006 15:04:05 GMT-0700")
}

// momentFactory builds Moment values for one evaluation.
type momentFactory struct {
	clock    func() time.Time
	location *time.Location
	locale   monday.Locale
}

// momentTypes are the call signatures of Moment() in scripts.
var momentTypes = []any{
	new(func() Moment),
	new(func(string) Moment),
	new(func(string, string) Moment),
	new(func(int) Moment),
	new(func(int64) Moment),
	new(func(float64) Moment),
	new(func(Moment) Moment),
}

// call implements Moment(), Moment(text), Moment(text, pattern),
// Moment(epochMillis) and Moment(moment).
func (f *momentFactory) call(args ...any) (any, error) {
	switch len(args) {
	case 0:
		return f.at(f.clock()), nil

	case 1:
		switch v := args[0].(type) {
		case Moment:
			return v, nil
		case time.Time:
			return f.at(v), nil
		case string:
			t, err := dateparse.ParseIn(strings.TrimSpace(v), f.location)
			if err != nil {
				return nil, ErrDate.With(slog.String("input", v)).Wrap(err)
			}

			return f.at(t), nil
		case nil:
			return nil, ErrDate.With(slog.String("input", "null"))
		}

		ms, err := toNumber(args[0])
		if err != nil {
			return nil, ErrDate.Wrap(err)
		}

		return f.at(time.UnixMilli(int64(ms))), nil

	case 2:
		text, ok := args[0].(string)
		pattern, ok2 := args[1].(string)

		if !ok || !ok2 {
			return nil, ErrDate.With(slog.String("error", "expected text and pattern"))
		}

		t, err := parsePattern(text, pattern, f.location)
		if err != nil {
			return nil, err
		}

		return f.at(t), nil
	}

	return nil, ErrDate.With(slog.Int("arg_count", len(args)))
}

func (f *momentFactory) at(t time.Time) Moment {
	return Moment{t: t.In(f.location), locale: f.locale}
}

// toNumber converts a script value to a float64.
func toNumber(v any) (float64, error) {
	switch n := v.(type) {
	case int:
		return float64(n), nil
	case int8:
		return float64(n), nil
	case int16:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint:
		return float64(n), nil
	case uint8:
		return float64(n), nil
	case uint16:
		return float64(n), nil
	case uint32:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case float32:
		return float64(n), nil
	case float64:
		return n, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, ErrAmount.With(slog.String("input", n)).Wrap(err)
		}

		return f, nil
	}

	return 0, ErrAmount.With(slog.String("type", fmt.Sprintf("%T", v)))
}
