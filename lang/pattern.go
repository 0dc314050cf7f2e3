package lang

import (
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/goodsign/monday"
)

// isoPattern is the pattern Format uses when none is given.
const isoPattern = "YYYY-MM-DDTHH:mm:ssZ"

// patternTokens are the format tokens, longest first within each letter.
var patternTokens = []string{
	"YYYY", "YY",
	"Q",
	"MMMM", "MMM", "MM", "M",
	"DDDD", "DDD", "DD", "D",
	"dddd", "ddd", "d",
	"HH", "H", "hh", "h",
	"mm", "m",
	"ss", "s",
	"SSS", "SS", "S",
	"A", "a",
	"ZZ", "Z",
	"X", "x",
}

// segment is a token or a literal run of a compiled pattern.
type segment struct {
	token   string
	literal string
}

// compilePattern splits a pattern into tokens and literals. Text in square
// brackets is always literal.
func compilePattern(pattern string) []segment {
	segs := make([]segment, 0, 8)

	var lit strings.Builder

	flush := func() {
		if lit.Len() > 0 {
			segs = append(segs, segment{literal: lit.String()})
			lit.Reset()
		}
	}

next:
	for i := 0; i < len(pattern); {
		if pattern[i] == '[' {
			if end := strings.IndexByte(pattern[i:], ']'); end > 0 {
				lit.WriteString(pattern[i+1 : i+end])

				i += end + 1

				continue
			}
		}

		for _, tok := range patternTokens {
			if strings.HasPrefix(pattern[i:], tok) {
				flush()

				segs = append(segs, segment{token: tok})

				i += len(tok)

				continue next
			}
		}

		lit.WriteByte(pattern[i])

		i++
	}

	flush()

	return segs
}

// formatPattern renders t with a format pattern. Month, weekday and
// meridiem names are rendered in locale.
func formatPattern(t time.Time, pattern string, locale monday.Locale) string {
	var b strings.Builder

	for _, seg := range compilePattern(pattern) {
		if seg.token == "" {
			b.WriteString(seg.literal)

			continue
		}

		b.WriteString(formatToken(t, seg.token, locale))
	}

	return b.String()
}

func formatToken(t time.Time, tok string, locale monday.Locale) string {
	switch tok {
	case "YYYY":
		return pad(t.Year(), 4)
	case "YY":
		return pad(t.Year()%100, 2)
	case "Q":
		return strconv.Itoa((int(t.Month())-1)/3 + 1)
	case "MMMM":
		return monday.Format(t, "January", locale)
	case "MMM":
		return monday.Format(t, "Jan", locale)
	case "MM":
		return pad(int(t.Month()), 2)
	case "M":
		return strconv.Itoa(int(t.Month()))
	case "DDDD":
		return pad(t.YearDay(), 3)
	case "DDD":
		return strconv.Itoa(t.YearDay())
	case "DD":
		return pad(t.Day(), 2)
	case "D":
		return strconv.Itoa(t.Day())
	case "dddd":
		return monday.Format(t, "Monday", locale)
	case "ddd":
		return monday.Format(t, "Mon", locale)
	case "d":
		return strconv.Itoa(int(t.Weekday()))
	case "HH":
		return pad(t.Hour(), 2)
	case "H":
		return strconv.Itoa(t.Hour())
	case "hh":
		return pad(hour12(t), 2)
	case "h":
		return strconv.Itoa(hour12(t))
	case "mm":
		return pad(t.Minute(), 2)
	case "m":
		return strconv.Itoa(t.Minute())
	case "ss":
		return pad(t.Second(), 2)
	case "s":
		return strconv.Itoa(t.Second())
	case "SSS":
		return pad(t.Nanosecond()/int(time.Millisecond), 3)
	case "SS":
		return pad(t.Nanosecond()/int(10*time.Millisecond), 2)
	case "S":
		return strconv.Itoa(t.Nanosecond() / int(100*time.Millisecond))
	case "A":
		return monday.Format(t, "PM", locale)
	case "a":
		return strings.ToLower(monday.Format(t, "PM", locale))
	case "ZZ":
		return t.Format("-0700")
	case "Z":
		return t.Format("-07:00")
	case "X":
		return strconv.FormatInt(t.Unix(), 10)
	case "x":
		return strconv.FormatInt(t.UnixMilli(), 10)
	}

	return tok
}

func pad(n, width int) string {
	s := strconv.Itoa(n)
	if len(s) < width {
		s = strings.Repeat("0", width-len(s)) + s
	}

	return s
}

func hour12(t time.Time) int {
	if h := t.Hour() % 12; h != 0 {
		return h
	}

	return 12
}

// layoutTokens translate pattern tokens to time.Parse layout elements.
var layoutTokens = map[string]string{
	"YYYY": "2006",
	"YY":   "06",
	"MMMM": "January",
	"MMM":  "Jan",
	"MM":   "01",
	"M":    "1",
	"DDDD": "002",
	"DDD":  "__2",
	"DD":   "02",
	"D":    "2",
	"dddd": "Monday",
	"ddd":  "Mon",
	"HH":   "15",
	"H":    "15",
	"hh":   "03",
	"h":    "3",
	"mm":   "04",
	"m":    "4",
	"ss":   "05",
	"s":    "5",
	"SSS":  "000",
	"A":    "PM",
	"a":    "pm",
	"ZZ":   "-0700",
	"Z":    "-07:00",
}

// parsePattern parses text with a format pattern in loc. Names are matched
// in English.
func parsePattern(text, pattern string, loc *time.Location) (time.Time, error) {
	var layout strings.Builder

	for _, seg := range compilePattern(pattern) {
		if seg.token == "" {
			layout.WriteString(seg.literal)

			continue
		}

		elem, ok := layoutTokens[seg.token]
		if !ok {
			return time.Time{}, ErrDate.
				With(slog.String("pattern", pattern)).
				With(slog.String("unsupported_token", seg.token))
		}

		layout.WriteString(elem)
	}

	t, err := time.ParseInLocation(layout.String(), text, loc)
	if err != nil {
		return time.Time{}, ErrDate.
			With(slog.String("input", text)).
			With(slog.String("pattern", pattern)).
			Wrap(err)
	}

	return t, nil
}
