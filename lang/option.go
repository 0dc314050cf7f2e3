package lang

import (
	"time"

	"github.com/goodsign/monday"

	"github.com/ardnew/aliasexpr/log"
)

// DefaultMaxSourceLength is the default limit on expression source size in
// bytes.
const DefaultMaxSourceLength = 64 << 10

// DefaultLocale is the locale used to format dates when none is configured.
const DefaultLocale = monday.LocaleEnUS

// maxCachedPrograms bounds the parsed program cache of an [Evaluator].
const maxCachedPrograms = 1024

type options struct {
	logger          log.Logger
	clock           func() time.Time
	location        *time.Location
	locale          monday.Locale
	maxSourceLength int
}

// Option configures an [Evaluator].
type Option func(*options)

func makeOptions(opts ...Option) options {
	o := options{
		logger:          log.Default(),
		clock:           time.Now,
		location:        time.Local,
		locale:          DefaultLocale,
		maxSourceLength: DefaultMaxSourceLength,
	}

	for _, opt := range opts {
		opt(&o)
	}

	return o
}

// WithLogger sets the structured logger for trace-level debugging.
// If not provided, the package-level logger from [log.Default] is used.
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithClock sets the source of the current time used by Moment().
// A nil clock is ignored.
func WithClock(clock func() time.Time) Option {
	return func(o *options) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithLocation sets the time zone dates are parsed and formatted in.
// A nil location is ignored.
func WithLocation(loc *time.Location) Option {
	return func(o *options) {
		if loc != nil {
			o.location = loc
		}
	}
}

// WithLocale sets the locale month and weekday names are formatted in.
// Use [ParseLocale] to convert a language tag.
func WithLocale(locale monday.Locale) Option {
	return func(o *options) {
		if locale != "" {
			o.locale = locale
		}
	}
}

// WithMaxSourceLength limits the size of expression source in bytes.
// Zero or a negative value disables the limit.
func WithMaxSourceLength(n int) Option {
	return func(o *options) {
		o.maxSourceLength = n
	}
}
