package profile

// Config reports the profiling mode, the directory profiles are written to,
// and whether pkg/profile should stay silent. A Config is immutable; options
// wrap it in a new one.
type Config func() (mode, path string, quiet bool)

// Option derives a [Config] from another.
type Option func(Config) Config

// Profiler is a running profile. Stop flushes it to disk.
type Profiler interface{ Stop() }

// Make returns a Config that profiles nothing, modified by opts.
func Make(opts ...Option) Config {
	var cfg Config = func() (string, string, bool) { return "", "", true }

	for _, opt := range opts {
		cfg = opt(cfg)
	}

	return cfg
}

// Start begins profiling the rest of the command, typically one alias
// evaluation or a resolve over a widget document.
//
// The returned Profiler does nothing when no mode is selected, the mode is
// not one of [Modes], or the binary lacks the pprof build tag.
func (c Config) Start() Profiler {
	mode, path, quiet := c()

	if mode == "" {
		return ignore{}
	}

	return start(mode, path, quiet)
}

// WithMode selects one of [Modes].
func WithMode(mode string) Option {
	return func(c Config) Config {
		_, path, quiet := c()

		return func() (string, string, bool) { return mode, path, quiet }
	}
}

// WithPath sets the output directory. An empty path lets pkg/profile pick
// a temporary directory.
func WithPath(path string) Option {
	return func(c Config) Config {
		mode, _, quiet := c()

		return func() (string, string, bool) { return mode, path, quiet }
	}
}

// WithQuiet silences the start and stop messages of pkg/profile.
func WithQuiet(quiet bool) Option {
	return func(c Config) Config {
		mode, path, _ := c()

		return func() (string, string, bool) { return mode, path, quiet }
	}
}

type ignore struct{}

func (ignore) Stop() {}
