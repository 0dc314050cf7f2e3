package lang

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
)

// programCache stores parsed programs keyed by source text. Each source is
// parsed at most once, even when several goroutines evaluate it at the same
// time.
type programCache struct {
	entries sync.Map // source → *cacheEntry
	size    atomic.Int64
	limit   int64
}

// cacheEntry tracks the parse of one source.
type cacheEntry struct {
	once    sync.Once
	program *Program
	err     error
}

// load returns the parsed program for source, parsing it on first use.
// Parse errors are cached along with successful results.
func (c *programCache) load(
	ctx context.Context,
	source string,
	opts options,
) (*Program, error) {
	entry := new(cacheEntry)

	value, cacheHit := c.entries.LoadOrStore(source, entry)

	entry, ok := value.(*cacheEntry)
	if !ok {
		return parse(ctx, source, opts)
	}

	if !cacheHit && c.size.Add(1) > c.limit && c.limit > 0 {
		c.clear()
	}

	opts.logger.TraceContext(ctx, "cache lookup",
		slog.Int("source_length", len(source)),
		slog.Bool("cache_hit", cacheHit))

	entry.once.Do(func() {
		entry.program, entry.err = parse(ctx, source, opts)
	})

	return entry.program, entry.err
}

// clear removes all cached programs. Entries already loaded by callers stay
// valid.
func (c *programCache) clear() {
	c.entries.Clear()
	c.size.Store(0)
}
