// Package profile provides optional runtime profiling built on
// [github.com/pkg/profile].
//
// Profiling must be enabled at build time with the "pprof" build tag:
//
//	go build -tags pprof .
//	aliasexpr --pprof-mode=cpu eval '$a$ + "x"' --var a=1
//
// Without the tag every operation is a no-op and [Modes] is empty.
//
// Supported modes are allocs, block, clock, cpu, goroutine, heap, mem, mutex,
// thread and trace. Profiles are written to the directory given with
// --pprof-path, by default the "pprof" subdirectory of the user cache
// directory, and can be inspected with:
//
//	go tool pprof -http=: ~/.cache/aliasexpr/pprof/cpu.pprof
//
// Builds with the tag also import [net/http/pprof], which registers its
// handlers on [net/http.DefaultServeMux].
package profile

// Tag is the build tag required to enable pprof profiling.
const Tag = `pprof`
