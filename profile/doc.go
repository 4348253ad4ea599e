// Package profile starts optional runtime profiling of ruiner.
//
// Profiling is compiled in only with the "pprof" build tag:
//
//	go build -tags pprof .
//	ruiner --pprof-mode cpu render Table --params table.yaml
//	go tool pprof -http=: "$XDG_CACHE_HOME/ruiner/pprof/cpu.pprof"
//
// Without the tag [Modes] is empty, [Enabled] is false, and
// [Profiler.Start] never does anything. Profiles are written by
// [github.com/pkg/profile]; a profile is named after its mode
// (cpu.pprof, mem.pprof, ...).
package profile
