package profile

// Tag is the build tag required to enable profiling.
const Tag = `pprof`

// Profiler describes one profiling session.
type Profiler struct {
	// Mode is one of [Modes]. The empty mode disables profiling.
	Mode string
	// Dir is the output directory. Empty means the current directory.
	Dir string
	// Quiet suppresses the start and stop messages of the profiler.
	Quiet bool
}

// Stopper ends a profiling session and flushes its output.
type Stopper interface{ Stop() }

// Start starts profiling. Unknown modes, the empty mode, and builds without
// [Tag] return a Stopper that does nothing. Stop must be called exactly once.
func (p Profiler) Start() Stopper {
	if p.Mode == "" || !Enabled {
		return ignore{}
	}

	return start(p)
}

type ignore struct{}

func (ignore) Stop() {}
