package profile

import (
	"slices"
	"testing"
)

func TestStartDisabled(t *testing.T) {
	s := Profiler{}.Start()
	if _, ok := s.(ignore); !ok {
		t.Errorf("Start() with empty mode = %T, want no-op", s)
	}

	s.Stop()

	s = Profiler{Mode: "no-such-mode", Dir: t.TempDir(), Quiet: true}.Start()
	if _, ok := s.(ignore); !ok {
		t.Errorf("Start() with unknown mode = %T, want no-op", s)
	}

	s.Stop()
}

func TestModes(t *testing.T) {
	modes := Modes()

	if Enabled != slices.Contains(modes, "cpu") {
		t.Errorf("Enabled = %v but Modes() = %v", Enabled, modes)
	}

	if !slices.IsSorted(modes) {
		t.Errorf("Modes() not sorted: %v", modes)
	}
}
