package template

import (
	"errors"
	"io/fs"
	"log/slog"
	"testing"
)

func TestError(t *testing.T) {
	err := ErrLookupFailure.Wrap(fs.ErrNotExist).With(slog.String("name", "x"))

	if got, want := err.Error(), "lookup failure: file does not exist"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	if !errors.Is(err, ErrLookupFailure) {
		t.Errorf("errors.Is(err, ErrLookupFailure) = false")
	}

	if errors.Is(err, ErrTypeMismatch) {
		t.Errorf("errors.Is(err, ErrTypeMismatch) = true")
	}

	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("wrapped cause is not reachable")
	}

	if attrs := err.Attrs(); len(attrs) != 1 || attrs[0].Key != "name" {
		t.Errorf("Attrs() = %v", attrs)
	}

	if len(ErrLookupFailure.Attrs()) != 0 {
		t.Errorf("With() modified the sentinel")
	}

	v := err.LogValue()
	if v.Kind() != slog.KindGroup || len(v.Group()) != 3 {
		t.Errorf("LogValue() = %v", v)
	}

	if WrapError(err) != err {
		t.Errorf("WrapError() rewrapped an *Error")
	}
}
