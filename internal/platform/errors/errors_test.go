package errors

import (
	stderrs "errors"
	"testing"
)

func TestErrorMessageAndUnwrap(t *testing.T) {
	cause := stderrs.New("boom")
	err := Wrap(cause, ErrorCodeParse, "reading feed")
	if got := err.Error(); got != "reading feed: boom" {
		t.Fatalf("Error() = %q", got)
	}
	if !stderrs.Is(err, cause) {
		t.Fatalf("wrapped cause lost")
	}
	if Root(err) != cause {
		t.Fatalf("Root should return the deepest cause")
	}
}

func TestCodeOf(t *testing.T) {
	if CodeOf(Configf("bad feed")) != ErrorCodeConfig {
		t.Fatalf("CodeOf config mismatch")
	}
	if CodeOf(stderrs.New("plain")) != ErrorCodeUnknown {
		t.Fatalf("plain errors default to Unknown")
	}
	if !IsCode(NotFoundf("missing"), ErrorCodeNotFound) {
		t.Fatalf("IsCode not found mismatch")
	}
}

func TestCodeSurvivesWrapping(t *testing.T) {
	inner := Unavailablef("feed down")
	outer := Wrapf(inner, ErrorCodeUnknown, "pull failed")
	// As finds the outermost *Error; its code wins
	if CodeOf(outer) != ErrorCodeUnknown {
		t.Fatalf("outermost code should win")
	}
	e, ok := As(outer)
	if !ok {
		t.Fatalf("As should match")
	}
	if e.Unwrap() == nil {
		t.Fatalf("Unwrap lost the inner error")
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, 0},
		{Configf("x"), 2},
		{NotFoundf("x"), 2},
		{Unavailablef("x"), 3},
		{Parsef("x"), 1},
		{InvalidArgf("x"), 1},
		{stderrs.New("plain"), 1},
	}
	for _, tc := range tests {
		if got := ExitCode(tc.err); got != tc.want {
			t.Fatalf("ExitCode(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestWithOp(t *testing.T) {
	err := Parsef("bad row")
	tagged := WithOp(err, "appready.project")
	e, ok := As(tagged)
	if !ok || e.Op() != "appready.project" {
		t.Fatalf("WithOp lost the op tag")
	}
	// original untouched (copy-on-write)
	orig, _ := As(err)
	if orig.Op() != "" {
		t.Fatalf("WithOp must not mutate the original")
	}
}
