package iox

import (
	"errors"
	"testing"
)

// failingCloser always errors on Close and records that it ran.
type failingCloser struct{ calls int }

func (f *failingCloser) Close() error {
	f.calls++
	return errors.New("close failed")
}

func TestDiscardClose(t *testing.T) {
	c := &failingCloser{}
	DiscardClose(c)
	if c.calls != 1 {
		t.Fatalf("Close ran %d times, want 1", c.calls)
	}
}

func TestCloseFunc(t *testing.T) {
	c := &failingCloser{}
	cleanup := CloseFunc(c)
	if c.calls != 0 {
		t.Fatal("Close ran before the cleanup func was invoked")
	}
	cleanup()
	cleanup()
	if c.calls != 2 {
		t.Fatalf("Close ran %d times, want 2", c.calls)
	}
}

func TestDiscardErr(t *testing.T) {
	ran := false
	DiscardErr(func() error {
		ran = true
		return errors.New("flush failed")
	})
	if !ran {
		t.Fatal("fn did not run")
	}
}
