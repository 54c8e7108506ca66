package logcapture

import (
	"bytes"
	"testing"
)

func TestTail(t *testing.T) {
	tail := NewTail(2)
	tail.Write([]byte("one\ntwo\nth"))
	tail.Write([]byte("ree\n\nfour"))

	if got := tail.String(); got != "two\nthree\nfour" {
		t.Errorf("got %q", got)
	}
}

func TestTail_Tee(t *testing.T) {
	var out bytes.Buffer
	tail := NewTail(5)
	w := tail.Tee(&out)
	w.Write([]byte("fatal: Remote branch nope not found\n"))

	if out.String() != "fatal: Remote branch nope not found\n" {
		t.Errorf("tee output = %q", out.String())
	}
	if tail.String() != "fatal: Remote branch nope not found" {
		t.Errorf("tail = %q", tail.String())
	}
	if NewTail(1).Tee(nil) == nil {
		t.Error("Tee(nil) should return the tail itself")
	}
}
