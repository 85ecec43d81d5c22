package diagnostic

import (
	"bytes"
	"testing"
)

func TestRecorderTeesWritesIntoBuffer(t *testing.T) {
	r := NewRecorder()
	var primary bytes.Buffer
	dest := r.Tee(&primary)

	if _, err := dest.Write([]byte("hello")); err != nil {
		t.Fatalf("write: %v", err)
	}

	if primary.String() != "hello" {
		t.Errorf("expected primary writer to receive the write, got %q", primary.String())
	}
	if string(r.Bytes()) != "hello" {
		t.Errorf("expected recorder buffer to receive the write, got %q", string(r.Bytes()))
	}
}
