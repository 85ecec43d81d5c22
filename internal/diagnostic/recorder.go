package diagnostic

import (
	"bytes"
	"io"
)

// Recorder tees the verbose log into an in-memory buffer so it can be
// flushed into a diagnostic document if the process later exits non-zero.
// It is cheap to keep attached unconditionally: the buffer only grows when
// verbose logging is already happening, and the wiring code discards it
// unwritten on a clean exit.
type Recorder struct {
	buf bytes.Buffer
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Tee wraps dest so every write also lands in r's buffer.
func (r *Recorder) Tee(dest io.Writer) io.Writer {
	return io.MultiWriter(dest, &r.buf)
}

// Bytes returns the captured log content so far.
func (r *Recorder) Bytes() []byte {
	return r.buf.Bytes()
}
