// Package detlog reads and writes recorded detection streams as JSONL,
// one frame per line. A detection log is the replay input for the
// pipeline: the detector runs elsewhere, this core only consumes its
// per-frame output.
package detlog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/banshee-data/collision.report/internal/vision"
)

// Frame is one recorded frame of detector output.
type Frame struct {
	Frame      int64              `json:"frame"`
	Detections []vision.Detection `json:"detections"`
}

// Writer appends frames to a detection log.
type Writer struct {
	w   *bufio.Writer
	enc *json.Encoder
}

// NewWriter wraps an io.Writer as a detection-log writer.
func NewWriter(w io.Writer) *Writer {
	bw := bufio.NewWriter(w)
	return &Writer{w: bw, enc: json.NewEncoder(bw)}
}

// Write appends one frame. The encoder emits a trailing newline, giving
// the one-frame-per-line layout.
func (w *Writer) Write(f Frame) error {
	if err := w.enc.Encode(f); err != nil {
		return fmt.Errorf("write detlog frame %d: %w", f.Frame, err)
	}
	return nil
}

// Flush flushes buffered frames to the underlying writer.
func (w *Writer) Flush() error {
	return w.w.Flush()
}

// Reader streams frames from a detection log in recorded order.
type Reader struct {
	sc   *bufio.Scanner
	line int
}

// NewReader wraps an io.Reader as a detection-log reader.
func NewReader(r io.Reader) *Reader {
	sc := bufio.NewScanner(r)
	// Dense frames can exceed the default scanner buffer.
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	return &Reader{sc: sc}
}

// Next returns the next frame, or io.EOF at the end of the log.
func (r *Reader) Next() (Frame, error) {
	for r.sc.Scan() {
		r.line++
		raw := r.sc.Bytes()
		if len(raw) == 0 {
			continue
		}
		var f Frame
		if err := json.Unmarshal(raw, &f); err != nil {
			return Frame{}, fmt.Errorf("detlog line %d: %w", r.line, err)
		}
		return f, nil
	}
	if err := r.sc.Err(); err != nil {
		return Frame{}, fmt.Errorf("detlog read: %w", err)
	}
	return Frame{}, io.EOF
}
