// Package rw holds small io helpers.
package rw

import "io"

// CountWriter passes writes through to w and counts the bytes accepted.
type CountWriter struct {
	w io.Writer
	n int64
}

func NewCountWriter(w io.Writer) *CountWriter {
	return &CountWriter{w: w}
}

// Write implements io.Writer
func (cw *CountWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n) // Write() is called once per output chunk
	return n, err
}

// BytesWritten returns the total number of bytes written
func (cw *CountWriter) BytesWritten() int64 {
	return cw.n
}
