package gzipenc

import (
	"io"
	"io/fs"

	"github.com/nfam/pool/buffer"
	"github.com/nfam/pool/iocopy"
)

// A Writer collects a whole body and writes its gzip container to the
// underlying writer on Close. Nothing reaches the underlying writer before
// Close, and nothing at all if encoding fails.
type Writer struct {
	base io.Writer
	enc  Encoder
	buf  buffer.Buffer
	open bool
	size int64 // uncompressed bytes buffered
}

// NewWriter returns a Writer using the default [Encoder].
func NewWriter(w io.Writer) *Writer {
	return NewWriterEncoder(w, Encoder{})
}

// NewWriterEncoder returns a Writer that encodes with a copy of enc.
func NewWriterEncoder(w io.Writer, enc Encoder) *Writer {
	return &Writer{
		base: w,
		enc:  enc,
		buf:  buffer.Get(),
		open: true,
	}
}

// Implements [io.Writer] interface.
func (w *Writer) Write(p []byte) (int, error) {
	if !w.open {
		return 0, fs.ErrClosed
	}
	n, err := w.buf.Write(p)
	w.size += int64(n)
	return n, err
}

// Implements [io.ReaderFrom] interface.
func (w *Writer) ReadFrom(r io.Reader) (int64, error) {
	if !w.open {
		return 0, fs.ErrClosed
	}
	n, err := iocopy.Copy(w.buf, r)
	w.size += n
	return n, err
}

// Len returns the number of uncompressed bytes written so far.
func (w *Writer) Len() int64 {
	return w.size
}

// Reset discards buffered data and directs output to base. A closed Writer
// becomes usable again.
func (w *Writer) Reset(base io.Writer) {
	if w.open {
		w.buf.Close()
	}
	w.base = base
	w.buf = buffer.Get()
	w.open = true
	w.size = 0
}

// Close encodes the buffered body and writes the container to the
// underlying writer.
func (w *Writer) Close() error {
	if !w.open {
		return fs.ErrClosed
	}
	defer func() {
		w.buf.Close()
		w.open = false
	}()

	out, err := w.enc.Encode(w.buf.Bytes())
	if err != nil {
		return err
	}
	_, err = w.base.Write(out)
	return err
}
