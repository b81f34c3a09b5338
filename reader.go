package gzipenc

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"time"

	"github.com/klauspost/compress/flate"
	"github.com/nfam/pool/buffer"
	"github.com/nfam/pool/iocopy"
)

// Header is the fixed part of a gzip member header.
type Header struct {
	ModTime    time.Time
	ExtraFlags byte
	OS         byte
}

// DecodeHeader parses the 10-byte header at the start of p.
// Only members without optional fields (FLG == 0) are accepted.
func DecodeHeader(p []byte) (Header, error) {
	if len(p) < gzip_header_len {
		return Header{}, ErrHeader
	}
	if !bytes.Equal(p[:gzip_header_prefix_len], gzip_header_prefix) {
		return Header{}, ErrHeader
	}
	return Header{
		ModTime:    time.Unix(int64(binary.LittleEndian.Uint32(p[4:8])), 0),
		ExtraFlags: p[8],
		OS:         p[9],
	}, nil
}

// Decode returns the body carried by the gzip container p. Both the short
// trailer written by default and the RFC 1952 trailer with ISIZE are
// accepted.
func Decode(p []byte) ([]byte, error) {
	_, data, err := decode(p)
	return data, err
}

func decode(p []byte) (Header, []byte, error) {
	h, err := DecodeHeader(p)
	if err != nil {
		return h, nil, err
	}

	// bytes.Reader is an io.ByteReader, so the inflater stops exactly at
	// the end of the final block and the rest is the trailer.
	br := bytes.NewReader(p[gzip_header_len:])
	fr := flate.NewReader(br)
	defer fr.Close()

	b := buffer.Get()
	defer b.Close()
	if _, err := iocopy.Copy(b, fr); err != nil {
		return h, nil, fmt.Errorf("gzipenc: inflate: %w", err)
	}
	data := bytes.Clone(b.Bytes())
	if data == nil {
		data = []byte{}
	}

	trailer := p[len(p)-br.Len():]
	switch len(trailer) {
	case gzip_crc_len, gzip_crc_len + gzip_isize_len:
	default:
		return h, nil, ErrTrailer
	}
	if binary.LittleEndian.Uint32(trailer) != crc32.ChecksumIEEE(data) {
		return h, nil, ErrChecksum
	}
	if len(trailer) > gzip_crc_len && binary.LittleEndian.Uint32(trailer[gzip_crc_len:]) != uint32(len(data)) {
		return h, nil, ErrTrailer
	}
	return h, data, nil
}

// A Reader serves the decoded body of a gzip container.
type Reader struct {
	Header
	data []byte
	off  int
}

// A ReadCloser is a [Reader] that must be closed when no longer needed.
type ReadCloser struct {
	f *os.File
	Reader
}

// OpenReader will open the gzip file specified by name and return a ReadCloser.
func OpenReader(name string) (*ReadCloser, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	r := new(ReadCloser)
	if err = r.init(f, fi.Size()); err != nil {
		f.Close()
		return nil, err
	}
	r.f = f
	return r, nil
}

// NewReader returns a new [Reader] reading from r, which is assumed to
// have the given size in bytes. The whole container is decoded up front.
func NewReader(r io.ReaderAt, size int64) (*Reader, error) {
	zr := new(Reader)
	if err := zr.init(r, size); err != nil {
		return nil, err
	}
	return zr, nil
}

func (r *Reader) init(rat io.ReaderAt, size int64) error {
	if size < int64(gzip_header_len+gzip_crc_len) {
		return ErrHeader
	}

	b := buffer.Get()
	defer b.Close()
	if _, err := b.ReadFrom(io.NewSectionReader(rat, 0, size)); err != nil {
		return err
	}

	h, data, err := decode(b.Bytes())
	if err != nil {
		return err
	}
	r.Header = h
	r.data = data
	r.off = 0
	return nil
}

// Close closes the gzip file, rendering it unusable for I/O.
func (rc *ReadCloser) Close() error {
	return rc.f.Close()
}

// Len returns the number of unread bytes of the decoded body.
func (r *Reader) Len() int {
	return len(r.data) - r.off
}

// Implements [io.Reader] interface.
func (r *Reader) Read(p []byte) (int, error) {
	if r.off >= len(r.data) {
		return 0, io.EOF
	}
	n := copy(p, r.data[r.off:])
	r.off += n
	return n, nil
}

// Implements [io.WriterTo] interface.
func (r *Reader) WriteTo(w io.Writer) (int64, error) {
	if r.off >= len(r.data) {
		return 0, nil
	}
	n, err := w.Write(r.data[r.off:])
	r.off += n
	return int64(n), err
}
