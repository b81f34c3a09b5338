// Package gzipenc builds single-member gzip containers from complete
// in-memory bodies, for use as HTTP "Content-Encoding: gzip" payloads.
//
// The container carries a fixed 10-byte header (flags 0, XFL 2, OS 255),
// the raw deflate stream and a CRC-32 trailer. The RFC 1952 ISIZE field is
// omitted unless [Encoder.Size] is set, so the default output is only
// readable by tolerant consumers and by [Decode].
package gzipenc

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"slices"
	"time"

	"github.com/klauspost/compress/zlib"
	"github.com/nfam/pool/buffer"
)

// DefaultLevel is the deflate level used when Encoder.Level is zero.
const DefaultLevel = 3

// A Clock supplies the modification time stamped into the header.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to the [Clock] interface.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads the wall clock.
var SystemClock Clock = ClockFunc(time.Now)

// FixedClock returns a [Clock] that always reports t.
func FixedClock(t time.Time) Clock {
	return ClockFunc(func() time.Time { return t })
}

// An Encoder builds gzip containers. The zero value is ready to use and
// encodes at [DefaultLevel] with the system clock.
//
// An Encoder is safe for concurrent use as long as its fields are not
// modified.
type Encoder struct {
	// Level is the deflate level, from 1 (fastest) to 9 (smallest).
	Level int

	// Clock stamps the modification time; nil means SystemClock.
	Clock Clock

	// Size appends the uncompressed size mod 2^32 after the CRC,
	// making the output a strict RFC 1952 member.
	Size bool
}

var defaultEncoder Encoder

// Encode returns the gzip container of p using the default [Encoder].
func Encode(p []byte) ([]byte, error) {
	return defaultEncoder.Encode(p)
}

// Encode returns the gzip container of p.
func (e *Encoder) Encode(p []byte) ([]byte, error) {
	return e.AppendEncode(nil, p)
}

// AppendEncode appends the gzip container of p to dst and returns the
// extended slice. On error dst is returned unchanged.
func (e *Encoder) AppendEncode(dst, p []byte) ([]byte, error) {
	b := buffer.Get()
	defer b.Close()

	if err := deflate(b, p, e.level()); err != nil {
		return dst, err
	}
	z := b.Bytes()
	if len(z) < zlib_header_len+zlib_trailer_len {
		return dst, fmt.Errorf("%w: short zlib stream (%d bytes)", ErrCompression, len(z))
	}
	raw := z[zlib_header_len : len(z)-zlib_trailer_len]

	n := gzip_header_len + len(raw) + gzip_crc_len
	if e.Size {
		n += gzip_isize_len
	}
	dst = slices.Grow(dst, n)

	dst = append(dst, gzip_header_prefix...)
	dst = binary.LittleEndian.AppendUint32(dst, e.mtime())
	dst = append(dst, gzip_header_suffix...)
	dst = append(dst, raw...)
	dst = binary.LittleEndian.AppendUint32(dst, crc32.ChecksumIEEE(p))
	if e.Size {
		dst = binary.LittleEndian.AppendUint32(dst, uint32(len(p)))
	}
	return dst, nil
}

func (e *Encoder) level() int {
	if e.Level == 0 {
		return DefaultLevel
	}
	return e.Level
}

// mtime truncates the clock reading to the 32-bit header field.
func (e *Encoder) mtime() uint32 {
	c := e.Clock
	if c == nil {
		c = SystemClock
	}
	return uint32(c.Now().Unix())
}

func deflate(b buffer.Buffer, p []byte, level int) error {
	if level < zlib.BestSpeed || level > zlib.BestCompression {
		return fmt.Errorf("%w: invalid level %d", ErrCompression, level)
	}
	zw, err := zlib.NewWriterLevel(b, level)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCompression, err)
	}
	if _, err := zw.Write(p); err != nil {
		return fmt.Errorf("%w: %w", ErrCompression, err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrCompression, err)
	}
	return nil
}
