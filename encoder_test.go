package gzipenc

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	pgzip "github.com/nfam/pool/gzip"
)

var encodeSamples = [][]byte{
	{},
	[]byte("a"),
	[]byte("hello world"),
	[]byte(strings.Repeat("The quick brown fox jumps over the lazy dog. ", 500)),
	bytes.Repeat([]byte{0x00, 0xff, 0x7f}, 40000),
}

func rawInflate(p []byte) ([]byte, error) {
	r := flate.NewReader(bytes.NewReader(p))
	defer r.Close()
	return io.ReadAll(r)
}

func TestEncodeHeader(t *testing.T) {
	enc := Encoder{Clock: FixedClock(time.Unix(0x01020304, 0))}
	for _, p := range encodeSamples {
		out, err := enc.Encode(p)
		if err != nil {
			t.Error(err)
			return
		}
		want := []byte{0x1f, 0x8b, 0x08, 0x00, 0x04, 0x03, 0x02, 0x01, 0x02, 0xff}
		if !bytes.Equal(out[:10], want) {
			t.Errorf("header % x, want % x", out[:10], want)
		}
	}
}

func TestEncodeChecksumAndRoundTrip(t *testing.T) {
	for _, p := range encodeSamples {
		out, err := Encode(p)
		if err != nil {
			t.Error(err)
			return
		}
		if len(out) < gzip_header_len+gzip_crc_len {
			t.Errorf("container too short: %d bytes", len(out))
			continue
		}
		crc := binary.LittleEndian.Uint32(out[len(out)-4:])
		if crc != crc32.ChecksumIEEE(p) {
			t.Errorf("crc %08x, want %08x", crc, crc32.ChecksumIEEE(p))
		}
		data, err := rawInflate(out[gzip_header_len : len(out)-gzip_crc_len])
		if err != nil {
			t.Error(err)
			continue
		}
		if !bytes.Equal(data, p) {
			t.Errorf("round trip of %d bytes returned %d bytes", len(p), len(data))
		}
	}
}

func TestEncodeHelloWorld(t *testing.T) {
	out, err := Encode([]byte("hello world"))
	if err != nil {
		t.Error(err)
		return
	}
	if trailer := out[len(out)-4:]; !bytes.Equal(trailer, []byte{0x85, 0x11, 0x4a, 0x0d}) {
		t.Errorf("trailer % x", trailer)
	}
	data, err := rawInflate(out[gzip_header_len : len(out)-gzip_crc_len])
	if err != nil {
		t.Error(err)
		return
	}
	if string(data) != "hello world" {
		t.Errorf("got %q", data)
	}
}

func TestEncodeEmpty(t *testing.T) {
	out, err := Encode(nil)
	if err != nil {
		t.Error(err)
		return
	}
	if trailer := out[len(out)-4:]; !bytes.Equal(trailer, []byte{0, 0, 0, 0}) {
		t.Errorf("trailer % x", trailer)
	}
	data, err := rawInflate(out[gzip_header_len : len(out)-gzip_crc_len])
	if err != nil {
		t.Error(err)
		return
	}
	if len(data) != 0 {
		t.Errorf("got %d bytes", len(data))
	}
}

func TestEncodeOnlyTimestampVaries(t *testing.T) {
	p := encodeSamples[3]
	a, err := (&Encoder{Clock: FixedClock(time.Unix(1000, 0))}).Encode(p)
	if err != nil {
		t.Error(err)
		return
	}
	b, err := (&Encoder{Clock: FixedClock(time.Unix(2000000, 0))}).Encode(p)
	if err != nil {
		t.Error(err)
		return
	}
	if len(a) != len(b) {
		t.Errorf("length %d != %d", len(a), len(b))
		return
	}
	for i := range a {
		if a[i] != b[i] && (i < 4 || i > 7) {
			t.Errorf("byte %d differs", i)
		}
	}
	if bytes.Equal(a[4:8], b[4:8]) {
		t.Error("mtime did not change")
	}
}

func TestEncodeTimestampTruncated(t *testing.T) {
	ts := int64(1)<<32 + 5
	out, err := (&Encoder{Clock: FixedClock(time.Unix(ts, 0))}).Encode([]byte("x"))
	if err != nil {
		t.Error(err)
		return
	}
	if got := binary.LittleEndian.Uint32(out[4:8]); got != 5 {
		t.Errorf("mtime %d, want 5", got)
	}
}

func TestEncodeSystemClock(t *testing.T) {
	before := uint32(time.Now().Unix())
	out, err := Encode([]byte("x"))
	if err != nil {
		t.Error(err)
		return
	}
	after := uint32(time.Now().Unix())
	if got := binary.LittleEndian.Uint32(out[4:8]); got < before || got > after {
		t.Errorf("mtime %d outside [%d, %d]", got, before, after)
	}
}

func TestEncodeLevels(t *testing.T) {
	p := encodeSamples[3]
	for level := 1; level <= 9; level++ {
		out, err := (&Encoder{Level: level}).Encode(p)
		if err != nil {
			t.Errorf("level %d: %v", level, err)
			continue
		}
		data, err := rawInflate(out[gzip_header_len : len(out)-gzip_crc_len])
		if err != nil || !bytes.Equal(data, p) {
			t.Errorf("level %d: round trip failed: %v", level, err)
		}
	}
}

func TestEncodeInvalidLevel(t *testing.T) {
	dst := []byte("keep")
	for _, level := range []int{-3, 10} {
		out, err := (&Encoder{Level: level}).AppendEncode(dst, []byte("data"))
		if !errors.Is(err, ErrCompression) {
			t.Errorf("level %d: err %v, want ErrCompression", level, err)
		}
		if string(out) != "keep" {
			t.Errorf("level %d: dst modified to %q", level, out)
		}
	}
}

func TestAppendEncode(t *testing.T) {
	prefix := []byte("prefix")
	out, err := (&Encoder{}).AppendEncode(prefix, []byte("hello world"))
	if err != nil {
		t.Error(err)
		return
	}
	if !bytes.HasPrefix(out, []byte("prefix")) {
		t.Error("prefix lost")
	}
	data, err := Decode(out[len(prefix):])
	if err != nil {
		t.Error(err)
		return
	}
	if string(data) != "hello world" {
		t.Errorf("got %q", data)
	}
}

func TestEncodeSizeTrailer(t *testing.T) {
	enc := Encoder{Size: true}
	for _, p := range encodeSamples {
		out, err := enc.Encode(p)
		if err != nil {
			t.Error(err)
			return
		}
		if got := binary.LittleEndian.Uint32(out[len(out)-4:]); got != uint32(len(p)) {
			t.Errorf("isize %d, want %d", got, len(p))
		}

		// strict readers accept the member once ISIZE is present
		zr, err := gzip.NewReader(bytes.NewReader(out))
		if err != nil {
			t.Error(err)
			return
		}
		data, err := io.ReadAll(zr)
		if err != nil {
			t.Error(err)
			return
		}
		if !bytes.Equal(data, p) {
			t.Error("compress/gzip round trip incorrect")
		}

		pr, err := pgzip.NewReader(bytes.NewReader(out))
		if err != nil {
			t.Error(err)
			return
		}
		data, err = io.ReadAll(pr)
		pr.Close()
		if err != nil {
			t.Error(err)
			return
		}
		if !bytes.Equal(data, p) {
			t.Error("pooled gzip round trip incorrect")
		}
	}
}

func TestEncodeShortTrailerRejectedByStrictReader(t *testing.T) {
	out, err := Encode([]byte("hello world"))
	if err != nil {
		t.Error(err)
		return
	}
	zr, err := gzip.NewReader(bytes.NewReader(out))
	if err != nil {
		t.Error(err)
		return
	}
	if _, err := io.ReadAll(zr); err == nil {
		t.Error("expected strict reader to reject missing ISIZE")
	}
}

func TestEncodeConcurrent(t *testing.T) {
	enc := Encoder{Clock: FixedClock(time.Unix(42, 0))}
	want, err := enc.Encode(encodeSamples[3])
	if err != nil {
		t.Error(err)
		return
	}

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := enc.Encode(encodeSamples[3])
			if err != nil {
				errs <- err
				return
			}
			if !bytes.Equal(got, want) {
				errs <- errors.New("concurrent encode differs")
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}
