package gzipenc

import "errors"

var (
	// ErrCompression reports that the deflate step failed.
	ErrCompression = errors.New("gzipenc: compression failed")
	// ErrHeader reports an invalid or unsupported container header.
	ErrHeader = errors.New("gzipenc: invalid header")
	// ErrChecksum reports a CRC-32 mismatch with the decoded data.
	ErrChecksum = errors.New("gzipenc: invalid checksum")
	// ErrTrailer reports a trailer that is neither CRC nor CRC+ISIZE.
	ErrTrailer = errors.New("gzipenc: invalid trailer")
)

// Header fields, RFC 1952 section 2.3.
//
//	+---+---+---+---+---+---+---+---+---+---+
//	|ID1|ID2|CM |FLG|     MTIME     |XFL|OS |
//	+---+---+---+---+---+---+---+---+---+---+
var (
	gzip_header_prefix     = []byte{0x1f, 0x8b, 0x08, 0x00}
	gzip_header_prefix_len = len(gzip_header_prefix)
	gzip_header_suffix     = []byte{0x02, 0xff}
	gzip_header_len        = gzip_header_prefix_len + 4 + len(gzip_header_suffix)
)

const (
	gzip_crc_len   = 4
	gzip_isize_len = 4

	// zlib wraps a raw deflate stream in a 2-byte CMF/FLG header
	// (no preset dictionary) and a 4-byte Adler-32 trailer.
	zlib_header_len  = 2
	zlib_trailer_len = 4
)
