package compression

import (
	"github.com/nfam/gzipenc"
)

type GzipCompressor struct {
	enc gzipenc.Encoder
}

func NewGzipCompressor(cfg GzipConfig) *GzipCompressor {
	level := cfg.Level
	if level < 1 || level > 9 {
		level = gzipenc.DefaultLevel
	}
	return &GzipCompressor{enc: gzipenc.Encoder{Level: level, Size: cfg.Size}}
}

func (g *GzipCompressor) Encode(p []byte) ([]byte, error) {
	return g.enc.Encode(p)
}
