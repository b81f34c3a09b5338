package compression

import (
	"strconv"
	"strings"
)

type compressionManager struct {
	gzip   Compressor
	brotli Compressor
	config Config
}

// NewManager builds a Manager from config.
func NewManager(config Config) Manager {
	m := &compressionManager{
		config: config,
	}

	if config.Gzip.Enabled {
		m.gzip = NewGzipCompressor(config.Gzip)
	}

	if config.Brotli.Enabled {
		m.brotli = NewBrotliCompressor(config.Brotli.Level)
	}

	return m
}

// SelectCompressor implements Manager.
func (m *compressionManager) SelectCompressor(acceptEncoding string) (Compressor, CompressionType) {
	accepted := parseAcceptEncoding(acceptEncoding)

	// brotli first
	if m.brotli != nil && accepts(accepted, CompressionBrotli) {
		return m.brotli, CompressionBrotli
	}

	if m.gzip != nil && accepts(accepted, CompressionGzip) {
		return m.gzip, CompressionGzip
	}

	return nil, ""
}

// Enabled implements Manager.
func (m *compressionManager) Enabled() bool {
	return m.gzip != nil || m.brotli != nil
}

// parseAcceptEncoding maps each coding in an Accept-Encoding header to its
// q-value. Malformed q-values count as 1.
func parseAcceptEncoding(header string) map[string]float64 {
	accepted := make(map[string]float64)
	for _, part := range strings.Split(header, ",") {
		coding, params, _ := strings.Cut(part, ";")
		coding = strings.ToLower(strings.TrimSpace(coding))
		if coding == "" {
			continue
		}
		q := 1.0
		for _, param := range strings.Split(params, ";") {
			k, v, ok := strings.Cut(strings.TrimSpace(param), "=")
			if !ok || !strings.EqualFold(strings.TrimSpace(k), "q") {
				continue
			}
			if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
				q = f
			}
		}
		accepted[coding] = q
	}
	return accepted
}

func accepts(accepted map[string]float64, t CompressionType) bool {
	if q, ok := accepted[string(t)]; ok {
		return q > 0
	}
	if t == CompressionGzip {
		if q, ok := accepted["x-gzip"]; ok {
			return q > 0
		}
	}
	if q, ok := accepted["*"]; ok {
		return q > 0
	}
	return false
}
