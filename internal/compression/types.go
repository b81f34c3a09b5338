package compression

// Compressor encodes a complete response body.
type Compressor interface {
	Encode(p []byte) ([]byte, error)
}

// CompressionType is a Content-Encoding token.
type CompressionType string

const (
	CompressionGzip   CompressionType = "gzip"
	CompressionBrotli CompressionType = "br"
)

// Config selects and tunes the available compressors.
type Config struct {
	Gzip   GzipConfig       `json:"Gzip"`
	Brotli CompressorConfig `json:"Brotli"`
}

// CompressorConfig is the configuration of a single compressor.
type CompressorConfig struct {
	Enabled bool `json:"Enabled"`
	Level   int  `json:"Level"`
}

// GzipConfig adds the optional ISIZE trailer to CompressorConfig.
type GzipConfig struct {
	Enabled bool `json:"Enabled"`
	Level   int  `json:"Level"`
	Size    bool `json:"Size"`
}

// Manager picks a compressor for a request.
type Manager interface {
	// SelectCompressor returns the preferred compressor acceptable to
	// the given Accept-Encoding header, or nil if none is.
	SelectCompressor(acceptEncoding string) (Compressor, CompressionType)

	// Enabled reports whether any compressor is configured.
	Enabled() bool
}
