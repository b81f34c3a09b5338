package config

type Config struct {
	Addr        string            `json:"Addr"` // listen address of serve
	Root        string            `json:"Root"` // directory served by serve
	Compression CompressionConfig `json:"Compression"`
	Log         LogConfig         `json:"Log"`
}

type CompressionConfig struct {
	Gzip    GzipConfig       `json:"Gzip"`
	Brotli  CompressorConfig `json:"Brotli"`
	MinSize int              `json:"MinSize"` // smallest body worth encoding
}

type CompressorConfig struct {
	Enabled bool `json:"Enabled"`
	Level   int  `json:"Level"`
}

type GzipConfig struct {
	Enabled bool `json:"Enabled"`
	Level   int  `json:"Level"`
	Size    bool `json:"Size"` // append the RFC 1952 ISIZE field
}

type LogConfig struct {
	Level      string `json:"Level"`      // debug, info, warn, error
	Console    bool   `json:"Console"`    // human readable output instead of JSON
	FilePath   string `json:"FilePath"`   // empty means stderr
	MaxSize    int    `json:"MaxSize"`    // MB per file before rotation
	MaxBackups int    `json:"MaxBackups"` // rotated files kept
	MaxAge     int    `json:"MaxAge"`     // days rotated files are kept
	Compress   bool   `json:"Compress"`   // gzip rotated files
}
