package middleware

import (
	"bufio"
	"mime"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/nfam/gzipenc/internal/compression"
	"github.com/nfam/gzipenc/internal/metrics"
	"github.com/nfam/pool/buffer"
	"go.uber.org/zap"
)

// DefaultMinSize is the smallest body worth encoding.
const DefaultMinSize = 1024

// Options tunes CompressionMiddleware.
type Options struct {
	// MinSize is the smallest body, in bytes, that gets encoded.
	// Zero means DefaultMinSize; a negative value encodes everything.
	MinSize int
	Logger  *zap.Logger
	Metrics *metrics.Collector
}

// CompressResponseWriter holds back a response so its whole body can be
// encoded at once.
type CompressResponseWriter struct {
	http.ResponseWriter
	compressor compression.Compressor
	encoding   compression.CompressionType
	opts       *Options

	buf        buffer.Buffer
	statusCode int
	written    bool
	buffering  bool
}

func CompressionMiddleware(manager compression.Manager, opts Options) func(http.Handler) http.Handler {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.MinSize == 0 {
		opts.MinSize = DefaultMinSize
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !manager.Enabled() {
				next.ServeHTTP(w, r)
				return
			}
			// identity responses vary too, or caches hand them to gzip clients
			w.Header().Add("Vary", "Accept-Encoding")

			compressor, encoding := manager.SelectCompressor(r.Header.Get("Accept-Encoding"))
			if compressor == nil {
				next.ServeHTTP(w, r)
				return
			}

			// HEAD responses have no body to encode
			if r.Method == http.MethodHead {
				opts.Metrics.Skipped(metrics.SkipMethod)
				next.ServeHTTP(w, r)
				return
			}

			cw := &CompressResponseWriter{
				ResponseWriter: w,
				compressor:     compressor,
				encoding:       encoding,
				opts:           &opts,
			}
			defer cw.finish()

			next.ServeHTTP(cw, r)
		})
	}
}

func (cw *CompressResponseWriter) WriteHeader(statusCode int) {
	if cw.written {
		return
	}

	cw.statusCode = statusCode
	cw.written = true

	switch {
	case !shouldCompressForStatus(statusCode):
		cw.opts.Metrics.Skipped(metrics.SkipStatus)
	case cw.Header().Get("Content-Encoding") != "":
		cw.opts.Metrics.Skipped(metrics.SkipEncoded)
	case !shouldCompressType(cw.Header().Get("Content-Type")):
		cw.opts.Metrics.Skipped(metrics.SkipContentType)
	default:
		// decided in finish, once the body is complete
		cw.buffering = true
		cw.buf = buffer.Get()
		return
	}
	cw.ResponseWriter.WriteHeader(statusCode)
}

func (cw *CompressResponseWriter) Write(b []byte) (int, error) {
	if !cw.written {
		cw.WriteHeader(http.StatusOK)
	}

	if !cw.buffering {
		return cw.ResponseWriter.Write(b)
	}
	return cw.buf.Write(b)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (cw *CompressResponseWriter) Unwrap() http.ResponseWriter {
	return cw.ResponseWriter
}

// Flush gives up on encoding: whatever is buffered goes out as the identity
// body and later writes pass straight through.
func (cw *CompressResponseWriter) Flush() {
	if !cw.written {
		cw.WriteHeader(http.StatusOK)
	}
	if cw.buffering {
		cw.buffering = false
		cw.opts.Metrics.Skipped(metrics.SkipFlush)
		cw.ResponseWriter.WriteHeader(cw.statusCode)
		if _, err := cw.ResponseWriter.Write(cw.buf.Bytes()); err != nil {
			cw.opts.Logger.Debug("Response write failed", zap.Error(err))
		}
		cw.buf.Close()
	}
	if f, ok := cw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Implements http.Hijacker.
func (cw *CompressResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if hj, ok := cw.ResponseWriter.(http.Hijacker); ok {
		return hj.Hijack()
	}
	return nil, nil, http.ErrNotSupported
}

func (cw *CompressResponseWriter) finish() {
	if !cw.buffering {
		return
	}
	defer cw.buf.Close()

	body := cw.buf.Bytes()
	h := cw.Header()
	if h.Get("Content-Type") == "" {
		h.Set("Content-Type", http.DetectContentType(body))
		if !shouldCompressType(h.Get("Content-Type")) {
			cw.opts.Metrics.Skipped(metrics.SkipContentType)
			cw.send(body)
			return
		}
	}

	if len(body) < cw.opts.MinSize {
		cw.opts.Metrics.Skipped(metrics.SkipSize)
		cw.send(body)
		return
	}

	out, err := cw.compressor.Encode(body)
	if err != nil {
		cw.opts.Logger.Warn("Response encoding failed, sending identity body",
			zap.String("encoding", string(cw.encoding)),
			zap.Int("size", len(body)),
			zap.Error(err),
		)
		cw.opts.Metrics.Fallback(string(cw.encoding))
		cw.send(body)
		return
	}

	h.Set("Content-Encoding", string(cw.encoding))
	cw.opts.Metrics.Encoded(string(cw.encoding), len(body), len(out))
	cw.opts.Logger.Debug("Response encoded",
		zap.String("encoding", string(cw.encoding)),
		zap.Int("size", len(body)),
		zap.Int("encoded_size", len(out)),
	)
	cw.send(out)
}

func (cw *CompressResponseWriter) send(body []byte) {
	cw.Header().Set("Content-Length", strconv.Itoa(len(body)))
	cw.ResponseWriter.WriteHeader(cw.statusCode)
	if _, err := cw.ResponseWriter.Write(body); err != nil {
		cw.opts.Logger.Debug("Response write failed", zap.Error(err))
	}
}

// Only successful responses with a full body are encoded.
func shouldCompressForStatus(status int) bool {
	return status == http.StatusOK ||
		status == http.StatusCreated ||
		status == http.StatusAccepted ||
		status == http.StatusNonAuthoritativeInfo
}

// An empty content type is undecided until the body can be sniffed.
func shouldCompressType(contentType string) bool {
	if contentType == "" {
		return true
	}
	mimeType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}

	compressibleTypes := []string{
		"text/",
		"application/javascript",
		"application/json",
		"application/xml",
		"application/x-yaml",
		"image/svg+xml",
	}

	for _, prefix := range compressibleTypes {
		if strings.HasPrefix(mimeType, prefix) {
			return true
		}
	}

	return false
}
