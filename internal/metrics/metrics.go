// Package metrics holds the Prometheus collectors of the response
// encoding pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Skip reasons recorded by Collector.Skipped.
const (
	SkipStatus      = "status"
	SkipMethod      = "method"
	SkipSize        = "size"
	SkipContentType = "content_type"
	SkipEncoded     = "already_encoded"
	SkipFlush       = "flush"
)

// Collector counts what the compression middleware did with each response.
type Collector struct {
	encoded   *prometheus.CounterVec
	fallbacks *prometheus.CounterVec
	skipped   *prometheus.CounterVec
	bytesIn   *prometheus.CounterVec
	bytesOut  *prometheus.CounterVec
}

// NewCollector creates the collectors and registers them on reg.
// A nil reg leaves them unregistered.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		encoded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gzipenc",
				Subsystem: "http",
				Name:      "encoded_responses_total",
				Help:      "Responses sent with a Content-Encoding",
			},
			[]string{"encoding"},
		),
		fallbacks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gzipenc",
				Subsystem: "http",
				Name:      "fallback_responses_total",
				Help:      "Responses sent uncompressed after the encoder failed",
			},
			[]string{"encoding"},
		),
		skipped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gzipenc",
				Subsystem: "http",
				Name:      "skipped_responses_total",
				Help:      "Responses not considered for encoding",
			},
			[]string{"reason"},
		),
		bytesIn: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gzipenc",
				Subsystem: "http",
				Name:      "uncompressed_bytes_total",
				Help:      "Body bytes before encoding",
			},
			[]string{"encoding"},
		),
		bytesOut: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gzipenc",
				Subsystem: "http",
				Name:      "compressed_bytes_total",
				Help:      "Body bytes after encoding",
			},
			[]string{"encoding"},
		),
	}
	if reg != nil {
		reg.MustRegister(c.encoded, c.fallbacks, c.skipped, c.bytesIn, c.bytesOut)
	}
	return c
}

// Encoded records a response of in bytes sent as out bytes.
func (c *Collector) Encoded(encoding string, in, out int) {
	if c == nil {
		return
	}
	c.encoded.WithLabelValues(encoding).Inc()
	c.bytesIn.WithLabelValues(encoding).Add(float64(in))
	c.bytesOut.WithLabelValues(encoding).Add(float64(out))
}

// Fallback records a response sent uncompressed because encoding failed.
func (c *Collector) Fallback(encoding string) {
	if c == nil {
		return
	}
	c.fallbacks.WithLabelValues(encoding).Inc()
}

// Skipped records a response left alone for the given reason.
func (c *Collector) Skipped(reason string) {
	if c == nil {
		return
	}
	c.skipped.WithLabelValues(reason).Inc()
}
