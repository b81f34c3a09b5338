package main

import (
	"bytes"
	"encoding/binary"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nfam/gzipenc"
	"github.com/nfam/gzipenc/internal/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func run(t *testing.T, stdin []byte, args ...string) ([]byte, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetIn(bytes.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.Bytes(), err
}

func TestEncodeDecode(t *testing.T) {
	body := []byte(strings.Repeat("hello world\n", 100))

	encoded, err := run(t, body, "encode", "--mtime", "1234", "--level", "9")
	require.NoError(t, err)
	assert.Equal(t, uint32(1234), binary.LittleEndian.Uint32(encoded[4:8]))

	decoded, err := run(t, encoded, "decode")
	require.NoError(t, err)
	assert.Equal(t, body, decoded)

	path := filepath.Join(t.TempDir(), "body.gz")
	require.NoError(t, os.WriteFile(path, encoded, 0644))
	decoded, err = run(t, nil, "decode", path)
	require.NoError(t, err)
	assert.Equal(t, body, decoded)
}

func TestEncodeSize(t *testing.T) {
	encoded, err := run(t, []byte("hello world"), "encode", "--size")
	require.NoError(t, err)
	assert.Equal(t, uint32(11), binary.LittleEndian.Uint32(encoded[len(encoded)-4:]))
}

func TestEncodeInvalidLevel(t *testing.T) {
	out, err := run(t, []byte("data"), "encode", "--level", "12")
	assert.ErrorIs(t, err, gzipenc.ErrCompression)
	assert.Empty(t, out)
}

func TestDecodeInvalid(t *testing.T) {
	_, err := run(t, []byte("not gzip at all"), "decode")
	assert.ErrorIs(t, err, gzipenc.ErrHeader)
}

func TestHandler(t *testing.T) {
	dir := t.TempDir()
	page := strings.Repeat("<p>static page</p>\n", 200)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "page.html"), []byte(page), 0644))

	cfg := config.Default()
	cfg.Root = dir
	srv := httptest.NewServer(newHandler(cfg, zap.NewNop(), prometheus.NewRegistry()))
	defer srv.Close()

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/page.html", nil)
	require.NoError(t, err)
	req.Header.Set("Accept-Encoding", "gzip")
	resp, err := http.DefaultTransport.RoundTrip(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "gzip", resp.Header.Get("Content-Encoding"))
	var b bytes.Buffer
	_, err = b.ReadFrom(resp.Body)
	require.NoError(t, err)
	data, err := gzipenc.Decode(b.Bytes())
	require.NoError(t, err)
	assert.Equal(t, page, string(data))

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	b.Reset()
	_, err = b.ReadFrom(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, b.String(), `gzipenc_http_encoded_responses_total{encoding="gzip"} 1`)
}
