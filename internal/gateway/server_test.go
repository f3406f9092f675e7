package gateway_test

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"routinely/internal/gateway"
	"routinely/internal/metrics"
)

// testLogger creates a logger that writes to stderr for test visibility.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// stubProvider returns a scripted response or error.
type stubProvider struct {
	resp    *gateway.Response
	err     error
	lastReq *gateway.Request
}

func (p *stubProvider) Name() string { return "stub" }

func (p *stubProvider) Complete(ctx context.Context, req *gateway.Request) (*gateway.Response, error) {
	p.lastReq = req
	if p.err != nil {
		return nil, p.err
	}
	return p.resp, nil
}

func newTestHandler(p gateway.Provider) http.Handler {
	return gateway.NewServer(p, testLogger(), metrics.NewCollector()).Handler()
}

func postRelay(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var doc map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	return doc["error"]
}

func okProvider(body string) *stubProvider {
	return &stubProvider{resp: &gateway.Response{Status: http.StatusOK, Body: []byte(body)}}
}

func TestRelayCORSHeaders(t *testing.T) {
	h := newTestHandler(okProvider(`{}`))

	rec := postRelay(t, h, `{"messages":[{"role":"user","content":"hi"}]}`)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "POST, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Content-Type", rec.Header().Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "86400", rec.Header().Get("Access-Control-Max-Age"))
}

func TestRelayPreflight(t *testing.T) {
	h := newTestHandler(okProvider(`{}`))

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String(), "preflight response has no body")
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRelayMethodNotAllowed(t *testing.T) {
	h := newTestHandler(okProvider(`{}`))

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		t.Run(method, func(t *testing.T) {
			req := httptest.NewRequest(method, "/", nil)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
			assert.Equal(t, "Method Not Allowed", decodeError(t, rec))
			assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestRelayInvalidJSON(t *testing.T) {
	h := newTestHandler(okProvider(`{}`))

	rec := postRelay(t, h, `{not json`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid JSON body", decodeError(t, rec))
}

func TestRelayInvalidMessages(t *testing.T) {
	cases := map[string]string{
		"missing":     `{"model":"gpt-4o"}`,
		"empty array": `{"messages":[]}`,
		"not array":   `{"messages":"hello"}`,
		"null":        `{"messages":null}`,
	}

	h := newTestHandler(okProvider(`{}`))
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rec := postRelay(t, h, body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "Missing or invalid messages array", decodeError(t, rec))
		})
	}
}

func TestRelayPassesThroughStatusAndBody(t *testing.T) {
	upstream := `{"choices":[{"message":{"role":"assistant","content":"hi"}}],"usage":{"total_tokens":12}}`
	p := okProvider(upstream)
	h := newTestHandler(p)

	rec := postRelay(t, h, `{"messages":[{"role":"user","content":"hi"}],"model":"gpt-4o-mini"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, upstream, rec.Body.String(), "upstream body is relayed verbatim")
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	require.NotNil(t, p.lastReq)
	assert.Equal(t, "gpt-4o-mini", p.lastReq.Model)
	assert.JSONEq(t, `[{"role":"user","content":"hi"}]`, string(p.lastReq.Messages))
}

func TestRelayPassesThroughUpstreamError(t *testing.T) {
	p := &stubProvider{resp: &gateway.Response{
		Status: http.StatusTooManyRequests,
		Body:   []byte(`{"error":{"message":"rate limited"}}`),
	}}
	h := newTestHandler(p)

	rec := postRelay(t, h, `{"messages":[{"role":"user","content":"hi"}]}`)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "rate limited")
}

func TestRelayUpstreamFailure(t *testing.T) {
	p := &stubProvider{err: fmt.Errorf("dial tcp: connection refused")}
	h := newTestHandler(p)

	rec := postRelay(t, h, `{"messages":[{"role":"user","content":"hi"}]}`)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "Request to stub failed", decodeError(t, rec))
}

func TestRelayMisconfiguredProvider(t *testing.T) {
	p := &stubProvider{err: &gateway.ConfigError{Reason: "missing API key"}}
	h := newTestHandler(p)

	rec := postRelay(t, h, `{"messages":[{"role":"user","content":"hi"}]}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Server misconfigured: missing API key", decodeError(t, rec))
}

func TestHealthz(t *testing.T) {
	h := newTestHandler(okProvider(`{}`))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok\n", rec.Body.String())
}

func TestStats(t *testing.T) {
	h := newTestHandler(okProvider(`{}`))

	// One successful relay and one rejected request
	postRelay(t, h, `{"messages":[{"role":"user","content":"hi"}]}`)
	postRelay(t, h, `{not json`)

	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var snap metrics.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	require.NotNil(t, snap.Relay)
	assert.Equal(t, int64(1), snap.Relay.Count)
	require.NotNil(t, snap.Rejected)
	assert.Equal(t, int64(1), snap.Rejected.Count)
}
