package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"routinely/internal/config"
	"routinely/internal/metrics"
)

// maxBodySize caps accepted request bodies at 1 MiB.
const maxBodySize = 1 << 20

// slowRequestThreshold is the duration above which relayed requests are
// logged at WARN level.
const slowRequestThreshold = 10 * time.Second

// NewProvider builds the provider selected by the gateway configuration.
func NewProvider(ctx context.Context, cfg config.GatewayConfig) (Provider, error) {
	switch cfg.Provider {
	case "local":
		return newLocalProvider(cfg.OllamaHost, cfg.OllamaModel)

	case "bedrock":
		return newBedrockProvider(ctx, cfg.AWSRegion, cfg.DefaultModel)

	case "custom":
		if cfg.UpstreamURL == "" {
			return nil, fmt.Errorf("custom provider requires GATEWAY_UPSTREAM_URL")
		}
		return newPassthroughProvider("custom", endpoint{
			URL:   cfg.UpstreamURL,
			Model: cfg.DefaultModel,
		}, cfg.APIKey), nil

	default:
		endpoints, err := loadEndpoints(cfg.ProvidersFile)
		if err != nil {
			return nil, err
		}
		ep, ok := endpoints[cfg.Provider]
		if !ok {
			return nil, fmt.Errorf("unknown provider: %s", cfg.Provider)
		}
		if cfg.DefaultModel != "" {
			ep.Model = cfg.DefaultModel
		}
		return newPassthroughProvider(cfg.Provider, ep, cfg.APIKey), nil
	}
}

// Server is the HTTP surface of the gateway: the relay endpoint at /,
// plus health and stats endpoints.
type Server struct {
	provider  Provider
	logger    *slog.Logger
	collector *metrics.Collector
}

// NewServer creates a gateway server around the given provider.
func NewServer(provider Provider, logger *slog.Logger, collector *metrics.Collector) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if collector == nil {
		collector = metrics.NewCollector()
	}
	return &Server{
		provider:  provider,
		logger:    logger,
		collector: collector,
	}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleRelay)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/stats", s.handleStats)
	return mux
}

// writeCORS sets the cross-origin headers every relay response carries,
// preflight included.
func writeCORS(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Content-Type")
	h.Set("Access-Control-Max-Age", "86400")
}

// writeError sends a JSON error document with the relay's CORS headers
// already set.
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func (s *Server) handleRelay(w http.ResponseWriter, r *http.Request) {
	writeCORS(w)

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if r.Method != http.MethodPost {
		s.collector.RecordError(metrics.OpRejected, 0)
		writeError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
		return
	}

	requestID := uuid.NewString()
	start := time.Now()

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		s.collector.RecordError(metrics.OpRejected, time.Since(start))
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	var payload struct {
		Messages json.RawMessage `json:"messages"`
		Model    string          `json:"model"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		s.logger.Debug("rejected request", "request_id", requestID, "reason", "invalid json")
		s.collector.RecordError(metrics.OpRejected, time.Since(start))
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	if !validMessagesArray(payload.Messages) {
		s.logger.Debug("rejected request", "request_id", requestID, "reason", "invalid messages array")
		s.collector.RecordError(metrics.OpRejected, time.Since(start))
		writeError(w, http.StatusBadRequest, "Missing or invalid messages array")
		return
	}

	resp, err := s.provider.Complete(r.Context(), &Request{
		Messages: payload.Messages,
		Model:    payload.Model,
	})
	duration := time.Since(start)

	if err != nil {
		s.collector.RecordError(metrics.OpRelay, duration)

		var cfgErr *ConfigError
		if errors.As(err, &cfgErr) {
			s.logger.Error("provider misconfigured", "request_id", requestID, "provider", s.provider.Name(), "error", cfgErr.Reason)
			writeError(w, http.StatusInternalServerError, "Server misconfigured: "+cfgErr.Reason)
			return
		}

		s.logger.Error("upstream request failed", "request_id", requestID, "provider", s.provider.Name(), "duration_ms", duration.Milliseconds(), "error", err)
		writeError(w, http.StatusBadGateway, fmt.Sprintf("Request to %s failed", s.provider.Name()))
		return
	}

	s.collector.RecordTiming(metrics.OpRelay, duration)

	attrs := []any{
		"request_id", requestID,
		"provider", s.provider.Name(),
		"status", resp.Status,
		"duration_ms", duration.Milliseconds(),
	}
	if duration > slowRequestThreshold {
		s.logger.Warn("slow relay", attrs...)
	} else {
		s.logger.Debug("relay completed", attrs...)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.Status)
	w.Write(resp.Body)
}

// validMessagesArray reports whether the raw messages field is a JSON
// array with at least one element. Element contents are not inspected;
// relaying them untouched is the provider's job.
func validMessagesArray(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return false
	}
	var elements []json.RawMessage
	if err := json.Unmarshal(raw, &elements); err != nil {
		return false
	}
	return len(elements) > 0
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "ok")
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.collector.Snapshot()); err != nil {
		s.logger.Error("failed to encode stats", "error", err)
	}
}
