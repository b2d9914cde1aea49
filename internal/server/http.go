package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/monicazzy516/desk-ai/internal/audio"
	"github.com/monicazzy516/desk-ai/internal/config"
	"github.com/monicazzy516/desk-ai/internal/metrics"
	"github.com/monicazzy516/desk-ai/internal/pipeline"
	"github.com/monicazzy516/desk-ai/internal/protocol"
)

// MaxUploadBytes bounds the raw PCM request body.
const MaxUploadBytes = 32 << 20

// HTTPServer serves the device-facing API
type HTTPServer struct {
	server   *http.Server
	logger   *slog.Logger
	config   *config.Config
	pipeline *pipeline.Pipeline
	metrics  *metrics.Metrics

	startTime time.Time
}

// NewHTTPServer creates the HTTP server with all routes configured
func NewHTTPServer(cfg config.ServerConfig, logger *slog.Logger,
	appConfig *config.Config, p *pipeline.Pipeline, m *metrics.Metrics) *HTTPServer {

	h := &HTTPServer{
		logger:    logger,
		config:    appConfig,
		pipeline:  p,
		metrics:   m,
		startTime: time.Now(),
	}

	mux := http.NewServeMux()
	h.setupRoutes(mux)

	h.server = &http.Server{
		Addr:        fmt.Sprintf("%s:%d", cfg.Address, cfg.Port),
		Handler:     mux,
		ReadTimeout: 60 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	return h
}

// setupRoutes configures HTTP API routes
func (h *HTTPServer) setupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/upload", h.withMetrics("/upload", h.handleUpload))
	mux.HandleFunc("/chat", h.withMetrics("/chat", h.handleChat))
	mux.HandleFunc("/health", h.withMetrics("/health", h.handleHealth))
	mux.Handle("/metrics", promhttp.Handler())
}

// withMetrics wraps an HTTP handler with metrics collection
func (h *HTTPServer) withMetrics(endpoint string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		startTime := time.Now()

		ww := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		handler(ww, r)

		status := strconv.Itoa(ww.statusCode)
		h.metrics.RecordHTTPRequest(endpoint, r.Method, status, time.Since(startTime))
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Start starts the HTTP server
func (h *HTTPServer) Start() error {
	h.logger.Info("Starting HTTP server",
		slog.String("address", h.server.Addr),
	)

	go func() {
		if err := h.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			h.logger.Error("HTTP server error", slog.String("error", err.Error()))
		}
	}()

	return nil
}

// Stop gracefully stops the HTTP server
func (h *HTTPServer) Stop(ctx context.Context) error {
	h.logger.Info("Stopping HTTP server...")

	return h.server.Shutdown(ctx)
}

// Handler returns the configured route handler, used by tests.
func (h *HTTPServer) Handler() http.Handler {
	return h.server.Handler
}

// handleUpload implements the POST /upload endpoint: a raw 16-bit PCM
// body, format declared via X-Sample-Rate, X-Channels and X-Format
// headers, processed through the full pipeline.
func (h *HTTPServer) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxUploadBytes))
	if err != nil {
		h.logger.Warn("Failed to read upload body", slog.String("error", err.Error()))
		h.writeError(w, http.StatusBadRequest, "body")
		return
	}

	format := protocol.ParseCaptureFormat(r.Header)
	if format.Format != protocol.DefaultFormat {
		// Log-only mismatch, the bytes are processed as pcm16 regardless
		h.logger.Warn("Unexpected capture format tag",
			slog.String("format", format.Format),
		)
	}

	capture := audio.Capture{
		PCM:        body,
		SampleRate: format.SampleRate,
		Channels:   format.Channels,
		Format:     format.Format,
	}

	result, err := h.pipeline.Process(r.Context(), capture)
	if err != nil {
		if errors.Is(err, pipeline.ErrEmptyCapture) {
			h.writeError(w, http.StatusBadRequest, "empty")
			return
		}

		h.logger.Error("Pipeline failed", slog.String("error", err.Error()))
		h.writeError(w, http.StatusInternalServerError, "internal")
		return
	}

	meta := protocol.ResponseMeta{
		OK:        true,
		UserText:  result.UserText,
		ReplyText: result.ReplyText,
	}

	if result.Synthesized {
		meta.SampleRate = result.SampleRate

		frame, err := protocol.EncodeFrame(meta, result.Audio)
		if err != nil {
			h.logger.Error("Failed to encode response frame", slog.String("error", err.Error()))
			h.writeError(w, http.StatusInternalServerError, "internal")
			return
		}

		w.Header().Set("Content-Type", "application/octet-stream")
		w.Header().Set("Content-Length", strconv.Itoa(len(frame)))
		w.Write(frame)
		return
	}

	h.writeJSON(w, http.StatusOK, meta)
}

// handleChat implements the POST /chat echo endpoint used by device
// firmware to verify connectivity.
func (h *HTTPServer) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxUploadBytes))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "body")
		return
	}

	h.writeJSON(w, http.StatusOK, struct {
		Reply   string `json:"reply"`
		EchoLen int    `json:"echo_len"`
	}{
		Reply:   "ok",
		EchoLen: len(body),
	})
}

// handleHealth implements the GET /health endpoint
func (h *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	health := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"uptime":    time.Since(h.startTime).String(),
		"service": map[string]interface{}{
			"name":    "desk-ai",
			"version": "1.0.0",
		},
		"synthesis": map[string]interface{}{
			"enabled": h.config.Synthesis.Enabled,
		},
	}

	h.writeJSON(w, http.StatusOK, health)
}

func (h *HTTPServer) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("Failed to write JSON response", slog.String("error", err.Error()))
	}
}

func (h *HTTPServer) writeError(w http.ResponseWriter, status int, reason string) {
	h.writeJSON(w, status, protocol.ErrorResponse{OK: false, Error: reason})
}
