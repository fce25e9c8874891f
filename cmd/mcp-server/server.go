package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"github.com/njchilds90/gowick"
	"github.com/njchilds90/gowick/internal/config"
	"github.com/njchilds90/gowick/internal/metrics"
)

// newMux wires the HTTP routes onto one tool session. Every request shares
// the session, so spaces declared by one call are visible to the next.
func newMux(cfg *config.Config, logger *slog.Logger, m *metrics.Metrics) http.Handler {
	opts := append(cfg.EngineOptions(), gowick.WithLogger(logger), gowick.WithObserver(m))
	session := gowick.NewSession(opts...)
	timeout := time.Duration(cfg.Server.RequestTimeoutSec) * time.Second

	mux := http.NewServeMux()

	// POST /tool: handle a tool call
	mux.HandleFunc("/tool", func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-ID", id)
		log := logger.With("request_id", id)

		defer func() {
			if rec := recover(); rec != nil {
				log.Error("panic in /tool", "panic", fmt.Sprint(rec), "stack", string(debug.Stack()))
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}
		}()

		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, int64(cfg.Server.MaxBodyBytes))
		defer r.Body.Close()

		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()

		var req gowick.ToolRequest
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if dec.More() {
			writeError(w, http.StatusBadRequest, "invalid JSON: trailing data")
			return
		}

		ctx := r.Context()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		start := time.Now()
		resp := session.HandleToolCallContext(ctx, req)
		m.ToolCall(req.Tool, resp.Error != "")
		if resp.Error != "" {
			log.Warn("tool call failed", "tool", req.Tool, "error", resp.Error)
		} else {
			log.Debug("tool call", "tool", req.Tool, "elapsed", time.Since(start))
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	})

	// GET /schema: tool schema for agent registration
	mux.HandleFunc("/schema", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, gowick.MCPToolSpec())
	})

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "ok",
			"version": gowick.Version,
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
	})

	mux.Handle("/metrics", m.Handler())
	return mux
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
