// Package statehttp exposes the machine's state snapshot over HTTP for
// read-only consumers: the presentation layer, debugging, and dashboards.
// It never mutates game state.
package statehttp

import (
	"encoding/json"
	"net/http"

	"github.com/rs/cors"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/songquiz/go/internal/game"
)

// Snapshotter is the read-only view the handler serves. The game machine
// satisfies it.
type Snapshotter interface {
	Snapshot() game.State
}

// Handler serves the game state snapshot as JSON.
type Handler struct {
	snap Snapshotter
}

// New creates a state handler backed by snap.
func New(snap Snapshotter) *Handler {
	return &Handler{snap: snap}
}

// Routes returns the HTTP handler with CORS applied, so browser-based
// presentation layers on other origins can poll the snapshot.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/game/state", h.handleState)
	mux.HandleFunc("/health", handleHealth)

	c := cors.New(cors.Options{
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
		},
		AllowedOrigins: []string{"*"},
		AllowedHeaders: []string{"*"},
	})
	return c.Handler(mux)
}

// handleState handles GET /api/game/state.
func (h *Handler) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	state := h.snap.Snapshot()

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(state); err != nil {
		log.Error().Err(err).Msg("failed to encode state response")
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		log.Error().Err(err).Msg("failed to write health check response")
	}
}
