package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/Bakhtawar-pk/Visionary-Studio/internal/assets"
	"github.com/Bakhtawar-pk/Visionary-Studio/internal/media"
	"github.com/Bakhtawar-pk/Visionary-Studio/internal/prompt"
	"github.com/Bakhtawar-pk/Visionary-Studio/internal/studio"
)

// server holds the handler dependencies for studio-web.
type server struct {
	orch  *studio.Orchestrator
	store *assets.MemoryStore
	hub   *hub
}

// enhanceRequest is the POST /api/enhance body.
type enhanceRequest struct {
	Concept   string             `json:"concept"`
	Modifiers prompt.ModifierSet `json:"modifiers"`
	Kind      media.Kind         `json:"mediaKind"`
}

// GET /api/state
func (s *server) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	payload := map[string]interface{}{
		"elevated": s.orch.Elevated(),
	}
	if result, ok := s.orch.Current(); ok {
		payload["result"] = result
	}
	respondJSON(w, http.StatusOK, payload)
}

// GET /api/options — editor vocabulary and parameter bounds.
func (s *server) handleOptions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"medium":           prompt.MediumOptions,
		"style":            prompt.StyleOptions,
		"lighting":         prompt.LightingOptions,
		"camera":           prompt.CameraOptions,
		"mood":             prompt.MoodOptions,
		"aspectRatios":     media.AspectRatios,
		"imageResolutions": media.ImageResolutions,
		"videoDuration": map[string]int{
			"min":     media.MinVideoDuration,
			"max":     media.MaxVideoDuration,
			"default": media.DefaultVideoDuration,
		},
	})
}

// POST /api/enhance
func (s *server) handleEnhance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req enhanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	// The enhancement outlives this request; snapshots arrive over /ws.
	// Admission happens synchronously so a 202 always means a cycle started.
	err := s.orch.StartEnhance(context.Background(), req.Concept, req.Modifiers, req.Kind)
	switch {
	case errors.Is(err, studio.ErrEmptyConcept):
		// Empty concepts are rejected silently at the boundary.
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, studio.ErrBusy):
		httpError(w, http.StatusConflict, "another operation is in flight")
	case err != nil:
		httpError(w, http.StatusBadRequest, err.Error())
	default:
		respondJSON(w, http.StatusAccepted, map[string]string{"status": "enhancing"})
	}
}

// POST /api/generate
func (s *server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req studio.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	// Generation can run for minutes (video polling); it proceeds detached
	// from the request and reports through WebSocket snapshots. There is no
	// cancellation once started. Admission happens synchronously so a 202
	// always means a cycle started.
	err := s.orch.StartGenerate(context.Background(), req)
	switch {
	case errors.Is(err, studio.ErrEmptyConcept):
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, studio.ErrBusy):
		httpError(w, http.StatusConflict, "another operation is in flight")
	case err != nil:
		httpError(w, http.StatusBadRequest, err.Error())
	default:
		respondJSON(w, http.StatusAccepted, map[string]string{"status": "generating"})
	}
}

// POST /api/access/refresh — called on startup and when the page regains focus.
func (s *server) handleAccessRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	s.orch.RefreshAccess(r.Context())
	respondJSON(w, http.StatusOK, map[string]bool{"elevated": s.orch.Elevated()})
}

// POST /api/access/select — the user confirmed the key-selection dialog.
func (s *server) handleAccessSelect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if err := s.orch.RequestAccess(r.Context()); err != nil {
		httpError(w, http.StatusBadGateway, "authorization selection failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"elevated": s.orch.Elevated()})
}

// GET /assets/{id} — serves the current generated asset.
func (s *server) handleAsset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/assets/")
	data, mime, ok := s.store.Get(id)
	if !ok {
		httpError(w, http.StatusNotFound, "asset not found")
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "no-store")
	w.Write(data)
}
