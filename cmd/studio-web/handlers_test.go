package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Bakhtawar-pk/Visionary-Studio/internal/assets"
	"github.com/Bakhtawar-pk/Visionary-Studio/internal/media"
	"github.com/Bakhtawar-pk/Visionary-Studio/internal/prompt"
	"github.com/Bakhtawar-pk/Visionary-Studio/internal/studio"
)

type fakeEnhancer struct{}

func (fakeEnhancer) Enhance(_ context.Context, concept string, _ prompt.ModifierSet) prompt.Enhancement {
	return prompt.Enhancement{EnhancedPrompt: concept, Explanation: "x"}
}

type fakeGenerator struct{}

func (fakeGenerator) GenerateImage(_ context.Context, _ string, _ media.AspectRatio, _ media.ImageResolution, _ bool) (string, error) {
	return "/assets/fake", nil
}

func (fakeGenerator) GenerateVideo(_ context.Context, _ string, _ media.AspectRatio, _ int, _ bool) (string, error) {
	return "/assets/fake", nil
}

type fakeProvider struct{}

func (fakeProvider) HasElevatedAccess(_ context.Context) (bool, error) { return false, nil }
func (fakeProvider) RequestElevatedAccess(_ context.Context) error     { return nil }

type nopPublisher struct{}

func (nopPublisher) PublishResult(studio.Result) {}
func (nopPublisher) PublishAccess(bool)          {}
func (nopPublisher) Notify(string)               {}

func newTestServer() *server {
	return &server{
		orch:  studio.NewOrchestrator(fakeEnhancer{}, fakeGenerator{}, fakeProvider{}, nopPublisher{}),
		store: assets.NewMemoryStore(),
	}
}

func TestHandleState(t *testing.T) {
	s := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/api/state", nil)
	rec := httptest.NewRecorder()
	s.handleState(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if _, ok := payload["elevated"]; !ok {
		t.Error("response missing elevated flag")
	}
	if _, ok := payload["result"]; ok {
		t.Error("fresh server should have no current result")
	}
}

func TestHandleOptions(t *testing.T) {
	s := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/api/options", nil)
	rec := httptest.NewRecorder()
	s.handleOptions(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var payload struct {
		Medium        []string `json:"medium"`
		AspectRatios  []string `json:"aspectRatios"`
		VideoDuration struct {
			Min     int `json:"min"`
			Max     int `json:"max"`
			Default int `json:"default"`
		} `json:"videoDuration"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if len(payload.Medium) == 0 {
		t.Error("expected medium vocabulary")
	}
	if len(payload.AspectRatios) != 5 {
		t.Errorf("aspectRatios = %d entries, want 5", len(payload.AspectRatios))
	}
	if payload.VideoDuration.Min != 4 || payload.VideoDuration.Max != 12 || payload.VideoDuration.Default != 8 {
		t.Errorf("videoDuration bounds = %+v", payload.VideoDuration)
	}
}

func TestHandleGenerateValidation(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		expectedStatus int
	}{
		{
			name:           "valid request",
			body:           `{"concept": "a cat"}`,
			expectedStatus: http.StatusAccepted,
		},
		{
			name:           "empty concept is a silent no-op",
			body:           `{"concept": ""}`,
			expectedStatus: http.StatusNoContent,
		},
		{
			name:           "invalid json",
			body:           `{concept`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "duration out of range",
			body:           `{"concept": "a cat", "mediaKind": "VIDEO", "videoDurationSeconds": 30}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "unknown ratio",
			body:           `{"concept": "a cat", "aspectRatio": "21:9"}`,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer()
			req := httptest.NewRequest(http.MethodPost, "/api/generate", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			s.handleGenerate(rec, req)

			if rec.Code != tt.expectedStatus {
				t.Errorf("status = %d, want %d (body: %s)", rec.Code, tt.expectedStatus, rec.Body.String())
			}
		})
	}
}

type slowGenerator struct {
	started chan struct{}
	gate    chan struct{}
}

func (g *slowGenerator) GenerateImage(_ context.Context, _ string, _ media.AspectRatio, _ media.ImageResolution, _ bool) (string, error) {
	close(g.started)
	<-g.gate
	return "/assets/slow", nil
}

func (g *slowGenerator) GenerateVideo(_ context.Context, _ string, _ media.AspectRatio, _ int, _ bool) (string, error) {
	close(g.started)
	<-g.gate
	return "/assets/slow", nil
}

func TestHandleGenerateSecondRequestConflicts(t *testing.T) {
	generator := &slowGenerator{started: make(chan struct{}), gate: make(chan struct{})}
	defer close(generator.gate)

	s := &server{
		orch:  studio.NewOrchestrator(fakeEnhancer{}, generator, fakeProvider{}, nopPublisher{}),
		store: assets.NewMemoryStore(),
	}

	req := httptest.NewRequest(http.MethodPost, "/api/generate", strings.NewReader(`{"concept": "a cat"}`))
	rec := httptest.NewRecorder()
	s.handleGenerate(rec, req)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("first request status = %d, want 202", rec.Code)
	}
	<-generator.started

	// The slot is taken before the 202 is written, so the loser sees a
	// conflict instead of a misleading acceptance.
	req = httptest.NewRequest(http.MethodPost, "/api/generate", strings.NewReader(`{"concept": "a cat"}`))
	rec = httptest.NewRecorder()
	s.handleGenerate(rec, req)
	if rec.Code != http.StatusConflict {
		t.Errorf("second request status = %d, want 409", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/enhance", strings.NewReader(`{"concept": "a cat"}`))
	rec = httptest.NewRecorder()
	s.handleEnhance(rec, req)
	if rec.Code != http.StatusConflict {
		t.Errorf("enhance during generation status = %d, want 409", rec.Code)
	}
}

func TestHandleEnhanceMethodNotAllowed(t *testing.T) {
	s := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/api/enhance", nil)
	rec := httptest.NewRecorder()
	s.handleEnhance(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestHandleAsset(t *testing.T) {
	s := newTestServer()

	location, err := s.store.Put([]byte("png-bytes"), "image/png")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, location, nil)
	rec := httptest.NewRecorder()
	s.handleAsset(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "image/png" {
		t.Errorf("content type = %q, want image/png", got)
	}
	if rec.Body.String() != "png-bytes" {
		t.Errorf("body = %q, want png-bytes", rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/assets/unknown", nil)
	rec = httptest.NewRecorder()
	s.handleAsset(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHandleAccessRefresh(t *testing.T) {
	s := newTestServer()

	req := httptest.NewRequest(http.MethodPost, "/api/access/refresh", nil)
	rec := httptest.NewRecorder()
	s.handleAccessRefresh(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var payload map[string]bool
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if payload["elevated"] {
		t.Error("probe without elevated access should report false")
	}
}
