package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Adel-MESRATI/Nexus-AI/internal/providers/hf"
	"github.com/Adel-MESRATI/Nexus-AI/internal/providers/prompt"
)

type stubTextClient struct {
	text  string
	err   error
	calls int
}

func (s *stubTextClient) TextGeneration(ctx context.Context, req hf.TextGenerationRequest) (string, error) {
	s.calls++
	return s.text, s.err
}

func (s *stubTextClient) HasCredentials() bool { return true }

func newMistralApp(t *testing.T, client *stubTextClient) *App {
	t.Helper()
	enhancer, err := prompt.NewMistralEnhancer(prompt.MistralOptions{Client: client})
	if err != nil {
		t.Fatalf("NewMistralEnhancer: %v", err)
	}
	return newTestApp(nil, enhancer)
}

func TestEnhanceRequiresIdentityBeforeValidation(t *testing.T) {
	enh := &stubEnhancer{}
	app := newTestApp(nil, enh)

	rec := httptest.NewRecorder()
	app.Enhance(rec, newRequest(t, "/api/enhance", "", "{broken"))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if got := decodeBody(t, rec)["error"]; got != "Unauthorized" {
		t.Fatalf("error = %q, want Unauthorized", got)
	}
	if enh.calls != 0 {
		t.Fatalf("enhancer calls = %d, want 0", enh.calls)
	}
}

func TestEnhanceValidation(t *testing.T) {
	for _, body := range []any{map[string]any{}, map[string]any{"prompt": "  "}, map[string]any{"prompt": true}, "nope"} {
		enh := &stubEnhancer{}
		app := newTestApp(nil, enh)
		rec := httptest.NewRecorder()
		app.Enhance(rec, newRequest(t, "/api/enhance", "user_1", body))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("body %v: status = %d, want 400", body, rec.Code)
		}
		if got := decodeBody(t, rec)["error"]; got != "Prompt is required" {
			t.Fatalf("error = %q", got)
		}
		if enh.calls != 0 {
			t.Fatalf("enhancer calls = %d, want 0", enh.calls)
		}
	}
}

func TestEnhanceModelOutput(t *testing.T) {
	client := &stubTextClient{text: "<s> A regal cat on a velvet throne, golden hour </s>"}
	app := newMistralApp(t, client)

	rec := httptest.NewRecorder()
	app.Enhance(rec, newRequest(t, "/api/enhance", "user_1", map[string]any{"prompt": "a cat"}))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := decodeBody(t, rec)["enhancedPrompt"]; got != "A regal cat on a velvet throne, golden hour" {
		t.Fatalf("enhancedPrompt = %q", got)
	}
}

func TestEnhanceEmptyModelOutputFallback(t *testing.T) {
	client := &stubTextClient{text: "   "}
	app := newMistralApp(t, client)

	rec := httptest.NewRecorder()
	app.Enhance(rec, newRequest(t, "/api/enhance", "user_1", map[string]any{"prompt": "a cat"}))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	want := "a cat, highly detailed, professional quality, 8k resolution, masterpiece"
	if got := decodeBody(t, rec)["enhancedPrompt"]; got != want {
		t.Fatalf("enhancedPrompt = %q, want %q", got, want)
	}
}

func TestEnhanceUpstreamFailureFallback(t *testing.T) {
	client := &stubTextClient{err: errors.New("hf: http request: connection reset")}
	app := newMistralApp(t, client)

	rec := httptest.NewRecorder()
	app.Enhance(rec, newRequest(t, "/api/enhance", "user_1", map[string]any{"prompt": "a cat"}))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	want := "a cat, highly detailed, professional quality, 8k resolution, masterpiece, cinematic lighting"
	if got := decodeBody(t, rec)["enhancedPrompt"]; got != want {
		t.Fatalf("enhancedPrompt = %q, want %q", got, want)
	}
	if client.calls != 1 {
		t.Fatalf("gateway calls = %d, want 1", client.calls)
	}
}

func TestEnhanceNoUsablePrompt(t *testing.T) {
	enh := &stubEnhancer{err: errors.New("enhancer exploded")}
	app := newTestApp(nil, enh)

	rec := httptest.NewRecorder()
	app.Enhance(rec, newRequest(t, "/api/enhance", "user_1", map[string]any{"prompt": "a cat"}))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if got := decodeBody(t, rec)["error"]; got != "enhancer exploded" {
		t.Fatalf("error = %q", got)
	}

	enh = &stubEnhancer{res: &prompt.EnhanceResponse{}}
	app = newTestApp(nil, enh)
	rec = httptest.NewRecorder()
	app.Enhance(rec, newRequest(t, "/api/enhance", "user_1", map[string]any{"prompt": "a cat"}))
	if got := decodeBody(t, rec)["error"]; got != "Failed to enhance prompt" {
		t.Fatalf("error = %q, want %q", got, "Failed to enhance prompt")
	}
}

func TestEnhanceWithoutEnhancerUsesStatic(t *testing.T) {
	app := newTestApp(nil, nil)

	rec := httptest.NewRecorder()
	app.Enhance(rec, newRequest(t, "/api/enhance", "user_1", map[string]any{"prompt": " dunes "}))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	want := "dunes, highly detailed, professional quality, 8k resolution, masterpiece, cinematic lighting"
	if got := decodeBody(t, rec)["enhancedPrompt"]; got != want {
		t.Fatalf("enhancedPrompt = %q, want %q", got, want)
	}
}
