package handlers

import (
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Adel-MESRATI/Nexus-AI/internal/providers/image"
)

func TestGenerateRequiresIdentityBeforeValidation(t *testing.T) {
	gen := &stubGenerator{}
	app := newTestApp(gen, nil)

	for _, body := range []any{map[string]any{"prompt": "a cat"}, "{not json", map[string]any{"prompt": ""}} {
		rec := httptest.NewRecorder()
		app.Generate(rec, newRequest(t, "/api/generate", "", body))
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
		if got := decodeBody(t, rec)["error"]; got != "Unauthorized" {
			t.Fatalf("error = %q, want Unauthorized", got)
		}
	}
	if gen.calls != 0 {
		t.Fatalf("generator calls = %d, want 0", gen.calls)
	}
}

func TestGenerateValidation(t *testing.T) {
	cases := []struct {
		name string
		body any
	}{
		{name: "missing prompt", body: map[string]any{"style": "anime"}},
		{name: "blank prompt", body: map[string]any{"prompt": "   \t"}},
		{name: "non-string prompt", body: map[string]any{"prompt": 42}},
		{name: "malformed json", body: "{"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gen := &stubGenerator{}
			app := newTestApp(gen, nil)
			rec := httptest.NewRecorder()
			app.Generate(rec, newRequest(t, "/api/generate", "user_1", tc.body))
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			if got := decodeBody(t, rec)["error"]; got != "Prompt is required" {
				t.Fatalf("error = %q, want %q", got, "Prompt is required")
			}
			if gen.calls != 0 {
				t.Fatalf("generator calls = %d, want 0", gen.calls)
			}
		})
	}
}

func TestGenerateSuccess(t *testing.T) {
	data := []byte("\x89PNG\r\n\x1a\nimage")
	gen := &stubGenerator{asset: &image.Asset{Data: data, Width: 1344, Height: 768}}
	app := newTestApp(gen, nil)

	rec := httptest.NewRecorder()
	app.Generate(rec, newRequest(t, "/api/generate", "user_1", map[string]any{
		"prompt":         " a cat ",
		"aspectRatio":    "16:9",
		"style":          "cyberpunk",
		"negativePrompt": "  blurry ",
	}))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (%s)", rec.Code, rec.Body.String())
	}
	encoded := decodeBody(t, rec)["image"]
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		t.Fatalf("image is not base64: %v", err)
	}
	if string(decoded) != string(data) {
		t.Fatalf("decoded image mismatch")
	}
	if gen.lastReq.Prompt != "a cat" {
		t.Fatalf("prompt = %q, want %q", gen.lastReq.Prompt, "a cat")
	}
	if gen.lastReq.AspectRatio != image.AspectWide || gen.lastReq.Style != image.StyleCyberpunk {
		t.Fatalf("presets = %q/%q", gen.lastReq.AspectRatio, gen.lastReq.Style)
	}
	if gen.lastReq.NegativePrompt != "blurry" {
		t.Fatalf("negative prompt = %q, want blurry", gen.lastReq.NegativePrompt)
	}
}

func TestGenerateDefaultsUnknownPresets(t *testing.T) {
	cases := []struct {
		name   string
		aspect string
		style  string
	}{
		{name: "unsupported", aspect: "21:9", style: "baroque"},
		{name: "case_variant", aspect: "16:9", style: "Cyberpunk"},
		{name: "padded", aspect: " 16:9 ", style: " 3d "},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gen := &stubGenerator{asset: &image.Asset{Data: []byte{1}}}
			app := newTestApp(gen, nil)

			rec := httptest.NewRecorder()
			app.Generate(rec, newRequest(t, "/api/generate", "user_1", map[string]any{
				"prompt":      "a cat",
				"aspectRatio": tc.aspect,
				"style":       tc.style,
			}))
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rec.Code)
			}
			wantAspect := image.AspectSquare
			if tc.aspect == "16:9" {
				wantAspect = image.AspectWide
			}
			if gen.lastReq.AspectRatio != wantAspect || gen.lastReq.Style != image.StyleNone {
				t.Fatalf("presets = %q/%q, want %q/none", gen.lastReq.AspectRatio, gen.lastReq.Style, wantAspect)
			}
		})
	}
}

func TestGenerateUpstreamFailure(t *testing.T) {
	gen := &stubGenerator{err: errors.New("hf: Model is overloaded (status 503)")}
	app := newTestApp(gen, nil)

	rec := httptest.NewRecorder()
	app.Generate(rec, newRequest(t, "/api/generate", "user_1", map[string]any{"prompt": "a cat"}))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if got := decodeBody(t, rec)["error"]; got != "hf: Model is overloaded (status 503)" {
		t.Fatalf("error = %q", got)
	}
	if gen.calls != 1 {
		t.Fatalf("generator calls = %d, want exactly 1", gen.calls)
	}
}

func TestGenerateEmptyAssetUsesGenericMessage(t *testing.T) {
	gen := &stubGenerator{asset: &image.Asset{}}
	app := newTestApp(gen, nil)

	rec := httptest.NewRecorder()
	app.Generate(rec, newRequest(t, "/api/generate", "user_1", map[string]any{"prompt": "a cat"}))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if got := decodeBody(t, rec)["error"]; got != "Failed to generate image" {
		t.Fatalf("error = %q, want %q", got, "Failed to generate image")
	}
}
