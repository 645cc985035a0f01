package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/Adel-MESRATI/Nexus-AI/internal/middleware"
	"github.com/Adel-MESRATI/Nexus-AI/internal/providers/image"
	"github.com/Adel-MESRATI/Nexus-AI/internal/providers/prompt"
)

type stubGenerator struct {
	asset   *image.Asset
	err     error
	calls   int
	lastReq image.GenerateRequest
}

func (s *stubGenerator) Generate(ctx context.Context, req image.GenerateRequest) (*image.Asset, error) {
	s.calls++
	s.lastReq = req
	return s.asset, s.err
}

type stubEnhancer struct {
	res     *prompt.EnhanceResponse
	err     error
	calls   int
	lastReq prompt.EnhanceRequest
}

func (s *stubEnhancer) Enhance(ctx context.Context, req prompt.EnhanceRequest) (*prompt.EnhanceResponse, error) {
	s.calls++
	s.lastReq = req
	return s.res, s.err
}

func newTestApp(gen image.Generator, enh prompt.Enhancer) *App {
	return NewApp(gen, enh, zerolog.Nop())
}

func newRequest(t *testing.T, path, userID string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	switch v := body.(type) {
	case string:
		buf.WriteString(v)
	default:
		if err := json.NewEncoder(&buf).Encode(v); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req = req.WithContext(middleware.ContextWithUserID(req.Context(), userID))
	}
	return req
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var out map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}
