package prompt

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/Adel-MESRATI/Nexus-AI/internal/domain"
	"github.com/Adel-MESRATI/Nexus-AI/internal/providers/hf"
)

type stubTextClient struct {
	text           string
	err            error
	hasCredentials bool
	calls          int
	lastReq        hf.TextGenerationRequest
}

func (s *stubTextClient) TextGeneration(ctx context.Context, req hf.TextGenerationRequest) (string, error) {
	s.calls++
	s.lastReq = req
	return s.text, s.err
}

func (s *stubTextClient) HasCredentials() bool {
	return s.hasCredentials
}

type failingEnhancer struct{}

func (failingEnhancer) Enhance(ctx context.Context, req EnhanceRequest) (*EnhanceResponse, error) {
	return nil, errors.New("fallback unavailable")
}

func newTestEnhancer(t *testing.T, client *stubTextClient, onFallback func(string, error)) *MistralEnhancer {
	t.Helper()
	enhancer, err := NewMistralEnhancer(MistralOptions{Client: client, OnFallback: onFallback})
	if err != nil {
		t.Fatalf("NewMistralEnhancer returned error: %v", err)
	}
	return enhancer
}

func TestMistralEnhancerSendsInstruction(t *testing.T) {
	client := &stubTextClient{hasCredentials: true, text: "A fluffy orange cat lounging in warm sunlight"}
	enhancer := newTestEnhancer(t, client, nil)

	res, err := enhancer.Enhance(context.Background(), EnhanceRequest{Prompt: "  a cat  "})
	if err != nil {
		t.Fatalf("Enhance returned error: %v", err)
	}
	if res.EnhancedPrompt != "A fluffy orange cat lounging in warm sunlight" {
		t.Fatalf("EnhancedPrompt = %q", res.EnhancedPrompt)
	}
	if res.Provider != mistralProviderName || res.FallbackReason != "" {
		t.Fatalf("Provider = %q reason = %q", res.Provider, res.FallbackReason)
	}
	req := client.lastReq
	if req.Model != DefaultModel {
		t.Fatalf("Model = %q, want %q", req.Model, DefaultModel)
	}
	if !strings.HasPrefix(req.Inputs, "<s>[INST] You are an AI assistant") {
		t.Fatalf("Inputs prefix = %q", req.Inputs)
	}
	if !strings.HasSuffix(req.Inputs, "\n\nUser prompt: a cat [/INST]") {
		t.Fatalf("Inputs suffix = %q", req.Inputs)
	}
	if req.MaxNewTokens != 150 || req.Temperature != 0.7 || req.TopP != 0.9 || req.ReturnFullText {
		t.Fatalf("parameters = %+v", req)
	}
}

func TestMistralEnhancerEmptyOutputFallback(t *testing.T) {
	var captured string
	client := &stubTextClient{hasCredentials: true, text: "  <s> [INST] echo [/INST] </s> "}
	enhancer := newTestEnhancer(t, client, func(reason string, err error) { captured = reason })

	res, err := enhancer.Enhance(context.Background(), EnhanceRequest{Prompt: "a cat"})
	if err != nil {
		t.Fatalf("Enhance returned error: %v", err)
	}
	want := "a cat, highly detailed, professional quality, 8k resolution, masterpiece"
	if res.EnhancedPrompt != want {
		t.Fatalf("EnhancedPrompt = %q, want %q", res.EnhancedPrompt, want)
	}
	if res.FallbackReason != "empty_response" || captured != "empty_response" {
		t.Fatalf("reason = %q captured = %q, want empty_response", res.FallbackReason, captured)
	}
}

func TestMistralEnhancerFailureFallback(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		reason string
	}{
		{name: "transport", err: errors.New("hf: http request: dial tcp: connection refused"), reason: "http_request"},
		{name: "status", err: &hf.StatusError{StatusCode: http.StatusServiceUnavailable, Message: "loading"}, reason: "http_503"},
		{name: "decode", err: errors.New("hf: decode response: invalid character"), reason: "decode_response"},
		{name: "deadline", err: context.DeadlineExceeded, reason: "timeout"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var captured string
			client := &stubTextClient{hasCredentials: true, err: tc.err}
			enhancer := newTestEnhancer(t, client, func(reason string, err error) { captured = reason })

			res, err := enhancer.Enhance(context.Background(), EnhanceRequest{Prompt: " a cat "})
			if err != nil {
				t.Fatalf("Enhance returned error: %v", err)
			}
			want := "a cat, highly detailed, professional quality, 8k resolution, masterpiece, cinematic lighting"
			if res.EnhancedPrompt != want {
				t.Fatalf("EnhancedPrompt = %q, want %q", res.EnhancedPrompt, want)
			}
			if res.Provider != staticProviderName {
				t.Fatalf("Provider = %q, want %q", res.Provider, staticProviderName)
			}
			if res.FallbackReason != tc.reason || captured != tc.reason {
				t.Fatalf("reason = %q captured = %q, want %q", res.FallbackReason, captured, tc.reason)
			}
		})
	}
}

func TestMistralEnhancerMissingCredentialsSkipsGateway(t *testing.T) {
	client := &stubTextClient{hasCredentials: false}
	enhancer := newTestEnhancer(t, client, nil)

	res, err := enhancer.Enhance(context.Background(), EnhanceRequest{Prompt: "a cat"})
	if err != nil {
		t.Fatalf("Enhance returned error: %v", err)
	}
	if client.calls != 0 {
		t.Fatalf("calls = %d, want 0", client.calls)
	}
	if res.FallbackReason != "missing_api_key" {
		t.Fatalf("FallbackReason = %q, want missing_api_key", res.FallbackReason)
	}
}

func TestMistralEnhancerBlankPrompt(t *testing.T) {
	client := &stubTextClient{hasCredentials: true}
	enhancer := newTestEnhancer(t, client, nil)

	_, err := enhancer.Enhance(context.Background(), EnhanceRequest{Prompt: "   "})
	if !errors.Is(err, domain.ErrInvalidPrompt) {
		t.Fatalf("error = %v, want ErrInvalidPrompt", err)
	}
	if client.calls != 0 {
		t.Fatalf("calls = %d, want 0", client.calls)
	}
}

func TestMistralEnhancerFallbackFailureSurfaces(t *testing.T) {
	upstream := errors.New("hf: http request: boom")
	client := &stubTextClient{hasCredentials: true, err: upstream}
	enhancer, err := NewMistralEnhancer(MistralOptions{Client: client, Fallback: failingEnhancer{}})
	if err != nil {
		t.Fatalf("NewMistralEnhancer returned error: %v", err)
	}

	_, err = enhancer.Enhance(context.Background(), EnhanceRequest{Prompt: "a cat"})
	if !errors.Is(err, upstream) {
		t.Fatalf("error = %v, want wrapped upstream error", err)
	}
}

func TestNewMistralEnhancerRequiresClient(t *testing.T) {
	if _, err := NewMistralEnhancer(MistralOptions{}); err == nil {
		t.Fatal("expected error without client")
	}
}
