package prompt

import (
	"context"
	"errors"
	"strings"

	"github.com/Adel-MESRATI/Nexus-AI/internal/domain"
	"github.com/Adel-MESRATI/Nexus-AI/internal/providers/hf"
)

// DefaultModel is the hosted instruction model used for enhancement.
const DefaultModel = "mistralai/Mistral-7B-Instruct-v0.2"

const (
	maxNewTokens = 150
	temperature  = 0.7
	topP         = 0.9
)

type textGenerationClient interface {
	TextGeneration(context.Context, hf.TextGenerationRequest) (string, error)
	HasCredentials() bool
}

type MistralOptions struct {
	Client     textGenerationClient
	Model      string
	Fallback   Enhancer
	OnFallback func(reason string, err error)
}

// MistralEnhancer rewrites short prompts with a hosted instruction model. It
// degrades in two layers: a blank model answer gets the short quality suffix,
// a failed call is handed to the fallback enhancer.
type MistralEnhancer struct {
	client     textGenerationClient
	model      string
	fallback   Enhancer
	onFallback func(reason string, err error)
}

func NewMistralEnhancer(opts MistralOptions) (*MistralEnhancer, error) {
	if opts.Client == nil {
		return nil, errors.New("mistral enhancer requires a gateway client")
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = DefaultModel
	}
	fallback := opts.Fallback
	if fallback == nil {
		fallback = NewStaticEnhancer()
	}
	return &MistralEnhancer{
		client:     opts.Client,
		model:      model,
		fallback:   fallback,
		onFallback: opts.OnFallback,
	}, nil
}

func (m *MistralEnhancer) Enhance(ctx context.Context, req EnhanceRequest) (*EnhanceResponse, error) {
	trimmed := strings.TrimSpace(req.Prompt)
	if trimmed == "" {
		return nil, domain.ErrInvalidPrompt
	}
	if !m.client.HasCredentials() {
		return m.useFallback(ctx, req, "missing_api_key", hf.ErrMissingToken)
	}
	text, err := m.client.TextGeneration(ctx, hf.TextGenerationRequest{
		Model:          m.model,
		Inputs:         BuildInstruction(trimmed),
		MaxNewTokens:   maxNewTokens,
		Temperature:    temperature,
		TopP:           topP,
		ReturnFullText: false,
	})
	if err != nil {
		return m.useFallback(ctx, req, fallbackReason(err), err)
	}
	cleaned := CleanGeneratedText(text)
	if cleaned == "" {
		m.emitFallback("empty_response", errors.New("model returned no text"))
		return &EnhanceResponse{
			EnhancedPrompt: withSuffix(trimmed, qualitySuffix),
			Provider:       mistralProviderName,
			FallbackReason: "empty_response",
		}, nil
	}
	return &EnhanceResponse{EnhancedPrompt: cleaned, Provider: mistralProviderName}, nil
}

func (m *MistralEnhancer) useFallback(ctx context.Context, req EnhanceRequest, reason string, cause error) (*EnhanceResponse, error) {
	m.emitFallback(reason, cause)
	res, err := m.fallback.Enhance(ctx, req)
	if err != nil {
		return nil, errors.Join(cause, err)
	}
	if res.Provider == "" {
		res.Provider = staticProviderName
	}
	res.FallbackReason = reason
	return res, nil
}

func (m *MistralEnhancer) emitFallback(reason string, err error) {
	if m.onFallback != nil {
		m.onFallback(reason, err)
	}
}

func (m *MistralEnhancer) String() string {
	return m.model
}

var _ Enhancer = (*MistralEnhancer)(nil)
