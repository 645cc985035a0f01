package prompt

import (
	"context"
	"strings"

	"github.com/Adel-MESRATI/Nexus-AI/internal/domain"
)

type EnhanceRequest struct {
	Prompt    string
	RequestID string
}

type EnhanceResponse struct {
	EnhancedPrompt string
	Provider       string
	// FallbackReason is empty when the language model produced the text.
	FallbackReason string
}

type Enhancer interface {
	Enhance(ctx context.Context, req EnhanceRequest) (*EnhanceResponse, error)
}

// StaticEnhancer is the deterministic local enhancement used when the
// language model cannot be reached.
type StaticEnhancer struct{}

func NewStaticEnhancer() *StaticEnhancer {
	return &StaticEnhancer{}
}

func (s *StaticEnhancer) Enhance(ctx context.Context, req EnhanceRequest) (*EnhanceResponse, error) {
	trimmed := strings.TrimSpace(req.Prompt)
	if trimmed == "" {
		return nil, domain.ErrInvalidPrompt
	}
	return &EnhanceResponse{
		EnhancedPrompt: withSuffix(trimmed, lightingSuffix),
		Provider:       staticProviderName,
	}, nil
}

var _ Enhancer = (*StaticEnhancer)(nil)
