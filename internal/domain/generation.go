package domain

import (
	"strings"
	"time"
)

// GenerationRequest is the wire payload accepted by the generate endpoint.
// Unknown aspect ratios and styles are tolerated here and resolved to their
// defaults by the image presets.
type GenerationRequest struct {
	Prompt         string `json:"prompt"`
	AspectRatio    string `json:"aspectRatio,omitempty"`
	NegativePrompt string `json:"negativePrompt,omitempty"`
	Style          string `json:"style,omitempty"`
}

// Normalize trims free-text fields in place.
func (r *GenerationRequest) Normalize() {
	if r == nil {
		return
	}
	r.Prompt = strings.TrimSpace(r.Prompt)
	r.NegativePrompt = strings.TrimSpace(r.NegativePrompt)
}

// Validate reports ErrInvalidPrompt when the prompt is blank.
func (r GenerationRequest) Validate() error {
	if strings.TrimSpace(r.Prompt) == "" {
		return ErrInvalidPrompt
	}
	return nil
}

// GenerationResponse carries the base64 encoded raster.
type GenerationResponse struct {
	Image string `json:"image"`
}

// EnhanceRequest is the wire payload accepted by the enhance endpoint.
type EnhanceRequest struct {
	Prompt string `json:"prompt"`
}

// EnhanceResult is the derived, never stored, enhanced prompt.
type EnhanceResult struct {
	EnhancedPrompt string `json:"enhancedPrompt"`
}

// ErrorResponse is the JSON body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// GeneratedImage is a single console history entry. It only lives in memory.
type GeneratedImage struct {
	ID        string    `json:"id"`
	ImageData string    `json:"imageData"`
	Prompt    string    `json:"prompt"`
	CreatedAt time.Time `json:"createdAt"`
}
