package image

import "context"

// GenerateRequest describes a normalized request passed to any image provider.
type GenerateRequest struct {
	Prompt         string
	NegativePrompt string
	AspectRatio    AspectRatio
	Style          Style
	RequestID      string
}

// Asset represents a generated image.
type Asset struct {
	Data   []byte
	Format string
	Width  int
	Height int
	Model  string
	// Prompt is the final text sent to the model, style keywords included.
	Prompt string
}

// Generator is the contract implemented by all image providers.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (*Asset, error)
}
