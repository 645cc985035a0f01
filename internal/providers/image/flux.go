package image

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Adel-MESRATI/Nexus-AI/internal/infra"
	"github.com/Adel-MESRATI/Nexus-AI/internal/providers/hf"
)

// DefaultModel is the hosted diffusion model used for synthesis.
const DefaultModel = "black-forest-labs/FLUX.1-schnell"

type textToImageClient interface {
	TextToImage(context.Context, hf.TextToImageRequest) ([]byte, error)
	HasCredentials() bool
}

// FluxGenerator turns a prompt plus presets into a single raster by calling
// the inference gateway once. Failures are returned as-is; there is no retry
// and no local substitute image.
type FluxGenerator struct {
	client textToImageClient
	model  string
	logger *infra.Logger
}

// NewFluxGenerator wires a gateway client with the model to invoke.
func NewFluxGenerator(client textToImageClient, model string, logger *infra.Logger) *FluxGenerator {
	model = strings.TrimSpace(model)
	if model == "" {
		model = DefaultModel
	}
	if logger == nil {
		logger = infra.NopLogger()
	}
	return &FluxGenerator{client: client, model: model, logger: logger}
}

// Generate fulfils the Generator interface.
func (g *FluxGenerator) Generate(ctx context.Context, req GenerateRequest) (*Asset, error) {
	if g == nil || g.client == nil {
		return nil, errors.New("image generator not configured")
	}
	if !g.client.HasCredentials() {
		return nil, hf.ErrMissingToken
	}
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return nil, errors.New("prompt is required")
	}
	ratio := ParseAspectRatio(string(req.AspectRatio))
	style := ParseStyle(string(req.Style))
	size := ratio.Dimensions()
	final := ComposePrompt(prompt, style)

	data, err := g.client.TextToImage(ctx, hf.TextToImageRequest{
		Model:          g.model,
		Prompt:         final,
		NegativePrompt: strings.TrimSpace(req.NegativePrompt),
		Width:          size.Width,
		Height:         size.Height,
	})
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%s returned no image data", g.model)
	}
	g.logger.Debug().
		Str("request_id", req.RequestID).
		Str("aspect_ratio", string(ratio)).
		Str("style", string(style)).
		Msg("image generated")
	return &Asset{
		Data:   data,
		Format: http.DetectContentType(data),
		Width:  size.Width,
		Height: size.Height,
		Model:  g.model,
		Prompt: final,
	}, nil
}

func (g *FluxGenerator) String() string {
	if g == nil {
		return DefaultModel
	}
	return g.model
}

var _ Generator = (*FluxGenerator)(nil)
