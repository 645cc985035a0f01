package handlers

import (
	"encoding/base64"
	"errors"
	"net/http"

	"github.com/Adel-MESRATI/Nexus-AI/internal/domain"
	"github.com/Adel-MESRATI/Nexus-AI/internal/middleware"
	"github.com/Adel-MESRATI/Nexus-AI/internal/providers/image"
)

const (
	msgUnauthorized     = "Unauthorized"
	msgPromptRequired   = "Prompt is required"
	msgGenerateFailed   = "Failed to generate image"
	msgEnhanceFailed    = "Failed to enhance prompt"
	msgGeneratorMissing = "image generator not configured"
)

// Generate synthesises one image. Identity is checked before the body is
// read; the gateway is called at most once.
func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, msgUnauthorized)
		return
	}
	var req domain.GenerationRequest
	if err := a.decode(w, r, &req); err != nil {
		a.error(w, http.StatusBadRequest, msgPromptRequired)
		return
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		a.error(w, http.StatusBadRequest, msgPromptRequired)
		return
	}
	if a.Generator == nil {
		a.error(w, http.StatusInternalServerError, msgGeneratorMissing)
		return
	}

	requestID := middleware.RequestIDFromContext(r.Context())
	asset, err := a.Generator.Generate(r.Context(), image.GenerateRequest{
		Prompt:         req.Prompt,
		NegativePrompt: req.NegativePrompt,
		AspectRatio:    image.ParseAspectRatio(req.AspectRatio),
		Style:          image.ParseStyle(req.Style),
		RequestID:      requestID,
	})
	if err == nil && (asset == nil || len(asset.Data) == 0) {
		err = errors.New(msgGenerateFailed)
	}
	if err != nil {
		a.Logger.Error().
			Err(err).
			Str("request_id", requestID).
			Str("user_id", userID).
			Bool("upstream", errors.Is(err, domain.ErrProviderFailure)).
			Msg("image generation failed")
		a.error(w, http.StatusInternalServerError, errorMessage(err, msgGenerateFailed))
		return
	}

	a.Logger.Info().
		Str("request_id", requestID).
		Str("user_id", userID).
		Str("model", asset.Model).
		Int("width", asset.Width).
		Int("height", asset.Height).
		Msg("image generated")
	a.json(w, http.StatusOK, domain.GenerationResponse{Image: base64.StdEncoding.EncodeToString(asset.Data)})
}

func errorMessage(err error, fallback string) string {
	if err == nil || err.Error() == "" {
		return fallback
	}
	return err.Error()
}
