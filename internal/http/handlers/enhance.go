package handlers

import (
	"net/http"

	"github.com/Adel-MESRATI/Nexus-AI/internal/domain"
	"github.com/Adel-MESRATI/Nexus-AI/internal/middleware"
	"github.com/Adel-MESRATI/Nexus-AI/internal/providers/prompt"
)

// Enhance rewrites a short prompt. Upstream trouble degrades to a local
// enhancement inside the enhancer, so a 500 here means no usable prompt
// could be produced at all.
func (a *App) Enhance(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, msgUnauthorized)
		return
	}
	var req domain.EnhanceRequest
	if err := a.decode(w, r, &req); err != nil {
		a.error(w, http.StatusBadRequest, msgPromptRequired)
		return
	}
	if err := (domain.GenerationRequest{Prompt: req.Prompt}).Validate(); err != nil {
		a.error(w, http.StatusBadRequest, msgPromptRequired)
		return
	}

	enhancer := a.Enhancer
	if enhancer == nil {
		enhancer = prompt.NewStaticEnhancer()
	}
	requestID := middleware.RequestIDFromContext(r.Context())
	res, err := enhancer.Enhance(r.Context(), prompt.EnhanceRequest{Prompt: req.Prompt, RequestID: requestID})
	if err != nil || res == nil || res.EnhancedPrompt == "" {
		a.Logger.Error().
			Err(err).
			Str("request_id", requestID).
			Str("user_id", userID).
			Msg("prompt enhancement failed")
		a.error(w, http.StatusInternalServerError, errorMessage(err, msgEnhanceFailed))
		return
	}

	event := a.Logger.Info()
	if res.FallbackReason != "" {
		event = a.Logger.Warn().Str("reason", res.FallbackReason)
	}
	event.
		Str("request_id", requestID).
		Str("user_id", userID).
		Str("provider", res.Provider).
		Msg("prompt enhanced")
	a.json(w, http.StatusOK, domain.EnhanceResult{EnhancedPrompt: res.EnhancedPrompt})
}
