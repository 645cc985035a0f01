package prompt

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/Adel-MESRATI/Nexus-AI/internal/providers/hf"
)

const (
	staticProviderName  = "static"
	mistralProviderName = "mistral"
)

const (
	// qualitySuffix is appended when the model answers with nothing usable.
	qualitySuffix = "highly detailed, professional quality, 8k resolution, masterpiece"
	// lightingSuffix is appended when the model call itself fails.
	lightingSuffix = qualitySuffix + ", cinematic lighting"
)

const systemInstruction = "You are an AI assistant specialized in creating detailed, descriptive prompts for image generation. Rewrite the user's short prompt into a comprehensive, detailed description that will help generate high-quality images. Include details about composition, lighting, style, mood, and technical qualities. Return only the enhanced prompt, nothing else."

var (
	instructionBlock = regexp.MustCompile(`(?i)\[INST\].*?\[/INST\]`)
	sequenceMarkers  = regexp.MustCompile(`<s>|</s>`)
)

// BuildInstruction wraps the user prompt in the Mistral instruction format.
func BuildInstruction(userPrompt string) string {
	return fmt.Sprintf("<s>[INST] %s\n\nUser prompt: %s [/INST]", systemInstruction, strings.TrimSpace(userPrompt))
}

// CleanGeneratedText strips leftover instruction delimiters and sequence
// markers from model output.
func CleanGeneratedText(text string) string {
	text = strings.TrimSpace(text)
	text = instructionBlock.ReplaceAllString(text, "")
	text = sequenceMarkers.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

func withSuffix(prompt, suffix string) string {
	return prompt + ", " + suffix
}

func fallbackReason(err error) string {
	var statusErr *hf.StatusError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, hf.ErrMissingToken):
		return "missing_api_key"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.As(err, &statusErr):
		return fmt.Sprintf("http_%d", statusErr.StatusCode)
	case strings.Contains(err.Error(), "decode response"):
		return "decode_response"
	default:
		return "http_request"
	}
}
