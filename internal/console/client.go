package console

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Adel-MESRATI/Nexus-AI/internal/domain"
)

const (
	msgGenerateFailed = "Failed to generate image"
	msgEnhanceFailed  = "Failed to enhance prompt"
	msgPresetsFailed  = "Failed to load presets"
)

// APIError is a non-2xx answer from the API. Message is the server's error
// field, or a generic message when the body carried none.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized:
		return domain.ErrUnauthorized
	case http.StatusBadRequest:
		return domain.ErrInvalidPrompt
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable:
		return domain.ErrProviderFailure
	}
	return nil
}

// Client talks to the generation API on behalf of one signed-in user.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewClient(baseURL, token string, httpClient *http.Client) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		return nil, fmt.Errorf("console: invalid api url %q", baseURL)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: baseURL, token: strings.TrimSpace(token), httpClient: httpClient}, nil
}

// Generate returns the base64 encoded image for req.
func (c *Client) Generate(ctx context.Context, req domain.GenerationRequest) (string, error) {
	var res domain.GenerationResponse
	if err := c.do(ctx, http.MethodPost, "/api/generate", req, &res, msgGenerateFailed); err != nil {
		return "", err
	}
	if res.Image == "" {
		return "", &APIError{StatusCode: http.StatusOK, Message: msgGenerateFailed}
	}
	return res.Image, nil
}

func (c *Client) Enhance(ctx context.Context, prompt string) (string, error) {
	var res domain.EnhanceResult
	if err := c.do(ctx, http.MethodPost, "/api/enhance", domain.EnhanceRequest{Prompt: prompt}, &res, msgEnhanceFailed); err != nil {
		return "", err
	}
	if res.EnhancedPrompt == "" {
		return "", &APIError{StatusCode: http.StatusOK, Message: msgEnhanceFailed}
	}
	return res.EnhancedPrompt, nil
}

type AspectRatioOption struct {
	Label  string `json:"label"`
	Value  string `json:"value"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type StyleOption struct {
	Label       string `json:"label"`
	Value       string `json:"value"`
	Keywords    string `json:"keywords"`
	Description string `json:"description"`
}

type Presets struct {
	AspectRatios []AspectRatioOption `json:"aspectRatios"`
	Styles       []StyleOption       `json:"styles"`
}

func (c *Client) Presets(ctx context.Context) (*Presets, error) {
	var res Presets
	if err := c.do(ctx, http.MethodGet, "/api/presets", nil, &res, msgPresetsFailed); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any, fallback string) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("console: encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("console: build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("console: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return fmt.Errorf("console: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr domain.ErrorResponse
		msg := fallback
		if json.Unmarshal(raw, &apiErr) == nil && strings.TrimSpace(apiErr.Error) != "" {
			msg = apiErr.Error
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &APIError{StatusCode: resp.StatusCode, Message: fallback}
	}
	return nil
}

// IsUnauthorized reports whether err is a 401 from the API.
func IsUnauthorized(err error) bool {
	return errors.Is(err, domain.ErrUnauthorized)
}
