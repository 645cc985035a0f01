package hf

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/Adel-MESRATI/Nexus-AI/internal/domain"
	"github.com/Adel-MESRATI/Nexus-AI/internal/infra"
)

// ErrMissingToken indicates that the client was configured without credentials.
var ErrMissingToken = fmt.Errorf("hf: %w", domain.ErrMissingCredentials)

const defaultBaseURL = "https://router.huggingface.co/hf-inference/models"

// Options configures the inference gateway client.
type Options struct {
	Token      string
	BaseURL    string
	HTTPClient *http.Client
	Logger     *infra.Logger
	// RequestTimeout bounds a single call. Zero leaves the transport default
	// in place, which never times out.
	RequestTimeout time.Duration
}

// Client performs HTTP calls against the hosted inference API.
type Client struct {
	token      string
	baseURL    string
	httpClient *http.Client
	logger     *infra.Logger
}

// TextToImageRequest captures the inputs of a single synthesis call.
type TextToImageRequest struct {
	Model          string
	Prompt         string
	NegativePrompt string
	Width          int
	Height         int
}

// TextGenerationRequest captures the inputs of a single text-generation call.
type TextGenerationRequest struct {
	Model          string
	Inputs         string
	MaxNewTokens   int
	Temperature    float64
	TopP           float64
	ReturnFullText bool
}

type inferenceRequest struct {
	Inputs     string `json:"inputs"`
	Parameters any    `json:"parameters,omitempty"`
}

type imageParams struct {
	Width          int    `json:"width,omitempty"`
	Height         int    `json:"height,omitempty"`
	NegativePrompt string `json:"negative_prompt,omitempty"`
}

type textParams struct {
	MaxNewTokens   int     `json:"max_new_tokens,omitempty"`
	Temperature    float64 `json:"temperature,omitempty"`
	TopP           float64 `json:"top_p,omitempty"`
	ReturnFullText bool    `json:"return_full_text"`
}

type generatedText struct {
	GeneratedText string `json:"generated_text"`
}

type errorResponse struct {
	Error         json.RawMessage `json:"error"`
	EstimatedTime float64         `json:"estimated_time"`
}

// NewClient constructs a client with defaults applied to the missing options.
func NewClient(opts Options) (*Client, error) {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.RequestTimeout}
	}
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		return nil, fmt.Errorf("hf: invalid base url %q", opts.BaseURL)
	}
	logger := opts.Logger
	if logger == nil {
		logger = infra.NopLogger()
	}
	return &Client{
		token:      strings.TrimSpace(opts.Token),
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// HasCredentials reports whether the client can perform remote calls.
func (c *Client) HasCredentials() bool {
	return c != nil && c.token != ""
}

// TextToImage runs the model once and returns the raw raster bytes.
func (c *Client) TextToImage(ctx context.Context, req TextToImageRequest) ([]byte, error) {
	if !c.HasCredentials() {
		return nil, ErrMissingToken
	}
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return nil, errors.New("hf: prompt is required")
	}
	payload := inferenceRequest{
		Inputs: prompt,
		Parameters: imageParams{
			Width:          req.Width,
			Height:         req.Height,
			NegativePrompt: strings.TrimSpace(req.NegativePrompt),
		},
	}
	raw, contentType, err := c.post(ctx, req.Model, payload, "image/png")
	if err != nil {
		return nil, err
	}
	if isJSON(contentType) {
		return nil, fmt.Errorf("hf: expected image, got %s", describeError(raw))
	}
	if len(raw) == 0 {
		return nil, errors.New("hf: empty image response")
	}
	c.logger.Debug().
		Str("model", req.Model).
		Int("width", req.Width).
		Int("height", req.Height).
		Int("bytes", len(raw)).
		Msg("hf: generated image")
	return raw, nil
}

// TextGeneration runs the language model once and returns its generated text
// untouched. An empty string is a valid result.
func (c *Client) TextGeneration(ctx context.Context, req TextGenerationRequest) (string, error) {
	if !c.HasCredentials() {
		return "", ErrMissingToken
	}
	if strings.TrimSpace(req.Inputs) == "" {
		return "", errors.New("hf: inputs are required")
	}
	payload := inferenceRequest{
		Inputs: req.Inputs,
		Parameters: textParams{
			MaxNewTokens:   req.MaxNewTokens,
			Temperature:    req.Temperature,
			TopP:           req.TopP,
			ReturnFullText: req.ReturnFullText,
		},
	}
	raw, _, err := c.post(ctx, req.Model, payload, "application/json")
	if err != nil {
		return "", err
	}
	text, err := decodeGeneratedText(raw)
	if err != nil {
		return "", err
	}
	c.logger.Debug().
		Str("model", req.Model).
		Int("chars", len(text)).
		Msg("hf: generated text")
	return text, nil
}

func (c *Client) post(ctx context.Context, model string, payload inferenceRequest, accept string) ([]byte, string, error) {
	model = strings.Trim(strings.TrimSpace(model), "/")
	if model == "" {
		return nil, "", errors.New("hf: model is required")
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, "", fmt.Errorf("hf: encode request: %w", err)
	}
	endpoint := c.baseURL + "/" + model
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, "", fmt.Errorf("hf: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", accept)
	httpReq.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, "", fmt.Errorf("hf: http request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("hf: read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		c.logger.Debug().
			Str("model", model).
			Int("status", resp.StatusCode).
			Msg("hf: upstream rejected request")
		return nil, "", &StatusError{StatusCode: resp.StatusCode, Message: describeError(raw)}
	}
	return raw, resp.Header.Get("Content-Type"), nil
}

// StatusError is returned when the gateway answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("hf: status %d", e.StatusCode)
	}
	return fmt.Sprintf("hf: %s (status %d)", e.Message, e.StatusCode)
}

// Unwrap lets callers match any upstream rejection with
// domain.ErrProviderFailure.
func (e *StatusError) Unwrap() error {
	return domain.ErrProviderFailure
}

func decodeGeneratedText(raw []byte) (string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return "", errors.New("hf: empty response")
	}
	if trimmed[0] == '[' {
		var list []generatedText
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return "", fmt.Errorf("hf: decode response: %w", err)
		}
		if len(list) == 0 {
			return "", nil
		}
		return list[0].GeneratedText, nil
	}
	var single generatedText
	if err := json.Unmarshal(trimmed, &single); err != nil {
		return "", fmt.Errorf("hf: decode response: %w", err)
	}
	return single.GeneratedText, nil
}

func describeError(raw []byte) string {
	var detail errorResponse
	if err := json.Unmarshal(raw, &detail); err == nil && len(detail.Error) > 0 {
		var msg string
		if err := json.Unmarshal(detail.Error, &msg); err == nil {
			return msg
		}
		var msgs []string
		if err := json.Unmarshal(detail.Error, &msgs); err == nil {
			return strings.Join(msgs, "; ")
		}
	}
	text := strings.TrimSpace(string(raw))
	if len(text) > 200 {
		text = text[:200]
	}
	return text
}

func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json"
}
