package console

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/Adel-MESRATI/Nexus-AI/internal/domain"
	"github.com/Adel-MESRATI/Nexus-AI/internal/infra"
)

const (
	DefaultAspectRatio    = "1:1"
	DefaultStyle          = "none"
	DefaultNegativePrompt = "blurry, low quality, watermark, text, signature, ugly, deformed"
)

var (
	ErrPromptRequired        = errors.New("Please enter a prompt")
	ErrEnhancePromptRequired = errors.New("Please enter a prompt to enhance")
	// ErrBusy rejects an action while the same action is still in flight.
	ErrBusy = errors.New("console: request already in progress")
)

// API is the part of the generation service the console drives.
type API interface {
	Generate(ctx context.Context, req domain.GenerationRequest) (string, error)
	Enhance(ctx context.Context, prompt string) (string, error)
}

// State is a snapshot of everything the console shows. History is
// most-recent-first.
type State struct {
	Prompt         string                  `json:"prompt"`
	AspectRatio    string                  `json:"aspectRatio"`
	Style          string                  `json:"style"`
	NegativePrompt string                  `json:"negativePrompt"`
	Current        *domain.GeneratedImage  `json:"current,omitempty"`
	History        []domain.GeneratedImage `json:"history"`
	Error          string                  `json:"error,omitempty"`
	Generating     bool                    `json:"generating"`
	Enhancing      bool                    `json:"enhancing"`
}

type SessionOptions struct {
	Typewriter Typewriter
	// OnPrompt observes every prompt change made by the typewriter.
	OnPrompt func(string)
	Logger   *infra.Logger
	Now      func() time.Time
}

// Session owns one user's console state. Generate and Enhance each refuse
// to start while a previous call of the same kind is running, but the two
// may run at the same time.
type Session struct {
	api        API
	typewriter Typewriter
	onPrompt   func(string)
	logger     *infra.Logger
	now        func() time.Time

	generating atomic.Bool
	enhancing  atomic.Bool

	mu    sync.Mutex
	state State
}

func NewSession(api API, opts SessionOptions) *Session {
	tw := opts.Typewriter
	if tw == (Typewriter{}) {
		tw = DefaultTypewriter
	}
	logger := opts.Logger
	if logger == nil {
		logger = infra.NopLogger()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Session{
		api:        api,
		typewriter: tw,
		onPrompt:   opts.OnPrompt,
		logger:     logger,
		now:        now,
		state: State{
			AspectRatio:    DefaultAspectRatio,
			Style:          DefaultStyle,
			NegativePrompt: DefaultNegativePrompt,
		},
	}
}

func (s *Session) SetPrompt(prompt string) {
	s.mu.Lock()
	s.state.Prompt = prompt
	s.mu.Unlock()
}

func (s *Session) SetAspectRatio(ratio string) {
	s.mu.Lock()
	s.state.AspectRatio = ratio
	s.mu.Unlock()
}

func (s *Session) SetStyle(style string) {
	s.mu.Lock()
	s.state.Style = style
	s.mu.Unlock()
}

func (s *Session) SetNegativePrompt(negative string) {
	s.mu.Lock()
	s.state.NegativePrompt = negative
	s.mu.Unlock()
}

func (s *Session) DismissError() {
	s.mu.Lock()
	s.state.Error = ""
	s.mu.Unlock()
}

// State returns a copy safe to read while requests are running.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	st.History = append([]domain.GeneratedImage(nil), s.state.History...)
	if s.state.Current != nil {
		current := *s.state.Current
		st.Current = &current
	}
	st.Generating = s.generating.Load()
	st.Enhancing = s.enhancing.Load()
	return st
}

func (s *Session) History() []domain.GeneratedImage {
	return s.State().History
}

// Image looks up a history entry by id.
func (s *Session) Image(id string) (domain.GeneratedImage, bool) {
	return lo.Find(s.History(), func(img domain.GeneratedImage) bool {
		return img.ID == id
	})
}

// Generate submits the current prompt and options. On success the new image
// becomes current and is prepended to history. Failures are recorded in the
// error region and never retried.
func (s *Session) Generate(ctx context.Context) (*domain.GeneratedImage, error) {
	s.mu.Lock()
	req := domain.GenerationRequest{
		Prompt:         s.state.Prompt,
		AspectRatio:    s.state.AspectRatio,
		NegativePrompt: s.state.NegativePrompt,
		Style:          s.state.Style,
	}
	s.mu.Unlock()

	if strings.TrimSpace(req.Prompt) == "" {
		s.setError(ErrPromptRequired)
		return nil, ErrPromptRequired
	}
	if !s.generating.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer s.generating.Store(false)
	s.DismissError()

	data, err := s.api.Generate(ctx, req)
	if err != nil {
		s.logger.Debug().Err(err).Msg("console: generate failed")
		s.setError(err)
		return nil, err
	}

	img := domain.GeneratedImage{
		ID:        uuid.NewString(),
		ImageData: data,
		Prompt:    req.Prompt,
		CreatedAt: s.now(),
	}
	s.mu.Lock()
	s.state.History = append([]domain.GeneratedImage{img}, s.state.History...)
	current := img
	s.state.Current = &current
	s.mu.Unlock()
	return &img, nil
}

// Enhance asks the API to rewrite the current prompt and types the answer
// into the prompt field. The prompt always ends up holding the full
// enhanced text.
func (s *Session) Enhance(ctx context.Context) (string, error) {
	s.mu.Lock()
	prompt := s.state.Prompt
	s.mu.Unlock()

	if strings.TrimSpace(prompt) == "" {
		s.setError(ErrEnhancePromptRequired)
		return "", ErrEnhancePromptRequired
	}
	if !s.enhancing.CompareAndSwap(false, true) {
		return "", ErrBusy
	}
	defer s.enhancing.Store(false)
	s.DismissError()

	enhanced, err := s.api.Enhance(ctx, prompt)
	if err != nil {
		s.logger.Debug().Err(err).Msg("console: enhance failed")
		s.setError(err)
		return "", err
	}
	if enhanced == prompt {
		return enhanced, nil
	}
	s.typewriter.Reveal(ctx, enhanced, func(frame string) {
		s.SetPrompt(frame)
		if s.onPrompt != nil {
			s.onPrompt(frame)
		}
	})
	return enhanced, nil
}

func (s *Session) setError(err error) {
	msg := err.Error()
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		msg = apiErr.Message
	}
	s.mu.Lock()
	s.state.Error = msg
	s.mu.Unlock()
}
