package domain

import "errors"

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidPrompt      = errors.New("invalid prompt")
	ErrProviderFailure    = errors.New("provider failure")
	ErrMissingCredentials = errors.New("missing inference credentials")
)
