package service

import (
	"context"
	"errors"
)

// ErrTextGenerationUnavailable is returned when no generator is configured.
var ErrTextGenerationUnavailable = errors.New("text generation is not configured")

// TextGenerator is an opaque text-completion function.
type TextGenerator interface {
	Complete(ctx context.Context, prompt string, maxTokens int) (string, error)
}
