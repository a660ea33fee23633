package core

import (
	"context"
	"errors"
)

var (
	// ErrTextGenFailed is returned when the provider call fails or returns unusable content.
	ErrTextGenFailed = errors.New("text generation failed")
	// ErrTextGenTimeout is returned when the provider call does not complete in time.
	ErrTextGenTimeout = errors.New("text generation timed out")
)

// TextGenerator is any service that can draft text from a prompt.
type TextGenerator interface {
	// GenerateText sends the system and user prompts to the provider and
	// returns the generated completion. The call is fire-once: no retries.
	GenerateText(ctx context.Context, system, prompt string) (string, error)
}
