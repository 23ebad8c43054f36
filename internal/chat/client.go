package chat

import (
	"context"
	"errors"
	"fmt"
)

// ErrNoResponse indicates the reasoning service returned no usable text.
var ErrNoResponse = errors.New("chat: no response from reasoning service")

// Chatter sends a user utterance to the reasoning service over an existing
// conversation history and returns the raw text reply. Implementations are
// thin pass-throughs: no retry, backoff or rate limiting.
type Chatter interface {
	Send(ctx context.Context, history []Message, utterance string) (string, error)
}

// InstructionsFunc supplies the system prompt for a turn. Clients call it per
// send because the prompt embeds the current date and time.
type InstructionsFunc func() string

// Unavailable is the Chatter wired in when no reasoning backend could be
// configured at startup. Every send fails, so every chat turn fails, but the
// process still serves the management API.
type Unavailable struct {
	Err error
}

// Send always fails with the configuration error.
func (u Unavailable) Send(ctx context.Context, history []Message, utterance string) (string, error) {
	if u.Err == nil {
		return "", ErrNoResponse
	}
	return "", fmt.Errorf("chat: reasoning service unavailable: %w", u.Err)
}
