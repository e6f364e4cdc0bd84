// Package llm defines the contract every completion collaborator satisfies.
package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/MikeSquared-Agency/mentor/internal/conversation"
)

// ErrEmptyCompletion is returned when the collaborator answers without text.
var ErrEmptyCompletion = errors.New("empty completion")

// JSONTrigger must appear somewhere in the prompt for OpenAI-compatible
// providers to honour JSON mode; they reject the request otherwise.
const JSONTrigger = "json"

// JSONReminder is appended as a trailing system turn whenever JSON output
// is requested.
const JSONReminder = "IMPORTANT: You must respond in JSON format."

// Request is a single completion call.
type Request struct {
	Model       string // empty uses the client default
	Turns       []conversation.Turn
	Temperature float64
	MaxTokens   int
	JSON        bool
}

// Completer turns a turn sequence into generated text.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// HasJSONTrigger reports whether any turn mentions the JSON trigger token.
func HasJSONTrigger(turns []conversation.Turn) bool {
	for _, t := range turns {
		if strings.Contains(strings.ToLower(t.Content), JSONTrigger) {
			return true
		}
	}
	return false
}

// EnsureJSONTrigger returns turns unchanged when the trigger is present and
// otherwise appends JSONReminder as a system turn.
func EnsureJSONTrigger(turns []conversation.Turn) []conversation.Turn {
	if HasJSONTrigger(turns) {
		return turns
	}
	out := make([]conversation.Turn, len(turns), len(turns)+1)
	copy(out, turns)
	return append(out, conversation.Turn{Role: conversation.RoleSystem, Content: JSONReminder})
}
