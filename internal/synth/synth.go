// Package synth produces the agent's reply to a client message under the
// active instruction set.
package synth

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/MikeSquared-Agency/mentor/internal/conversation"
	"github.com/MikeSquared-Agency/mentor/internal/llm"
)

const (
	Temperature = 0.7
	MaxTokens   = 500
)

type Synthesizer struct {
	llm    llm.Completer
	logger *slog.Logger
}

func New(completer llm.Completer, logger *slog.Logger) *Synthesizer {
	return &Synthesizer{llm: completer, logger: logger}
}

// BuildTurns lays out the request: instructions, history, the client input,
// then a trailing reminder that carries the JSON trigger token.
func BuildTurns(input string, history []conversation.Turn, instructions string) []conversation.Turn {
	turns := make([]conversation.Turn, 0, len(history)+3)
	turns = append(turns, conversation.Turn{Role: conversation.RoleSystem, Content: instructions})
	turns = append(turns, history...)
	turns = append(turns,
		conversation.Turn{Role: conversation.RoleUser, Content: input},
		conversation.Turn{Role: conversation.RoleSystem, Content: llm.JSONReminder},
	)
	return turns
}

// Synthesize asks the collaborator for a reply and extracts it. Only a
// collaborator failure is returned as an error; malformed output is absorbed
// by ExtractReply.
func (s *Synthesizer) Synthesize(ctx context.Context, input string, history []conversation.Turn, instructions string) (Reply, error) {
	raw, err := s.llm.Complete(ctx, llm.Request{
		Turns:       BuildTurns(input, history, instructions),
		Temperature: Temperature,
		MaxTokens:   MaxTokens,
		JSON:        true,
	})
	if err != nil {
		return Reply{}, fmt.Errorf("synthesize reply: %w", err)
	}

	reply := ExtractReply(raw)
	if !reply.Confident() {
		s.logger.Warn("reply extracted without a known key",
			"status", string(reply.Status),
			"raw_len", len(raw),
		)
	}
	s.logger.Debug("reply synthesized",
		"history_turns", len(history),
		"status", string(reply.Status),
	)
	return reply, nil
}
