// Package editor derives corrective rules from model mistakes and appends
// them to an instruction set. Existing lines are never rewritten or removed.
package editor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/MikeSquared-Agency/mentor/internal/conversation"
	"github.com/MikeSquared-Agency/mentor/internal/llm"
)

const (
	Temperature = 0.2
	MaxTokens   = 500
)

// ErrEmptyRule is returned when the collaborator produced no usable rule.
var ErrEmptyRule = errors.New("editor produced an empty rule")

var fencePattern = regexp.MustCompile("(?s)```(?:[A-Za-z0-9_-]*[ \t]*\n)?\\s*(.*?)\\s*```")

// Edit is a proposed new instruction set and the rule that produced it.
type Edit struct {
	Rule string
	Text string
}

type Editor struct {
	llm    llm.Completer
	logger *slog.Logger
}

func New(completer llm.Completer, logger *slog.Logger) *Editor {
	return &Editor{llm: completer, logger: logger}
}

// FromFeedback critiques predicted against the interaction's ground truth
// and appends the resulting rule to instructions.
func (e *Editor) FromFeedback(ctx context.Context, instructions string, it conversation.TrainingInteraction, predicted string) (Edit, error) {
	history := emptyHistory
	if len(it.History) > 0 {
		history = strings.Join(it.History, "\n")
	}

	turns := []conversation.Turn{
		{Role: conversation.RoleSystem, Content: feedbackSystemPrompt},
		{Role: conversation.RoleUser, Content: fmt.Sprintf(feedbackUserPrompt, it.ClientInput, history, it.ConsultantResponse, predicted)},
	}
	return e.edit(ctx, "feedback", instructions, turns)
}

// FromInstructions compresses free-text operator instructions into one rule
// and appends it to instructions.
func (e *Editor) FromInstructions(ctx context.Context, instructions, freeText string) (Edit, error) {
	turns := []conversation.Turn{
		{Role: conversation.RoleSystem, Content: manualSystemPrompt},
		{Role: conversation.RoleUser, Content: fmt.Sprintf(manualUserPrompt, freeText)},
	}
	return e.edit(ctx, "manual", instructions, turns)
}

func (e *Editor) edit(ctx context.Context, mode, instructions string, turns []conversation.Turn) (Edit, error) {
	raw, err := e.llm.Complete(ctx, llm.Request{
		Turns:       turns,
		Temperature: Temperature,
		MaxTokens:   MaxTokens,
	})
	if err != nil {
		return Edit{}, fmt.Errorf("%s edit: %w", mode, err)
	}

	rule := CleanRule(raw)
	if rule == "" {
		e.logger.Warn("editor returned no rule", "mode", mode, "raw", raw)
		return Edit{}, ErrEmptyRule
	}

	e.logger.Info("rule derived", "mode", mode, "rule", rule)
	return Edit{Rule: rule, Text: AppendRule(instructions, rule)}, nil
}

// StripFence returns the body of the first fenced block in s, or s trimmed
// when there is none.
func StripFence(s string) string {
	if m := fencePattern.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(s)
}

// CleanRule turns raw editor output into a single bullet-free line.
func CleanRule(raw string) string {
	var parts []string
	for _, line := range strings.Split(StripFence(raw), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			parts = append(parts, line)
		}
	}
	rule := strings.Join(parts, " ")
	for _, marker := range []string{"- ", "* ", "• "} {
		rule = strings.TrimPrefix(rule, marker)
	}
	return strings.TrimSpace(rule)
}

// AppendRule adds rule as a new bullet line. A newline is inserted first
// only when instructions does not already end with one, so repeated
// appends never produce blank lines and instructions stays a prefix of the
// result.
func AppendRule(instructions, rule string) string {
	if instructions != "" && !strings.HasSuffix(instructions, "\n") {
		instructions += "\n"
	}
	return instructions + "- " + rule + "\n"
}
