// Package mentor runs the prompt-refinement loop: predict a reply with the
// active instructions, derive one corrective rule, commit the extended text.
package mentor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/MikeSquared-Agency/mentor/internal/conversation"
	"github.com/MikeSquared-Agency/mentor/internal/editor"
	"github.com/MikeSquared-Agency/mentor/internal/hermes"
	"github.com/MikeSquared-Agency/mentor/internal/slack"
	"github.com/MikeSquared-Agency/mentor/internal/store"
	"github.com/MikeSquared-Agency/mentor/internal/synth"
	"github.com/MikeSquared-Agency/mentor/internal/versions"
)

// Mode records which path produced a version.
type Mode string

const (
	ModeFeedback Mode = "feedback"
	ModeManual   Mode = "manual"
	ModeTraining Mode = "training"
	ModeReset    Mode = "reset"
)

// Publisher is satisfied by *hermes.Client.
type Publisher interface {
	Publish(subject string, data any) error
}

// Notifier is satisfied by *slack.Poster.
type Notifier interface {
	AnnounceRule(ctx context.Context, a slack.Announcement) (string, error)
}

// Optimization is the outcome of one accepted edit.
type Optimization struct {
	Predicted synth.Reply
	Rule      string
	Text      string
	Parent    int64
	Version   *store.Version
}

type Service struct {
	synth     *synth.Synthesizer
	editor    *editor.Editor
	versions  *versions.Adapter
	publisher Publisher
	notifier  Notifier
	logger    *slog.Logger
}

// New wires the service. publisher and notifier may be nil.
func New(sy *synth.Synthesizer, ed *editor.Editor, v *versions.Adapter, pub Publisher, notifier Notifier, logger *slog.Logger) *Service {
	return &Service{
		synth:     sy,
		editor:    ed,
		versions:  v,
		publisher: pub,
		notifier:  notifier,
		logger:    logger,
	}
}

// ActiveInstructions reads through to the store on every call.
func (s *Service) ActiveInstructions(ctx context.Context) versions.Instructions {
	return s.versions.Active(ctx)
}

// SynthesizeReply predicts the consultant's reply to input.
func (s *Service) SynthesizeReply(ctx context.Context, input string, history []conversation.Turn) (synth.Reply, error) {
	ins := s.versions.Active(ctx)
	return s.synth.Synthesize(ctx, input, history, ins.Text)
}

// RunFeedbackOptimization derives a rule from the gap between predicted and
// the interaction's ground truth and commits it.
func (s *Service) RunFeedbackOptimization(ctx context.Context, it conversation.TrainingInteraction, predicted string) (*Optimization, error) {
	ins := s.versions.Active(ctx)
	return s.optimize(ctx, ins, it, synth.Reply{Text: predicted}, ModeFeedback, FeedbackNotes(it.ClientInput))
}

// Improve predicts a reply for the interaction and optimizes against it.
// Prediction and edit use the same active version.
func (s *Service) Improve(ctx context.Context, it conversation.TrainingInteraction, history []conversation.Turn) (*Optimization, error) {
	return s.improve(ctx, it, history, ModeFeedback, FeedbackNotes(it.ClientInput))
}

// Train is Improve for a segmented sample; its history lines are turned
// back into turns for the prediction.
func (s *Service) Train(ctx context.Context, it conversation.TrainingInteraction) (*Optimization, error) {
	return s.improve(ctx, it, conversation.TurnsFromHistory(it.History), ModeTraining, TrainingNotes(it.ClientInput))
}

func (s *Service) improve(ctx context.Context, it conversation.TrainingInteraction, history []conversation.Turn, mode Mode, notes string) (*Optimization, error) {
	ins := s.versions.Active(ctx)
	predicted, err := s.synth.Synthesize(ctx, it.ClientInput, history, ins.Text)
	if err != nil {
		return nil, fmt.Errorf("predict reply: %w", err)
	}
	return s.optimize(ctx, ins, it, predicted, mode, notes)
}

func (s *Service) optimize(ctx context.Context, ins versions.Instructions, it conversation.TrainingInteraction, predicted synth.Reply, mode Mode, notes string) (*Optimization, error) {
	edit, err := s.editor.FromFeedback(ctx, ins.Text, it, predicted.Text)
	if err != nil {
		return nil, editError(err)
	}
	opt, err := s.commit(ctx, ins, edit, mode, notes)
	if err != nil {
		return nil, err
	}
	opt.Predicted = predicted
	return opt, nil
}

// RunManualOptimization compresses free-text instructions into one rule and
// commits it.
func (s *Service) RunManualOptimization(ctx context.Context, freeText string) (*Optimization, error) {
	ins := s.versions.Active(ctx)
	edit, err := s.editor.FromInstructions(ctx, ins.Text, freeText)
	if err != nil {
		return nil, editError(err)
	}
	return s.commit(ctx, ins, edit, ModeManual, ManualNotes(freeText))
}

// Reset re-commits the baseline.
func (s *Service) Reset(ctx context.Context) (*store.Version, error) {
	v, err := s.versions.Reset(ctx)
	if err != nil {
		return nil, err
	}
	s.announce(ctx, v, ModeReset, "")
	return v, nil
}

// Versions lists stored versions, newest first.
func (s *Service) Versions(ctx context.Context, limit int) ([]store.Version, error) {
	return s.versions.List(ctx, limit)
}

func (s *Service) commit(ctx context.Context, ins versions.Instructions, edit editor.Edit, mode Mode, notes string) (*Optimization, error) {
	v, err := s.versions.Commit(ctx, edit.Text, notes, ins.Number)
	if err != nil {
		return nil, err
	}
	s.announce(ctx, v, mode, edit.Rule)
	return &Optimization{Rule: edit.Rule, Text: edit.Text, Parent: ins.Number, Version: v}, nil
}

// announce is best effort; a committed version stays committed.
func (s *Service) announce(ctx context.Context, v *store.Version, mode Mode, rule string) {
	if s.publisher != nil {
		err := s.publisher.Publish(hermes.SubjectPromptCommitted, hermes.PromptCommitted{
			Version:   v.Number,
			Notes:     v.Notes,
			Mode:      string(mode),
			Rule:      rule,
			Timestamp: time.Now().UTC(),
		})
		if err != nil {
			s.logger.Warn("publish prompt committed", "error", err, "version", v.Number)
		}
	}

	if s.notifier != nil {
		_, err := s.notifier.AnnounceRule(ctx, slack.Announcement{
			Version: v.Number,
			Mode:    string(mode),
			Rule:    rule,
			Notes:   v.Notes,
			Lines:   lineCount(v.Text),
		})
		if err != nil {
			s.logger.Warn("announce prompt version", "error", err, "version", v.Number)
		}
	}
}

func editError(err error) error {
	if errors.Is(err, editor.ErrEmptyRule) {
		return fmt.Errorf("%w: %w", versions.ErrOptimizationRejected, err)
	}
	return err
}

func lineCount(text string) int {
	text = strings.TrimRight(text, "\n")
	if text == "" {
		return 0
	}
	return strings.Count(text, "\n") + 1
}

func FeedbackNotes(input string) string {
	return versions.Notes("Auto-improved based on: ", input, 20)
}

func ManualNotes(freeText string) string {
	return versions.Notes("Manual update: ", freeText, 20)
}

func TrainingNotes(input string) string {
	return versions.Notes("Optimized based on sample: ", input, 30)
}
