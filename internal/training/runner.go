// Package training replays segmented conversations through the feedback
// loop, one committed rule per sample.
package training

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/MikeSquared-Agency/mentor/internal/conversation"
	"github.com/MikeSquared-Agency/mentor/internal/mentor"
	"github.com/MikeSquared-Agency/mentor/internal/versions"
)

// Config holds the train command configuration.
type Config struct {
	File      string
	StatePath string
	All       bool          // train on every pending sample instead of one random pick
	Limit     int           // max samples per run with All; 0 means no limit
	Pause     time.Duration // wait between samples
	Seed      uint64        // 0 picks a time-based seed
	Verify    bool          // re-predict with the new version after each commit
}

// Result describes one trained sample.
type Result struct {
	Input         string
	Predicted     string
	Rule          string
	Version       int64
	NewPrediction string
	Rejected      bool
	Err           error
}

// Summary is returned by Run.
type Summary struct {
	Samples   int
	Pending   int
	Results   []Result
	Committed int
	Rejected  int
	Failed    int
	StatePath string
}

// Runner orchestrates a training run.
type Runner struct {
	cfg    Config
	mentor *mentor.Service
	rng    *rand.Rand
	logger *slog.Logger
}

func NewRunner(cfg Config, svc *mentor.Service, logger *slog.Logger) *Runner {
	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &Runner{
		cfg:    cfg,
		mentor: svc,
		rng:    rand.New(rand.NewPCG(seed, seed>>1)),
		logger: logger,
	}
}

// Run loads the conversations file, skips samples recorded in the state
// file and trains on the rest. State is saved after every sample so an
// interrupted run resumes where it stopped.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	interactions, err := conversation.LoadInteractions(r.cfg.File)
	if err != nil {
		return nil, fmt.Errorf("load interactions: %w", err)
	}

	state, err := LoadState(r.cfg.StatePath)
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	state.Source = r.cfg.File

	var pending []conversation.TrainingInteraction
	for _, it := range interactions {
		if !state.IsTrained(SampleKey(it)) {
			pending = append(pending, it)
		}
	}

	summary := &Summary{Samples: len(interactions), Pending: len(pending), StatePath: state.Path()}
	r.logger.Info("training samples loaded",
		"file", r.cfg.File,
		"samples", len(interactions),
		"pending", len(pending),
	)

	batch := r.selectBatch(pending)
	for i, it := range batch {
		select {
		case <-ctx.Done():
			r.logger.Info("training interrupted, saving state")
			_ = state.Save()
			return summary, ctx.Err()
		default:
		}

		res := r.trainOne(ctx, it)
		summary.Results = append(summary.Results, res)

		switch {
		case res.Err == nil:
			summary.Committed++
			state.Committed++
			state.MarkTrained(SampleKey(it))
		case res.Rejected:
			summary.Rejected++
			state.Rejected++
			state.MarkTrained(SampleKey(it))
		default:
			summary.Failed++
			state.AddError(fmt.Sprintf("train %q: %v", truncate(it.ClientInput, 40), res.Err))
		}

		if err := state.Save(); err != nil {
			r.logger.Warn("failed to save training state", "error", err)
		}

		if r.cfg.Pause > 0 && i < len(batch)-1 {
			select {
			case <-ctx.Done():
				return summary, ctx.Err()
			case <-time.After(r.cfg.Pause):
			}
		}
	}

	r.logger.Info("training complete",
		"committed", summary.Committed,
		"rejected", summary.Rejected,
		"failed", summary.Failed,
	)
	return summary, nil
}

func (r *Runner) selectBatch(pending []conversation.TrainingInteraction) []conversation.TrainingInteraction {
	if len(pending) == 0 {
		return nil
	}
	if !r.cfg.All {
		return []conversation.TrainingInteraction{pending[r.rng.IntN(len(pending))]}
	}
	if r.cfg.Limit > 0 && len(pending) > r.cfg.Limit {
		return pending[:r.cfg.Limit]
	}
	return pending
}

func (r *Runner) trainOne(ctx context.Context, it conversation.TrainingInteraction) Result {
	res := Result{Input: it.ClientInput}
	r.logger.Info("training sample", "input", truncate(it.ClientInput, 50), "history", len(it.History))

	opt, err := r.mentor.Train(ctx, it)
	if err != nil {
		res.Err = err
		res.Rejected = errors.Is(err, versions.ErrOptimizationRejected)
		if res.Rejected {
			r.logger.Warn("optimization rejected", "error", err)
		} else {
			r.logger.Error("training failed", "error", err)
		}
		return res
	}
	res.Predicted = opt.Predicted.Text
	res.Rule = opt.Rule
	res.Version = opt.Version.Number

	if r.cfg.Verify {
		reply, err := r.mentor.SynthesizeReply(ctx, it.ClientInput, conversation.TurnsFromHistory(it.History))
		if err != nil {
			r.logger.Warn("verification prediction failed", "error", err)
		} else {
			res.NewPrediction = reply.Text
		}
	}
	return res
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
