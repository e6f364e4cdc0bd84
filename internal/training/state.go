package training

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/MikeSquared-Agency/mentor/internal/conversation"
)

// DefaultStatePath is used when no state file is given.
const DefaultStatePath = "~/.mentor/train-state.json"

// State tracks progress for resumable training runs.
type State struct {
	StartedAt       time.Time `json:"started_at"`
	LastProcessedAt time.Time `json:"last_processed_at"`
	Source          string    `json:"source"`
	Trained         []string  `json:"trained"`
	Committed       int       `json:"committed"`
	Rejected        int       `json:"rejected"`
	Errors          []string  `json:"errors"`

	path string // not serialized
}

// LoadState loads the training state from path, or creates a new one.
func LoadState(path string) (*State, error) {
	if path == "" {
		path = DefaultStatePath
	}
	p := expandHome(path)

	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return &State{
				StartedAt: time.Now().UTC(),
				path:      p,
			}, nil
		}
		return nil, fmt.Errorf("read state: %w", err)
	}

	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse state: %w", err)
	}
	s.path = p
	return &s, nil
}

// Save persists the state to disk.
func (s *State) Save() error {
	s.LastProcessedAt = time.Now().UTC()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	return os.WriteFile(s.path, data, 0o644)
}

func (s *State) Path() string {
	return s.path
}

// IsTrained returns true if the sample has already been used.
func (s *State) IsTrained(key string) bool {
	return slices.Contains(s.Trained, key)
}

func (s *State) MarkTrained(key string) {
	s.Trained = append(s.Trained, key)
}

func (s *State) AddError(msg string) {
	s.Errors = append(s.Errors, msg)
}

// SampleKey identifies an interaction independent of its position in the
// conversations file.
func SampleKey(it conversation.TrainingInteraction) string {
	h := sha256.New()
	h.Write([]byte(strings.Join(it.History, "\n")))
	h.Write([]byte{0})
	h.Write([]byte(it.ClientInput))
	h.Write([]byte{0})
	h.Write([]byte(it.ConsultantResponse))
	return hex.EncodeToString(h.Sum(nil))[:16]
}

func expandHome(path string) string {
	if len(path) > 1 && path[0] == '~' && path[1] == '/' {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
