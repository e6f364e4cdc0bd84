package conversation

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadFile reads a conversations export: a JSON array of objects whose
// "conversation" field holds the ordered message log.
func LoadFile(path string) ([]Conversation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read conversations: %w", err)
	}

	var convs []Conversation
	if err := json.Unmarshal(data, &convs); err != nil {
		return nil, fmt.Errorf("parse conversations %s: %w", path, err)
	}
	return convs, nil
}

// LoadInteractions reads a conversations export and segments every
// conversation in it.
func LoadInteractions(path string) ([]TrainingInteraction, error) {
	convs, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return SegmentAll(convs), nil
}
