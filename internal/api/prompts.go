package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/MikeSquared-Agency/mentor/internal/conversation"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

type generateReplyRequest struct {
	ClientSequence string          `json:"clientSequence"`
	ChatHistory    json.RawMessage `json:"chatHistory"`
}

type improveRequest struct {
	ClientSequence  string          `json:"clientSequence"`
	ChatHistory     json.RawMessage `json:"chatHistory"`
	ConsultantReply string          `json:"consultantReply"`
}

type manualRequest struct {
	Instructions string `json:"instructions"`
}

type chatRequest struct {
	Message string          `json:"message"`
	History json.RawMessage `json:"history"`
}

// decode reads the body into v and checks required fields in order. It
// writes the 400 itself and reports whether the handler should continue.
func decode(w http.ResponseWriter, r *http.Request, v any, required func() []field) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("invalid JSON: %v", err)})
		return false
	}
	for _, f := range required() {
		if strings.TrimSpace(f.value) == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": f.name + " is required"})
			return false
		}
	}
	return true
}

type field struct {
	name  string
	value string
}

// getPrompt handles GET /prompt
func (s *Server) getPrompt(w http.ResponseWriter, r *http.Request) {
	ins := s.mentor.ActiveInstructions(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"system_prompt": ins.Text,
		"version":       ins.Number,
		"baseline":      ins.Baseline,
	})
}

// generateReply handles POST /generate-reply
func (s *Server) generateReply(w http.ResponseWriter, r *http.Request) {
	var req generateReplyRequest
	if !decode(w, r, &req, func() []field {
		return []field{{"clientSequence", req.ClientSequence}}
	}) {
		return
	}

	reply, err := s.mentor.SynthesizeReply(r.Context(), req.ClientSequence, conversation.FormatHistory(req.ChatHistory))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"aiReply":    reply.Text,
		"extraction": string(reply.Status),
	})
}

// improveAI handles POST /improve-ai
func (s *Server) improveAI(w http.ResponseWriter, r *http.Request) {
	var req improveRequest
	if !decode(w, r, &req, func() []field {
		return []field{{"clientSequence", req.ClientSequence}, {"consultantReply", req.ConsultantReply}}
	}) {
		return
	}

	it := conversation.TrainingInteraction{
		History:            conversation.HistoryLines(req.ChatHistory),
		ClientInput:        req.ClientSequence,
		ConsultantResponse: req.ConsultantReply,
	}
	opt, err := s.mentor.Improve(r.Context(), it, conversation.FormatHistory(req.ChatHistory))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"predictedReply": opt.Predicted.Text,
		"updatedPrompt":  opt.Text,
		"rule":           opt.Rule,
		"version":        opt.Version.Number,
	})
}

// improveAIManually handles POST /improve-ai-manually
func (s *Server) improveAIManually(w http.ResponseWriter, r *http.Request) {
	var req manualRequest
	if !decode(w, r, &req, func() []field {
		return []field{{"instructions", req.Instructions}}
	}) {
		return
	}

	opt, err := s.mentor.RunManualOptimization(r.Context(), req.Instructions)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"updatedPrompt": opt.Text,
		"rule":          opt.Rule,
		"version":       opt.Version.Number,
	})
}

// chat handles POST /chat, the older shape of /generate-reply.
func (s *Server) chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if !decode(w, r, &req, func() []field {
		return []field{{"message", req.Message}}
	}) {
		return
	}

	reply, err := s.mentor.SynthesizeReply(r.Context(), req.Message, conversation.FormatHistory(req.History))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"response": reply.Text})
}

// listPrompts handles GET /api/v1/prompts?limit=N
func (s *Server) listPrompts(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a positive integer"})
			return
		}
		limit = min(n, maxListLimit)
	}

	vs, err := s.mentor.Versions(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if vs == nil {
		writeJSON(w, http.StatusOK, map[string]any{"prompts": []any{}, "count": 0})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"prompts": vs, "count": len(vs)})
}
