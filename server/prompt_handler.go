package server

import (
	"encoding/json"
	"net/http"

	"voxcollect/logger"
	"voxcollect/model"
)

// NextPromptHandler serves the oldest unread prompt, marking it read as
// it is claimed. An exhausted pool answers with an empty JSON object so
// clients can distinguish "no prompts left" from failure.
func (h *APIHandler) NextPromptHandler(w http.ResponseWriter, r *http.Request) {
	prompt, err := h.promptRepo.NextUnread()
	if err != nil {
		logger.Error("fetching next prompt failed", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "could not fetch prompt")
		return
	}
	if prompt == nil {
		respondJSON(w, http.StatusOK, struct{}{})
		return
	}
	respondJSON(w, http.StatusOK, prompt)
}

// CreatePromptHandler registers a new prompt. The type defaults to TEXT
// when omitted.
func (h *APIHandler) CreatePromptHandler(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Type model.PromptType `json:"type"`
		Body string           `json:"body"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if in.Type == "" {
		in.Type = model.PromptTypeText
	}

	prompt := &model.Prompt{Type: in.Type, Body: in.Body}
	if err := h.promptRepo.SavePrompt(prompt); err != nil {
		logger.Warn("saving prompt failed", logger.ErrorField(err))
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, model.StatusResponse{Success: true})
}

// ResetPromptsHandler marks every prompt unread so a pool can be
// collected again.
func (h *APIHandler) ResetPromptsHandler(w http.ResponseWriter, r *http.Request) {
	n, err := h.promptRepo.ResetAllUnread()
	if err != nil {
		logger.Error("resetting prompts failed", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "could not reset prompts")
		return
	}
	logger.Info("prompt pool reset", logger.Int64("prompts", n))
	respondJSON(w, http.StatusOK, model.StatusResponse{Success: true})
}
