package server

import (
	"encoding/json"
	"net/http"

	"voxcollect/cache"
	"voxcollect/config"
	"voxcollect/logger"
	"voxcollect/model"
	"voxcollect/repository"
	"voxcollect/storage"
)

// APIHandler handles all collection backend requests.
type APIHandler struct {
	promptRepo repository.PromptRepository
	uttRepo    repository.UtteranceRepository
	audioStore storage.AudioStore
	tokens     cache.TokenStore
	cfg        *config.Config
}

// NewAPIHandler creates the backend handler set.
func NewAPIHandler(
	promptRepo repository.PromptRepository,
	uttRepo repository.UtteranceRepository,
	audioStore storage.AudioStore,
	tokens cache.TokenStore,
	cfg *config.Config,
) *APIHandler {
	return &APIHandler{
		promptRepo: promptRepo,
		uttRepo:    uttRepo,
		audioStore: audioStore,
		tokens:     tokens,
		cfg:        cfg,
	}
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("writing response failed", logger.ErrorField(err))
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, model.ErrorResponse{Success: false, Error: msg})
}
