package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"voxcollect/logger"
	"voxcollect/model"
)

// maxUploadBytes bounds a single utterance upload. Recordings are short
// mono WAV clips; anything larger is not an utterance.
const maxUploadBytes = 32 << 20

// UploadLinkHandler mints a fresh single-use upload destination. Each
// link is valid for one POST inside the configured TTL.
func (h *APIHandler) UploadLinkHandler(w http.ResponseWriter, r *http.Request) {
	token, err := h.tokens.Mint(r.Context())
	if err != nil {
		logger.Error("minting upload link failed", logger.ErrorField(err))
		respondJSON(w, http.StatusInternalServerError, model.UrlResponse{Success: false})
		return
	}
	respondJSON(w, http.StatusOK, model.UrlResponse{
		Success: true,
		URL:     "/upload-utterance/" + token,
	})
}

// UploadUtteranceHandler accepts one utterance on a single-use link: the
// audio file plus the speaker metadata as multipart form data. The link
// is consumed before anything is read, so a replayed URL is rejected
// even when the first attempt later fails.
func (h *APIHandler) UploadUtteranceHandler(w http.ResponseWriter, r *http.Request) {
	token := mux.Vars(r)["token"]
	ok, err := h.tokens.Consume(r.Context(), token)
	if err != nil {
		logger.Error("consuming upload link failed", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "could not verify upload link")
		return
	}
	if !ok {
		respondError(w, http.StatusForbidden, "upload link is invalid or already used")
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		respondError(w, http.StatusBadRequest, "audio cannot be empty")
		return
	}
	defer file.Close()

	userID := r.FormValue("userId")
	age, err := strconv.Atoi(r.FormValue("userAge"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "age must be between 1 and 120")
		return
	}
	var promptID int64
	if v := r.FormValue("promptId"); v != "" {
		promptID, _ = strconv.ParseInt(v, 10, 64)
	}
	var duration float64
	if v := r.FormValue("duration"); v != "" {
		duration, _ = strconv.ParseFloat(v, 64)
	}

	utterance := &model.Utterance{
		AudioKey: fmt.Sprintf("utterances/%s/%s.wav", userID, uuid.NewString()),
		UserID:   userID,
		PromptID: promptID,
		Device:   r.FormValue("deviceType"),
		Age:      age,
		Gender:   r.FormValue("gender"),
		Duration: duration,
	}
	if err := utterance.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.audioStore.PutAudio(r.Context(), utterance.AudioKey, file, header.Size, "audio/wav"); err != nil {
		logger.Error("storing audio failed", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "could not store audio")
		return
	}

	if _, err := h.uttRepo.SaveUtterance(utterance); err != nil {
		logger.Error("saving utterance failed", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "could not save utterance")
		return
	}

	logger.Info("utterance uploaded",
		logger.String("userId", userID),
		logger.String("audioKey", utterance.AudioKey),
		logger.Int64("bytes", header.Size))
	respondJSON(w, http.StatusOK, model.StatusResponse{Success: true})
}
