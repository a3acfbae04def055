// Package upload negotiates one-time upload destinations and transfers
// finished artifacts to the collection backend.
package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"time"

	"voxcollect/core/capture"
	"voxcollect/logger"
	"voxcollect/model"

	"github.com/go-resty/resty/v2"
)

const negotiatePath = "/blobstore-utterance-upload-link"

// Metadata is the contextual form data attached to every upload.
type Metadata struct {
	UserID     string
	Gender     string
	UserAge    string
	DeviceType string
}

// Service uploads artifacts. Expected failures (negotiation, network,
// backend rejection) are collapsed into boolean results; the caller
// decides what retrying means.
type Service struct {
	client  *resty.Client
	baseURL string
}

// NewService creates an upload service against the given API base URL.
// The timeout bounds each HTTP attempt so a dead backend cannot hang the
// collection flow.
func NewService(baseURL string, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Service{
		client:  resty.New().SetTimeout(timeout),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// GetUploadDestination requests a fresh single-use upload URL. Returns
// ("", false) on any negotiation failure; this is an expected, retryable
// condition.
func (s *Service) GetUploadDestination(ctx context.Context) (string, bool) {
	resp, err := s.client.R().SetContext(ctx).Get(s.baseURL + negotiatePath)
	if err != nil {
		logger.Warn("upload link negotiation failed", logger.ErrorField(err))
		return "", false
	}

	var result model.UrlResponse
	if err := json.Unmarshal(resp.Body(), &result); err != nil || !result.Success || result.URL == "" {
		return "", false
	}
	return s.absolute(result.URL), true
}

// SaveAudio negotiates a destination and transfers the artifact plus its
// metadata. One-time URLs are never reused: every call negotiates its own.
// Returns true only when the backend acknowledges success.
func (s *Service) SaveAudio(ctx context.Context, artifact *capture.Artifact, meta Metadata) bool {
	dest, ok := s.GetUploadDestination(ctx)
	if !ok {
		return false
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetFileReader("audio", "blob", bytes.NewReader(artifact.Payload)).
		SetFormData(map[string]string{
			"userId":     meta.UserID,
			"gender":     meta.Gender,
			"userAge":    meta.UserAge,
			"deviceType": meta.DeviceType,
		}).
		Post(dest)
	if err != nil {
		logger.Warn("utterance upload failed", logger.ErrorField(err))
		return false
	}

	var result model.StatusResponse
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return false
	}
	return result.Success
}

// absolute resolves server-relative destinations against the base URL.
func (s *Service) absolute(url string) string {
	if strings.HasPrefix(url, "/") {
		return s.baseURL + url
	}
	return url
}
