package upload

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"voxcollect/core/capture"
	"voxcollect/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type uploadBackend struct {
	negotiations atomic.Int32
	uploads      atomic.Int32

	negotiateFails bool
	uploadFails    bool

	lastFields   map[string]string
	lastFilename string
	lastAudio    []byte
}

func (b *uploadBackend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/blobstore-utterance-upload-link", func(w http.ResponseWriter, r *http.Request) {
		n := b.negotiations.Add(1)
		if b.negotiateFails {
			json.NewEncoder(w).Encode(model.ErrorResponse{Success: false, Error: "no link"})
			return
		}
		json.NewEncoder(w).Encode(model.UrlResponse{Success: true, URL: fmt.Sprintf("/upload-utterance/tok-%d", n)})
	})
	mux.HandleFunc("/upload-utterance/", func(w http.ResponseWriter, r *http.Request) {
		b.uploads.Add(1)
		if err := r.ParseMultipartForm(10 << 20); err != nil {
			json.NewEncoder(w).Encode(model.StatusResponse{Success: false})
			return
		}
		b.lastFields = map[string]string{
			"userId":     r.FormValue("userId"),
			"gender":     r.FormValue("gender"),
			"userAge":    r.FormValue("userAge"),
			"deviceType": r.FormValue("deviceType"),
		}
		file, header, err := r.FormFile("audio")
		if err == nil {
			b.lastFilename = header.Filename
			b.lastAudio, _ = io.ReadAll(file)
			file.Close()
		}
		json.NewEncoder(w).Encode(model.StatusResponse{Success: !b.uploadFails})
	})
	return mux
}

func testArtifact() *capture.Artifact {
	payload := []byte("RIFF....WAVE pretend payload")
	return &capture.Artifact{Payload: payload, RecordingURL: capture.CreateObjectURL(payload), Duration: 3.0}
}

func TestSaveAudioHappyPath(t *testing.T) {
	backend := &uploadBackend{}
	srv := httptest.NewServer(backend.handler())
	defer srv.Close()

	svc := NewService(srv.URL, 5*time.Second)
	artifact := testArtifact()
	defer artifact.Release()

	ok := svc.SaveAudio(context.Background(), artifact, Metadata{
		UserID: "u-1", Gender: "male", UserAge: "41", DeviceType: "phone",
	})
	require.True(t, ok)

	assert.EqualValues(t, 1, backend.negotiations.Load())
	assert.EqualValues(t, 1, backend.uploads.Load())
	assert.Equal(t, "blob", backend.lastFilename)
	assert.Equal(t, artifact.Payload, backend.lastAudio)
	assert.Equal(t, map[string]string{
		"userId": "u-1", "gender": "male", "userAge": "41", "deviceType": "phone",
	}, backend.lastFields)
}

func TestSaveAudioNegotiationFailureSkipsTransfer(t *testing.T) {
	backend := &uploadBackend{negotiateFails: true}
	srv := httptest.NewServer(backend.handler())
	defer srv.Close()

	svc := NewService(srv.URL, 5*time.Second)
	artifact := testArtifact()
	defer artifact.Release()

	assert.False(t, svc.SaveAudio(context.Background(), artifact, Metadata{}))
	assert.EqualValues(t, 0, backend.uploads.Load(), "no transfer without a destination")
}

func TestSaveAudioBackendRejection(t *testing.T) {
	backend := &uploadBackend{uploadFails: true}
	srv := httptest.NewServer(backend.handler())
	defer srv.Close()

	svc := NewService(srv.URL, 5*time.Second)
	artifact := testArtifact()
	defer artifact.Release()

	assert.False(t, svc.SaveAudio(context.Background(), artifact, Metadata{}))
}

func TestSaveAudioNetworkFailureReturnsFalse(t *testing.T) {
	// Nothing is listening here.
	svc := NewService("http://127.0.0.1:1", time.Second)
	artifact := testArtifact()
	defer artifact.Release()

	assert.False(t, svc.SaveAudio(context.Background(), artifact, Metadata{}))
}

func TestDestinationsAreNotReusedAcrossAttempts(t *testing.T) {
	backend := &uploadBackend{}
	srv := httptest.NewServer(backend.handler())
	defer srv.Close()

	svc := NewService(srv.URL, 5*time.Second)
	artifact := testArtifact()
	defer artifact.Release()

	require.True(t, svc.SaveAudio(context.Background(), artifact, Metadata{}))
	require.True(t, svc.SaveAudio(context.Background(), artifact, Metadata{}))

	assert.EqualValues(t, 2, backend.negotiations.Load(), "each attempt negotiates its own link")
}

func TestGetUploadDestinationResolvesRelativeURL(t *testing.T) {
	backend := &uploadBackend{}
	srv := httptest.NewServer(backend.handler())
	defer srv.Close()

	svc := NewService(srv.URL+"/", 5*time.Second)
	dest, ok := svc.GetUploadDestination(context.Background())
	require.True(t, ok)
	assert.Equal(t, srv.URL+"/upload-utterance/tok-1", dest)
}
