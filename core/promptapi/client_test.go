package promptapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"voxcollect/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func promptServer(t *testing.T, body string, status int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
}

func TestFetchNextSuccess(t *testing.T) {
	srv := promptServer(t, `{"id":3,"type":"TEXT","body":"say apple"}`, http.StatusOK)
	defer srv.Close()

	result := NewClient(srv.URL, time.Second).FetchNext(context.Background())
	require.Equal(t, StatusSuccess, result.Status)
	require.NotNil(t, result.Prompt)
	assert.EqualValues(t, 3, result.Prompt.ID)
	assert.Equal(t, model.PromptTypeText, result.Prompt.Type)
	assert.Equal(t, "say apple", result.Prompt.Body)
}

func TestFetchNextEmptyObjectMeansExhausted(t *testing.T) {
	srv := promptServer(t, `{}`, http.StatusOK)
	defer srv.Close()

	result := NewClient(srv.URL, time.Second).FetchNext(context.Background())
	assert.Equal(t, StatusEmpty, result.Status)
	assert.Nil(t, result.Prompt)
}

func TestFetchNextServerErrorIsFailure(t *testing.T) {
	srv := promptServer(t, `oops`, http.StatusInternalServerError)
	defer srv.Close()

	result := NewClient(srv.URL, time.Second).FetchNext(context.Background())
	assert.Equal(t, StatusFailure, result.Status)
}

func TestFetchNextNetworkErrorIsFailure(t *testing.T) {
	result := NewClient("http://127.0.0.1:1", time.Second).FetchNext(context.Background())
	assert.Equal(t, StatusFailure, result.Status)
}
