// Package promptapi is the client for the prompt provider: it fetches the
// next prompt to collect and can reset a finished session's pool.
package promptapi

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"voxcollect/logger"
	"voxcollect/model"

	"github.com/go-resty/resty/v2"
)

// Status classifies a fetch outcome.
type Status string

const (
	StatusSuccess Status = "SUCCESS"
	StatusEmpty   Status = "EMPTY"
	StatusFailure Status = "FAILURE"
)

// Result is the outcome of one fetch. Prompt is set iff Status is SUCCESS.
type Result struct {
	Status Status
	Prompt *model.Prompt
}

// Client talks to the prompt endpoints.
type Client struct {
	client  *resty.Client
	baseURL string
}

// NewClient creates a prompt client against the given API base URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		client:  resty.New().SetTimeout(timeout),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// FetchNext asks for the next unread prompt. An empty JSON object from the
// backend means the session is exhausted.
func (c *Client) FetchNext(ctx context.Context) Result {
	resp, err := c.client.R().SetContext(ctx).Get(c.baseURL + "/api/prompt")
	if err != nil || resp.StatusCode() != 200 {
		logger.Warn("prompt fetch failed", logger.ErrorField(err))
		return Result{Status: StatusFailure}
	}

	var prompt model.Prompt
	if err := json.Unmarshal(resp.Body(), &prompt); err != nil {
		return Result{Status: StatusFailure}
	}
	if prompt.ID == 0 && prompt.Body == "" {
		return Result{Status: StatusEmpty}
	}
	return Result{Status: StatusSuccess, Prompt: &prompt}
}

// ResetAll marks every prompt unread so a pool can be collected again.
func (c *Client) ResetAll(ctx context.Context) error {
	_, err := c.client.R().SetContext(ctx).Post(c.baseURL + "/api/prompt/all")
	return err
}
