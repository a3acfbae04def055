package model

// StatusResponse acknowledges an operation that either took or did not.
type StatusResponse struct {
	Success bool `json:"success"`
}

// UrlResponse carries a freshly minted one-time upload link.
type UrlResponse struct {
	Success bool   `json:"success"`
	URL     string `json:"url"`
}

// ErrorResponse reports a failed operation with a human-readable reason.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}
