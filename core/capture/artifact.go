package capture

import (
	"sync"

	"github.com/google/uuid"
)

// Artifact is a completed recording: the WAV payload, a locally resolvable
// playback URL, and the derived duration in seconds. The URL stays valid
// until Release is called.
type Artifact struct {
	Payload      []byte
	RecordingURL string
	Duration     float64
}

// Release revokes the playback URL. Idempotent.
func (a *Artifact) Release() {
	if a.RecordingURL != "" {
		RevokeObjectURL(a.RecordingURL)
		a.RecordingURL = ""
	}
}

// objectURLs is a process-wide registry of in-memory payloads addressable
// by mem:// URLs, mirroring platform object-URL semantics: created
// explicitly, resolvable while registered, and revoked by the owner to
// avoid leaking the payload.
var objectURLs = struct {
	mu      sync.Mutex
	entries map[string][]byte
}{entries: make(map[string][]byte)}

// CreateObjectURL registers a payload and returns its mem:// URL.
func CreateObjectURL(payload []byte) string {
	url := "mem://" + uuid.NewString()
	objectURLs.mu.Lock()
	objectURLs.entries[url] = payload
	objectURLs.mu.Unlock()
	return url
}

// ResolveObjectURL returns the payload for a registered URL.
func ResolveObjectURL(url string) ([]byte, bool) {
	objectURLs.mu.Lock()
	defer objectURLs.mu.Unlock()
	payload, ok := objectURLs.entries[url]
	return payload, ok
}

// RevokeObjectURL removes a registered URL. Unknown URLs are ignored.
func RevokeObjectURL(url string) {
	objectURLs.mu.Lock()
	delete(objectURLs.entries, url)
	objectURLs.mu.Unlock()
}
