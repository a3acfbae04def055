// Package collection orchestrates the record → screen → review → upload →
// next-prompt flow. State lives in one place, moves only through the
// transition table, and every engine failure resolves to a well-defined
// state.
package collection

// State is the single source of truth for what the collection flow is
// doing. Rendering layers read it; only the session mutates it.
type State string

const (
	// StateNotRecording: a prompt is loaded, nothing is being captured.
	StateNotRecording State = "NOT_RECORDING"
	// StateRecording: the microphone is live and buffering.
	StateRecording State = "RECORDING"
	// StateBeforeUpload: a screened recording awaits confirm or re-record.
	StateBeforeUpload State = "BEFORE_UPLOAD"
	// StateTransitioning: the utterance is uploading and the next prompt
	// is being fetched.
	StateTransitioning State = "TRANSITIONING"
	// StateUploadError: the transfer failed; the artifact is retained so
	// a retry does not require re-recording.
	StateUploadError State = "UPLOAD_ERROR"
	// StateEnded: the prompt pool is exhausted. Terminal.
	StateEnded State = "ENDED"
)
