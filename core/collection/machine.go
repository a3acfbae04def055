package collection

// Effect is an instruction the session executes after a transition is
// accepted. The transition table itself stays pure so it can be tested
// without any engines attached.
type Effect interface {
	isEffect()
}

// EffStartCapture initializes the microphone and starts buffering. On
// failure the session settles CaptureFailed.
type EffStartCapture struct{}

// EffStopAndEvaluate detaches the wave feed, finalizes the recording and
// runs it through the quality gate. Settles QualityPassed,
// QualityFailed or CaptureFailed.
type EffStopAndEvaluate struct{}

// EffBeginUpload transfers the retained artifact. Settles UploadSettled.
type EffBeginUpload struct{}

// EffAdvancePrompt fetches the next unread prompt. Settles
// PromptExhausted when the pool is empty.
type EffAdvancePrompt struct{}

// EffDiscardArtifact releases the retained artifact without uploading it.
type EffDiscardArtifact struct{}

// EffReleaseArtifact releases the retained artifact after a successful
// upload.
type EffReleaseArtifact struct{}

// EffSurfaceError shows a user-facing error message.
type EffSurfaceError struct {
	Message string
}

// EffEndSession tears the session down. No further events are accepted.
type EffEndSession struct{}

func (EffStartCapture) isEffect()    {}
func (EffStopAndEvaluate) isEffect() {}
func (EffBeginUpload) isEffect()     {}
func (EffAdvancePrompt) isEffect()   {}
func (EffDiscardArtifact) isEffect() {}
func (EffReleaseArtifact) isEffect() {}
func (EffSurfaceError) isEffect()    {}
func (EffEndSession) isEffect()      {}

const msgUploadFailed = "Upload failed. Check your connection and retry."

// Transition is the pure core of the collection flow. Given the current
// state and an event it returns the next state and the effects to run.
// The third return is false when the event is not valid in the current
// state, in which case nothing changes and nothing runs.
func Transition(s State, ev Event) (State, []Effect, bool) {
	switch s {
	case StateNotRecording:
		if _, ok := ev.(RecordPressed); ok {
			return StateRecording, []Effect{EffStartCapture{}}, true
		}
		if _, ok := ev.(PromptExhausted); ok {
			return StateEnded, []Effect{EffEndSession{}}, true
		}

	case StateRecording:
		switch e := ev.(type) {
		case StopPressed:
			return StateRecording, []Effect{EffStopAndEvaluate{}}, true
		case QualityPassed:
			return StateBeforeUpload, nil, true
		case QualityFailed:
			return StateNotRecording, []Effect{EffSurfaceError{Message: e.Reason}, EffDiscardArtifact{}}, true
		case CaptureFailed:
			return StateNotRecording, []Effect{EffSurfaceError{Message: e.Reason}, EffDiscardArtifact{}}, true
		}

	case StateBeforeUpload:
		switch ev.(type) {
		case ConfirmPressed:
			// The prompt advances only once we are transitioning, and
			// strictly after the upload attempt has settled.
			return StateTransitioning, []Effect{EffBeginUpload{}, EffAdvancePrompt{}}, true
		case RerecordPressed:
			return StateNotRecording, []Effect{EffDiscardArtifact{}}, true
		}

	case StateTransitioning:
		switch e := ev.(type) {
		case UploadSettled:
			if e.OK {
				return StateNotRecording, []Effect{EffReleaseArtifact{}}, true
			}
			return StateUploadError, []Effect{EffSurfaceError{Message: msgUploadFailed}}, true
		case PromptExhausted:
			return StateEnded, []Effect{EffEndSession{}}, true
		}

	case StateUploadError:
		switch ev.(type) {
		case RetryPressed:
			// The retained artifact goes out again. The prompt was
			// already advanced on the first attempt.
			return StateTransitioning, []Effect{EffBeginUpload{}}, true
		case PromptExhausted:
			return StateEnded, []Effect{EffEndSession{}}, true
		}

	case StateEnded:
		// Terminal.
	}
	return s, nil, false
}
