package collection

// Event drives the state machine. User triggers come from the UI layer,
// the rest are settlements produced while executing effects.
type Event interface {
	isEvent()
}

// RecordPressed is the user asking to start capturing.
type RecordPressed struct{}

// StopPressed is the user ending the capture.
type StopPressed struct{}

// ConfirmPressed accepts the screened recording for upload.
type ConfirmPressed struct{}

// RerecordPressed discards the screened recording.
type RerecordPressed struct{}

// RetryPressed re-attempts a failed upload with the retained artifact.
type RetryPressed struct{}

// CaptureFailed reports that the capture engine could not initialize,
// start, or finalize a recording. Reason is user-facing.
type CaptureFailed struct {
	Reason string
}

// QualityPassed reports that the stopped recording cleared screening.
type QualityPassed struct{}

// QualityFailed reports a screening rejection. Reason is the exact
// message the quality gate produced.
type QualityFailed struct {
	Reason string
}

// UploadSettled reports the outcome of an upload attempt.
type UploadSettled struct {
	OK bool
}

// PromptExhausted reports that the prompt pool has no unread entries
// left. It ends the session.
type PromptExhausted struct{}

func (RecordPressed) isEvent()   {}
func (StopPressed) isEvent()     {}
func (ConfirmPressed) isEvent()  {}
func (RerecordPressed) isEvent() {}
func (RetryPressed) isEvent()    {}
func (CaptureFailed) isEvent()   {}
func (QualityPassed) isEvent()   {}
func (QualityFailed) isEvent()   {}
func (UploadSettled) isEvent()   {}
func (PromptExhausted) isEvent() {}
