package collection

import (
	"context"
	"sync"

	"voxcollect/core/capture"
	"voxcollect/core/promptapi"
	"voxcollect/core/qc"
	"voxcollect/core/upload"
	"voxcollect/logger"
	"voxcollect/model"
)

const (
	msgMicBlocked    = "Microphone access is blocked. Enable it and try again."
	msgCaptureFailed = "Could not record successfully. Try again!"
)

// Recorder is the slice of the capture engine the session drives.
type Recorder interface {
	Initialize(ctx context.Context) error
	Start() bool
	Stop(ctx context.Context) (*capture.Artifact, error)
	Stream() capture.Stream
	Teardown()
}

// Screener judges a finished recording.
type Screener interface {
	Evaluate(ctx context.Context, wavData []byte) (qc.Verdict, error)
}

// Uploader transfers a screened recording to the backend.
type Uploader interface {
	SaveAudio(ctx context.Context, artifact *capture.Artifact, meta upload.Metadata) bool
}

// PromptSource hands out the next unread prompt.
type PromptSource interface {
	FetchNext(ctx context.Context) promptapi.Result
}

// WaveSink mirrors the live capture stream for visualization. It is
// attached for the duration of a recording only.
type WaveSink interface {
	Attach(s capture.Stream)
	Detach()
}

// Notifier receives the session's user-visible output. Implementations
// must not call back into the session from these methods.
type Notifier interface {
	StateChanged(s State)
	ShowPrompt(p *model.Prompt)
	ShowError(msg string)
	SessionEnded()
}

// Session ties the capture engine, quality gate, upload service, prompt
// source and wave feed together behind the transition table. Dispatch
// runs a trigger and every settlement it produces to completion before
// returning, so at most one flow is in flight per session.
type Session struct {
	engine  Recorder
	gate    Screener
	upload  Uploader
	prompts PromptSource
	wave    WaveSink
	notify  Notifier
	meta    upload.Metadata

	runMu sync.Mutex

	mu       sync.Mutex
	state    State
	epoch    uint64
	artifact *capture.Artifact
}

// NewSession wires a session in the NOT_RECORDING state. Any of wave and
// notify may be nil.
func NewSession(engine Recorder, gate Screener, up Uploader, prompts PromptSource, wave WaveSink, notify Notifier, meta upload.Metadata) *Session {
	return &Session{
		engine:  engine,
		gate:    gate,
		upload:  up,
		prompts: prompts,
		wave:    wave,
		notify:  notify,
		meta:    meta,
		state:   StateNotRecording,
	}
}

// State returns the current machine state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

type queuedEvent struct {
	ev    Event
	epoch uint64
}

// Dispatch feeds a user trigger into the machine and drains every
// settlement it produces. Triggers that are invalid in the current state
// are ignored.
func (s *Session) Dispatch(ctx context.Context, ev Event) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	queue := []queuedEvent{{ev: ev, epoch: s.currentEpoch()}}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]

		effects, epoch, ok := s.apply(next)
		if !ok {
			continue
		}
		for _, eff := range effects {
			if s.currentEpoch() != epoch {
				// The session was abandoned while an earlier effect was
				// in flight. The rest of this transition is void.
				break
			}
			queue = append(queue, s.execute(ctx, eff, epoch)...)
		}
	}
}

// Close abandons the session. In-flight settlements from an interrupted
// Dispatch are discarded because the epoch moves past them.
func (s *Session) Close() {
	s.mu.Lock()
	if s.state == StateEnded {
		s.mu.Unlock()
		return
	}
	s.state = StateEnded
	s.epoch++
	a := s.artifact
	s.artifact = nil
	s.mu.Unlock()

	if a != nil {
		a.Release()
	}
	if s.wave != nil {
		s.wave.Detach()
	}
	s.engine.Teardown()
}

func (s *Session) currentEpoch() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.epoch
}

// apply runs one event through the transition table. Events minted under
// an older epoch are dropped; the machine has moved on without them.
func (s *Session) apply(q queuedEvent) ([]Effect, uint64, bool) {
	s.mu.Lock()
	if q.epoch != s.epoch {
		s.mu.Unlock()
		logger.Debug("discarding stale collection event",
			logger.String("state", string(s.state)))
		return nil, 0, false
	}
	next, effects, ok := Transition(s.state, q.ev)
	if !ok {
		s.mu.Unlock()
		return nil, 0, false
	}
	prev := s.state
	s.state = next
	epoch := s.epoch
	s.mu.Unlock()

	if prev != next {
		logger.Debug("collection state changed",
			logger.String("from", string(prev)),
			logger.String("to", string(next)))
		if s.notify != nil {
			s.notify.StateChanged(next)
		}
	}
	return effects, epoch, true
}

// execute runs one effect and returns the settlements it produced, each
// stamped with the epoch it was minted under.
func (s *Session) execute(ctx context.Context, eff Effect, epoch uint64) []queuedEvent {
	settle := func(ev Event) []queuedEvent {
		return []queuedEvent{{ev: ev, epoch: epoch}}
	}

	switch e := eff.(type) {
	case EffStartCapture:
		if err := s.engine.Initialize(ctx); err != nil {
			logger.Warn("capture initialization failed", logger.ErrorField(err))
			return settle(CaptureFailed{Reason: msgMicBlocked})
		}
		if !s.engine.Start() {
			return settle(CaptureFailed{Reason: msgCaptureFailed})
		}
		if s.wave != nil {
			s.wave.Attach(s.engine.Stream())
		}
		return nil

	case EffStopAndEvaluate:
		if s.wave != nil {
			s.wave.Detach()
		}
		artifact, err := s.engine.Stop(ctx)
		s.engine.Teardown()
		if err != nil {
			logger.Warn("finalizing recording failed", logger.ErrorField(err))
			return settle(CaptureFailed{Reason: msgCaptureFailed})
		}
		s.setArtifact(artifact)
		verdict, err := s.gate.Evaluate(ctx, artifact.Payload)
		if err != nil {
			logger.Warn("quality screening failed", logger.ErrorField(err))
			return settle(CaptureFailed{Reason: msgCaptureFailed})
		}
		if !verdict.Success {
			return settle(QualityFailed{Reason: verdict.ErrorMessage})
		}
		return settle(QualityPassed{})

	case EffBeginUpload:
		a := s.currentArtifact()
		if a == nil {
			return settle(UploadSettled{OK: false})
		}
		ok := s.upload.SaveAudio(ctx, a, s.meta)
		return settle(UploadSettled{OK: ok})

	case EffAdvancePrompt:
		res := s.prompts.FetchNext(ctx)
		switch res.Status {
		case promptapi.StatusSuccess:
			if s.notify != nil {
				s.notify.ShowPrompt(res.Prompt)
			}
		case promptapi.StatusEmpty:
			return settle(PromptExhausted{})
		default:
			if s.notify != nil {
				s.notify.ShowError("Could not load the next prompt.")
			}
		}
		return nil

	case EffDiscardArtifact, EffReleaseArtifact:
		s.releaseArtifact()
		return nil

	case EffSurfaceError:
		if s.notify != nil {
			s.notify.ShowError(e.Message)
		}
		return nil

	case EffEndSession:
		s.releaseArtifact()
		if s.wave != nil {
			s.wave.Detach()
		}
		s.engine.Teardown()
		if s.notify != nil {
			s.notify.SessionEnded()
		}
		return nil
	}
	return nil
}

func (s *Session) setArtifact(a *capture.Artifact) {
	s.mu.Lock()
	s.artifact = a
	s.mu.Unlock()
}

func (s *Session) currentArtifact() *capture.Artifact {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.artifact
}

func (s *Session) releaseArtifact() {
	s.mu.Lock()
	a := s.artifact
	s.artifact = nil
	s.mu.Unlock()
	if a != nil {
		a.Release()
	}
}
