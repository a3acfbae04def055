package capture

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"voxcollect/logger"
)

// FFmpegMicrophone captures the system microphone by running ffmpeg with a
// raw s16le stdout pipe.
type FFmpegMicrophone struct {
	Path   string // ffmpeg binary, defaults to "ffmpeg"
	Format string // input format, e.g. "pulse" or "alsa"
	Device string // input device, defaults to "default"
}

// RequestAccess launches ffmpeg against the configured device. A process
// that dies before producing audio is treated as a permission/device
// denial.
func (m *FFmpegMicrophone) RequestAccess(ctx context.Context, c Constraints) (Stream, error) {
	path := m.Path
	if path == "" {
		path = "ffmpeg"
	}
	format := m.Format
	if format == "" {
		format = "pulse"
	}
	device := m.Device
	if device == "" {
		device = "default"
	}

	args := []string{
		"-nostdin",
		"-hide_banner",
		"-loglevel", "warning",
		"-f", format,
		"-i", device,
		"-ac", strconv.Itoa(c.Channels),
		"-ar", strconv.Itoa(c.SampleRate),
		"-f", "s16le",
		"-",
	}

	cmd := exec.CommandContext(ctx, path, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create ffmpeg stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPermissionDenied, err)
	}

	waitErr := make(chan error, 1)
	go func() {
		waitErr <- cmd.Wait()
		close(waitErr)
	}()

	// Give ffmpeg a beat to fail on a blocked or missing device.
	select {
	case <-waitErr:
		return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, strings.TrimSpace(stderr.String()))
	case <-time.After(250 * time.Millisecond):
	}

	s := &ffmpegStream{
		sampleRate: c.SampleRate,
		channels:   c.Channels,
		stdout:     stdout,
		process:    cmd.Process,
		waitErr:    waitErr,
		subs:       make(map[int]chan []byte),
	}
	go s.pump()
	return s, nil
}

// ffmpegStream fans live PCM frames out to subscribers. Slow subscribers
// drop frames rather than stall the pump.
type ffmpegStream struct {
	sampleRate int
	channels   int
	stdout     io.ReadCloser
	process    *os.Process
	waitErr    <-chan error

	mu     sync.Mutex
	subs   map[int]chan []byte
	nextID int
	closed bool

	closeOnce sync.Once
}

func (s *ffmpegStream) SampleRate() int { return s.sampleRate }
func (s *ffmpegStream) Channels() int   { return s.channels }

func (s *ffmpegStream) Subscribe() (<-chan []byte, func()) {
	ch := make(chan []byte, 64)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if sub, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(sub)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

// pump reads 20ms frames from ffmpeg and broadcasts them.
func (s *ffmpegStream) pump() {
	frameSize := s.sampleRate * s.channels * wavBytesPerSample / 50
	if frameSize == 0 {
		frameSize = 640
	}

	for {
		frame := make([]byte, frameSize)
		n, err := io.ReadFull(s.stdout, frame)
		if n > 0 {
			s.broadcast(frame[:n])
		}
		if err != nil {
			s.closeSubs()
			return
		}
	}
}

func (s *ffmpegStream) broadcast(frame []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sub := range s.subs {
		select {
		case sub <- frame:
		default:
		}
	}
}

func (s *ffmpegStream) closeSubs() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for id, sub := range s.subs {
		delete(s.subs, id)
		close(sub)
	}
}

// Close stops the capture process and releases the OS microphone.
func (s *ffmpegStream) Close() error {
	var err error
	s.closeOnce.Do(func() {
		if s.process != nil {
			_ = s.process.Signal(os.Interrupt)
		}
		select {
		case werr := <-s.waitErr:
			if werr != nil {
				logger.Debug("ffmpeg exited", logger.ErrorField(werr))
			}
		case <-time.After(1200 * time.Millisecond):
			if s.process != nil {
				_ = s.process.Kill()
			}
			<-s.waitErr
		}
		err = s.stdout.Close()
		s.closeSubs()
	})
	return err
}
