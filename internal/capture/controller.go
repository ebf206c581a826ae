package capture

import (
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/eacdc/VoiceNoteTool/internal/audio"
)

// State represents the recording session state
type State int

const (
	StateIdle State = iota
	StateRecording
	StateStopping
	StateStopped
)

// String returns a human-readable state name
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRecording:
		return "recording"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

var (
	// ErrPermissionDenied indicates the platform refused microphone access.
	ErrPermissionDenied = errors.New("microphone permission denied")
	// ErrDeviceUnavailable indicates no capture device could be acquired.
	ErrDeviceUnavailable = errors.New("capture device unavailable")
	// ErrSessionActive indicates Start was called while a session exists.
	ErrSessionActive = errors.New("a recording session is already active")
)

// Device abstracts a capture device delivering interleaved S16LE PCM.
type Device interface {
	// Start begins capture; onData receives raw PCM as it arrives.
	Start(onData func(pcm []byte)) error
	// Stop halts capture and releases the device. Called exactly once.
	Stop() error
}

// DeviceOpener acquires a capture device at the requested format.
type DeviceOpener func(sampleRate, channels int) (Device, error)

// Config contains capture parameters
type Config struct {
	SampleRate   int
	Channels     int
	MaxDuration  time.Duration
	TickInterval time.Duration
}

// Callbacks are passive observers of a recording session. All fields are
// optional. OnProgress fires once per tick interval while recording;
// OnLimitReached fires exactly once if the maximum duration auto-stop
// triggers.
type Callbacks struct {
	OnProgress     func(elapsed, remaining time.Duration)
	OnLimitReached func()
}

// Recording is the finalized product of a session
type Recording struct {
	Audio    audio.EncodedAudio
	Duration time.Duration
}

// Controller owns at most one recording session at a time
type Controller struct {
	cfg    Config
	open   DeviceOpener
	logger *slog.Logger

	mu        sync.Mutex
	state     State
	startedAt time.Time
	chunks    [][]byte
	device    Device
	released  bool
	autoStop  *time.Timer
	tickDone  chan struct{}
	callbacks Callbacks
	result    *Recording

	// clock is injectable for testing; defaults to time.Now.
	clock func() time.Time
}

// NewController creates a capture controller using the given device opener.
func NewController(cfg Config, open DeviceOpener, logger *slog.Logger) *Controller {
	return &Controller{
		cfg:    cfg,
		open:   open,
		logger: logger,
		state:  StateIdle,
		clock:  time.Now,
	}
}

// State returns the current session state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Start acquires the microphone and begins a recording session. It fails
// with ErrSessionActive unless the controller is idle, and with
// ErrPermissionDenied or ErrDeviceUnavailable when the device cannot be
// acquired. On success it schedules the auto-stop and the progress ticker.
func (c *Controller) Start(callbacks Callbacks) error {
	c.mu.Lock()
	if c.state != StateIdle {
		state := c.state
		c.mu.Unlock()
		return fmt.Errorf("%w (state: %s)", ErrSessionActive, state)
	}

	// Reserve the session before touching hardware; the device may begin
	// delivering data the moment it starts.
	c.state = StateRecording
	c.startedAt = c.clock()
	c.chunks = nil
	c.result = nil
	c.released = false
	c.callbacks = callbacks
	c.mu.Unlock()

	device, err := c.open(c.cfg.SampleRate, c.cfg.Channels)
	if err != nil {
		c.resetToIdle()
		if errors.Is(err, ErrPermissionDenied) || errors.Is(err, ErrDeviceUnavailable) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}

	if err := device.Start(c.appendChunk); err != nil {
		// The device was acquired but never produced data; release it.
		if stopErr := device.Stop(); stopErr != nil {
			c.logger.Warn("failed to release capture device after start error",
				slog.String("error", stopErr.Error()),
			)
		}
		c.resetToIdle()
		return fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}

	c.mu.Lock()
	if c.state != StateRecording {
		// The session was torn down while the device was starting.
		c.mu.Unlock()
		if stopErr := device.Stop(); stopErr != nil {
			c.logger.Warn("failed to release capture device", slog.String("error", stopErr.Error()))
		}
		return nil
	}
	c.device = device
	c.autoStop = time.AfterFunc(c.cfg.MaxDuration, c.handleAutoStop)
	c.tickDone = make(chan struct{})
	go c.progressLoop(c.startedAt, c.tickDone)
	c.mu.Unlock()

	c.logger.Info("recording started",
		slog.Int("sample_rate", c.cfg.SampleRate),
		slog.Int("channels", c.cfg.Channels),
		slog.Duration("max_duration", c.cfg.MaxDuration),
	)

	return nil
}

// Stop finalizes the session and releases the device. Valid from Recording;
// calling it when already Stopped or Idle is a no-op returning the previous
// result (nil when Idle). An explicit Stop cancels the pending auto-stop.
func (c *Controller) Stop() (*Recording, error) {
	rec, stopped := c.finalize()
	if stopped {
		c.logger.Info("recording stopped",
			slog.Duration("duration", rec.Duration),
			slog.Int("payload_bytes", len(rec.Audio.Payload)),
		)
	}
	return rec, nil
}

// Discard resets a stopped (or idle) controller back to Idle, clearing the
// captured chunks. Discarding while recording stops the device first.
func (c *Controller) Discard() {
	c.finalize()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = StateIdle
	c.chunks = nil
	c.result = nil
}

// resetToIdle abandons a reserved session after a device failure.
func (c *Controller) resetToIdle() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = StateIdle
	c.chunks = nil
}

// handleAutoStop fires when the maximum duration elapses. It behaves exactly
// like an explicit Stop plus a single advisory notification.
func (c *Controller) handleAutoStop() {
	rec, stopped := c.finalize()
	if !stopped {
		// Lost the race with an explicit Stop; nothing to announce.
		return
	}

	c.logger.Info("recording stopped automatically, duration limit reached",
		slog.Duration("limit", c.cfg.MaxDuration),
		slog.Int("payload_bytes", len(rec.Audio.Payload)),
	)

	if c.callbacks.OnLimitReached != nil {
		c.callbacks.OnLimitReached()
	}
}

// finalize performs the Recording -> Stopping -> Stopped transition. It
// reports whether this call performed the transition; at most one caller
// (explicit Stop, auto-stop, or Discard) wins.
func (c *Controller) finalize() (*Recording, bool) {
	c.mu.Lock()

	if c.state != StateRecording {
		rec := c.result
		c.mu.Unlock()
		return rec, false
	}

	c.state = StateStopping

	if c.autoStop != nil {
		c.autoStop.Stop()
		c.autoStop = nil
	}
	if c.tickDone != nil {
		close(c.tickDone)
		c.tickDone = nil
	}

	duration := c.clock().Sub(c.startedAt)
	samples := c.collectSamples()
	c.mu.Unlock()

	// Release the device outside the lock; its data callback takes the lock.
	c.releaseDevice()

	rec := &Recording{Duration: duration}
	payload, err := audio.EncodeWAVInterleaved(samples, c.cfg.SampleRate, c.cfg.Channels)
	if err != nil {
		// Zero-length capture; hand back an empty, unnormalized payload.
		rec.Audio = audio.EncodedAudio{MimeType: audio.MimeTypeWAV}
	} else {
		rec.Audio = audio.EncodedAudio{
			MimeType:     audio.MimeTypeWAV,
			Payload:      payload,
			SampleRate:   c.cfg.SampleRate,
			ChannelCount: c.cfg.Channels,
		}
	}

	c.mu.Lock()
	c.state = StateStopped
	c.result = rec
	c.mu.Unlock()

	return rec, true
}

// releaseDevice stops the underlying device exactly once.
func (c *Controller) releaseDevice() {
	c.mu.Lock()
	device := c.device
	alreadyReleased := c.released
	c.released = true
	c.device = nil
	c.mu.Unlock()

	if device == nil || alreadyReleased {
		return
	}

	if err := device.Stop(); err != nil {
		c.logger.Warn("failed to release capture device", slog.String("error", err.Error()))
	}
}

// appendChunk receives raw PCM from the device callback.
func (c *Controller) appendChunk(pcm []byte) {
	if len(pcm) == 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateRecording {
		return
	}

	buf := make([]byte, len(pcm))
	copy(buf, pcm)
	c.chunks = append(c.chunks, buf)
}

// collectSamples concatenates the chunk sequence into interleaved int16
// samples. Caller must hold the lock.
func (c *Controller) collectSamples() []int16 {
	total := 0
	for _, chunk := range c.chunks {
		total += len(chunk)
	}

	samples := make([]int16, 0, total/2)
	for _, chunk := range c.chunks {
		// Drop a trailing odd byte; samples are 2 bytes each.
		for i := 0; i+1 < len(chunk); i += 2 {
			samples = append(samples, int16(binary.LittleEndian.Uint16(chunk[i:i+2])))
		}
	}
	return samples
}

// progressLoop reports elapsed/remaining time once per tick interval until
// the session ends. Purely an observer; correctness does not depend on it.
func (c *Controller) progressLoop(startedAt time.Time, done chan struct{}) {
	ticker := time.NewTicker(c.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			c.mu.Lock()
			onProgress := c.callbacks.OnProgress
			c.mu.Unlock()

			if onProgress == nil {
				continue
			}

			elapsed := c.clock().Sub(startedAt)
			remaining := c.cfg.MaxDuration - elapsed
			if remaining < 0 {
				remaining = 0
			}
			onProgress(elapsed, remaining)
		}
	}
}
