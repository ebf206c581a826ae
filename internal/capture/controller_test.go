package capture

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/eacdc/VoiceNoteTool/internal/audio"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubDevice is a controllable in-memory capture device
type stubDevice struct {
	mu       sync.Mutex
	onData   func([]byte)
	started  bool
	stops    int32
	startErr error
}

func (d *stubDevice) Start(onData func(pcm []byte)) error {
	if d.startErr != nil {
		return d.startErr
	}
	d.mu.Lock()
	d.onData = onData
	d.started = true
	d.mu.Unlock()
	return nil
}

func (d *stubDevice) Stop() error {
	atomic.AddInt32(&d.stops, 1)
	return nil
}

func (d *stubDevice) push(pcm []byte) {
	d.mu.Lock()
	onData := d.onData
	d.mu.Unlock()
	if onData != nil {
		onData(pcm)
	}
}

func (d *stubDevice) stopCount() int {
	return int(atomic.LoadInt32(&d.stops))
}

func opener(d *stubDevice) DeviceOpener {
	return func(sampleRate, channels int) (Device, error) {
		return d, nil
	}
}

func testConfig() Config {
	return Config{
		SampleRate:   16000,
		Channels:     1,
		MaxDuration:  time.Hour, // never fires unless a test shrinks it
		TickInterval: time.Hour,
	}
}

func TestStartStopLifecycle(t *testing.T) {
	device := &stubDevice{}
	c := NewController(testConfig(), opener(device), testLogger())

	if c.State() != StateIdle {
		t.Fatalf("expected idle, got %s", c.State())
	}

	if err := c.Start(Callbacks{}); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	if c.State() != StateRecording {
		t.Fatalf("expected recording, got %s", c.State())
	}

	device.push([]byte{0x01, 0x00, 0x02, 0x00}) // samples 1, 2
	device.push([]byte{0x03, 0x00})             // sample 3

	rec, err := c.Stop()
	if err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	if c.State() != StateStopped {
		t.Errorf("expected stopped, got %s", c.State())
	}

	if device.stopCount() != 1 {
		t.Errorf("device released %d times, want exactly 1", device.stopCount())
	}

	pcm, err := audio.DecodeWAV(rec.Audio.Payload)
	if err != nil {
		t.Fatalf("captured payload is not WAV: %v", err)
	}

	want := []int16{1, 2, 3}
	if len(pcm.Samples) != len(want) {
		t.Fatalf("expected %d samples, got %d", len(want), len(pcm.Samples))
	}
	for i := range want {
		if pcm.Samples[i] != want[i] {
			t.Errorf("sample %d: expected %d, got %d", i, want[i], pcm.Samples[i])
		}
	}
}

func TestStartRejectedWhileActive(t *testing.T) {
	device := &stubDevice{}
	c := NewController(testConfig(), opener(device), testLogger())

	if err := c.Start(Callbacks{}); err != nil {
		t.Fatalf("first Start failed: %v", err)
	}

	err := c.Start(Callbacks{})
	if !errors.Is(err, ErrSessionActive) {
		t.Fatalf("expected ErrSessionActive, got %v", err)
	}

	// Stopped is still not Idle; a new session requires Discard.
	if _, err := c.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if err := c.Start(Callbacks{}); !errors.Is(err, ErrSessionActive) {
		t.Fatalf("expected ErrSessionActive after stop, got %v", err)
	}

	c.Discard()
	if err := c.Start(Callbacks{}); err != nil {
		t.Fatalf("Start after Discard failed: %v", err)
	}
}

func TestStopIdempotent(t *testing.T) {
	device := &stubDevice{}
	c := NewController(testConfig(), opener(device), testLogger())

	// Stop while idle is a no-op.
	if rec, err := c.Stop(); err != nil || rec != nil {
		t.Fatalf("idle Stop: expected (nil, nil), got (%v, %v)", rec, err)
	}

	if err := c.Start(Callbacks{}); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	device.push([]byte{0x05, 0x00})

	first, err := c.Stop()
	if err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	second, err := c.Stop()
	if err != nil {
		t.Fatalf("second Stop failed: %v", err)
	}

	if second != first {
		t.Error("repeated Stop should return the same recording")
	}

	if device.stopCount() != 1 {
		t.Errorf("device released %d times, want exactly 1", device.stopCount())
	}
}

func TestAutoStop(t *testing.T) {
	device := &stubDevice{}
	cfg := testConfig()
	cfg.MaxDuration = 30 * time.Millisecond
	c := NewController(cfg, opener(device), testLogger())

	var limitHits int32
	done := make(chan struct{})
	err := c.Start(Callbacks{
		OnLimitReached: func() {
			if atomic.AddInt32(&limitHits, 1) == 1 {
				close(done)
			}
		},
	})
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	device.push([]byte{0x01, 0x00})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("auto-stop did not fire")
	}

	if c.State() != StateStopped {
		t.Errorf("expected stopped after auto-stop, got %s", c.State())
	}

	if device.stopCount() != 1 {
		t.Errorf("device released %d times, want exactly 1", device.stopCount())
	}

	// A later explicit Stop is a no-op and must not re-raise the advisory.
	if _, err := c.Stop(); err != nil {
		t.Fatalf("Stop after auto-stop failed: %v", err)
	}
	time.Sleep(20 * time.Millisecond)
	if n := atomic.LoadInt32(&limitHits); n != 1 {
		t.Errorf("advisory raised %d times, want exactly 1", n)
	}
}

func TestExplicitStopCancelsAutoStop(t *testing.T) {
	device := &stubDevice{}
	cfg := testConfig()
	cfg.MaxDuration = 50 * time.Millisecond
	c := NewController(cfg, opener(device), testLogger())

	var limitHits int32
	if err := c.Start(Callbacks{
		OnLimitReached: func() { atomic.AddInt32(&limitHits, 1) },
	}); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	if _, err := c.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	time.Sleep(100 * time.Millisecond)
	if n := atomic.LoadInt32(&limitHits); n != 0 {
		t.Errorf("advisory raised %d times after explicit stop, want 0", n)
	}
}

func TestProgressTick(t *testing.T) {
	device := &stubDevice{}
	cfg := testConfig()
	cfg.TickInterval = 10 * time.Millisecond
	cfg.MaxDuration = time.Second
	c := NewController(cfg, opener(device), testLogger())

	ticks := make(chan time.Duration, 16)
	err := c.Start(Callbacks{
		OnProgress: func(elapsed, remaining time.Duration) {
			select {
			case ticks <- remaining:
			default:
			}
		},
	})
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	select {
	case remaining := <-ticks:
		if remaining > time.Second {
			t.Errorf("remaining %v exceeds max duration", remaining)
		}
	case <-time.After(time.Second):
		t.Fatal("no progress tick observed")
	}

	if _, err := c.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
}

func TestStartDeviceErrors(t *testing.T) {
	t.Run("permission denied", func(t *testing.T) {
		open := func(sampleRate, channels int) (Device, error) {
			return nil, ErrPermissionDenied
		}
		c := NewController(testConfig(), open, testLogger())
		if err := c.Start(Callbacks{}); !errors.Is(err, ErrPermissionDenied) {
			t.Fatalf("expected ErrPermissionDenied, got %v", err)
		}
		if c.State() != StateIdle {
			t.Errorf("expected idle after failed start, got %s", c.State())
		}
	})

	t.Run("generic open error maps to unavailable", func(t *testing.T) {
		open := func(sampleRate, channels int) (Device, error) {
			return nil, errors.New("backend exploded")
		}
		c := NewController(testConfig(), open, testLogger())
		if err := c.Start(Callbacks{}); !errors.Is(err, ErrDeviceUnavailable) {
			t.Fatalf("expected ErrDeviceUnavailable, got %v", err)
		}
	})

	t.Run("device start failure releases device", func(t *testing.T) {
		device := &stubDevice{startErr: errors.New("stream refused")}
		c := NewController(testConfig(), opener(device), testLogger())
		if err := c.Start(Callbacks{}); !errors.Is(err, ErrDeviceUnavailable) {
			t.Fatalf("expected ErrDeviceUnavailable, got %v", err)
		}
		if device.stopCount() != 1 {
			t.Errorf("device released %d times after start failure, want 1", device.stopCount())
		}
	})
}

func TestChunksIgnoredAfterStop(t *testing.T) {
	device := &stubDevice{}
	c := NewController(testConfig(), opener(device), testLogger())

	if err := c.Start(Callbacks{}); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	device.push([]byte{0x01, 0x00})

	rec, err := c.Stop()
	if err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	// Late data from a straggling callback must not mutate the result.
	device.push([]byte{0x09, 0x00})

	pcm, err := audio.DecodeWAV(rec.Audio.Payload)
	if err != nil {
		t.Fatalf("captured payload is not WAV: %v", err)
	}
	if len(pcm.Samples) != 1 || pcm.Samples[0] != 1 {
		t.Errorf("late chunk leaked into recording: %v", pcm.Samples)
	}
}
