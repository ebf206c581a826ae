package save

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/eacdc/VoiceNoteTool/internal/audio"
	"github.com/eacdc/VoiceNoteTool/internal/backend"
	"github.com/eacdc/VoiceNoteTool/internal/metrics"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testMetrics() *metrics.Metrics {
	return metrics.NewMetrics(prometheus.NewRegistry())
}

// stubSaver records every request and fails the configured job numbers.
type stubSaver struct {
	mu       sync.Mutex
	requests []backend.SaveVoiceNoteRequest
	failJobs map[string]error
}

func (s *stubSaver) SaveVoiceNote(ctx context.Context, req backend.SaveVoiceNoteRequest) error {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.mu.Unlock()

	if err, ok := s.failJobs[req.JobNumber]; ok {
		return err
	}
	return nil
}

func (s *stubSaver) received() []backend.SaveVoiceNoteRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]backend.SaveVoiceNoteRequest, len(s.requests))
	copy(out, s.requests)
	return out
}

func testRequest(jobs ...string) Request {
	return Request{
		Audio: audio.EncodedAudio{
			MimeType:     audio.MimeTypeWAV,
			Payload:      []byte{0x52, 0x49, 0x46, 0x46},
			SampleRate:   16000,
			ChannelCount: 1,
			Normalized:   true,
		},
		CorrelationID: "corr-1",
		JobNumbers:    jobs,
		Department:    "prepress",
		Author:        "alice",
		UserID:        "u1",
		Summary:       "reprint with new dieline",
	}
}

func TestSaveFanout(t *testing.T) {
	saver := &stubSaver{}
	o := NewOrchestrator(saver, testMetrics(), testLogger())

	result, err := o.Save(context.Background(), testRequest("1001", "1002", "1003"))
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if !reflect.DeepEqual(result.Successes, []string{"1001", "1002", "1003"}) {
		t.Errorf("unexpected successes %v", result.Successes)
	}
	if len(result.Failures) != 0 {
		t.Errorf("unexpected failures %v", result.Failures)
	}

	requests := saver.received()
	if len(requests) != 3 {
		t.Fatalf("expected 3 backend calls, got %d", len(requests))
	}

	// Identical correlation identifier and payload on every call; only the
	// job number differs.
	seenJobs := map[string]bool{}
	for _, req := range requests {
		if req.AudioID != "corr-1" {
			t.Errorf("correlation identifier differs: %q", req.AudioID)
		}
		if req.AudioBlob != requests[0].AudioBlob {
			t.Error("audio payload differs between requests")
		}
		if req.ToDepartment != "prepress" || req.CreatedBy != "alice" || req.UserID != "u1" {
			t.Errorf("routing metadata differs: %+v", req)
		}
		seenJobs[req.JobNumber] = true
	}
	for _, job := range []string{"1001", "1002", "1003"} {
		if !seenJobs[job] {
			t.Errorf("no request issued for job %s", job)
		}
	}
}

func TestSavePartialFailure(t *testing.T) {
	boom := errors.New("disk full")
	saver := &stubSaver{failJobs: map[string]error{"1002": boom}}
	o := NewOrchestrator(saver, testMetrics(), testLogger())

	result, err := o.Save(context.Background(), testRequest("1001", "1002", "1003"))
	if err != nil {
		t.Fatalf("partial failure must not raise, got %v", err)
	}

	if !reflect.DeepEqual(result.Successes, []string{"1001", "1003"}) {
		t.Errorf("unexpected successes %v", result.Successes)
	}
	if !errors.Is(result.Failures["1002"], boom) {
		t.Errorf("expected failure for 1002, got %v", result.Failures)
	}

	// Failure on one job never suppresses the others.
	if len(saver.received()) != 3 {
		t.Errorf("expected all 3 jobs attempted, got %d", len(saver.received()))
	}
}

func TestSaveTotalFailure(t *testing.T) {
	boom := errors.New("backend down")
	saver := &stubSaver{failJobs: map[string]error{"1001": boom, "1002": boom}}
	o := NewOrchestrator(saver, testMetrics(), testLogger())

	result, err := o.Save(context.Background(), testRequest("1001", "1002"))
	if !errors.Is(err, ErrAllSavesFailed) {
		t.Fatalf("expected ErrAllSavesFailed, got %v", err)
	}
	if result == nil || len(result.Failures) != 2 {
		t.Errorf("expected failure detail for both jobs, got %+v", result)
	}
}

func TestSavePreconditions(t *testing.T) {
	saver := &stubSaver{}
	o := NewOrchestrator(saver, testMetrics(), testLogger())

	tests := []struct {
		name    string
		mutate  func(*Request)
		wantErr error
	}{
		{"no jobs", func(r *Request) { r.JobNumbers = nil }, ErrNoJobSelected},
		{"no department", func(r *Request) { r.Department = "" }, ErrNoDepartmentSelected},
		{"no user", func(r *Request) { r.UserID = "" }, ErrNotAuthenticated},
		{"no author", func(r *Request) { r.Author = "" }, ErrNotAuthenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testRequest("1001")
			tt.mutate(&req)

			_, err := o.Save(context.Background(), req)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
			if len(saver.received()) != 0 {
				t.Error("precondition failure must not reach the backend")
			}
		})
	}
}
