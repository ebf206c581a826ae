package save

import (
	"context"
	"encoding/base64"
	"errors"
	"log/slog"
	"sort"
	"sync"

	"github.com/eacdc/VoiceNoteTool/internal/audio"
	"github.com/eacdc/VoiceNoteTool/internal/backend"
	"github.com/eacdc/VoiceNoteTool/internal/metrics"
)

var (
	// ErrNoJobSelected indicates the save was attempted with no target jobs.
	ErrNoJobSelected = errors.New("no job selected")
	// ErrNoDepartmentSelected indicates the routing department is missing.
	ErrNoDepartmentSelected = errors.New("no department selected")
	// ErrNotAuthenticated indicates no signed-in identity to attribute the note to.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrAllSavesFailed indicates every per-job request failed.
	ErrAllSavesFailed = errors.New("all saves failed")
)

// Request describes one recording to persist across a set of jobs.
type Request struct {
	Audio         audio.EncodedAudio
	CorrelationID string
	JobNumbers    []string
	Department    string
	Author        string
	UserID        string
	Summary       string
}

// Result aggregates per-job outcomes. Successes is sorted by job number;
// Failures maps each failed job number to its error.
type Result struct {
	Successes []string
	Failures  map[string]error
}

// Saver is the backend operation the orchestrator depends on.
type Saver interface {
	SaveVoiceNote(ctx context.Context, req backend.SaveVoiceNoteRequest) error
}

// Orchestrator performs the per-job save fan-out.
type Orchestrator struct {
	saver   Saver
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewOrchestrator creates a save orchestrator.
func NewOrchestrator(saver Saver, m *metrics.Metrics, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		saver:   saver,
		metrics: m,
		logger:  logger,
	}
}

// Save issues one persistence request per selected job, all carrying the
// identical correlation identifier and audio payload. Requests are
// independent: each is attempted exactly once, and a failure never cancels
// the others. Partial failure is reported in the Result, not as an error;
// the error is non-nil only for precondition violations or when every
// request fails (ErrAllSavesFailed).
func (o *Orchestrator) Save(ctx context.Context, req Request) (*Result, error) {
	if len(req.JobNumbers) == 0 {
		return nil, ErrNoJobSelected
	}
	if req.Department == "" {
		return nil, ErrNoDepartmentSelected
	}
	if req.UserID == "" || req.Author == "" {
		return nil, ErrNotAuthenticated
	}

	o.metrics.SaveFanout.Observe(float64(len(req.JobNumbers)))

	audioBlob := base64.StdEncoding.EncodeToString(req.Audio.Payload)

	result := &Result{Failures: make(map[string]error)}
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, jobNumber := range req.JobNumbers {
		wg.Add(1)
		go func(jobNumber string) {
			defer wg.Done()

			o.metrics.SaveRequests.Inc()
			err := o.saver.SaveVoiceNote(ctx, backend.SaveVoiceNoteRequest{
				JobNumber:     jobNumber,
				ToDepartment:  req.Department,
				AudioBlob:     audioBlob,
				AudioMimeType: req.Audio.MimeType,
				CreatedBy:     req.Author,
				UserID:        req.UserID,
				Summary:       req.Summary,
				AudioID:       req.CorrelationID,
			})

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				o.metrics.SaveFailures.Inc()
				result.Failures[jobNumber] = err
				o.logger.Warn("save failed for job",
					slog.String("job_number", jobNumber),
					slog.String("correlation_id", req.CorrelationID),
					slog.String("error", err.Error()),
				)
				return
			}
			o.metrics.SaveSuccesses.Inc()
			result.Successes = append(result.Successes, jobNumber)
		}(jobNumber)
	}

	wg.Wait()
	sort.Strings(result.Successes)

	o.logger.Info("save completed",
		slog.String("correlation_id", req.CorrelationID),
		slog.Int("succeeded", len(result.Successes)),
		slog.Int("failed", len(result.Failures)),
	)

	if len(result.Successes) == 0 {
		return result, ErrAllSavesFailed
	}
	return result, nil
}
