package app

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/eacdc/VoiceNoteTool/internal/analysis"
	"github.com/eacdc/VoiceNoteTool/internal/audio"
	"github.com/eacdc/VoiceNoteTool/internal/backend"
	"github.com/eacdc/VoiceNoteTool/internal/capture"
	"github.com/eacdc/VoiceNoteTool/internal/config"
	"github.com/eacdc/VoiceNoteTool/internal/metrics"
	"github.com/eacdc/VoiceNoteTool/internal/reconcile"
	"github.com/eacdc/VoiceNoteTool/internal/save"
	"github.com/eacdc/VoiceNoteTool/internal/session"
)

// ErrNoRecording indicates a save or discard was attempted with nothing recorded.
var ErrNoRecording = errors.New("no recording available")

// Backend is the subset of the backend client the controller uses.
type Backend interface {
	Login(ctx context.Context, username, password string) (*backend.LoginResponse, error)
	Signup(ctx context.Context, username, password string) error
	SearchJobNumbers(ctx context.Context, partial string) ([]string, error)
	JobDetails(ctx context.Context, jobNumber string) (*backend.JobDetailsResponse, error)
	SaveVoiceNote(ctx context.Context, req backend.SaveVoiceNoteRequest) error
	ListJobAudio(ctx context.Context, jobNumber, userID string) ([]backend.AudioRecord, error)
	FetchAudio(ctx context.Context, id string) (*backend.AudioPayload, error)
	Analyze(ctx context.Context, req backend.AnalyzeRequest) (*backend.AnalyzeResponse, error)
	SetToken(token string)
	ClearToken()
}

// AudioPlayer plays an encoded payload to completion.
type AudioPlayer interface {
	Play(payload []byte, mimeType string) error
}

// Dependencies are the injectable collaborators of the controller.
// Sessions and Backend are required; Opener and Player default to the
// real microphone and speaker implementations.
type Dependencies struct {
	Backend  Backend
	Sessions *session.Store
	Opener   capture.DeviceOpener
	Player   AudioPlayer
}

// App coordinates the components and owns all mutable client state.
type App struct {
	cfg      *config.Config
	logger   *slog.Logger
	metrics  *metrics.Metrics
	backend  Backend
	analyzer *analysis.Client
	saver    *save.Orchestrator
	recorder *capture.Controller
	norm     *audio.Normalizer
	player   AudioPlayer
	sessions *session.Store

	mu        sync.Mutex
	identity  *session.Session
	jobs      []string
	dept      string
	recording *capture.Recording
}

// New wires the application controller from configuration and
// dependencies.
func New(cfg *config.Config, logger *slog.Logger, m *metrics.Metrics, deps Dependencies) *App {
	opener := deps.Opener
	if opener == nil {
		opener = capture.OpenMiniaudio
	}

	norm := audio.NewNormalizer(cfg.Audio.SampleRate, logger)

	player := deps.Player
	if player == nil {
		player = audio.NewPlayer(norm)
	}

	a := &App{
		cfg:      cfg,
		logger:   logger,
		metrics:  m,
		backend:  deps.Backend,
		norm:     norm,
		player:   player,
		sessions: deps.Sessions,
	}

	a.analyzer = analysis.NewClient(analysis.Config{
		Enabled: cfg.Analysis.Enabled,
		Timeout: cfg.Analysis.GetTimeoutDuration(),
	}, deps.Backend, m, logger)

	a.saver = save.NewOrchestrator(deps.Backend, m, logger)

	a.recorder = capture.NewController(capture.Config{
		SampleRate:   cfg.Capture.DeviceSampleRate,
		Channels:     cfg.Capture.DeviceChannels,
		MaxDuration:  cfg.Capture.GetMaxDuration(),
		TickInterval: cfg.Capture.GetTickInterval(),
	}, opener, logger)

	return a
}

// RestoreSession loads a previously stored identity and installs its
// token on the backend client. Missing sessions are not an error.
func (a *App) RestoreSession() error {
	sess, err := a.sessions.Load()
	if err != nil {
		if errors.Is(err, session.ErrNoSession) {
			return nil
		}
		return err
	}

	a.backend.SetToken(sess.Token)

	a.mu.Lock()
	a.identity = sess
	a.mu.Unlock()
	return nil
}

// Login authenticates and persists the session.
func (a *App) Login(ctx context.Context, username, password string) error {
	resp, err := a.backend.Login(ctx, username, password)
	if err != nil {
		return err
	}

	sess := &session.Session{Token: resp.Token, UserID: resp.UserID, Username: resp.Username}
	if err := a.sessions.Save(sess); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}

	a.mu.Lock()
	a.identity = sess
	a.mu.Unlock()
	return nil
}

// Logout clears the stored session and the client token.
func (a *App) Logout() error {
	a.backend.ClearToken()

	a.mu.Lock()
	a.identity = nil
	a.mu.Unlock()

	return a.sessions.Clear()
}

// Signup creates a new account.
func (a *App) Signup(ctx context.Context, username, password string) error {
	return a.backend.Signup(ctx, username, password)
}

// Identity returns the signed-in session, or nil.
func (a *App) Identity() *session.Session {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.identity
}

// SearchJobs returns job numbers matching a partial prefix.
func (a *App) SearchJobs(ctx context.Context, partial string) ([]string, error) {
	return a.backend.SearchJobNumbers(ctx, partial)
}

// JobDetails fetches detail rows for one job.
func (a *App) JobDetails(ctx context.Context, jobNumber string) (*backend.JobDetailsResponse, error) {
	return a.backend.JobDetails(ctx, jobNumber)
}

// SelectJobs replaces the job selection for subsequent saves and listings.
func (a *App) SelectJobs(jobNumbers []string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.jobs = append([]string(nil), jobNumbers...)
}

// SelectDepartment sets the routing department for subsequent saves.
func (a *App) SelectDepartment(department string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.dept = department
}

// SelectedJobs returns the current job selection.
func (a *App) SelectedJobs() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.jobs...)
}

// LoadJobAudio lists the voice notes of every supplied job concurrently
// and reconciles them into common and job-specific partitions. Any listing
// failure fails the whole pass; reconciliation needs a complete snapshot.
func (a *App) LoadJobAudio(ctx context.Context, jobNumbers []string) (reconcile.Result, error) {
	identity := a.Identity()
	if identity == nil {
		return reconcile.Result{}, save.ErrNotAuthenticated
	}

	listings := make([]reconcile.JobListing, len(jobNumbers))

	g, ctx := errgroup.WithContext(ctx)
	for i, jobNumber := range jobNumbers {
		i, jobNumber := i, jobNumber
		g.Go(func() error {
			records, err := a.backend.ListJobAudio(ctx, jobNumber, identity.UserID)
			if err != nil {
				return fmt.Errorf("failed to list audio for job %s: %w", jobNumber, err)
			}
			listings[i] = reconcile.JobListing{JobNumber: jobNumber, Records: records}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return reconcile.Result{}, err
	}

	result := reconcile.Reconcile(listings)

	a.metrics.ReconcilePasses.Inc()
	a.metrics.RecordsCommon.Add(float64(len(result.Common)))
	a.metrics.RecordsSpecific.Add(float64(result.SpecificCount()))
	a.metrics.RecordsSkipped.Add(float64(result.Skipped))

	a.logger.Info("job audio reconciled",
		slog.Int("jobs", len(jobNumbers)),
		slog.Int("common", len(result.Common)),
		slog.Int("specific", result.SpecificCount()),
		slog.Int("skipped", result.Skipped),
	)
	return result, nil
}

// StartRecording begins a capture session.
func (a *App) StartRecording(callbacks capture.Callbacks) error {
	wrapped := callbacks
	onLimit := callbacks.OnLimitReached
	wrapped.OnLimitReached = func() {
		a.metrics.AutoStops.Inc()
		if onLimit != nil {
			onLimit()
		}
	}

	if err := a.recorder.Start(wrapped); err != nil {
		return err
	}
	a.metrics.RecordingsStarted.Inc()
	return nil
}

// StopRecording finalizes the capture session and retains the recording
// for a subsequent save.
func (a *App) StopRecording() (*capture.Recording, error) {
	rec, err := a.recorder.Stop()
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrNoRecording
	}

	a.metrics.RecordingsCompleted.Inc()
	a.metrics.RecordingDuration.Observe(rec.Duration.Seconds())

	a.mu.Lock()
	a.recording = rec
	a.mu.Unlock()
	return rec, nil
}

// DiscardRecording drops the retained recording and resets the recorder.
func (a *App) DiscardRecording() {
	a.recorder.Discard()

	a.mu.Lock()
	a.recording = nil
	a.mu.Unlock()
}

// RecorderState exposes the capture state for display.
func (a *App) RecorderState() capture.State {
	return a.recorder.State()
}

// SaveRecording normalizes the retained recording, requests an optional
// summary, and fans the result out to every selected job under one fresh
// correlation identifier. Analysis failure only costs the summary.
func (a *App) SaveRecording(ctx context.Context) (*save.Result, error) {
	a.mu.Lock()
	identity := a.identity
	jobs := append([]string(nil), a.jobs...)
	dept := a.dept
	rec := a.recording
	a.mu.Unlock()

	if identity == nil {
		return nil, save.ErrNotAuthenticated
	}
	if rec == nil {
		return nil, ErrNoRecording
	}
	if len(jobs) == 0 {
		return nil, save.ErrNoJobSelected
	}
	if dept == "" {
		return nil, save.ErrNoDepartmentSelected
	}

	encoded := a.norm.Normalize(rec.Audio.Payload, rec.Audio.MimeType)
	if encoded.Normalized {
		a.metrics.NormalizeSuccesses.Inc()
	} else {
		a.metrics.NormalizeFallbacks.Inc()
	}
	a.metrics.PayloadSize.Observe(float64(len(encoded.Payload)))

	summary, err := a.analyzer.Summarize(ctx, encoded, dept)
	if err != nil {
		// Advisory only; the save proceeds without a summary.
		summary = ""
	}

	correlationID := uuid.NewString()

	result, err := a.saver.Save(ctx, save.Request{
		Audio:         encoded,
		CorrelationID: correlationID,
		JobNumbers:    jobs,
		Department:    dept,
		Author:        identity.Username,
		UserID:        identity.UserID,
		Summary:       summary,
	})
	if err != nil {
		return result, err
	}

	// The recording is consumed; reset the recorder for the next session.
	a.DiscardRecording()
	return result, nil
}

// Play fetches the full audio payload of one stored record and plays it.
func (a *App) Play(ctx context.Context, recordID string) error {
	payload, err := a.backend.FetchAudio(ctx, recordID)
	if err != nil {
		return err
	}

	data, err := base64.StdEncoding.DecodeString(payload.AudioBlob)
	if err != nil {
		return fmt.Errorf("failed to decode stored audio: %w", err)
	}

	return a.player.Play(data, payload.AudioMimeType)
}
