package analysis

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"time"

	"github.com/eacdc/VoiceNoteTool/internal/audio"
	"github.com/eacdc/VoiceNoteTool/internal/backend"
	"github.com/eacdc/VoiceNoteTool/internal/metrics"
)

// Config contains analysis client configuration
type Config struct {
	Enabled bool
	Timeout time.Duration
}

// Analyzer is the backend operation the client depends on.
type Analyzer interface {
	Analyze(ctx context.Context, req backend.AnalyzeRequest) (*backend.AnalyzeResponse, error)
}

// Client wraps the backend analysis endpoint with its own timeout and
// at-most-once semantics.
type Client struct {
	config  Config
	backend Analyzer
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewClient creates an analysis client.
func NewClient(config Config, analyzer Analyzer, m *metrics.Metrics, logger *slog.Logger) *Client {
	if config.Timeout <= 0 {
		config.Timeout = 60 * time.Second
	}
	return &Client{
		config:  config,
		backend: analyzer,
		metrics: m,
		logger:  logger,
	}
}

// Summarize sends a recording for summarization and returns the summary
// text. The call is made at most once; there are no retries. When analysis
// is disabled or fails, the empty string and the error (nil when disabled)
// are returned, and the caller proceeds without a summary.
func (c *Client) Summarize(ctx context.Context, encoded audio.EncodedAudio, department string) (string, error) {
	if !c.config.Enabled {
		return "", nil
	}

	c.metrics.AnalysisRequests.Inc()
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	req := backend.AnalyzeRequest{
		AudioBlob:     base64.StdEncoding.EncodeToString(encoded.Payload),
		AudioMimeType: encoded.MimeType,
		ToDepartment:  department,
	}

	resp, err := c.backend.Analyze(ctx, req)
	c.metrics.AnalysisDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.AnalysisFailures.Inc()
		c.logger.Warn("analysis failed, continuing without summary",
			slog.String("department", department),
			slog.String("error", err.Error()),
		)
		return "", fmt.Errorf("analysis failed: %w", err)
	}

	c.metrics.AnalysisSuccesses.Inc()
	c.logger.Info("analysis completed",
		slog.String("department", department),
		slog.Int("summary_length", len(resp.Analysis)),
	)
	return resp.Analysis, nil
}
