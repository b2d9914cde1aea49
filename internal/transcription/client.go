package transcription

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"strings"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// Config contains transcription adapter configuration.
type Config struct {
	APIKey   string
	BaseURL  string // optional API base URL override
	Model    string
	Language string
	Prompt   string

	// HTTPClient overrides the transport, used by tests.
	HTTPClient *http.Client
}

// Client invokes the external transcription engine on a framed audio file
// and applies the hallucination filter to the result.
//
// Its documented failure mode is "return empty transcript": engine errors
// (network, auth, quota, malformed response) are logged and absorbed, and
// a missing credential short-circuits without any network call. Callers
// never see an error from Transcribe.
type Client struct {
	client  openai.Client
	enabled bool
	config  Config
	filter  *Filter
	logger  *slog.Logger
}

// NewClient creates a transcription adapter. An empty API key is valid and
// produces a disabled adapter that always returns empty transcripts.
func NewClient(config Config, filter *Filter, logger *slog.Logger) *Client {
	if config.Model == "" {
		config.Model = string(openai.AudioModelWhisper1)
	}

	if config.Language == "" {
		config.Language = "en"
	}

	if config.Prompt == "" {
		config.Prompt = "Transcribe the following speech in English."
	}

	opts := []option.RequestOption{
		option.WithAPIKey(config.APIKey),
		option.WithMaxRetries(0), // failures degrade, they are not retried
	}
	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}
	if config.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(config.HTTPClient))
	}

	return &Client{
		client:  openai.NewClient(opts...),
		enabled: config.APIKey != "",
		config:  config,
		filter:  filter,
		logger:  logger,
	}
}

// Transcribe runs the transcription engine on the container file at path
// and returns the filtered transcript. The returned error is always nil;
// every failure mode degrades to an empty transcript.
func (c *Client) Transcribe(ctx context.Context, path string, durationSec float64) (string, error) {
	if !c.enabled {
		c.logger.Info("Transcription skipped: API key not set")
		return "", nil
	}

	file, err := os.Open(path)
	if err != nil {
		c.logger.Error("Failed to open container file for transcription",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		return "", nil
	}
	defer file.Close()

	result, err := c.client.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		File:     file,
		Model:    openai.AudioModel(c.config.Model),
		Language: openai.String(c.config.Language),
		Prompt:   openai.String(c.config.Prompt),
	})
	if err != nil {
		c.logger.Error("Transcription request failed",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		return "", nil
	}

	raw := strings.TrimSpace(result.Text)
	c.logger.Debug("Transcription raw result",
		slog.String("text", raw),
		slog.Int("length", len(raw)),
	)

	return c.filter.Apply(raw, durationSec), nil
}
