package synthesis

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// OutputSampleRate is the sample rate of the engine's raw PCM output.
// It is a fixed property of the synthesis engine, not negotiated per
// request.
const OutputSampleRate = 24000

// Config contains synthesis adapter configuration.
type Config struct {
	APIKey  string
	BaseURL string // optional API base URL override
	Model   string
	Voice   string

	// HTTPClient overrides the transport, used by tests.
	HTTPClient *http.Client
}

// Client invokes the external speech-synthesis engine, requesting raw
// linear-PCM mono output at OutputSampleRate. All failure modes degrade
// to empty audio.
type Client struct {
	client  openai.Client
	enabled bool
	config  Config
	logger  *slog.Logger
}

// NewClient creates a synthesis adapter. An empty API key is valid and
// produces a disabled adapter that always returns empty audio.
func NewClient(config Config, logger *slog.Logger) *Client {
	if config.Model == "" {
		config.Model = string(openai.SpeechModelTTS1)
	}

	if config.Voice == "" {
		config.Voice = string(openai.AudioSpeechNewParamsVoiceAlloy)
	}

	opts := []option.RequestOption{
		option.WithAPIKey(config.APIKey),
		option.WithMaxRetries(0),
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
		logger:  logger,
	}
}

// Synthesize converts text to raw PCM audio. Empty text or a missing
// credential returns empty audio without invoking the engine. The returned
// error is always nil; failures degrade to empty audio.
func (c *Client) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if text == "" {
		c.logger.Debug("Synthesis skipped: empty reply text")
		return nil, nil
	}

	if !c.enabled {
		c.logger.Info("Synthesis skipped: API key not set")
		return nil, nil
	}

	resp, err := c.client.Audio.Speech.New(ctx, openai.AudioSpeechNewParams{
		Model:          openai.SpeechModel(c.config.Model),
		Voice:          openai.AudioSpeechNewParamsVoice(c.config.Voice),
		Input:          text,
		ResponseFormat: openai.AudioSpeechNewParamsResponseFormatPCM,
	})
	if err != nil {
		c.logger.Error("Synthesis request failed", slog.String("error", err.Error()))
		return nil, nil
	}
	defer resp.Body.Close()

	pcm, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Error("Failed to read synthesized audio", slog.String("error", err.Error()))
		return nil, nil
	}

	c.logger.Debug("Synthesis produced audio",
		slog.Int("bytes", len(pcm)),
		slog.Int("sample_rate", OutputSampleRate),
	)

	return pcm, nil
}
