package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/monicazzy516/desk-ai/internal/audio"
	"github.com/monicazzy516/desk-ai/internal/metrics"
)

// ErrEmptyCapture reports an upload that contains no complete samples.
var ErrEmptyCapture = errors.New("capture contains no audio samples")

// DefaultStageTimeout bounds each external engine call.
const DefaultStageTimeout = 30 * time.Second

// Transcriber converts a stored audio file to text.
type Transcriber interface {
	Transcribe(ctx context.Context, path string, durationSec float64) (string, error)
}

// Replier generates a persona reply to user text.
type Replier interface {
	Reply(ctx context.Context, userText string) (string, error)
}

// Synthesizer converts reply text to raw PCM audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// Config contains pipeline configuration.
type Config struct {
	StageTimeout        time.Duration
	SynthesisEnabled    bool
	SynthesisSampleRate int
}

// Result is the outcome of one processed interaction.
type Result struct {
	RequestID  string
	FilePath   string
	UserText   string
	ReplyText  string
	Audio      []byte
	SampleRate int
	Duration   float64

	// Synthesized reports whether the synthesis stage ran and produced
	// audio, selecting the framed response variant.
	Synthesized bool
}

// Pipeline runs captures through the store and the three engine adapters.
type Pipeline struct {
	store   *audio.Store
	stt     Transcriber
	llm     Replier
	tts     Synthesizer
	config  Config
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// New creates a pipeline. The synthesizer may be nil when synthesis is
// disabled.
func New(store *audio.Store, stt Transcriber, llm Replier, tts Synthesizer, config Config, logger *slog.Logger, m *metrics.Metrics) *Pipeline {
	if config.StageTimeout <= 0 {
		config.StageTimeout = DefaultStageTimeout
	}

	return &Pipeline{
		store:   store,
		stt:     stt,
		llm:     llm,
		tts:     tts,
		config:  config,
		logger:  logger,
		metrics: m,
	}
}

// Process runs one capture through the full pipeline. It returns
// ErrEmptyCapture for captures with no complete samples and a wrapped
// error when the capture cannot be persisted; adapter failures never
// surface as errors.
func (p *Pipeline) Process(ctx context.Context, capture audio.Capture) (*Result, error) {
	samples := capture.SampleCount()
	if samples == 0 {
		p.metrics.RecordRejected()
		return nil, ErrEmptyCapture
	}

	duration := capture.Duration()
	p.metrics.RecordUpload(len(capture.PCM), duration)

	requestID := uuid.NewString()[:8]
	logger := p.logger.With(slog.String("request_id", requestID))

	logger.Info("Processing capture",
		slog.Int("samples", samples),
		slog.Int("sample_rate", capture.SampleRate),
		slog.Int("channels", capture.Channels),
		slog.Float64("duration_sec", duration),
	)

	path, err := p.store.Save(capture, requestID)
	if err != nil {
		return nil, fmt.Errorf("saving capture: %w", err)
	}

	userText := p.transcribe(ctx, logger, path, duration)
	replyText := p.reply(ctx, logger, userText)

	result := &Result{
		RequestID: requestID,
		FilePath:  path,
		UserText:  userText,
		ReplyText: replyText,
		Duration:  duration,
	}

	if p.config.SynthesisEnabled && p.tts != nil {
		result.Audio = p.synthesize(ctx, logger, replyText)
		if len(result.Audio) > 0 {
			result.Synthesized = true
			result.SampleRate = p.config.SynthesisSampleRate
			p.metrics.RecordResponseAudio(len(result.Audio))
		}
	}

	logger.Info("Capture processed",
		slog.String("user_text", userText),
		slog.String("reply_text", replyText),
		slog.Bool("synthesized", result.Synthesized),
	)

	return result, nil
}

func (p *Pipeline) transcribe(ctx context.Context, logger *slog.Logger, path string, duration float64) string {
	stageCtx, cancel := context.WithTimeout(ctx, p.config.StageTimeout)
	defer cancel()

	start := time.Now()
	text, _ := p.stt.Transcribe(stageCtx, path, duration)
	p.metrics.RecordStage(metrics.StageTranscription, time.Since(start), text == "")

	if text == "" {
		logger.Info("Transcription produced no text")
	}

	return text
}

func (p *Pipeline) reply(ctx context.Context, logger *slog.Logger, userText string) string {
	stageCtx, cancel := context.WithTimeout(ctx, p.config.StageTimeout)
	defer cancel()

	start := time.Now()
	text, _ := p.llm.Reply(stageCtx, userText)
	p.metrics.RecordStage(metrics.StageReply, time.Since(start), text == "")

	if text == "" {
		logger.Info("Reply generation produced no text")
	}

	return text
}

func (p *Pipeline) synthesize(ctx context.Context, logger *slog.Logger, replyText string) []byte {
	stageCtx, cancel := context.WithTimeout(ctx, p.config.StageTimeout)
	defer cancel()

	start := time.Now()
	pcm, _ := p.tts.Synthesize(stageCtx, replyText)
	p.metrics.RecordStage(metrics.StageSynthesis, time.Since(start), len(pcm) == 0)

	if len(pcm) == 0 {
		logger.Info("Synthesis produced no audio")
	}

	return pcm
}
