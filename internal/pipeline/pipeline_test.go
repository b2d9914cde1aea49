package pipeline

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/monicazzy516/desk-ai/internal/audio"
	"github.com/monicazzy516/desk-ai/internal/metrics"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

type fakeTranscriber struct {
	text   string
	called bool
	path   string
}

func (f *fakeTranscriber) Transcribe(_ context.Context, path string, _ float64) (string, error) {
	f.called = true
	f.path = path
	return f.text, nil
}

type fakeReplier struct {
	reply string
	input string
}

func (f *fakeReplier) Reply(_ context.Context, userText string) (string, error) {
	f.input = userText
	return f.reply, nil
}

type fakeSynthesizer struct {
	audio  []byte
	input  string
	called bool
}

func (f *fakeSynthesizer) Synthesize(_ context.Context, text string) ([]byte, error) {
	f.called = true
	f.input = text
	return f.audio, nil
}

func testCapture(numSamples int) audio.Capture {
	return audio.Capture{
		PCM:        make([]byte, numSamples*2),
		SampleRate: 48000,
		Channels:   1,
		Format:     audio.FormatPCM16,
	}
}

func newTestPipeline(t *testing.T, stt Transcriber, llm Replier, tts Synthesizer, config Config) *Pipeline {
	t.Helper()
	store := audio.NewStore(t.TempDir(), testLogger())
	m := metrics.NewMetricsWith(prometheus.NewRegistry())
	return New(store, stt, llm, tts, config, testLogger(), m)
}

func TestProcessEmptyCapture(t *testing.T) {
	p := newTestPipeline(t, &fakeTranscriber{}, &fakeReplier{}, nil, Config{})

	_, err := p.Process(context.Background(), testCapture(0))
	if !errors.Is(err, ErrEmptyCapture) {
		t.Fatalf("Expected ErrEmptyCapture, got %v", err)
	}
}

func TestProcessTrailingByteOnly(t *testing.T) {
	p := newTestPipeline(t, &fakeTranscriber{}, &fakeReplier{}, nil, Config{})

	capture := testCapture(0)
	capture.PCM = []byte{0x7f}

	_, err := p.Process(context.Background(), capture)
	if !errors.Is(err, ErrEmptyCapture) {
		t.Fatalf("Expected ErrEmptyCapture for a lone trailing byte, got %v", err)
	}
}

func TestProcessFullInteraction(t *testing.T) {
	stt := &fakeTranscriber{text: "turn on the light"}
	llm := &fakeReplier{reply: "Woof! Light time!"}
	tts := &fakeSynthesizer{audio: []byte{1, 2, 3, 4}}

	p := newTestPipeline(t, stt, llm, tts, Config{
		SynthesisEnabled:    true,
		SynthesisSampleRate: 24000,
	})

	result, err := p.Process(context.Background(), testCapture(48000))
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	if !stt.called {
		t.Error("Expected transcription stage to run")
	}
	if stt.path == "" {
		t.Error("Expected transcription to receive the stored file path")
	}
	if llm.input != "turn on the light" {
		t.Errorf("Expected reply stage to receive the transcript, got %q", llm.input)
	}
	if tts.input != "Woof! Light time!" {
		t.Errorf("Expected synthesis stage to receive the reply, got %q", tts.input)
	}

	if result.UserText != "turn on the light" {
		t.Errorf("Unexpected user text %q", result.UserText)
	}
	if result.ReplyText != "Woof! Light time!" {
		t.Errorf("Unexpected reply text %q", result.ReplyText)
	}
	if !result.Synthesized {
		t.Error("Expected synthesized result")
	}
	if result.SampleRate != 24000 {
		t.Errorf("Expected response sample rate 24000, got %d", result.SampleRate)
	}
	if !bytes.Equal(result.Audio, []byte{1, 2, 3, 4}) {
		t.Errorf("Unexpected response audio %v", result.Audio)
	}
	if result.Duration != 1.0 {
		t.Errorf("Expected 1.0s duration, got %v", result.Duration)
	}

	if _, err := os.Stat(result.FilePath); err != nil {
		t.Errorf("Expected capture file on disk: %v", err)
	}
}

func TestProcessDegradesOnEmptyTranscript(t *testing.T) {
	stt := &fakeTranscriber{text: ""}
	llm := &fakeReplier{reply: "Woof?"}

	p := newTestPipeline(t, stt, llm, nil, Config{})

	result, err := p.Process(context.Background(), testCapture(4800))
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	if llm.input != "" {
		t.Errorf("Expected empty transcript handed to reply stage, got %q", llm.input)
	}
	if result.UserText != "" {
		t.Errorf("Expected empty user text, got %q", result.UserText)
	}
	if result.ReplyText != "Woof?" {
		t.Errorf("Expected reply despite empty transcript, got %q", result.ReplyText)
	}
}

func TestProcessSynthesisDisabled(t *testing.T) {
	tts := &fakeSynthesizer{audio: []byte{1, 2}}

	p := newTestPipeline(t, &fakeTranscriber{text: "hi"}, &fakeReplier{reply: "Woof!"}, tts, Config{
		SynthesisEnabled: false,
	})

	result, err := p.Process(context.Background(), testCapture(4800))
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	if tts.called {
		t.Error("Expected synthesis stage to be skipped when disabled")
	}
	if result.Synthesized {
		t.Error("Expected non-synthesized result")
	}
	if result.SampleRate != 0 {
		t.Errorf("Expected zero sample rate without synthesis, got %d", result.SampleRate)
	}
}

func TestProcessSynthesisEmptyAudio(t *testing.T) {
	tts := &fakeSynthesizer{audio: nil}

	p := newTestPipeline(t, &fakeTranscriber{text: "hi"}, &fakeReplier{reply: "Woof!"}, tts, Config{
		SynthesisEnabled:    true,
		SynthesisSampleRate: 24000,
	})

	result, err := p.Process(context.Background(), testCapture(4800))
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	if !tts.called {
		t.Error("Expected synthesis stage to run")
	}
	if result.Synthesized {
		t.Error("Expected non-synthesized result when synthesis yields no audio")
	}
}

func TestProcessRequestIDsUnique(t *testing.T) {
	p := newTestPipeline(t, &fakeTranscriber{}, &fakeReplier{}, nil, Config{})

	first, err := p.Process(context.Background(), testCapture(100))
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	second, err := p.Process(context.Background(), testCapture(100))
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	if first.RequestID == second.RequestID {
		t.Errorf("Expected distinct request IDs, both were %q", first.RequestID)
	}
	if len(first.RequestID) != 8 {
		t.Errorf("Expected 8-character request ID, got %q", first.RequestID)
	}
}
