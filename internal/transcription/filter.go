package transcription

import (
	"log/slog"
	"strings"
)

// DefaultMinDuration is the duration below which a transcript is flagged
// as low-confidence. The flag is advisory: the text is logged, not dropped.
const DefaultMinDuration = 0.5

// DefaultPhrases returns the stock hallucinated captions a general
// transcription engine produces for short or noisy audio: subtitle
// watermarks, channel boilerplate, and canned refusal phrases. Matching is
// case-insensitive substring containment.
func DefaultPhrases() []string {
	return []string{
		"subs by",
		"zeoranger",
		"thank you for watching",
		"subscribe",
		"you can't ask me that",
		"hey, you can't ask me that",
		"i can't help with that",
		"as an ai",
		"as a language model",
	}
}

// Filter classifies a transcription result as genuine or hallucinated.
// A denylist is cheap and sufficient here: the set of stock hallucinated
// captions is small and enumerable, so full confidence scoring isn't
// warranted.
type Filter struct {
	phrases     []string
	minDuration float64
	logger      *slog.Logger
}

// NewFilter creates a filter with the given denylist. A non-positive
// minDuration falls back to DefaultMinDuration.
func NewFilter(phrases []string, minDuration float64, logger *slog.Logger) *Filter {
	if minDuration <= 0 {
		minDuration = DefaultMinDuration
	}

	return &Filter{
		phrases:     phrases,
		minDuration: minDuration,
		logger:      logger,
	}
}

// Apply trims the raw transcript and checks it against the denylist.
// A denylisted transcript is replaced with the empty string so it is never
// surfaced as user text. A transcript from audio shorter than the minimum
// duration is logged as low-confidence but returned unchanged.
func (f *Filter) Apply(text string, durationSec float64) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ""
	}

	lower := strings.ToLower(trimmed)
	for _, phrase := range f.phrases {
		if strings.Contains(lower, phrase) {
			f.logger.Info("Transcript filtered as hallucination",
				slog.String("text", trimmed),
				slog.String("matched_phrase", phrase),
			)
			return ""
		}
	}

	if durationSec > 0 && durationSec < f.minDuration {
		f.logger.Warn("Audio very short, transcript may be unreliable",
			slog.Float64("duration_sec", durationSec),
			slog.String("text", trimmed),
		)
	}

	return trimmed
}
