// Package transcription implements the speech-to-text adapter for the
// upload pipeline. It wraps the OpenAI transcription API behind a
// graceful-failure boundary (engine failures become empty transcripts,
// never errors) and classifies results against a denylist of known
// transcription-artifact phrases.
package transcription
