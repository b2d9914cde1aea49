// Package audio implements audio container framing for the upload pipeline.
// It derives sample counts and durations from raw PCM captures, wraps them
// in a minimal WAV container with explicit format fields, and persists one
// uniquely named container file per validated request.
package audio
