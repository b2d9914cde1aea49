// Package pipeline orchestrates a voice interaction: persist the capture
// as a WAV file, transcribe it, generate a persona reply, and optionally
// synthesize response audio. Only an empty capture or a persistence
// failure abort the run; adapter failures degrade to empty results and
// the pipeline continues.
package pipeline
