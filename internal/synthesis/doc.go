// Package synthesis implements the speech-synthesis adapter: it turns
// reply text into raw 16-bit PCM at the engine's fixed output sample rate
// via the OpenAI TTS API. Empty text and missing credentials short-circuit
// without a network call; engine failures degrade to empty audio.
package synthesis
