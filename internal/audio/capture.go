package audio

// FormatPCM16 is the single supported capture format tag.
const FormatPCM16 = "pcm16"

// bytesPerSample is fixed by the 16-bit PCM encoding.
const bytesPerSample = 2

// Capture is one inbound raw audio payload: interleaved 16-bit little-endian
// PCM sample bytes plus the format attributes declared by the client.
type Capture struct {
	PCM        []byte
	SampleRate int
	Channels   int
	Format     string
}

// SampleCount derives the number of samples per channel from the payload
// length. The division truncates: trailing bytes that do not fill a whole
// sample block are ignored, and a payload shorter than one block counts as
// zero samples.
func (c Capture) SampleCount() int {
	if c.Channels <= 0 {
		return 0
	}
	return len(c.PCM) / (bytesPerSample * c.Channels)
}

// Duration returns the capture duration in seconds, computed as
// sample_count / (sample_rate * channels) to match the accounting used by
// the device protocol.
func (c Capture) Duration() float64 {
	if c.SampleRate <= 0 || c.Channels <= 0 {
		return 0
	}
	return float64(c.SampleCount()) / float64(c.SampleRate*c.Channels)
}
