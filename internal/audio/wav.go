package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// HeaderSize is the fixed size of the WAV container header in bytes.
const HeaderSize = 44

// BitsPerSample is the only supported bit depth (16-bit linear PCM).
const BitsPerSample = 16

// Header represents the header structure of a WAV container
// Layout: RIFF chunk, "fmt " sub-chunk (16-byte PCM variant), "data" sub-chunk
type Header struct {
	ChunkID       [4]byte // "RIFF"
	ChunkSize     uint32  // 36 + data size
	Format        [4]byte // "WAVE"
	Subchunk1ID   [4]byte // "fmt "
	Subchunk1Size uint32  // 16 for PCM
	AudioFormat   uint16  // 1 for PCM
	NumChannels   uint16  // Number of channels
	SampleRate    uint32  // Sample rate
	ByteRate      uint32  // SampleRate * NumChannels * BitsPerSample / 8
	BlockAlign    uint16  // NumChannels * BitsPerSample / 8
	BitsPerSample uint16  // Bits per sample
	Subchunk2ID   [4]byte // "data"
	Subchunk2Size uint32  // Number of bytes in the data
}

// EncodeHeader builds the 44-byte WAV header for a 16-bit linear PCM payload
// of numSamples samples per channel. The declared data size is always
// numSamples * channels * 2 and the declared chunk size is 36 + data size,
// so any compliant reader can recover sample rate, channel count, and
// payload length from the header alone.
func EncodeHeader(sampleRate, channels, numSamples int) ([]byte, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %d", sampleRate)
	}

	if channels <= 0 {
		return nil, fmt.Errorf("channel count must be positive, got %d", channels)
	}

	if numSamples < 0 {
		return nil, fmt.Errorf("sample count cannot be negative, got %d", numSamples)
	}

	dataSize := uint32(numSamples * channels * 2)

	header := Header{
		ChunkID:       [4]byte{'R', 'I', 'F', 'F'},
		ChunkSize:     36 + dataSize,
		Format:        [4]byte{'W', 'A', 'V', 'E'},
		Subchunk1ID:   [4]byte{'f', 'm', 't', ' '},
		Subchunk1Size: 16,
		AudioFormat:   1, // linear PCM
		NumChannels:   uint16(channels),
		SampleRate:    uint32(sampleRate),
		ByteRate:      uint32(sampleRate * channels * 2),
		BlockAlign:    uint16(channels * 2),
		BitsPerSample: BitsPerSample,
		Subchunk2ID:   [4]byte{'d', 'a', 't', 'a'},
		Subchunk2Size: dataSize,
	}

	buf := bytes.NewBuffer(make([]byte, 0, HeaderSize))
	if err := binary.Write(buf, binary.LittleEndian, header); err != nil {
		return nil, fmt.Errorf("failed to write WAV header: %w", err)
	}

	return buf.Bytes(), nil
}

// HeaderInfo holds the format fields recovered from an encoded WAV header.
type HeaderInfo struct {
	SampleRate    int
	Channels      int
	BitsPerSample int
	DataSize      int
	NumSamples    int
	Duration      float64
}

// ParseHeader reads the format fields back out of an encoded WAV header.
// It validates the chunk identifiers and the PCM format tag.
func ParseHeader(data []byte) (*HeaderInfo, error) {
	if len(data) < HeaderSize {
		return nil, fmt.Errorf("WAV header too short: need at least %d bytes, got %d", HeaderSize, len(data))
	}

	var header Header
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("failed to read WAV header: %w", err)
	}

	if string(header.ChunkID[:]) != "RIFF" {
		return nil, fmt.Errorf("invalid WAV header: missing RIFF chunk")
	}

	if string(header.Format[:]) != "WAVE" {
		return nil, fmt.Errorf("invalid WAV header: missing WAVE format")
	}

	if string(header.Subchunk1ID[:]) != "fmt " {
		return nil, fmt.Errorf("invalid WAV header: missing fmt chunk")
	}

	if string(header.Subchunk2ID[:]) != "data" {
		return nil, fmt.Errorf("invalid WAV header: missing data chunk")
	}

	if header.AudioFormat != 1 {
		return nil, fmt.Errorf("unsupported audio format: %d (only PCM is supported)", header.AudioFormat)
	}

	if header.BitsPerSample != BitsPerSample {
		return nil, fmt.Errorf("unsupported bit depth: %d (only 16-bit is supported)", header.BitsPerSample)
	}

	if header.NumChannels == 0 {
		return nil, fmt.Errorf("invalid channel count: 0")
	}

	if header.SampleRate == 0 {
		return nil, fmt.Errorf("invalid sample rate: 0")
	}

	numSamples := int(header.Subchunk2Size) / (int(header.NumChannels) * 2)
	duration := float64(numSamples) / float64(header.SampleRate)

	return &HeaderInfo{
		SampleRate:    int(header.SampleRate),
		Channels:      int(header.NumChannels),
		BitsPerSample: int(header.BitsPerSample),
		DataSize:      int(header.Subchunk2Size),
		NumSamples:    numSamples,
		Duration:      duration,
	}, nil
}
