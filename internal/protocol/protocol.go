package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// Capture format headers sent by the device with a raw PCM upload.
// All are optional; absent or malformed values fall back to the defaults.
const (
	HeaderSampleRate = "X-Sample-Rate"
	HeaderChannels   = "X-Channels"
	HeaderFormat     = "X-Format"
)

// Defaults applied when a capture header is absent or malformed.
const (
	DefaultSampleRate = 48000
	DefaultChannels   = 1
	DefaultFormat     = "pcm16"
)

// FrameSeparator terminates the JSON metadata in a framed response body.
// Go's JSON encoder escapes newlines inside strings, so the first newline
// byte in the body is always the separator.
const FrameSeparator = '\n'

// CaptureFormat describes the audio format a client declared for its upload.
type CaptureFormat struct {
	SampleRate int
	Channels   int
	Format     string
}

// ParseCaptureFormat extracts the capture format from request headers,
// substituting defaults for absent or malformed values. A format tag other
// than pcm16 is returned as-is; rejecting it is the caller's call (the
// protocol treats mismatches as log-only).
func ParseCaptureFormat(h http.Header) CaptureFormat {
	cf := CaptureFormat{
		SampleRate: DefaultSampleRate,
		Channels:   DefaultChannels,
		Format:     DefaultFormat,
	}

	if v := h.Get(HeaderSampleRate); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cf.SampleRate = n
		}
	}

	if v := h.Get(HeaderChannels); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cf.Channels = n
		}
	}

	if v := h.Get(HeaderFormat); v != "" {
		cf.Format = strings.ToLower(strings.TrimSpace(v))
	}

	return cf
}

// ResponseMeta is the JSON metadata object of a pipeline response.
// Field order is part of the wire contract with the device firmware.
type ResponseMeta struct {
	OK         bool   `json:"ok"`
	UserText   string `json:"user_text"`
	ReplyText  string `json:"reply_text"`
	SampleRate int    `json:"sample_rate,omitempty"`
}

// ErrorResponse is the structured failure body for rejected uploads.
type ErrorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// EncodeFrame assembles a framed response body: the JSON metadata, a single
// newline separator, then the raw reply audio bytes. The audio slice may be
// empty; the separator is still written so the frame shape is uniform for
// the audio-returning variant.
func EncodeFrame(meta ResponseMeta, pcm []byte) ([]byte, error) {
	metaBytes, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("failed to encode response metadata: %w", err)
	}

	body := make([]byte, 0, len(metaBytes)+1+len(pcm))
	body = append(body, metaBytes...)
	body = append(body, FrameSeparator)
	body = append(body, pcm...)

	return body, nil
}

// DecodeFrame splits a response body back into its metadata and audio
// parts. A body without a separator is decoded as JSON-only metadata with
// no audio.
func DecodeFrame(body []byte) (ResponseMeta, []byte, error) {
	var meta ResponseMeta

	idx := bytes.IndexByte(body, FrameSeparator)
	if idx < 0 {
		if err := json.Unmarshal(body, &meta); err != nil {
			return ResponseMeta{}, nil, fmt.Errorf("failed to decode response metadata: %w", err)
		}
		return meta, nil, nil
	}

	if err := json.Unmarshal(body[:idx], &meta); err != nil {
		return ResponseMeta{}, nil, fmt.Errorf("failed to decode response metadata: %w", err)
	}

	return meta, body[idx+1:], nil
}
