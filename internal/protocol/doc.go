// Package protocol implements the device wire format: parsing of the
// capture format headers sent with raw PCM uploads, and framing of the
// response body (JSON metadata optionally followed by a newline separator
// and raw reply audio).
package protocol
