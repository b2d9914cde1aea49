package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete service configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Audio     AudioConfig     `yaml:"audio"`
	OpenAI    OpenAIConfig    `yaml:"openai"`
	Synthesis SynthesisConfig `yaml:"synthesis"`
	Filter    FilterConfig    `yaml:"filter"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Address string `yaml:"address"`
	Port    int    `yaml:"port"`
}

// AudioConfig contains the assumed capture format and the upload
// directory for persisted WAV files
type AudioConfig struct {
	DefaultSampleRate int    `yaml:"default_sample_rate"`
	DefaultChannels   int    `yaml:"default_channels"`
	Format            string `yaml:"format"`
	UploadDir         string `yaml:"upload_dir"`
}

// OpenAIConfig contains the engine adapter configuration. The API key
// may be empty; adapters then degrade to empty results.
type OpenAIConfig struct {
	APIKey         string `yaml:"api_key"`
	ChatModel      string `yaml:"chat_model"`
	STTModel       string `yaml:"stt_model"`
	TTSModel       string `yaml:"tts_model"`
	Voice          string `yaml:"voice"`
	Language       string `yaml:"language"`
	MaxReplyTokens int64  `yaml:"max_reply_tokens"`
	CallTimeout    int    `yaml:"call_timeout"` // seconds
}

// SynthesisConfig controls the optional speech-synthesis stage
type SynthesisConfig struct {
	Enabled    bool `yaml:"enabled"`
	SampleRate int  `yaml:"sample_rate"`
}

// FilterConfig contains the transcript hallucination filter settings
type FilterConfig struct {
	Phrases     []string `yaml:"phrases"`
	MinDuration float64  `yaml:"min_duration"` // seconds
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Default returns the built-in configuration used when no config file
// is present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Address: "0.0.0.0",
			Port:    5001,
		},
		Audio: AudioConfig{
			DefaultSampleRate: 48000,
			DefaultChannels:   1,
			Format:            "pcm16",
			UploadDir:         "uploads",
		},
		OpenAI: OpenAIConfig{
			ChatModel:      "gpt-4o-mini",
			STTModel:       "whisper-1",
			TTSModel:       "tts-1",
			Voice:          "alloy",
			Language:       "en",
			MaxReplyTokens: 150,
			CallTimeout:    30,
		},
		Synthesis: SynthesisConfig{
			Enabled:    true,
			SampleRate: 24000,
		},
		Filter: FilterConfig{
			MinDuration: 0.5,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stdout",
		},
	}
}

// Load reads the configuration file at path, falling back to Default
// when the file does not exist. The OPENAI_API_KEY environment variable,
// when set, overrides the configured API key.
func Load(path string) (*Config, error) {
	config := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// No file, run on defaults
	case err != nil:
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		config.OpenAI.APIKey = key
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// Validate performs comprehensive validation of the configuration
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := c.Audio.Validate(); err != nil {
		return fmt.Errorf("audio config: %w", err)
	}

	if err := c.OpenAI.Validate(); err != nil {
		return fmt.Errorf("openai config: %w", err)
	}

	if err := c.Synthesis.Validate(); err != nil {
		return fmt.Errorf("synthesis config: %w", err)
	}

	if err := c.Filter.Validate(); err != nil {
		return fmt.Errorf("filter config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

// Validate validates server configuration
func (s *ServerConfig) Validate() error {
	if s.Port < 1 || s.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", s.Port)
	}

	if s.Address == "" {
		return fmt.Errorf("address cannot be empty")
	}

	return nil
}

// Validate validates audio configuration
func (a *AudioConfig) Validate() error {
	if a.DefaultSampleRate < 1 {
		return fmt.Errorf("default_sample_rate must be positive, got %d", a.DefaultSampleRate)
	}

	if a.DefaultChannels < 1 {
		return fmt.Errorf("default_channels must be at least 1, got %d", a.DefaultChannels)
	}

	if a.Format != "pcm16" {
		return fmt.Errorf("format must be 'pcm16', got '%s'", a.Format)
	}

	if a.UploadDir == "" {
		return fmt.Errorf("upload_dir cannot be empty")
	}

	return nil
}

// Validate validates engine adapter configuration. An empty API key is
// permitted.
func (o *OpenAIConfig) Validate() error {
	if o.ChatModel == "" {
		return fmt.Errorf("chat_model cannot be empty")
	}

	if o.STTModel == "" {
		return fmt.Errorf("stt_model cannot be empty")
	}

	if o.TTSModel == "" {
		return fmt.Errorf("tts_model cannot be empty")
	}

	if o.Voice == "" {
		return fmt.Errorf("voice cannot be empty")
	}

	if o.MaxReplyTokens < 1 {
		return fmt.Errorf("max_reply_tokens must be at least 1, got %d", o.MaxReplyTokens)
	}

	if o.CallTimeout < 1 {
		return fmt.Errorf("call_timeout must be at least 1 second, got %d", o.CallTimeout)
	}

	return nil
}

// Validate validates synthesis configuration
func (s *SynthesisConfig) Validate() error {
	if s.Enabled && s.SampleRate < 1 {
		return fmt.Errorf("sample_rate must be positive when synthesis is enabled, got %d", s.SampleRate)
	}

	return nil
}

// Validate validates filter configuration
func (f *FilterConfig) Validate() error {
	if f.MinDuration < 0 {
		return fmt.Errorf("min_duration cannot be negative, got %f", f.MinDuration)
	}

	return nil
}

// Validate validates logging configuration
func (l *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLevels[l.Level] {
		return fmt.Errorf("level must be one of [debug, info, warn, error], got '%s'", l.Level)
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("format must be 'json' or 'text', got '%s'", l.Format)
	}

	return nil
}

// GetCallTimeoutDuration returns the engine call timeout as a time.Duration
func (o *OpenAIConfig) GetCallTimeoutDuration() time.Duration {
	return time.Duration(o.CallTimeout) * time.Second
}
