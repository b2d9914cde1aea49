// Package config loads and validates the service configuration from a
// YAML file, with built-in defaults and an environment override for the
// OpenAI API key.
package config
