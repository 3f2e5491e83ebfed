// Package config loads application configuration from defaults, an optional
// config.yaml, an optional .env file and QUILL_-prefixed environment
// variables, in increasing order of precedence, and validates the result.
package config
