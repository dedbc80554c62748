// Package genius provides Genius API integration for fetching song lyrics.
package genius

import (
	"errors"
	"os"
)

// ErrMissingToken is returned when GENIUS_ACCESS_TOKEN is not set.
// Callers may treat this as non-fatal and run with a disabled client;
// fetches then report source "none" instead of failing.
var ErrMissingToken = errors.New("missing GENIUS_ACCESS_TOKEN environment variable")

// Config holds Genius API configuration.
type Config struct {
	AccessToken string
}

// LoadConfig reads Genius configuration from environment variables.
// Returns ErrMissingToken if GENIUS_ACCESS_TOKEN is not set.
func LoadConfig() (*Config, error) {
	token := os.Getenv("GENIUS_ACCESS_TOKEN")
	if token == "" {
		return nil, ErrMissingToken
	}
	return &Config{AccessToken: token}, nil
}
