package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	Port           string        // Service port
	AppRoot        string        // Where the browser lands after login
	Environment    string        // "production" enables Secure cookies
	RequestTimeout time.Duration // Outbound HTTP request timeout

	// Server-side OAuth credentials. Deliberately not validated at startup:
	// requests that need them fail with a generic configuration error, so the
	// rest of the service stays usable without marketplace credentials.
	ClientID     string
	ClientSecret string
	RedirectURI  string
	TokenURL     string

	// Public OAuth settings used to construct the login URL.
	AuthorizeURL      string
	PublicClientID    string
	PublicRedirectURI string

	// Marketplace REST API base URL.
	APIBaseURL string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	config := &Config{
		Port:           getEnv("PORT", "8888"),
		AppRoot:        getEnv("APP_ROOT", "/"),
		Environment:    getEnv("APP_ENV", "development"),
		RequestTimeout: 15 * time.Second,

		ClientID:     getEnv("MARKETPLACE_CLIENT_ID", ""),
		ClientSecret: getEnv("MARKETPLACE_CLIENT_SECRET", ""),
		RedirectURI:  getEnv("MARKETPLACE_REDIRECT_URI", ""),
		TokenURL:     getEnv("MARKETPLACE_TOKEN_URL", ""),

		AuthorizeURL:      getEnv("MARKETPLACE_AUTHORIZE_URL", "https://sketchfab.com/oauth2/authorize/"),
		PublicClientID:    getEnv("MARKETPLACE_PUBLIC_CLIENT_ID", ""),
		PublicRedirectURI: getEnv("MARKETPLACE_PUBLIC_REDIRECT_URI", ""),

		APIBaseURL: getEnv("MARKETPLACE_API_URL", "https://api.sketchfab.com/v3"),
	}

	// The public settings default to the server-side ones when not split.
	if config.PublicClientID == "" {
		config.PublicClientID = config.ClientID
	}
	if config.PublicRedirectURI == "" {
		config.PublicRedirectURI = config.RedirectURI
	}

	if timeoutStr := os.Getenv("REQUEST_TIMEOUT"); timeoutStr != "" {
		duration, err := time.ParseDuration(timeoutStr)
		if err != nil {
			return nil, fmt.Errorf("invalid REQUEST_TIMEOUT format: %w", err)
		}
		config.RequestTimeout = duration
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}

	if c.APIBaseURL == "" {
		return fmt.Errorf("MARKETPLACE_API_URL cannot be empty")
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}

	return nil
}

// Production reports whether cookies must be marked Secure.
func (c *Config) Production() bool {
	return c.Environment == "production"
}

// getEnv retrieves an environment variable or returns a fallback value.
func getEnv(key, fallback string) string {
	// Check for _FILE suffix
	if fileValue := os.Getenv(key + "_FILE"); fileValue != "" {
		content, err := os.ReadFile(fileValue)
		if err == nil {
			return strings.TrimSpace(string(content))
		}
	}

	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
