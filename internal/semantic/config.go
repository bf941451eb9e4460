// File path: internal/semantic/config.go
package semantic

import (
	"os"
	"strings"
	"time"
)

// Config locates the external vector-search service holding the course
// index.
type Config struct {
	Host       string
	Port       string
	Scheme     string
	Collection string
	APIKey     string
	Timeout    time.Duration
}

// LoadConfig reads the semantic-search configuration from the environment
// and applies defaults.
func LoadConfig() (Config, error) {
	cfg := Config{
		Host:       strings.TrimSpace(os.Getenv("SEMANTIC_HOST")),
		Port:       strings.TrimSpace(os.Getenv("SEMANTIC_PORT")),
		Scheme:     strings.TrimSpace(os.Getenv("SEMANTIC_SCHEME")),
		Collection: strings.TrimSpace(os.Getenv("SEMANTIC_COLLECTION")),
		APIKey:     strings.TrimSpace(os.Getenv("SEMANTIC_API_KEY")),
	}
	if raw := strings.TrimSpace(os.Getenv("SEMANTIC_TIMEOUT")); raw != "" {
		timeout, err := time.ParseDuration(raw)
		if err != nil {
			return Config{}, err
		}
		cfg.Timeout = timeout
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == "" {
		c.Port = "8000"
	}
	if c.Scheme == "" {
		c.Scheme = "http"
	}
	if c.Collection == "" {
		c.Collection = "lms_courses"
	}
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
}
