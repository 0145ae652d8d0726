// internal/workers/scholarship/match-scholarships/config.go
package matchscholarships

import (
	"time"

	"scholarship-engine/internal/matching"
)

type Config struct {
	Timeout           time.Duration
	MaxParallel       int
	IncludeIneligible bool
}

func LoadConfig() *Config {
	return &Config{
		Timeout:     30 * time.Second,
		MaxParallel: matching.DefaultMaxParallel,
	}
}
