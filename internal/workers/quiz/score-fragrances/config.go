// internal/workers/quiz/score-fragrances/config.go
package scorefragrances

import (
	"time"

	"fragrance-finder/internal/common/config"
)

type Config struct {
	// Timeout bounds the whole job; the catalog fetch carries its own timeout.
	Timeout time.Duration
}

func LoadConfig(cfg *config.Config) *Config {
	return &Config{
		Timeout: config.GetDuration(config.GetWorkerConfig(cfg, TaskType).Timeout),
	}
}
