// internal/workers/quiz/insert-quiz-response/config.go
package insertquizresponse

import (
	"time"

	"fragrance-finder/internal/common/config"
)

type Config struct {
	Timeout time.Duration
}

func LoadConfig(cfg *config.Config) *Config {
	return &Config{
		Timeout: config.GetDuration(config.GetWorkerConfig(cfg, TaskType).Timeout),
	}
}
