// internal/workers/communication/send-results-email/config.go
package sendresultsemail

import (
	"time"

	"fragrance-finder/internal/common/config"
)

const (
	defaultTopResults = 5
	defaultDedupeTTL  = time.Hour
)

type Config struct {
	Timeout    time.Duration
	Enabled    bool
	FromEmail  string
	FromName   string
	TopResults int
	DedupeTTL  time.Duration
}

func LoadConfig(cfg *config.Config) *Config {
	ses := cfg.Integrations.AWS.SES

	c := &Config{
		Timeout:    config.GetDuration(config.GetWorkerConfig(cfg, TaskType).Timeout),
		Enabled:    ses.Enabled,
		FromEmail:  ses.FromEmail,
		FromName:   ses.FromName,
		TopResults: cfg.Email.TopResults,
		DedupeTTL:  time.Duration(cfg.Email.DedupeTTL) * time.Second,
	}
	if c.TopResults <= 0 {
		c.TopResults = defaultTopResults
	}
	if c.DedupeTTL <= 0 {
		c.DedupeTTL = defaultDedupeTTL
	}
	return c
}
