// internal/workers/quiz/save-email/config.go
package saveemail

import (
	"time"

	"fragrance-finder/internal/common/config"
)

type Config struct {
	Timeout time.Duration

	// Lead notifications go out only when enabled and a topic is set.
	NotifyLeads  bool
	LeadTopicARN string
}

func LoadConfig(cfg *config.Config) *Config {
	sns := cfg.Integrations.AWS.SNS
	return &Config{
		Timeout:      config.GetDuration(config.GetWorkerConfig(cfg, TaskType).Timeout),
		NotifyLeads:  sns.Enabled && sns.LeadTopicARN != "",
		LeadTopicARN: sns.LeadTopicARN,
	}
}
