package config

import (
	"errors"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config is centralized process configuration.
// Moderation values mirror the named overridable constants of the pipeline;
// infra values stay here and typed config is passed into builders.
type Config struct {
	ServiceName  string   `koanf:"service_name"`
	HTTPPort     string   `koanf:"http_port"`
	PostgresDSN  string   `koanf:"postgres_dsn"`
	KafkaBrokers []string `koanf:"kafka_brokers"`

	Moderation ModerationConfig `koanf:"moderation"`
}

// ModerationConfig carries the tunable thresholds of the moderation pipeline.
type ModerationConfig struct {
	MaxPendingQueueSize       int     `koanf:"max_pending_queue_size"`
	PriorityLaneSize          int     `koanf:"priority_lane_size"`
	WeeklySubmissionLimit     int     `koanf:"weekly_submission_limit"`
	EvaluatorRankThreshold    int     `koanf:"evaluator_rank_threshold"`
	QuorumFraction            float64 `koanf:"quorum_fraction"`
	ApprovalScoreThreshold    float64 `koanf:"approval_score_threshold"`
	ApprovalMajorityThreshold float64 `koanf:"approval_majority_threshold"`
}

func defaults() Config {
	return Config{
		ServiceName:  "tarmac",
		HTTPPort:     "8080",
		KafkaBrokers: []string{"localhost:9092"},
		Moderation: ModerationConfig{
			MaxPendingQueueSize:       50,
			PriorityLaneSize:          10,
			WeeklySubmissionLimit:     5,
			EvaluatorRankThreshold:    3,
			QuorumFraction:            0.5,
			ApprovalScoreThreshold:    3.0,
			ApprovalMajorityThreshold: 0.5,
		},
	}
}

// Load layers defaults, an optional YAML file (TARMAC_CONFIG), and TARMAC_*
// environment variables, lowest to highest precedence.
func Load() (Config, error) {
	cfg := defaults()

	k := koanf.New(".")
	if path := strings.TrimSpace(os.Getenv("TARMAC_CONFIG")); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, err
		}
	}

	// TARMAC_HTTP_PORT -> http_port, TARMAC_MODERATION.QUORUM_FRACTION is not a
	// thing: nested keys use double underscores (TARMAC_MODERATION__QUORUM_FRACTION).
	envProvider := env.Provider("TARMAC_", ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, "TARMAC_"))
		return strings.ReplaceAll(s, "__", ".")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return Config{}, err
	}

	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return Config{}, err
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	if strings.TrimSpace(c.HTTPPort) == "" {
		return errors.New("http_port must not be empty")
	}
	m := c.Moderation
	if m.MaxPendingQueueSize <= 0 || m.PriorityLaneSize < 0 || m.WeeklySubmissionLimit <= 0 {
		return errors.New("queue and quota limits must be positive")
	}
	if m.QuorumFraction <= 0 || m.QuorumFraction > 1 {
		return errors.New("quorum_fraction must be in (0,1]")
	}
	if m.ApprovalMajorityThreshold < 0 || m.ApprovalMajorityThreshold >= 1 {
		return errors.New("approval_majority_threshold must be in [0,1)")
	}
	if m.EvaluatorRankThreshold <= 0 {
		return errors.New("evaluator_rank_threshold must be positive")
	}
	return nil
}
