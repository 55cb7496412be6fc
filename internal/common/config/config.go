package config

import (
	"fmt"

	"fundingos-workers/internal/fitscore"
	"fundingos-workers/internal/intent"
)

type Config struct {
	App           AppConfig               `mapstructure:"app"`
	Camunda       CamundaConfig           `mapstructure:"camunda"`
	Database      DatabaseConfig          `mapstructure:"database"`
	Workers       map[string]WorkerConfig `mapstructure:"workers"`
	Scoring       fitscore.Config         `mapstructure:"scoring"`
	Intent        IntentConfig            `mapstructure:"intent"`
	Deadlines     DeadlinesConfig         `mapstructure:"deadlines"`
	Integrations  IntegrationConfig       `mapstructure:"integrations"`
	Registry      RegistryConfig          `mapstructure:"registry"`
	Logging       LoggingConfig           `mapstructure:"logging"`
	Observability ObservabilityConfig     `mapstructure:"observability"`
	Server        ServerConfig            `mapstructure:"server"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses        []string `mapstructure:"addresses"`
	Username         string   `mapstructure:"username"`
	Password         string   `mapstructure:"password"`
	URL              string   `mapstructure:"url"`
	OpportunityIndex string   `mapstructure:"opportunity_index"`
}

func (e ElasticsearchConfig) GetURL() string {
	if e.URL != "" {
		return e.URL
	}
	if len(e.Addresses) > 0 {
		return e.Addresses[0]
	}
	return ""
}

type RedisConfig struct {
	Address   string `mapstructure:"address"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	CacheTTL  int    `mapstructure:"cache_ttl"` // milliseconds
	KeyPrefix string `mapstructure:"key_prefix"`
}

type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"` // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"`
}

// IntentConfig tunes the classifier. Empty rule lists keep the built-in tables.
type IntentConfig struct {
	MaxFollowUpLength int                  `mapstructure:"max_follow_up_length"`
	RecencyWindow     int                  `mapstructure:"recency_window"` // milliseconds
	MaxClockSkew      int                  `mapstructure:"max_clock_skew"` // milliseconds
	ExtraPhrases      intent.Phrases       `mapstructure:"extra_phrases"`
	ContextRules      []intent.ContextRule `mapstructure:"context_rules"`
	DirectRules       []intent.DirectRule  `mapstructure:"direct_rules"`
	HistoryLimit      int                  `mapstructure:"history_limit"`
}

type DeadlinesConfig struct {
	WithinDays int `mapstructure:"within_days"`
	Limit      int `mapstructure:"limit"`
	UrgentDays int `mapstructure:"urgent_days"`
}

type IntegrationConfig struct {
	AWS struct {
		Region string `mapstructure:"region"`
		SNS    struct {
			Enabled  bool   `mapstructure:"enabled"`
			TopicARN string `mapstructure:"topic_arn"`
		} `mapstructure:"sns"`
	} `mapstructure:"aws"`
}

type RegistryConfig struct {
	Path          string `mapstructure:"path"`
	ValidateInput bool   `mapstructure:"validate_input"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

type ObservabilityConfig struct {
	MetricsEnabled bool    `mapstructure:"metrics_enabled"`
	TracingEnabled bool    `mapstructure:"tracing_enabled"`
	JaegerEndpoint string  `mapstructure:"jaeger_endpoint"`
	ServiceName    string  `mapstructure:"service_name"`
	SampleRatio    float64 `mapstructure:"sample_ratio"`
}

type ServerConfig struct {
	Port int `mapstructure:"port"`
}
