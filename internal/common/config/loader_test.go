package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseYAML = `
app:
  name: fundingos-workers
  environment: test
camunda:
  broker_address: localhost:26500
database:
  postgres:
    host: ${TEST_PG_HOST}
    database: fundingos
    user: fundingos
  elasticsearch:
    addresses:
      - http://localhost:9200
  redis:
    address: localhost:6379
workers:
  calculate-fit-score:
    enabled: true
    timeout: 5000
  check-deadlines:
    enabled: false
scoring:
  thematic_penalty: 30
  primary_keywords:
    - biotech
intent:
  max_follow_up_length: 32
  recency_window: 300000
  extra_phrases:
    affirmative:
      - claro
deadlines:
  within_days: 14
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile(t *testing.T) {
	t.Setenv("TEST_PG_HOST", "db.internal")
	t.Setenv("DB_PASSWORD", "s3cret")

	cfg, err := LoadFromFile(writeConfig(t, baseYAML))
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Database.Postgres.Host)
	assert.Equal(t, "s3cret", cfg.Database.Postgres.Password)
	assert.Equal(t, 5432, cfg.Database.Postgres.Port)
	assert.Equal(t, "http://localhost:9200", cfg.Database.Elasticsearch.GetURL())
	assert.Equal(t, "opportunities", cfg.Database.Elasticsearch.OpportunityIndex)

	assert.Equal(t, 30, cfg.Scoring.ThematicPenalty)
	assert.Equal(t, 12, cfg.Scoring.PrimaryWeight)
	assert.Equal(t, 20, cfg.Scoring.IneligibleCeiling)
	assert.Equal(t, 3.0, cfg.Scoring.AmountFarFactor)
	assert.Equal(t, []string{"biotech"}, cfg.Scoring.PrimaryKeywords)

	assert.Equal(t, 32, cfg.Intent.MaxFollowUpLength)
	assert.Equal(t, 5*time.Minute, GetDuration(cfg.Intent.RecencyWindow))
	assert.Equal(t, []string{"claro"}, cfg.Intent.ExtraPhrases.Affirmative)
	assert.Equal(t, 10, cfg.Intent.HistoryLimit)

	assert.Equal(t, 14, cfg.Deadlines.WithinDays)
	assert.Equal(t, 50, cfg.Deadlines.Limit)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "configs/activity-registry.json", cfg.Registry.Path)
}

func TestWorkerConfigDefaults(t *testing.T) {
	t.Setenv("TEST_PG_HOST", "localhost")
	cfg, err := LoadFromFile(writeConfig(t, baseYAML))
	require.NoError(t, err)

	fit := GetWorkerConfig(cfg, "calculate-fit-score")
	assert.Equal(t, 5000, fit.Timeout)
	assert.Equal(t, 5, fit.MaxJobsActive)
	assert.Equal(t, 3, fit.MaxRetries)

	assert.True(t, IsWorkerEnabled(cfg, "calculate-fit-score"))
	assert.False(t, IsWorkerEnabled(cfg, "check-deadlines"))
	assert.True(t, IsWorkerEnabled(cfg, "classify-intent"))
	assert.Equal(t, 30000, GetWorkerConfig(cfg, "classify-intent").Timeout)
}

func TestLoadFromFile_Validation(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "missing broker",
			yaml:    "database: {postgres: {host: h, database: d, user: u}, elasticsearch: {url: 'http://es'}, redis: {address: r}}",
			wantErr: "camunda.broker_address",
		},
		{
			name:    "missing elasticsearch",
			yaml:    "camunda: {broker_address: b}\ndatabase: {postgres: {host: h, database: d, user: u}, redis: {address: r}}",
			wantErr: "elasticsearch",
		},
		{
			name: "sns without topic",
			yaml: "camunda: {broker_address: b}\ndatabase: {postgres: {host: h, database: d, user: u}, elasticsearch: {url: 'http://es'}, redis: {address: r}}\n" +
				"integrations: {aws: {sns: {enabled: true}}}",
			wantErr: "topic_arn",
		},
		{
			name: "tracing without endpoint",
			yaml: "camunda: {broker_address: b}\ndatabase: {postgres: {host: h, database: d, user: u}, elasticsearch: {url: 'http://es'}, redis: {address: r}}\n" +
				"observability: {tracing_enabled: true}",
			wantErr: "jaeger_endpoint",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DEADLINE_ALERTS_TOPIC_ARN", "")
			_, err := LoadFromFile(writeConfig(t, tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

const minimalYAML = "camunda: {broker_address: b}\n" +
	"database: {postgres: {host: h, database: d, user: u}, elasticsearch: {url: 'http://es'}, redis: {address: r}}\n"

func TestLoadFromFile_ScoringValidation(t *testing.T) {
	tests := []struct {
		name    string
		scoring string
		wantErr string
	}{
		{name: "negative ceiling", scoring: "{ineligible_ceiling: -5}", wantErr: "ineligible_ceiling"},
		{name: "ceiling above eligibility cap", scoring: "{ineligible_ceiling: 80}", wantErr: "ineligible_ceiling"},
		{name: "negative weight", scoring: "{primary_weight: -3}", wantErr: "primary_weight"},
		{name: "negative penalty", scoring: "{thematic_penalty: -10}", wantErr: "thematic_penalty"},
		{name: "oversized bonus", scoring: "{category_bonus: 500}", wantErr: "category_bonus"},
		{name: "far factor below one", scoring: "{amount_far_factor: 0.5}", wantErr: "amount_far_factor"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeConfig(t, minimalYAML+"scoring: "+tt.scoring))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFromFile_ScoringExplicitZero(t *testing.T) {
	cfg, err := LoadFromFile(writeConfig(t, minimalYAML+"scoring: {thematic_penalty: 0, ineligible_ceiling: 0}"))
	require.NoError(t, err)

	assert.Equal(t, 0, cfg.Scoring.ThematicPenalty)
	assert.Equal(t, 0, cfg.Scoring.IneligibleCeiling)
	assert.Equal(t, 25, cfg.Scoring.BaseScore)
	assert.Equal(t, 15, cfg.Scoring.CategoryBonus)
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestPostgresDSN(t *testing.T) {
	dsn := PostgresConfig{Host: "h", Port: 5432, User: "u", Password: "p", Database: "d", SSLMode: "disable"}.GetDSN()
	assert.Equal(t, "host=h port=5432 user=u password=p dbname=d sslmode=disable", dsn)
}
