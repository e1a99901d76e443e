// internal/common/config/loader_test.go
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
  name: placement-workers
  environment: test
camunda:
  broker_address: localhost:26500
database:
  postgres:
    host: localhost
    database: placements
    user: ${TEST_PG_USER}
  redis:
    address: localhost:6379
workers:
  compute-home-matches:
    enabled: true
    timeout: 15000
  update-home-profile:
    enabled: false
matching:
  homes_cache_ttl: 60000
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFromFile(t *testing.T) {
	t.Setenv("TEST_PG_USER", "placement_svc")

	cfg, err := LoadFromFile(writeConfig(t, baseYAML))
	require.NoError(t, err)

	assert.Equal(t, "placement_svc", cfg.Database.Postgres.User)
	assert.Equal(t, 5432, cfg.Database.Postgres.Port)
	assert.Equal(t, "disable", cfg.Database.Postgres.SSLMode)
	assert.Equal(t, "homes:all", cfg.Matching.HomesCacheKey)
	assert.Equal(t, "placement-matches", cfg.Matching.SearchIndex)
	assert.Equal(t, 60*time.Second, GetDuration(cfg.Matching.HomesCacheTTL))
	assert.Equal(t, ":8080", cfg.Server.Addr())

	compute := cfg.Workers["compute-home-matches"]
	assert.True(t, compute.Enabled)
	assert.Equal(t, 15000, compute.Timeout)
	assert.Equal(t, 5, compute.MaxJobsActive)
	assert.Equal(t, 3, compute.MaxRetries)

	assert.False(t, IsWorkerEnabled(cfg, "update-home-profile"))
	assert.True(t, IsWorkerEnabled(cfg, "update-referral-status"))
	assert.Equal(t, 30000, GetWorkerConfig(cfg, "update-referral-status").Timeout)
}

func TestLoadFromFile_EnvironmentFallbacks(t *testing.T) {
	t.Setenv("TEST_PG_USER", "")
	t.Setenv("DB_USER", "fallback_user")
	t.Setenv("DB_PASSWORD", "s3cret")

	cfg, err := LoadFromFile(writeConfig(t, baseYAML))
	require.NoError(t, err)

	assert.Equal(t, "fallback_user", cfg.Database.Postgres.User)
	assert.Equal(t, "s3cret", cfg.Database.Postgres.Password)
}

func TestValidateConfig(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Camunda: CamundaConfig{BrokerAddress: "localhost:26500"},
			Database: DatabaseConfig{
				Postgres: PostgresConfig{Host: "localhost", Database: "placements", User: "svc"},
				Redis:    RedisConfig{Address: "localhost:6379"},
			},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{
			name:    "missing broker",
			mutate:  func(c *Config) { c.Camunda.BrokerAddress = "" },
			wantErr: "camunda.broker_address",
		},
		{
			name:    "missing redis",
			mutate:  func(c *Config) { c.Database.Redis.Address = "" },
			wantErr: "database.redis.address",
		},
		{
			name:    "elasticsearch enabled without addresses",
			mutate:  func(c *Config) { c.Database.Elasticsearch.Enabled = true },
			wantErr: "database.elasticsearch.addresses",
		},
		{
			name:    "negative cache ttl",
			mutate:  func(c *Config) { c.Matching.HomesCacheTTL = -1 },
			wantErr: "homes_cache_ttl",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := validateConfig(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestPostgresConfig_GetDSN(t *testing.T) {
	p := PostgresConfig{Host: "db", Port: 5432, User: "u", Password: "p", Database: "placements", SSLMode: "require"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=placements sslmode=require", p.GetDSN())
}
