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
camunda:
  broker_address: localhost:26500
database:
  postgres:
    host: localhost
    database: scholarships
    user: engine
  elasticsearch:
    addresses: ["http://localhost:9200"]
  redis:
    address: localhost:6379
engine:
  model:
    min_accuracy: 0.6
workers:
  evaluate-eligibility:
    enabled: true
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFromFile_Defaults(t *testing.T) {
	cfg, err := LoadFromFile(writeConfig(t, baseYAML))
	require.NoError(t, err)

	assert.Equal(t, "scholarship-engine", cfg.App.Name)
	assert.Equal(t, 5432, cfg.Database.Postgres.Port)
	assert.Equal(t, "http://localhost:9200", cfg.Database.Elasticsearch.GetURL())
	assert.Equal(t, "scholarships", cfg.Database.Elasticsearch.ScholarshipIndex)

	assert.Equal(t, 5*time.Minute, GetDuration(cfg.Engine.Model.CacheTTL))
	assert.Equal(t, 2*time.Second, GetDuration(cfg.Engine.Model.FetchTimeout))
	assert.Equal(t, 0.6, cfg.Engine.Model.MinAccuracy)
	assert.Equal(t, CacheBackendMemory, cfg.Engine.Model.CacheBackend)
	assert.Equal(t, RegistryPostgres, cfg.Engine.Model.Registry)
	assert.Equal(t, 8, cfg.Engine.Match.MaxParallel)

	w := GetWorkerConfig(cfg, "evaluate-eligibility")
	assert.True(t, w.Enabled)
	assert.Equal(t, 5, w.MaxJobsActive)
	assert.Equal(t, 3, w.MaxRetries)
}

func TestLoadFromFile_EnvOverride(t *testing.T) {
	t.Setenv("ENGINE_MODEL_MIN_ACCURACY", "0.72")
	t.Setenv("PG_HOST", "db.internal")

	content := baseYAML + "\napp:\n  name: ${PG_HOST}-engine\n"
	cfg, err := LoadFromFile(writeConfig(t, content))
	require.NoError(t, err)

	assert.Equal(t, 0.72, cfg.Engine.Model.MinAccuracy)
	assert.Equal(t, "db.internal-engine", cfg.App.Name)
}

func TestLoadFromFile_Validation(t *testing.T) {
	tests := []struct {
		name    string
		extra   string
		wantErr string
	}{
		{"bad cache backend", "  model:\n    cache_backend: memcached\n", "cache_backend"},
		{"file registry without path", "  model:\n    registry: file\n", "registry_path"},
		{"unknown registry", "  model:\n    registry: s3\n", "engine.model.registry"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := `
camunda:
  broker_address: localhost:26500
database:
  postgres: {host: localhost, database: s, user: u}
  elasticsearch: {url: "http://localhost:9200"}
  redis: {address: "localhost:6379"}
engine:
` + tt.extra
			_, err := LoadFromFile(writeConfig(t, content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFromFile_MissingBroker(t *testing.T) {
	_, err := LoadFromFile(writeConfig(t, "database:\n  postgres:\n    host: x\n"))
	assert.ErrorContains(t, err, "camunda.broker_address")
}

func TestIsWorkerEnabled(t *testing.T) {
	cfg := &Config{Workers: map[string]WorkerConfig{"predict-success": {Enabled: false}}}
	assert.False(t, IsWorkerEnabled(cfg, "predict-success"))
	assert.True(t, IsWorkerEnabled(cfg, "match-scholarships"))
}
