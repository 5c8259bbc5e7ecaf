package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketbill/internal/domain/billing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, ":8080", cfg.Server.Addr())
	assert.Equal(t, DriverMemory, cfg.Database.Driver)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	assert.False(t, cfg.Kafka.Enabled)
	assert.Equal(t, 100, cfg.Worker.BatchSize)
	assert.Equal(t, billing.Config{
		AreaPolicy:   billing.AreaActiveOnly,
		TariffPolicy: billing.TariffLatest,
	}, cfg.Billing.Policies())
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
database:
  driver: postgres
  dsn: postgres://localhost/marketbill
billing:
  area_policy: all
kafka:
  enabled: true
  brokers: ["k1:9092", "k2:9092"]
worker:
  poll_interval: 5s
`)
	t.Setenv("MARKETBILL_BILLING_TARIFF_POLICY", "effective")
	t.Setenv("MARKETBILL_SERVER_PORT", "7070")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 5*time.Second, cfg.Worker.PollInterval)
	assert.Equal(t, billing.Config{
		AreaPolicy:   billing.AreaAll,
		TariffPolicy: billing.TariffEffective,
	}, cfg.Billing.Policies())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"postgres without dsn", "database:\n  driver: postgres\n"},
		{"unknown driver", "database:\n  driver: sqlite\n"},
		{"unknown area policy", "billing:\n  area_policy: everything\n"},
		{"kafka without brokers", "kafka:\n  enabled: true\n"},
		{"zero batch", "worker:\n  batch_size: 0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
