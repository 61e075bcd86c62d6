package cmd

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBase = `
db:
  host: db.internal
  user: dispatch
  name: dispatch
kafka:
  brokers: ["k1:9092"]
order:
  match_timeout: 5m
`

func writeBase(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "base.yaml"), []byte(body), 0o600))
	return dir
}

func TestLoadConfig_FileThenEnvironment(t *testing.T) {
	dir := writeBase(t, testBase)
	t.Setenv("DISPATCH_SECURITY__JWT_SECRET", "secret")
	t.Setenv("DISPATCH_DB__PASSWORD", "from-env")
	t.Setenv("DISPATCH_KAFKA__BROKERS", "a:9092,b:9092")

	cfg, err := LoadConfig(dir)

	require.NoError(t, err)
	assert.Equal(t, "db.internal", cfg.DB.Host)
	assert.Equal(t, "from-env", cfg.DB.Password)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 5*time.Minute, cfg.Order.MatchTimeout)
	// untouched keys keep their defaults
	assert.Equal(t, 60*time.Second, cfg.Exclusivity.AdminWindow)
	assert.Equal(t, "order.changed", cfg.Kafka.OrderChangedTopic)
}

func TestLoadConfig_MissingFileUsesEnvironmentOnly(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DISPATCH_DB__HOST", "h")
	t.Setenv("DISPATCH_DB__USER", "u")
	t.Setenv("DISPATCH_DB__NAME", "n")
	t.Setenv("DISPATCH_KAFKA__BROKERS", "k:9092")
	t.Setenv("DISPATCH_SECURITY__JWT_SECRET", "secret")

	cfg, err := LoadConfig(dir)

	require.NoError(t, err)
	assert.Equal(t, "h", cfg.DB.Host)
	assert.Equal(t, []string{"k:9092"}, cfg.Kafka.Brokers)
}

func TestLoadConfig_RejectsIncompleteConfig(t *testing.T) {
	dir := writeBase(t, "db:\n  host: h\n")

	_, err := LoadConfig(dir)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "db.host, db.user and db.name required")
	assert.Contains(t, err.Error(), "kafka.brokers required")
	assert.Contains(t, err.Error(), "security.jwt_secret required")
}

func TestConfig_FeeSchedule(t *testing.T) {
	cfg := DefaultConfig()

	schedule, err := cfg.FeeSchedule()
	require.NoError(t, err)
	assert.Equal(t, int64(16), schedule.StartFee(155))

	cfg.Fees.StartRate = "0.30"
	cfg.Fees.CommissionRate = "0.20"
	_, err = cfg.FeeSchedule()
	assert.Error(t, err)

	cfg.Fees.StartRate = "ten"
	_, err = cfg.FeeSchedule()
	assert.Error(t, err)
}

func TestConfig_DSN(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DB.Host = "db"
	cfg.DB.User = "app"
	cfg.DB.Password = "p@ss"
	cfg.DB.Name = "dispatch"

	assert.Equal(t, "postgres://app:p%40ss@db:5432/dispatch?sslmode=disable", cfg.DSN())
}
