package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", c.AppEnv)
	assert.Equal(t, ":8080", c.AppAddr)
	assert.Equal(t, "localhost:6379", c.RedisAddr)
	assert.Equal(t, 30*time.Minute, c.SessionTTL)
	assert.Equal(t, []string{"localhost:9042"}, c.CassandraHosts)
	assert.Equal(t, "eventlog", c.CassandraKeyspace)
	assert.Equal(t, 24*time.Hour, c.AuditLogTTL)
	assert.Equal(t, 7, c.AuditRetentionDays)
	assert.Equal(t, "0 3 * * *", c.AuditSweepSchedule)
	assert.Equal(t, 4, c.AuditWorkers)
	assert.Equal(t, 256, c.AuditQueueSize)
	assert.Equal(t, "mongodb://localhost:27017", c.MongoURI)
	assert.Equal(t, "shop", c.MongoDB)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("SESSION_TTL", "15m")
	t.Setenv("CASSANDRA_HOSTS", "cass-1:9042, cass-2:9042")
	t.Setenv("AUDIT_SWEEP_SCHEDULE", "")
	t.Setenv("REDIS_DB", "3")

	c, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "production", c.AppEnv)
	assert.Equal(t, 15*time.Minute, c.SessionTTL)
	assert.Equal(t, []string{"cass-1:9042", "cass-2:9042"}, c.CassandraHosts)
	assert.Equal(t, 3, c.RedisDB)
	// empty value falls back to the default schedule
	assert.Equal(t, "0 3 * * *", c.AuditSweepSchedule)
}

func TestLoad_BareSecondsDuration(t *testing.T) {
	t.Setenv("SESSION_TTL", "1800")
	t.Setenv("AUDIT_LOG_TTL", "86400")

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, c.SessionTTL)
	assert.Equal(t, 24*time.Hour, c.AuditLogTTL)
}

func TestLoad_RejectsTinyTTL(t *testing.T) {
	t.Setenv("SESSION_TTL", "500ms")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SESSION_TTL")

	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("AUDIT_LOG_TTL", "0s")
	_, err = Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AUDIT_LOG_TTL")
}

func TestLoad_MalformedNumbersFallBack(t *testing.T) {
	t.Setenv("REDIS_DB", "not-a-number")
	t.Setenv("AUDIT_WORKERS", "many")

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 0, c.RedisDB)
	assert.Equal(t, 4, c.AuditWorkers)
}
