package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	AppEnv             string
	AppAddr            string
	CORSAllowedOrigins []string

	RedisAddr  string
	RedisDB    int
	SessionTTL time.Duration

	CassandraHosts     []string
	CassandraKeyspace  string
	AuditLogTTL        time.Duration
	AuditRetentionDays int
	AuditSweepSchedule string
	AuditWorkers       int
	AuditQueueSize     int

	MongoURI string
	MongoDB  string
}

func Load() (Config, error) {
	c := Config{}

	c.AppEnv = getEnv("APP_ENV", "development")
	c.AppAddr = getEnv("APP_ADDR", ":8080")
	c.CORSAllowedOrigins = splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173"))

	c.RedisAddr = getEnv("REDIS_ADDR", "localhost:6379")
	c.RedisDB = getInt("REDIS_DB", 0)
	c.SessionTTL = getDuration("SESSION_TTL", 30*time.Minute)

	c.CassandraHosts = splitCSV(getEnv("CASSANDRA_HOSTS", "localhost:9042"))
	c.CassandraKeyspace = getEnv("CASSANDRA_KEYSPACE", "eventlog")
	c.AuditLogTTL = getDuration("AUDIT_LOG_TTL", 24*time.Hour)
	c.AuditRetentionDays = getInt("AUDIT_RETENTION_DAYS", 7)
	// cron spec; empty disables the retention sweep
	c.AuditSweepSchedule = getEnv("AUDIT_SWEEP_SCHEDULE", "0 3 * * *")
	c.AuditWorkers = getInt("AUDIT_WORKERS", 4)
	c.AuditQueueSize = getInt("AUDIT_QUEUE_SIZE", 256)

	c.MongoURI = getEnv("MONGO_URI", "mongodb://localhost:27017")
	c.MongoDB = getEnv("MONGO_DB", "shop")

	if c.SessionTTL < time.Second {
		return c, fmt.Errorf("SESSION_TTL too small: %s", c.SessionTTL)
	}
	if c.AuditLogTTL < time.Second {
		return c, fmt.Errorf("AUDIT_LOG_TTL too small: %s", c.AuditLogTTL)
	}

	return c, nil
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		// bare integers are seconds, matching the store-facing TTL units
		if secs, err := strconv.Atoi(v); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return def
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	res := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			res = append(res, p)
		}
	}
	if len(res) == 0 {
		return []string{"*"}
	}
	return res
}

func (c Config) String() string {
	return fmt.Sprintf("env=%s addr=%s redis=%s/%d cassandra=%s/%s mongo=%s/%s",
		c.AppEnv, c.AppAddr, c.RedisAddr, c.RedisDB,
		strings.Join(c.CassandraHosts, ","), c.CassandraKeyspace, c.MongoURI, c.MongoDB)
}
