package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"HTTP_ADDR", "KAFKA_BROKERS", "NOTIFIER_WORKERS", "MIGRATE_ON_START", "API_URL"} {
		t.Setenv(k, "")
	}
	cfg := Load()
	assert.Equal(t, ":3001", cfg.HTTPAddr)
	assert.Equal(t, []string{"kafka:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 4, cfg.NotifierWorkers)
	assert.True(t, cfg.MigrateOnStart)
	assert.Equal(t, "http://localhost:3001", cfg.APIURL)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":8080")
	t.Setenv("KAFKA_BROKERS", " k1:9092, ,k2:9092 ")
	t.Setenv("NOTIFIER_WORKERS", "16")
	t.Setenv("MIGRATE_ON_START", "false")

	cfg := Load()
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 16, cfg.NotifierWorkers)
	assert.False(t, cfg.MigrateOnStart)
}

func TestLoad_BadNumbersFallBack(t *testing.T) {
	t.Setenv("NOTIFIER_WORKERS", "many")
	t.Setenv("MIGRATE_ON_START", "perhaps")

	cfg := Load()
	assert.Equal(t, 4, cfg.NotifierWorkers)
	assert.True(t, cfg.MigrateOnStart)
}
