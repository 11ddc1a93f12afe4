package config

import (
	"testing"

	"github.com/jogardn/storefront/internal/events"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{
		"HTTP_PORT", "FEED_PORT", "STORE_DRIVER", "DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD",
		"DB_NAME", "DB_SSLMODE", "KAFKA_BROKERS", "KAFKA_TOPIC", "LOG_LEVEL", "BCRYPT_COST",
	} {
		t.Setenv(key, "")
	}
}

func TestDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := fromEnv()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, DriverPostgres, cfg.StoreDriver)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, events.DefaultOrderTopic, cfg.KafkaTopic)
	assert.Equal(t, logrus.InfoLevel, cfg.LogLevel)
	assert.Zero(t, cfg.BcryptCost)
}

func TestOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_DRIVER", "Memory")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("BCRYPT_COST", "4")
	t.Setenv("DB_NAME", "shop")

	cfg, err := fromEnv()
	require.NoError(t, err)
	assert.Equal(t, DriverMemory, cfg.StoreDriver)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, logrus.DebugLevel, cfg.LogLevel)
	assert.Equal(t, 4, cfg.BcryptCost)
	assert.Equal(t, "shop", cfg.Database.Name)
	assert.Equal(t, logrus.DebugLevel, cfg.NewLogger().GetLevel())

	t.Setenv("BCRYPT_COST", "31")
	cfg, err = fromEnv()
	require.NoError(t, err)
	assert.Equal(t, 31, cfg.BcryptCost)
}

func TestInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"unknown driver", "STORE_DRIVER", "sqlite"},
		{"bad log level", "LOG_LEVEL", "loud"},
		{"bad bcrypt cost", "BCRYPT_COST", "high"},
		{"bcrypt cost below minimum", "BCRYPT_COST", "3"},
		{"bcrypt cost above maximum", "BCRYPT_COST", "32"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := fromEnv()
			assert.Error(t, err)
		})
	}
}
