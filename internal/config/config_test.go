package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{
		"LISTEN_ADDR", "MONGO_URI", "MONGO_DB", "JWT_SECRET",
		"OPENROUTE_SERVICE_KEY", "MQTT_BROKER_URL", "MQTT_TOPIC",
		"MATRIX_TIMEOUT_MS",
	} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "bustracker", cfg.MongoDB)
	assert.Equal(t, "bus/+/position", cfg.MQTTTopic)
	assert.Equal(t, 5*time.Second, cfg.MatrixTimeout)
	assert.Empty(t, cfg.ORSAPIKey)
	assert.Empty(t, cfg.MQTTBrokerURL)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("LISTEN_ADDR", ":9090")
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("OPENROUTE_SERVICE_KEY", "ors-key")
	t.Setenv("MQTT_BROKER_URL", "tcp://localhost:1883")
	t.Setenv("MATRIX_TIMEOUT_MS", "2500")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoURI)
	assert.Equal(t, "test-secret", cfg.JWTSecret)
	assert.Equal(t, "ors-key", cfg.ORSAPIKey)
	assert.Equal(t, "tcp://localhost:1883", cfg.MQTTBrokerURL)
	assert.Equal(t, 2500*time.Millisecond, cfg.MatrixTimeout)
}

func TestLoadInvalidTimeout(t *testing.T) {
	for _, v := range []string{"abc", "-100", "0"} {
		t.Setenv("MATRIX_TIMEOUT_MS", v)
		_, err := Load()
		assert.Error(t, err, v)
	}
}
