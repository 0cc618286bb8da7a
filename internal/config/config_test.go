package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("OPENWEATHER_API_KEY", "ow-key")
	t.Setenv("WEATHERAPI_API_KEY", "wa-key")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, time.Minute, cfg.ProbeInterval)
	assert.Equal(t, "ow-key", cfg.OpenWeatherAPIKey)
	assert.Empty(t, cfg.RedisAddr)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, "user-change-events", cfg.KafkaTopic)
}

func TestLoadRequiresGeocodingKey(t *testing.T) {
	t.Setenv("OPENWEATHER_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadGoogleKeyAlone(t *testing.T) {
	t.Setenv("OPENWEATHER_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "g-key")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "g-key", cfg.GoogleAPIKey)
}

func TestLoadParsesKafkaBrokers(t *testing.T) {
	t.Setenv("OPENWEATHER_API_KEY", "ow-key")
	t.Setenv("KAFKA_BROKERS", "broker1:9092, broker2:9092")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
}

func TestLoadRejectsBadDurations(t *testing.T) {
	t.Setenv("OPENWEATHER_API_KEY", "ow-key")
	t.Setenv("HTTP_TIMEOUT", "not-a-duration")

	_, err := Load()
	require.Error(t, err)
}
