package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_Defaults(t *testing.T) {
	t.Setenv("STORAGE", "memory")

	cfg, err := FromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, StorageMemory, cfg.Storage)
	assert.Equal(t, "09:00", cfg.OpenTime)
	assert.Equal(t, "17:00", cfg.CloseTime)
	assert.Equal(t, 30, cfg.SlotStepMinutes)
	assert.Equal(t, 3000*time.Millisecond, cfg.CacheTTL())
	assert.Equal(t, "0 3 * * *", cfg.CleanupCron)
	assert.Equal(t, "America/Sao_Paulo", cfg.Timezone)
}

func TestFromViper_Env(t *testing.T) {
	t.Setenv("STORAGE", "postgres")
	t.Setenv("DB_DSN", "postgres://localhost/barber")
	t.Setenv("BARBER_TELEGRAM_ID", "12345")
	t.Setenv("CACHE_BACKEND", "Redis")
	t.Setenv("CACHE_TTL_MS", "1500")

	cfg, err := FromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, int64(12345), cfg.BarberTelegramID)
	assert.Equal(t, CacheRedis, cfg.CacheBackend)
	assert.Equal(t, 1500*time.Millisecond, cfg.CacheTTL())
}

func TestFromViper_Invalid(t *testing.T) {
	t.Run("postgres without dsn", func(t *testing.T) {
		t.Setenv("STORAGE", "postgres")
		t.Setenv("DB_DSN", "")
		_, err := FromViper(viper.New())
		assert.ErrorContains(t, err, "DB_DSN")
	})

	t.Run("unknown cache backend", func(t *testing.T) {
		t.Setenv("STORAGE", "memory")
		t.Setenv("CACHE_BACKEND", "memcached")
		_, err := FromViper(viper.New())
		assert.Error(t, err)
	})

	t.Run("bad timezone", func(t *testing.T) {
		t.Setenv("STORAGE", "memory")
		t.Setenv("TIMEZONE", "Mars/Olympus")
		_, err := FromViper(viper.New())
		assert.Error(t, err)
	})
}

func TestCORSOriginList(t *testing.T) {
	cfg := &Config{CORSOrigins: " https://a.example , ,https://b.example"}
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOriginList())

	assert.Empty(t, (&Config{}).CORSOriginList())
}
