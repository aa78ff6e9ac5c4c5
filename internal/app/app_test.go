package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Freeeeeet/barber_bot/internal/config"
	"github.com/Freeeeeet/barber_bot/internal/notify"
)

func memoryConfig() *config.Config {
	return &config.Config{
		Environment:     "development",
		Storage:         config.StorageMemory,
		HTTPAddr:        "127.0.0.1:0",
		Timezone:        "UTC",
		OpenTime:        "09:00",
		CloseTime:       "17:00",
		SlotStepMinutes: 30,
		CacheBackend:    config.CacheMemory,
		CacheTTLMs:      3000,
		CleanupCron:     "0 3 * * *",
	}
}

func TestNew_MemoryBackend(t *testing.T) {
	a, err := New(context.Background(), memoryConfig(), zap.NewNop())
	require.NoError(t, err)
	defer a.Close()

	assert.Nil(t, a.bot, "no token, no bot")
	assert.NotNil(t, a.http)
	assert.Len(t, a.booking.InitialSlots(), 16)
}

func TestNew_InvalidCron(t *testing.T) {
	cfg := memoryConfig()
	cfg.CleanupCron = "every day"

	_, err := New(context.Background(), cfg, zap.NewNop())
	assert.Error(t, err)
}

func TestRun_StopsOnCancel(t *testing.T) {
	a, err := New(context.Background(), memoryConfig(), zap.NewNop())
	require.NoError(t, err)
	defer a.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(15 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestNotifier_Assembly(t *testing.T) {
	cfg := memoryConfig()
	a := &App{cfg: cfg, logger: zap.NewNop()}
	assert.IsType(t, notify.Nop{}, a.notifier(nil))

	cfg.BarberTelegramID = 42
	assert.IsType(t, notify.Nop{}, a.notifier(nil), "telegram needs a bot")

	cfg.KafkaBrokers = "localhost:9092"
	cfg.TwilioAccountSID = "AC123"
	cfg.TwilioAuthToken = "token"
	cfg.TwilioFrom = "+15550000000"
	cfg.BarberPhone = "+5511999990000"

	multi, ok := a.notifier(nil).(notify.Multi)
	require.True(t, ok)
	assert.Len(t, multi, 2)
	assert.Len(t, a.closers, 1, "kafka writer is closed on shutdown")
	a.Close()
}
