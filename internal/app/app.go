package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Freeeeeet/barber_bot/internal/availability"
	"github.com/Freeeeeet/barber_bot/internal/cache"
	"github.com/Freeeeeet/barber_bot/internal/catalog"
	"github.com/Freeeeeet/barber_bot/internal/clock"
	"github.com/Freeeeeet/barber_bot/internal/config"
	"github.com/Freeeeeet/barber_bot/internal/controller"
	"github.com/Freeeeeet/barber_bot/internal/controller/httpapi"
	"github.com/Freeeeeet/barber_bot/internal/notify"
	"github.com/Freeeeeet/barber_bot/internal/repository"
	"github.com/Freeeeeet/barber_bot/internal/repository/memory"
	"github.com/Freeeeeet/barber_bot/internal/service"
)

// App owns every long-lived component of the process
type App struct {
	cfg    *config.Config
	logger *zap.Logger

	store       service.Store
	booking     *service.BookingService
	barber      *service.BarberService
	cleanup     *service.CleanupService
	users       *service.UserService
	invalidator *service.Invalidator
	scheduler   *Scheduler

	bot  *controller.BotController
	http *httpapi.Server

	closers []func() error
}

// New connects storage and builds the services. Close must be called even
// when Run is not.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (_ *App, err error) {
	a := &App{cfg: cfg, logger: logger}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	if err := a.openStore(ctx); err != nil {
		return nil, err
	}

	availabilityCache, err := a.openCache(ctx)
	if err != nil {
		return nil, err
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	slots, err := availability.NewSlotGenerator(availability.SlotConfig{
		OpenTime:    cfg.OpenTime,
		CloseTime:   cfg.CloseTime,
		StepMinutes: cfg.SlotStepMinutes,
		Location:    loc,
	}, clock.Real{})
	if err != nil {
		return nil, fmt.Errorf("slot generator: %w", err)
	}

	services := catalog.Default(logger)
	checker := availability.NewChecker(a.store, services.DurationOf, availabilityCache, logger)

	var botInstance *bot.Bot
	if cfg.TelegramToken != "" {
		botInstance, err = bot.New(cfg.TelegramToken)
		if err != nil {
			return nil, fmt.Errorf("create telegram bot: %w", err)
		}
	}

	a.booking = service.NewBookingService(a.store, checker, slots, services, availabilityCache, a.notifier(botInstance), logger)
	a.barber = service.NewBarberService(a.store, a.store, checker, services, availabilityCache, logger)
	a.cleanup = service.NewCleanupService(a.store, slots, checker, availabilityCache, logger)
	a.users = service.NewUserService(a.store, cfg.BarberTelegramID, logger)
	a.invalidator = service.NewInvalidator(a.store, availabilityCache, checker, logger)

	a.scheduler, err = NewScheduler(a.cleanup, cfg.CleanupCron, logger)
	if err != nil {
		return nil, err
	}

	if botInstance != nil {
		a.bot = controller.NewBotController(botInstance, a.users, a.booking, a.barber, a.cleanup, logger)
	}
	if cfg.HTTPAddr != "" {
		a.http = httpapi.NewServer(httpapi.Options{
			Addr:            cfg.HTTPAddr,
			BarberToken:     cfg.BarberAPIToken,
			RateLimitPerMin: cfg.RateLimitPerMin,
			CORSOrigins:     cfg.CORSOriginList(),
		}, a.booking, a.barber, a.cleanup, logger)
	}

	return a, nil
}

func (a *App) openStore(ctx context.Context) error {
	if a.cfg.Storage == config.StorageMemory {
		a.logger.Warn("Using in-memory storage; data is lost on restart")
		a.store = memory.NewStore(clock.Real{})
		return nil
	}

	pool, err := pgxpool.New(ctx, a.cfg.DBDSN)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	a.closers = append(a.closers, func() error { pool.Close(); return nil })

	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	a.logger.Info("Connected to PostgreSQL")

	migrator, err := NewMigrator(pool, a.cfg.MigrationsDir, a.logger)
	if err != nil {
		return err
	}
	defer migrator.Close()
	if err := migrator.Run(ctx); err != nil {
		return err
	}

	a.store = repository.NewStore(pool, a.logger)
	return nil
}

func (a *App) openCache(ctx context.Context) (*cache.Cache, error) {
	switch a.cfg.CacheBackend {
	case config.CacheDisabled:
		a.logger.Info("Availability cache disabled")
		return cache.Disabled(), nil
	case config.CacheRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     a.cfg.RedisAddr,
			Password: a.cfg.RedisPassword,
			DB:       a.cfg.RedisDB,
		})
		a.closers = append(a.closers, rdb.Close)

		store := cache.NewRedisStore(rdb, "barber:")
		if err := store.Ping(ctx); err != nil {
			return nil, fmt.Errorf("ping redis at %s: %w", a.cfg.RedisAddr, err)
		}
		a.logger.Info("Availability cache on Redis", zap.String("addr", a.cfg.RedisAddr))
		return cache.New(store, a.cfg.CacheTTL(), a.logger), nil
	default:
		return cache.New(cache.NewMemoryStore(clock.Real{}), a.cfg.CacheTTL(), a.logger), nil
	}
}

// notifier assembles every configured cancellation channel
func (a *App) notifier(botInstance *bot.Bot) notify.Notifier {
	var multi notify.Multi

	if botInstance != nil && a.cfg.BarberTelegramID != 0 {
		multi = append(multi, notify.NewTelegramNotifier(botInstance, a.cfg.BarberTelegramID))
	}
	if a.cfg.TwilioAccountSID != "" && a.cfg.BarberPhone != "" {
		multi = append(multi, notify.NewTwilioNotifier(
			a.cfg.TwilioAccountSID, a.cfg.TwilioAuthToken, a.cfg.TwilioFrom, a.cfg.BarberPhone))
	}
	if strings.TrimSpace(a.cfg.KafkaBrokers) != "" {
		kafka := notify.NewKafkaNotifier(a.cfg.KafkaBrokers, a.cfg.KafkaTopic)
		a.closers = append(a.closers, kafka.Close)
		multi = append(multi, kafka)
	}

	a.logger.Info("Cancellation notifiers configured", zap.Int("count", len(multi)))
	if len(multi) == 0 {
		return notify.Nop{}
	}
	return multi
}

// Run blocks until ctx is cancelled or a component fails
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error { return a.invalidator.Run(ctx) })
	g.Go(func() error { return a.scheduler.Run(ctx) })

	if a.bot != nil {
		if err := a.bot.RegisterHandlers(ctx); err != nil {
			a.logger.Warn("Bot commands menu not set", zap.Error(err))
		}
		g.Go(func() error { return a.bot.Start(ctx) })
	}
	if a.http != nil {
		g.Go(func() error { return a.http.Run(ctx) })
	}

	err := g.Wait()
	a.booking.WaitNotifications()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Close releases connections in reverse order of acquisition
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("Close failed", zap.Error(err))
		}
	}
	a.closers = nil
}
