// Package httpapi exposes the booking engine over JSON HTTP.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Freeeeeet/barber_bot/internal/service"
)

const shutdownTimeout = 10 * time.Second

// Options configures the HTTP surface
type Options struct {
	Addr            string
	BarberToken     string
	RateLimitPerMin int
	CORSOrigins     []string
}

type Server struct {
	engine  *gin.Engine
	addr    string
	booking *service.BookingService
	barber  *service.BarberService
	cleanup *service.CleanupService
	logger  *zap.Logger
}

func NewServer(
	opts Options,
	booking *service.BookingService,
	barber *service.BarberService,
	cleanup *service.CleanupService,
	logger *zap.Logger,
) *Server {
	s := &Server{
		engine:  gin.New(),
		addr:    opts.Addr,
		booking: booking,
		barber:  barber,
		cleanup: cleanup,
		logger:  logger,
	}

	s.engine.Use(gin.Recovery())
	s.engine.Use(RequestLogger(logger))
	s.engine.Use(cors.New(corsConfig(opts.CORSOrigins)))
	s.engine.Use(NewRateLimiter(opts.RateLimitPerMin, logger).Middleware())

	s.routes(opts.BarberToken)
	return s
}

func (s *Server) routes(barberToken string) {
	s.engine.GET("/healthz", s.health)

	api := s.engine.Group("/api")
	{
		api.GET("/services", s.listServices)
		api.GET("/slots/initial", s.initialSlots)
		api.GET("/slots", s.openSlots)
		api.GET("/slots/check", s.checkSlot)

		api.GET("/appointments", s.clientAppointments)
		api.POST("/appointments", s.createAppointment)
		api.GET("/appointments/:id", s.getAppointment)
		api.POST("/appointments/:id/cancel", s.cancelAppointment)

		barber := api.Group("")
		barber.Use(BarberAuth(barberToken, s.logger))
		{
			barber.PATCH("/appointments/:id/status", s.updateStatus)
			barber.GET("/schedule", s.dailySchedule)

			barber.GET("/recurring", s.listRecurring)
			barber.POST("/recurring", s.createRecurring)
			barber.GET("/recurring/:id", s.getRecurring)
			barber.PATCH("/recurring/:id/status", s.setRecurringStatus)
			barber.DELETE("/recurring/:id", s.deleteRecurring)

			barber.POST("/cleanup", s.runCleanup)
			barber.DELETE("/cache", s.clearCache)
		}
	}
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is done, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting HTTP server", zap.String("addr", s.addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.logger.Info("Shutting down HTTP server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowMethods = []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}
	cfg.AllowHeaders = []string{"Origin", "Authorization", "Content-Type"}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
