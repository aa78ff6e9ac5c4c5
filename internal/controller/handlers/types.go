package handlers

import (
	"go.uber.org/zap"

	"github.com/Freeeeeet/barber_bot/internal/controller/state"
	"github.com/Freeeeeet/barber_bot/internal/service"
)

// Handlers serves slash commands and dialog text messages
type Handlers struct {
	userService    *service.UserService
	bookingService *service.BookingService
	barberService  *service.BarberService
	cleanupService *service.CleanupService
	stateManager   *state.Manager
	logger         *zap.Logger
}

func NewHandlers(
	userService *service.UserService,
	bookingService *service.BookingService,
	barberService *service.BarberService,
	cleanupService *service.CleanupService,
	stateManager *state.Manager,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		userService:    userService,
		bookingService: bookingService,
		barberService:  barberService,
		cleanupService: cleanupService,
		stateManager:   stateManager,
		logger:         logger,
	}
}
