package callbacktypes

import (
	"go.uber.org/zap"

	"github.com/Freeeeeet/barber_bot/internal/controller/state"
	"github.com/Freeeeeet/barber_bot/internal/service"
)

// Handler bundles the dependencies shared by every callback handler
type Handler struct {
	UserService    *service.UserService
	BookingService *service.BookingService
	BarberService  *service.BarberService
	CleanupService *service.CleanupService
	StateManager   *state.Manager
	Logger         *zap.Logger
}
