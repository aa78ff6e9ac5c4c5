package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Freeeeeet/barber_bot/internal/availability"
	"github.com/Freeeeeet/barber_bot/internal/model"
)

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	var parseErr *availability.ParseError

	switch {
	case errors.Is(err, model.ErrSlotConflict):
		return http.StatusConflict
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrInvalidTransition):
		return http.StatusUnprocessableEntity
	case errors.Is(err, model.ErrInvalidInput), errors.As(err, &parseErr):
		return http.StatusBadRequest
	case model.IsDataSourceError(err):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(c *gin.Context, op string, err error) {
	status := statusFor(err)

	msg := err.Error()
	switch status {
	case http.StatusConflict:
		msg = model.ErrSlotConflict.Error()
	case http.StatusServiceUnavailable:
		msg = "booking data is temporarily unavailable"
	case http.StatusInternalServerError:
		msg = "internal error"
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error(op+" failed", zap.Error(err))
	} else {
		s.logger.Debug(op+" rejected", zap.Int("status", status), zap.Error(err))
	}

	c.JSON(status, gin.H{"error": msg})
}
