package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Freeeeeet/barber_bot/internal/catalog"
	"github.com/Freeeeeet/barber_bot/internal/model"
	"github.com/Freeeeeet/barber_bot/internal/service"
)

type createAppointmentRequest struct {
	ClientName  string `json:"client_name" binding:"required"`
	Phone       string `json:"phone"`
	ServiceName string `json:"service_name" binding:"required"`
	Date        string `json:"date" binding:"required"`
	StartTime   string `json:"start_time" binding:"required"`
	Email       string `json:"email"`
	TelegramID  *int64 `json:"telegram_id"`
}

type createRecurringRequest struct {
	ClientName  string `json:"client_name" binding:"required"`
	Phone       string `json:"phone"`
	ServiceName string `json:"service_name" binding:"required"`
	Weekday     *int   `json:"weekday" binding:"required"`
	StartTime   string `json:"start_time" binding:"required"`
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) listServices(c *gin.Context) {
	c.JSON(http.StatusOK, s.booking.Services())
}

func (s *Server) initialSlots(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"slots": s.booking.InitialSlots()})
}

// openSlots answers GET /api/slots?date=YYYY-MM-DD[&service=name].
// Without a service the default slot length is used.
func (s *Server) openSlots(c *gin.Context) {
	date, ok := s.dateQuery(c)
	if !ok {
		return
	}

	var (
		open service.OpenSlots
		err  error
	)
	if name := c.Query("service"); name != "" {
		open, err = s.booking.SlotsForService(c.Request.Context(), date, name)
	} else {
		open, err = s.booking.GetOpenSlots(c.Request.Context(), date, date.Weekday(), catalog.DefaultDuration)
	}
	if err != nil {
		s.writeError(c, "list open slots", err)
		return
	}

	c.JSON(http.StatusOK, open)
}

func (s *Server) checkSlot(c *gin.Context) {
	date, ok := s.dateQuery(c)
	if !ok {
		return
	}
	startTime := c.Query("time")
	if startTime == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "time is required"})
		return
	}

	free, err := s.booking.CheckSlot(c.Request.Context(), date, startTime, s.durationFor(c.Query("service")))
	if err != nil {
		s.writeError(c, "check slot", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"date":       model.FormatDate(date),
		"start_time": startTime,
		"free":       free,
	})
}

// clientAppointments answers GET /api/appointments?email=...|telegram_id=...
func (s *Server) clientAppointments(c *gin.Context) {
	ref := service.ClientRef{Email: c.Query("email")}
	if raw := c.Query("telegram_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "telegram_id must be a number"})
			return
		}
		ref.TelegramID = &id
	}

	appts, err := s.booking.ClientAppointments(c.Request.Context(), ref)
	if err != nil {
		s.writeError(c, "list client appointments", err)
		return
	}

	c.JSON(http.StatusOK, appts)
}

func (s *Server) createAppointment(c *gin.Context) {
	var req createAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "message": err.Error()})
		return
	}

	date, err := model.ParseDate(req.Date)
	if err != nil {
		s.writeError(c, "create appointment", err)
		return
	}

	appt, err := s.booking.CreateAppointment(c.Request.Context(), model.CreateAppointmentInput{
		ClientName:  req.ClientName,
		Phone:       req.Phone,
		ServiceName: req.ServiceName,
		Date:        date,
		StartTime:   req.StartTime,
		Email:       req.Email,
		TelegramID:  req.TelegramID,
	})
	if err != nil {
		s.writeError(c, "create appointment", err)
		return
	}

	c.JSON(http.StatusCreated, appt)
}

func (s *Server) getAppointment(c *gin.Context) {
	id, ok := s.idParam(c)
	if !ok {
		return
	}

	appt, err := s.booking.GetAppointment(c.Request.Context(), id)
	if err != nil {
		s.writeError(c, "get appointment", err)
		return
	}

	c.JSON(http.StatusOK, appt)
}

func (s *Server) cancelAppointment(c *gin.Context) {
	id, ok := s.idParam(c)
	if !ok {
		return
	}

	appt, err := s.booking.CancelAppointment(c.Request.Context(), id)
	if err != nil {
		s.writeError(c, "cancel appointment", err)
		return
	}

	c.JSON(http.StatusOK, appt)
}

func (s *Server) updateStatus(c *gin.Context) {
	id, ok := s.idParam(c)
	if !ok {
		return
	}
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "message": err.Error()})
		return
	}

	appt, err := s.booking.UpdateStatus(c.Request.Context(), id, model.AppointmentStatus(req.Status))
	if err != nil {
		s.writeError(c, "update appointment status", err)
		return
	}

	c.JSON(http.StatusOK, appt)
}

func (s *Server) dailySchedule(c *gin.Context) {
	date := s.booking.Today()
	if c.Query("date") != "" {
		var ok bool
		if date, ok = s.dateQuery(c); !ok {
			return
		}
	}

	entries, err := s.barber.DailySchedule(c.Request.Context(), date)
	if err != nil {
		s.writeError(c, "daily schedule", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"date":    model.FormatDate(date),
		"entries": entries,
	})
}

// listRecurring accepts optional weekday and status filters
func (s *Server) listRecurring(c *gin.Context) {
	var filter model.RecurringFilter
	if raw := c.Query("weekday"); raw != "" {
		weekday, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "weekday must be a number"})
			return
		}
		filter.Weekday = &weekday
	}
	if raw := c.Query("status"); raw != "" {
		status := model.RecurringStatus(raw)
		filter.Status = &status
	}

	recs, err := s.barber.ListRecurring(c.Request.Context(), filter)
	if err != nil {
		s.writeError(c, "list recurring appointments", err)
		return
	}

	c.JSON(http.StatusOK, recs)
}

func (s *Server) createRecurring(c *gin.Context) {
	var req createRecurringRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "message": err.Error()})
		return
	}

	rec, err := s.barber.CreateRecurring(c.Request.Context(), model.CreateRecurringInput{
		ClientName:  req.ClientName,
		Phone:       req.Phone,
		ServiceName: req.ServiceName,
		Weekday:     *req.Weekday,
		StartTime:   req.StartTime,
	})
	if err != nil {
		s.writeError(c, "create recurring appointment", err)
		return
	}

	c.JSON(http.StatusCreated, rec)
}

func (s *Server) getRecurring(c *gin.Context) {
	id, ok := s.idParam(c)
	if !ok {
		return
	}

	rec, err := s.barber.GetRecurring(c.Request.Context(), id)
	if err != nil {
		s.writeError(c, "get recurring appointment", err)
		return
	}

	c.JSON(http.StatusOK, rec)
}

func (s *Server) setRecurringStatus(c *gin.Context) {
	id, ok := s.idParam(c)
	if !ok {
		return
	}
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "message": err.Error()})
		return
	}

	rec, err := s.barber.SetRecurringStatus(c.Request.Context(), id, model.RecurringStatus(req.Status))
	if err != nil {
		s.writeError(c, "set recurring status", err)
		return
	}

	c.JSON(http.StatusOK, rec)
}

func (s *Server) deleteRecurring(c *gin.Context) {
	id, ok := s.idParam(c)
	if !ok {
		return
	}

	if err := s.barber.DeleteRecurring(c.Request.Context(), id); err != nil {
		s.writeError(c, "delete recurring appointment", err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) runCleanup(c *gin.Context) {
	res, err := s.cleanup.Run(c.Request.Context())
	if err != nil {
		s.writeError(c, "cleanup", err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (s *Server) clearCache(c *gin.Context) {
	s.booking.ClearCache(c.Request.Context())
	s.logger.Info("Availability cache cleared via API", zap.String("ip", c.ClientIP()))
	c.Status(http.StatusNoContent)
}

// dateQuery reads the required date query parameter, answering 400 itself
func (s *Server) dateQuery(c *gin.Context) (time.Time, bool) {
	raw := c.Query("date")
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date is required"})
		return time.Time{}, false
	}
	date, err := model.ParseDate(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return time.Time{}, false
	}
	return date, true
}

// durationFor falls back to the default slot length when no service is named
func (s *Server) durationFor(serviceName string) int {
	if serviceName == "" {
		return catalog.DefaultDuration
	}
	return s.booking.DurationOf(serviceName)
}

func (s *Server) idParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid id %q", c.Param("id"))})
		return uuid.Nil, false
	}
	return id, true
}
