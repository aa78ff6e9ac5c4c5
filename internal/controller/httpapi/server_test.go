package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Freeeeeet/barber_bot/internal/availability"
	"github.com/Freeeeeet/barber_bot/internal/cache"
	"github.com/Freeeeeet/barber_bot/internal/catalog"
	"github.com/Freeeeeet/barber_bot/internal/clock"
	"github.com/Freeeeeet/barber_bot/internal/model"
	"github.com/Freeeeeet/barber_bot/internal/repository/memory"
	"github.com/Freeeeeet/barber_bot/internal/service"
)

const barberToken = "s3cret"

type apiFixture struct {
	store   *memory.Store
	clock   *clock.Fake
	handler http.Handler
}

func newAPIFixture(t *testing.T, rateLimit int) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := zap.NewNop()
	fake := clock.NewFake(time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC))
	store := memory.NewStore(fake)
	services := catalog.Default(logger)
	c := cache.New(cache.NewMemoryStore(fake), cache.DefaultTTL, logger)
	checker := availability.NewChecker(store, services.DurationOf, c, logger)
	slots, err := availability.NewSlotGenerator(availability.DefaultSlotConfig(), fake)
	require.NoError(t, err)

	booking := service.NewBookingService(store, checker, slots, services, c, nil, logger)
	barber := service.NewBarberService(store, store, checker, services, c, logger)
	cleanup := service.NewCleanupService(store, slots, checker, c, logger)

	srv := NewServer(Options{
		Addr:            ":0",
		BarberToken:     barberToken,
		RateLimitPerMin: rateLimit,
	}, booking, barber, cleanup, logger)

	return &apiFixture{store: store, clock: fake, handler: srv.Handler()}
}

func (f *apiFixture) do(t *testing.T, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func appointmentBody(start, svc string) map[string]interface{} {
	return map[string]interface{}{
		"client_name":  "Ana",
		"phone":        "11999990000",
		"service_name": svc,
		"date":         "2024-06-10",
		"start_time":   start,
	}
}

func TestHealthAndCatalog(t *testing.T) {
	f := newAPIFixture(t, 0)

	w := f.do(t, http.MethodGet, "/healthz", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodGet, "/api/services", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	services := decode[[]model.Service](t, w)
	assert.Len(t, services, 4)

	w = f.do(t, http.MethodGet, "/api/slots/initial", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	initial := decode[map[string][]string](t, w)
	assert.Len(t, initial["slots"], 16)
}

func TestBookingFlow(t *testing.T) {
	f := newAPIFixture(t, 0)

	w := f.do(t, http.MethodPost, "/api/appointments", appointmentBody("10:00", "Corte + Barba"), "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[model.Appointment](t, w)
	assert.Equal(t, model.AppointmentStatusConfirmed, created.Status)

	w = f.do(t, http.MethodGet, "/api/slots?date=2024-06-10", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	open := decode[service.OpenSlots](t, w)
	assert.Len(t, open.Slots, 14)
	assert.NotContains(t, open.Slots, "10:00")
	assert.NotContains(t, open.Slots, "10:30")

	w = f.do(t, http.MethodGet, "/api/slots/check?date=2024-06-10&time=10:30&service=Barba", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decode[map[string]interface{}](t, w)["free"])

	w = f.do(t, http.MethodPost, "/api/appointments", appointmentBody("10:30", "Barba"), "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "this time is no longer available, pick another", decode[map[string]string](t, w)["error"])

	cancelPath := fmt.Sprintf("/api/appointments/%s/cancel", created.ID)
	w = f.do(t, http.MethodPost, cancelPath, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, model.AppointmentStatusCancelled, decode[model.Appointment](t, w).Status)

	w = f.do(t, http.MethodPost, cancelPath, nil, "")
	assert.Equal(t, http.StatusOK, w.Code, "cancel is idempotent")

	w = f.do(t, http.MethodPost, "/api/appointments", appointmentBody("10:30", "Barba"), "")
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestSlotsForServiceQuery(t *testing.T) {
	f := newAPIFixture(t, 0)

	w := f.do(t, http.MethodGet, "/api/slots?date=2024-06-10&service=Corte%20%2B%20Barba", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	open := decode[service.OpenSlots](t, w)
	require.NotEmpty(t, open.Slots)
	assert.NotContains(t, open.Slots, "16:30", "a 50 minute service cannot start at 16:30")
}

func TestErrorMapping(t *testing.T) {
	f := newAPIFixture(t, 0)

	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
		token  string
		want   int
	}{
		{"missing date", http.MethodGet, "/api/slots", nil, "", http.StatusBadRequest},
		{"bad date", http.MethodGet, "/api/slots?date=10/06/2024", nil, "", http.StatusBadRequest},
		{"bad time", http.MethodPost, "/api/appointments", appointmentBody("25:00", "Barba"), "", http.StatusBadRequest},
		{"missing fields", http.MethodPost, "/api/appointments", map[string]string{"client_name": "Ana"}, "", http.StatusBadRequest},
		{"bad id", http.MethodPost, "/api/appointments/nope/cancel", nil, "", http.StatusBadRequest},
		{"unknown id", http.MethodPost, "/api/appointments/00000000-0000-0000-0000-000000000001/cancel", nil, "", http.StatusNotFound},
		{"no client ref", http.MethodGet, "/api/appointments", nil, "", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(t, tt.method, tt.path, tt.body, tt.token)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestInvalidTransitionIs422(t *testing.T) {
	f := newAPIFixture(t, 0)

	w := f.do(t, http.MethodPost, "/api/appointments", appointmentBody("09:00", "Barba"), "")
	require.Equal(t, http.StatusCreated, w.Code)
	created := decode[model.Appointment](t, w)

	statusPath := fmt.Sprintf("/api/appointments/%s/status", created.ID)
	w = f.do(t, http.MethodPatch, statusPath, map[string]string{"status": "cancelled"}, barberToken)
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodPatch, statusPath, map[string]string{"status": "confirmed"}, barberToken)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = f.do(t, http.MethodPatch, statusPath, map[string]string{"status": "done"}, barberToken)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestDataSourceFailure(t *testing.T) {
	f := newAPIFixture(t, 0)
	f.store.SetFailure(errors.New("connection refused"))

	w := f.do(t, http.MethodGet, "/api/slots?date=2024-06-10", nil, "")
	require.Equal(t, http.StatusOK, w.Code, "reads degrade")
	assert.True(t, decode[service.OpenSlots](t, w).Degraded)

	w = f.do(t, http.MethodPost, "/api/appointments", appointmentBody("09:00", "Barba"), "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code, "writes do not")
}

func TestBarberAuth(t *testing.T) {
	f := newAPIFixture(t, 0)

	w := f.do(t, http.MethodGet, "/api/schedule?date=2024-06-10", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = f.do(t, http.MethodGet, "/api/schedule?date=2024-06-10", nil, "wrong")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = f.do(t, http.MethodGet, "/api/schedule?date=2024-06-10", nil, barberToken)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRecurringEndpoints(t *testing.T) {
	f := newAPIFixture(t, 0)

	body := map[string]interface{}{
		"client_name":  "Carlos",
		"service_name": "Corte de Cabelo",
		"weekday":      1,
		"start_time":   "10:00",
	}
	w := f.do(t, http.MethodPost, "/api/recurring", body, barberToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	rec := decode[model.RecurringAppointment](t, w)

	w = f.do(t, http.MethodPost, "/api/recurring", body, barberToken)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = f.do(t, http.MethodGet, "/api/slots/check?date=2024-06-10&time=10:00", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decode[map[string]interface{}](t, w)["free"], "monday 10:00 is blocked by the weekly block")

	w = f.do(t, http.MethodGet, "/api/schedule?date=2024-06-10", nil, barberToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Carlos")

	w = f.do(t, http.MethodPatch, "/api/recurring/"+rec.ID.String()+"/status", map[string]string{"status": "inactive"}, barberToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, model.RecurringStatusInactive, decode[model.RecurringAppointment](t, w).Status)

	w = f.do(t, http.MethodGet, "/api/recurring?status=inactive", nil, barberToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]model.RecurringAppointment](t, w), 1)

	w = f.do(t, http.MethodDelete, "/api/recurring/"+rec.ID.String(), nil, barberToken)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = f.do(t, http.MethodGet, "/api/recurring/"+rec.ID.String(), nil, barberToken)
	assert.Equal(t, http.StatusNotFound, w.Code)

	missingWeekday := map[string]interface{}{"client_name": "X", "service_name": "Barba", "start_time": "10:00"}
	w = f.do(t, http.MethodPost, "/api/recurring", missingWeekday, barberToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCacheAndCleanupEndpoints(t *testing.T) {
	f := newAPIFixture(t, 0)

	w := f.do(t, http.MethodDelete, "/api/cache", nil, barberToken)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = f.do(t, http.MethodPost, "/api/cleanup", nil, barberToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, model.CleanupResult{}, decode[model.CleanupResult](t, w))
}

func TestRateLimit(t *testing.T) {
	f := newAPIFixture(t, 2)

	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/healthz", nil, "").Code)
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/healthz", nil, "").Code)
	assert.Equal(t, http.StatusTooManyRequests, f.do(t, http.MethodGet, "/healthz", nil, "").Code)
}

func TestRateLimiter_PerClientAndDisabled(t *testing.T) {
	rl := NewRateLimiter(1, zap.NewNop())
	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))
	assert.True(t, rl.Allow("b"), "limits are per client")

	off := NewRateLimiter(0, zap.NewNop())
	for i := 0; i < 100; i++ {
		require.True(t, off.Allow("a"))
	}
}

func TestBarberAPIDisabledWithoutToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/x", BarberAuth("", zap.NewNop()), func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer ")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}
