package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/Freeeeeet/barber_bot/internal/model"
)

func testAppointment() *model.Appointment {
	return &model.Appointment{
		ID:          uuid.MustParse("6f1c2a4e-8b3d-4c5e-9f70-1a2b3c4d5e6f"),
		ClientName:  "Ana",
		Phone:       "11999990000",
		ServiceName: "Barba",
		Date:        time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC),
		StartTime:   "10:00",
		Status:      model.AppointmentStatusCancelled,
	}
}

type fakeTelegram struct {
	params *bot.SendMessageParams
	err    error
}

func (f *fakeTelegram) SendMessage(_ context.Context, params *bot.SendMessageParams) (*models.Message, error) {
	f.params = params
	return &models.Message{}, f.err
}

type fakeSMS struct {
	params *twilioApi.CreateMessageParams
}

func (f *fakeSMS) CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error) {
	f.params = params
	return &twilioApi.ApiV2010Message{}, nil
}

type fakeWriter struct {
	msgs []kafka.Message
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error { return nil }

func TestTelegramNotifier(t *testing.T) {
	sender := &fakeTelegram{}
	n := NewTelegramNotifier(sender, 42)

	require.NoError(t, n.NotifyCancellation(context.Background(), testAppointment()))
	require.NotNil(t, sender.params)
	assert.Equal(t, int64(42), sender.params.ChatID)
	assert.Contains(t, sender.params.Text, "10/06/2024 às 10:00")
	assert.Contains(t, sender.params.Text, "11999990000")

	sender.err = errors.New("chat not found")
	assert.Error(t, n.NotifyCancellation(context.Background(), testAppointment()))
}

func TestTwilioNotifier(t *testing.T) {
	sms := &fakeSMS{}
	n := newTwilioNotifier(sms, "+15550001111", "+5511988887777")

	require.NoError(t, n.NotifyCancellation(context.Background(), testAppointment()))
	require.NotNil(t, sms.params)
	assert.Equal(t, "+5511988887777", *sms.params.To)
	assert.Equal(t, "+15550001111", *sms.params.From)
	assert.Contains(t, *sms.params.Body, "Barba")
}

func TestKafkaNotifier(t *testing.T) {
	w := &fakeWriter{}
	n := newKafkaNotifier(w)
	n.now = func() time.Time { return time.Date(2024, 6, 9, 12, 0, 0, 0, time.UTC) }

	appt := testAppointment()
	require.NoError(t, n.NotifyCancellation(context.Background(), appt))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, appt.ID.String(), string(w.msgs[0].Key))

	var ev CancelledEvent
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &ev))
	assert.Equal(t, CancelledEventType, ev.Type)
	assert.Equal(t, "2024-06-10", ev.Date)
	assert.Equal(t, "10:00", ev.StartTime)
}

type failing struct{ err error }

func (f failing) NotifyCancellation(context.Context, *model.Appointment) error { return f.err }

func TestMulti(t *testing.T) {
	errA := errors.New("a")
	errB := errors.New("b")

	err := Multi{failing{errA}, Nop{}, failing{errB}}.NotifyCancellation(context.Background(), testAppointment())
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)

	assert.NoError(t, Multi{Nop{}}.NotifyCancellation(context.Background(), testAppointment()))
}
