package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Freeeeeet/barber_bot/internal/model"
)

const (
	CancelledEventType = "booking.appointment.cancelled.v1"
	DefaultKafkaTopic  = "booking.appointments"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// CancelledEvent is the payload published for each cancellation
type CancelledEvent struct {
	Type          string    `json:"type"`
	AppointmentID string    `json:"appointment_id"`
	ClientName    string    `json:"client_name"`
	Phone         string    `json:"phone,omitempty"`
	ServiceName   string    `json:"service_name"`
	Date          string    `json:"date"`
	StartTime     string    `json:"start_time"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// KafkaNotifier publishes cancellation events keyed by appointment id
type KafkaNotifier struct {
	writer messageWriter
	now    func() time.Time
}

// NewKafkaNotifier creates a writer for a comma separated broker list
func NewKafkaNotifier(brokers, topic string) *KafkaNotifier {
	if topic == "" {
		topic = DefaultKafkaTopic
	}
	var addrs []string
	for _, b := range strings.Split(brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			addrs = append(addrs, b)
		}
	}
	return newKafkaNotifier(&kafka.Writer{
		Addr:         kafka.TCP(addrs...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
	})
}

func newKafkaNotifier(w messageWriter) *KafkaNotifier {
	return &KafkaNotifier{writer: w, now: time.Now}
}

func (n *KafkaNotifier) NotifyCancellation(ctx context.Context, appt *model.Appointment) error {
	payload, err := json.Marshal(CancelledEvent{
		Type:          CancelledEventType,
		AppointmentID: appt.ID.String(),
		ClientName:    appt.ClientName,
		Phone:         appt.Phone,
		ServiceName:   appt.ServiceName,
		Date:          model.FormatDate(appt.Date),
		StartTime:     appt.StartTime,
		OccurredAt:    n.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("encode cancellation event: %w", err)
	}

	err = n.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(appt.ID.String()),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(CancelledEventType)},
		},
	})
	if err != nil {
		return fmt.Errorf("publish cancellation event: %w", err)
	}
	return nil
}

func (n *KafkaNotifier) Close() error {
	return n.writer.Close()
}
