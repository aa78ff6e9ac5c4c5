package notify

import (
	"context"
	"fmt"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/Freeeeeet/barber_bot/internal/model"
)

type smsSender interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// TwilioNotifier sends an SMS to the barber's phone
type TwilioNotifier struct {
	sender smsSender
	from   string
	to     string
}

// NewTwilioNotifier builds a notifier on a REST client for the given account
func NewTwilioNotifier(accountSID, authToken, from, to string) *TwilioNotifier {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return newTwilioNotifier(client.Api, from, to)
}

func newTwilioNotifier(sender smsSender, from, to string) *TwilioNotifier {
	return &TwilioNotifier{sender: sender, from: from, to: to}
}

func (n *TwilioNotifier) NotifyCancellation(ctx context.Context, appt *model.Appointment) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(n.to)
	params.SetFrom(n.from)
	params.SetBody(CancellationText(appt))

	if _, err := n.sender.CreateMessage(params); err != nil {
		return fmt.Errorf("send sms: %w", err)
	}
	return nil
}
