package sms

import (
	"context"
	"errors"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// DefaultFrom is Twilio's magic test number, used when no sender number is
// configured.
const DefaultFrom = "+15005550006"

// ErrNoCredentials is returned when the account SID or auth token is missing.
var ErrNoCredentials = errors.New("twilio credentials not set")

// messageCreator is the subset of the Twilio REST API used here.
type messageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// TwilioSender sends SMS through the Twilio Messages API.  It holds no
// mutable state and is safe to share between requests.
type TwilioSender struct {
	api  messageCreator
	from string
}

// NewTwilioSender builds a sender for the given account.  An empty from number
// falls back to DefaultFrom.
func NewTwilioSender(accountSID, authToken, from string) (*TwilioSender, error) {
	if accountSID == "" || authToken == "" {
		return nil, ErrNoCredentials
	}
	if from == "" {
		from = DefaultFrom
	}
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &TwilioSender{api: client.Api, from: from}, nil
}

// Send delivers body to the E.164 number to and returns the message SID.  The
// Twilio client has no context support, so ctx is only checked up front.
func (s *TwilioSender) Send(ctx context.Context, to, body string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(s.from)
	params.SetBody(body)

	resp, err := s.api.CreateMessage(params)
	if err != nil {
		return "", err
	}
	if resp == nil || resp.Sid == nil {
		return "", errors.New("twilio response carried no message sid")
	}
	return *resp.Sid, nil
}
