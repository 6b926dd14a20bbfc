package sms

import (
	"context"
	"errors"
	"testing"

	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

type fakeAPI struct {
	params *twilioApi.CreateMessageParams
	resp   *twilioApi.ApiV2010Message
	err    error
}

func (f *fakeAPI) CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error) {
	f.params = params
	return f.resp, f.err
}

func TestNewTwilioSenderRequiresCredentials(t *testing.T) {
	for _, c := range [][2]string{{"", ""}, {"AC1", ""}, {"", "tok"}} {
		if _, err := NewTwilioSender(c[0], c[1], ""); !errors.Is(err, ErrNoCredentials) {
			t.Errorf("NewTwilioSender(%q, %q) err = %v", c[0], c[1], err)
		}
	}
	s, err := NewTwilioSender("AC1", "tok", "")
	if err != nil {
		t.Fatalf("NewTwilioSender: %v", err)
	}
	if s.from != DefaultFrom {
		t.Fatalf("from = %q, want %q", s.from, DefaultFrom)
	}
}

func TestSend(t *testing.T) {
	sid := "SM42"
	api := &fakeAPI{resp: &twilioApi.ApiV2010Message{Sid: &sid}}
	s := &TwilioSender{api: api, from: "+15550000"}

	id, err := s.Send(context.Background(), "+2348012345678", "hello")
	if err != nil || id != "SM42" {
		t.Fatalf("Send = %q, %v", id, err)
	}
	if *api.params.To != "+2348012345678" || *api.params.From != "+15550000" || *api.params.Body != "hello" {
		t.Fatalf("params = %+v", api.params)
	}
}

func TestSendErrors(t *testing.T) {
	s := &TwilioSender{api: &fakeAPI{err: errors.New("unreachable")}, from: DefaultFrom}
	if _, err := s.Send(context.Background(), "+1", "x"); err == nil || err.Error() != "unreachable" {
		t.Fatalf("err = %v", err)
	}

	s = &TwilioSender{api: &fakeAPI{resp: &twilioApi.ApiV2010Message{}}, from: DefaultFrom}
	if _, err := s.Send(context.Background(), "+1", "x"); err == nil {
		t.Fatal("missing sid accepted")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	api := &fakeAPI{}
	s = &TwilioSender{api: api, from: DefaultFrom}
	if _, err := s.Send(ctx, "+1", "x"); !errors.Is(err, context.Canceled) || api.params != nil {
		t.Fatalf("cancelled send: err = %v", err)
	}
}
