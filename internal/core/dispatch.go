package core

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"pocketclinic/pkg"
)

// CauseNoPhoneNumber is the error cause reported when no destination was given.
const CauseNoPhoneNumber = "no phone number provided"

// Sender delivers an SMS and returns the provider's message identifier.
type Sender interface {
	Send(ctx context.Context, to, body string) (string, error)
}

// DispatchGateway hands referrals to the SMS provider and normalises the
// result.  A nil Sender means no credentials are configured and every
// dispatch is simulated.
type DispatchGateway struct {
	Sender Sender
	Logger *slog.Logger
}

// NewDispatchGateway constructs a gateway.  sender may be nil.
func NewDispatchGateway(sender Sender, logger *slog.Logger) *DispatchGateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &DispatchGateway{Sender: sender, Logger: logger}
}

// Dispatch performs a single send attempt.  It never returns an error: every
// failure becomes an outcome with Status error and the body still attached.
func (g *DispatchGateway) Dispatch(ctx context.Context, to string, msg pkg.ReferralMessage) pkg.DispatchOutcome {
	to = strings.TrimSpace(to)
	body := msg.Body
	if body == "" {
		body = Fallback(msg.Condition, msg.Recommendation).Body
	}
	if g.Sender == nil {
		g.Logger.Info("sms not configured, simulating dispatch", "to", to, "body", body)
		return pkg.DispatchOutcome{Status: pkg.DispatchSimulated, To: to, Body: body}
	}
	if to == "" {
		return pkg.DispatchOutcome{Status: pkg.DispatchError, Cause: CauseNoPhoneNumber, Body: body}
	}
	id, err := g.send(ctx, to, body)
	if err != nil {
		g.Logger.Error("sms dispatch failed", "to", to, "err", err)
		return pkg.DispatchOutcome{Status: pkg.DispatchError, Cause: err.Error(), To: to, Body: body}
	}
	g.Logger.Info("sms sent", "to", to, "message_id", id)
	return pkg.DispatchOutcome{Status: pkg.DispatchSent, MessageID: id, To: to, Body: body}
}

func (g *DispatchGateway) send(ctx context.Context, to, body string) (id string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sms sender panicked: %v", r)
		}
	}()
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return g.Sender.Send(ctx, to, body)
}
