package notification

import (
	"fmt"

	"github.com/Shine-Mobile-Detailing/service-dispatch/internal/config"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"
)

// Sender delivers a single outbound message. Delivery is best-effort;
// callers never treat a send failure as fatal.
type Sender interface {
	Send(to, body string) error
}

// TwilioSender sends SMS through the Twilio REST API.
type TwilioSender struct {
	client *twilio.RestClient
	from   string
}

// NewTwilioSender creates a Twilio-backed SMS sender.
func NewTwilioSender(cfg config.TwilioConfig) *TwilioSender {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})
	return &TwilioSender{client: client, from: cfg.FromNumber}
}

// LogSender logs messages instead of sending them. Used in development
// when no Twilio credentials are configured.
type LogSender struct {
	logger *zap.Logger
}

// NewLogSender creates a log-only sender.
func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Send logs the message.
func (s *LogSender) Send(to, body string) error {
	s.logger.Info("sms (log only)", zap.String("to", to), zap.String("body", body))
	return nil
}

// Send delivers one SMS.
func (s *TwilioSender) Send(to, body string) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(s.from)
	params.SetBody(body)

	if _, err := s.client.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("twilio send failed: %w", err)
	}
	return nil
}
