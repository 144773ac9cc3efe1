package notifier

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/cenkalti/backoff/v4"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// TwilioEmail is the reference Notifier: SMS via Twilio, email via a
// plain net/smtp submission. Both legs are best-effort; a failure on one
// channel never blocks or retries indefinitely — see Engine.notifyBestEffort
// in internal/notification for the caller-side boundary.
type TwilioEmail struct {
	client     *twilio.RestClient
	fromNumber string
	smtpAddr   string
	smtpFrom   string
}

// NewTwilioEmail builds a Notifier from Twilio credentials and an SMTP
// relay address. Either leg may be left zero-valued if that channel is
// unused; SendSMS/SendEmail then return a configuration error instead of
// silently succeeding, so misconfiguration surfaces in logs rather than
// vanishing.
func NewTwilioEmail(accountSID, authToken, fromNumber, smtpAddr, smtpFrom string) *TwilioEmail {
	var client *twilio.RestClient
	if accountSID != "" && authToken != "" {
		client = twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSID,
			Password: authToken,
		})
	}
	return &TwilioEmail{client: client, fromNumber: fromNumber, smtpAddr: smtpAddr, smtpFrom: smtpFrom}
}

// SendSMS retries transient Twilio failures up to twice with a short
// exponential backoff before giving up — the caller treats this as a
// single best-effort send either way, but most Twilio 5xx responses
// clear on their own within a couple hundred milliseconds.
func (n *TwilioEmail) SendSMS(ctx context.Context, toPhone, message string) error {
	if n.client == nil {
		return fmt.Errorf("twilio client not configured")
	}
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(toPhone)
	params.SetFrom(n.fromNumber)
	params.SetBody(message)

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 2), ctx)
	err := backoff.Retry(func() error {
		_, err := n.client.Api.CreateMessage(params)
		return err
	}, policy)
	if err != nil {
		return fmt.Errorf("send sms via twilio: %w", err)
	}
	return nil
}

func (n *TwilioEmail) SendEmail(ctx context.Context, toEmail, subject, body string) error {
	if n.smtpAddr == "" {
		return fmt.Errorf("smtp relay not configured")
	}
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n", n.smtpFrom, toEmail, subject, body)
	if err := smtp.SendMail(n.smtpAddr, nil, n.smtpFrom, []string{toEmail}, []byte(msg)); err != nil {
		return fmt.Errorf("send email via smtp: %w", err)
	}
	return nil
}
