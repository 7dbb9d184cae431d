package notify

import (
	"errors"

	"gopkg.in/gomail.v2"
)

// Mailer is the outbound mail transport. Send delivers one message;
// any error means the message did not go out.
type Mailer interface {
	Send(to, subject, textBody, htmlBody string) error
}

type smtpMailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPMailer builds the gomail-backed transport. From is used as
// both the SMTP username and the sender address.
func NewSMTPMailer(host string, port int, from, password string) Mailer {
	d := gomail.NewDialer(host, port, from, password)
	d.SSL = port == 465
	return &smtpMailer{dialer: d, from: from}
}

func (m *smtpMailer) Send(to, subject, textBody, htmlBody string) error {
	if to == "" {
		return errors.New("empty recipient")
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", textBody)
	if htmlBody != "" {
		msg.AddAlternative("text/html", htmlBody)
	}

	return m.dialer.DialAndSend(msg)
}

// disabledMailer stands in when no SMTP credentials are configured;
// every delivery attempt fails with a stable error so the dispatcher
// reports send_failed rather than the process crashing at startup.
type disabledMailer struct{}

// NewDisabledMailer returns the credential-less fallback transport.
func NewDisabledMailer() Mailer {
	return disabledMailer{}
}

func (disabledMailer) Send(to, subject, textBody, htmlBody string) error {
	return errors.New("mail transport not configured")
}
