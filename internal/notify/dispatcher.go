package notify

import (
	"fmt"
	"html"

	"github.com/rs/zerolog"

	"tva-service/internal/domain/violation"
)

// Dispatcher composes and sends owner notifications. Delivery is best
// effort: every failure mode maps onto a NotificationOutcome, never an
// error, because by the time a notification is attempted the violation
// record is already committed.
type Dispatcher struct {
	mailer Mailer
	log    zerolog.Logger
}

func NewDispatcher(mailer Mailer, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{mailer: mailer, log: log}
}

// Notify emails the resolved owner about a persisted violation. A nil
// owner short-circuits to no_recipient without touching the transport.
func (d *Dispatcher) Notify(owner *violation.Owner, rec violation.Record) violation.NotificationOutcome {
	if owner == nil {
		return violation.NotificationOutcome{Status: violation.EmailNoRecipient}
	}

	subject := fmt.Sprintf("Traffic Violation Detected – %s", owner.Plate)
	textBody := fmt.Sprintf(
		"Dear %s,\n\nA traffic violation involving vehicle %s has been detected.\n\n%s\n\nSeverity score: %d\n\nPlease take appropriate actions.\n\nTVA System",
		owner.Name, owner.Plate, rec.Summary, rec.SeverityScore,
	)
	htmlBody := fmt.Sprintf(
		`<html><body><h2 style="color:red;">Traffic Violation Detected</h2><p>Dear %s,</p><p>A traffic violation involving vehicle <b>%s</b> has been detected.</p><p><b>%s</b></p><p>Severity score: <b>%d</b></p><p>Please take appropriate actions.</p><hr><p>TVA System</p></body></html>`,
		html.EscapeString(owner.Name), html.EscapeString(owner.Plate), html.EscapeString(rec.Summary), rec.SeverityScore,
	)

	if err := d.mailer.Send(owner.Email, subject, textBody, htmlBody); err != nil {
		d.log.Warn().
			Err(err).
			Str("plate", owner.Plate).
			Str("violation_id", rec.ID.String()).
			Msg("failed to send violation notification")
		return violation.NotificationOutcome{
			Status: violation.EmailSendFailed,
			Detail: err.Error(),
		}
	}

	d.log.Info().
		Str("plate", owner.Plate).
		Str("violation_id", rec.ID.String()).
		Msg("violation notification sent")
	return violation.NotificationOutcome{Status: violation.EmailSent}
}
