// Package email delivers pipeline notifications to the agency team
// over the tenant's own SMTP server.
package email

import "context"

// Sender delivers pipeline notification emails.
type Sender interface {
	SendLeadCapturedEmail(ctx context.Context, toEmail, leadName, source, message string) error
	SendDealWonEmail(ctx context.Context, toEmail, leadName, company string) error
	SendFollowUpReminderEmail(ctx context.Context, toEmail, leadName, stageTitle string, daysStalled int) error
}

// NoopSender discards every email. Used when EMAIL_ENABLED is off and
// in demo mode.
type NoopSender struct{}

func (NoopSender) SendLeadCapturedEmail(context.Context, string, string, string, string) error {
	return nil
}

func (NoopSender) SendDealWonEmail(context.Context, string, string, string) error {
	return nil
}

func (NoopSender) SendFollowUpReminderEmail(context.Context, string, string, string, int) error {
	return nil
}

var _ Sender = NoopSender{}
