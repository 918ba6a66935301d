package email

import (
	"context"
	"fmt"
	"net"
	"time"

	gomail "github.com/wneessen/go-mail"
)

// SMTPSender implements Sender over a direct SMTP connection via
// go-mail.
type SMTPSender struct {
	host      string
	port      int
	username  string
	password  string
	fromName  string
	fromEmail string
}

// NewSMTPSender creates a new SMTPSender with the given SMTP credentials.
func NewSMTPSender(host string, port int, username, password, fromEmail, fromName string) *SMTPSender {
	return &SMTPSender{
		host:      host,
		port:      port,
		username:  username,
		password:  password,
		fromName:  fromName,
		fromEmail: fromEmail,
	}
}

func (s *SMTPSender) send(ctx context.Context, toEmail, subject, htmlContent string) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.fromEmail); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(toEmail); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlContent)

	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.username),
		gomail.WithPassword(s.password),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
		gomail.WithDialContextFunc(func(dctx context.Context, _ string, addr string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(dctx, "tcp4", addr)
		}),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	return nil
}

func (s *SMTPSender) SendLeadCapturedEmail(ctx context.Context, toEmail, leadName, source, message string) error {
	content, err := renderEmailTemplate("lead_captured.html", leadCapturedEmailData{
		baseEmailData: baseEmailData{
			Title:   "New lead",
			Heading: "New lead captured",
		},
		LeadName: leadName,
		Source:   source,
		Message:  message,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, fmt.Sprintf(subjectLeadCapturedFmt, leadName), content)
}

func (s *SMTPSender) SendDealWonEmail(ctx context.Context, toEmail, leadName, company string) error {
	content, err := renderEmailTemplate("deal_won.html", dealWonEmailData{
		baseEmailData: baseEmailData{
			Title:   "Deal won",
			Heading: "Deal won",
		},
		LeadName: leadName,
		Company:  company,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, fmt.Sprintf(subjectDealWonFmt, leadName), content)
}

func (s *SMTPSender) SendFollowUpReminderEmail(ctx context.Context, toEmail, leadName, stageTitle string, daysStalled int) error {
	content, err := renderEmailTemplate("follow_up.html", followUpEmailData{
		baseEmailData: baseEmailData{
			Title:   "Follow up needed",
			Heading: "Follow up needed",
		},
		LeadName:    leadName,
		StageTitle:  stageTitle,
		DaysStalled: daysStalled,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, fmt.Sprintf(subjectFollowUpReminderFmt, leadName), content)
}

var _ Sender = (*SMTPSender)(nil)
