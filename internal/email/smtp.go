package email

import (
	"context"
	"fmt"
	"net"
	"time"

	"trainops_backend/platform/config"

	gomail "github.com/wneessen/go-mail"
)

// SMTPSender implements Sender over a direct SMTP connection via go-mail.
type SMTPSender struct {
	host      string
	port      int
	username  string
	password  string
	fromName  string
	fromEmail string
}

// NewSMTPSender creates an SMTPSender from the email configuration.
func NewSMTPSender(cfg config.EmailConfig) *SMTPSender {
	return &SMTPSender{
		host:      cfg.GetSMTPHost(),
		port:      cfg.GetSMTPPort(),
		username:  cfg.GetSMTPUsername(),
		password:  cfg.GetSMTPPassword(),
		fromName:  cfg.GetEmailFromName(),
		fromEmail: cfg.GetEmailFromAddress(),
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

func (s *SMTPSender) SendAssignmentEmail(ctx context.Context, toEmail, workerName, jobName string, leadCount int, link string) error {
	counted := fmt.Sprintf("%d leads have", leadCount)
	if leadCount == 1 {
		counted = "1 lead has"
	}
	content, err := renderEmail(emailData{
		Heading:  "New leads assigned to you",
		Body:     fmt.Sprintf("Hi %s, %s been assigned to you under job order %q.", workerName, counted, jobName),
		CTALabel: "Open job order",
		CTAURL:   link,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, fmt.Sprintf(subjectAssignmentFmt, jobName), content)
}

func (s *SMTPSender) SendReassignmentEmail(ctx context.Context, toEmail, managerName, jobName, link string) error {
	content, err := renderEmail(emailData{
		Heading:  "Job order handed over to you",
		Body:     fmt.Sprintf("Hi %s, job order %q is now under your management.", managerName, jobName),
		CTALabel: "Open job order",
		CTAURL:   link,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, fmt.Sprintf(subjectReassignmentFmt, jobName), content)
}

func (s *SMTPSender) SendFollowUpReminderEmail(ctx context.Context, toEmail, workerName, enquiryName, link string) error {
	content, err := renderEmail(emailData{
		Heading:  "Follow-up due",
		Body:     fmt.Sprintf("Hi %s, your follow-up with %s is due today.", workerName, enquiryName),
		CTALabel: "Open enquiry",
		CTAURL:   link,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, fmt.Sprintf(subjectFollowUpReminderFmt, enquiryName), content)
}

var _ Sender = (*SMTPSender)(nil)
