// Package email delivers transactional notification emails over SMTP.
package email

import "context"

// Sender sends the notification emails this system produces.
type Sender interface {
	SendAssignmentEmail(ctx context.Context, toEmail, workerName, jobName string, leadCount int, link string) error
	SendReassignmentEmail(ctx context.Context, toEmail, managerName, jobName, link string) error
	SendFollowUpReminderEmail(ctx context.Context, toEmail, workerName, enquiryName, link string) error
}

// NoopSender is used when email delivery is disabled. Every send is a
// successful no-op.
type NoopSender struct{}

func (NoopSender) SendAssignmentEmail(context.Context, string, string, string, int, string) error {
	return nil
}

func (NoopSender) SendReassignmentEmail(context.Context, string, string, string, string) error {
	return nil
}

func (NoopSender) SendFollowUpReminderEmail(context.Context, string, string, string, string) error {
	return nil
}

var _ Sender = NoopSender{}
