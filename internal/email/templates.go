package email

import (
	"fmt"
	"html/template"
	"strings"
)

const (
	subjectAssignmentFmt       = "New leads assigned: %s"
	subjectReassignmentFmt     = "Job order handed over to you: %s"
	subjectFollowUpReminderFmt = "Follow-up due: %s"
)

// One shared layout keeps the emails visually consistent without
// dragging in a templating asset pipeline.
const baseLayout = `<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #1f2937; margin: 0; padding: 24px;">
  <div style="max-width: 560px; margin: 0 auto; border: 1px solid #e5e7eb; border-radius: 8px; padding: 24px;">
    <h2 style="margin-top: 0;">{{.Heading}}</h2>
    <p>{{.Body}}</p>
    {{if .CTAURL}}<p><a href="{{.CTAURL}}" style="display: inline-block; background: #2563eb; color: #ffffff; padding: 10px 18px; border-radius: 6px; text-decoration: none;">{{.CTALabel}}</a></p>{{end}}
    <p style="color: #6b7280; font-size: 12px;">This is an automated message from the operations console.</p>
  </div>
</body>
</html>`

var layoutTemplate = template.Must(template.New("layout").Parse(baseLayout))

type emailData struct {
	Heading  string
	Body     string
	CTALabel string
	CTAURL   string
}

func renderEmail(data emailData) (string, error) {
	var b strings.Builder
	if err := layoutTemplate.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render email: %w", err)
	}
	return b.String(), nil
}
