package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
	"time"

	"github.com/Masterminds/sprig/v3"
	"github.com/prep-study/pronto/config"
)

// notificationTemplate is the shared layout for all notification mail. The
// date format mirrors what the web client shows for account activity.
const notificationTemplate = `<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #1f2933;">
  <div style="max-width: 560px; margin: 0 auto; padding: 24px;">
    <h3>{{ .Header }}</h3>
    <p>Hi {{ .Name | default "there" }},</p>
    <p>{{ .Message }}</p>
    {{- if .Code }}
    <p style="font-size: 28px; letter-spacing: 4px; font-weight: bold;">{{ .Code }}</p>
    {{- end }}
    {{- if .Link }}
    <p><a href="{{ .Link }}" style="color: #2563eb;">Confirm request</a></p>
    {{- end }}
    <hr style="border: none; border-top: 1px solid #e4e7eb;" />
    <p style="font-size: 12px; color: #7b8794;">
      Sent {{ .SentAt | date "Monday 03:04:05 PM 02 Jan, 2006" }}.
      Need help? Reach out to <a href="mailto:{{ .SupportEmail }}">{{ .SupportEmail }}</a>.
    </p>
  </div>
</body>
</html>`

// SMTPSender renders mail jobs and delivers them over SMTP.
type SMTPSender struct {
	cfg  *config.Config
	tmpl *template.Template
}

func NewSMTPSender(cfg *config.Config) (*SMTPSender, error) {
	tmpl, err := template.New("notification").Funcs(sprig.FuncMap()).Parse(notificationTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse mail template: %w", err)
	}
	return &SMTPSender{cfg: cfg, tmpl: tmpl}, nil
}

// Render produces the HTML body for a job.
func (s *SMTPSender) Render(job MailJob) (string, error) {
	var buf bytes.Buffer
	data := map[string]interface{}{
		"Header":       job.Header,
		"Message":      job.Message,
		"Name":         job.Name,
		"Code":         job.Code,
		"Link":         job.Link,
		"SentAt":       time.Now(),
		"SupportEmail": s.cfg.Mail.SupportEmail,
	}
	if err := s.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render mail template: %w", err)
	}
	return buf.String(), nil
}

// Send delivers one rendered message.
func (s *SMTPSender) Send(job MailJob, body string) error {
	msg := []byte(fmt.Sprintf(
		"From: %s\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"Message-ID: <%s>\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=UTF-8\r\n"+
			"\r\n"+
			"%s\r\n",
		s.cfg.SMTP.From, job.To, job.Subject, job.MessageID, body,
	))

	var auth smtp.Auth
	if s.cfg.SMTP.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.SMTP.Username, s.cfg.SMTP.Password, s.cfg.SMTP.Host)
	}

	if err := smtp.SendMail(s.cfg.SMTPAddress(), auth, s.cfg.SMTP.From, []string{job.To}, msg); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", job.To, err)
	}
	return nil
}
