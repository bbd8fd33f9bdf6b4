package email

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/smtp"
	"strings"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

// SMTPEmailService sends emails via SMTP. It works with Mailhog in
// development (no authentication) and any authenticated SMTP relay in
// production. Templates are embedded in the binary.
type SMTPEmailService struct {
	config    SMTPConfig
	baseURL   string
	templates *template.Template
	logger    *slog.Logger
}

// NewSMTPEmailService creates a new SMTP-based email service. baseURL is
// the application's public URL, used for links inside emails.
func NewSMTPEmailService(config SMTPConfig, baseURL string, logger *slog.Logger) (*SMTPEmailService, error) {
	if config.From == "" {
		config.From = DefaultFromEmail
	}
	if config.FromName == "" {
		config.FromName = DefaultFromName
	}

	templates, err := template.New("email").Funcs(emailTemplateFuncs()).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}

	return &SMTPEmailService{
		config:    config,
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		templates: templates,
		logger:    logger,
	}, nil
}

// SendWeeklyDigest sends the weekly response digest to an account owner.
func (s *SMTPEmailService) SendWeeklyDigest(ctx context.Context, to, name string, digest DigestData) error {
	data := map[string]interface{}{
		"Name":         name,
		"Digest":       digest,
		"DashboardURL": s.baseURL + "/dashboard",
	}

	htmlBody, err := s.renderTemplate("weekly_digest.html", data)
	if err != nil {
		return fmt.Errorf("failed to render digest email template: %w", err)
	}

	rating := "no ratings this week"
	if digest.AverageRating != nil {
		rating = fmt.Sprintf("average rating %.1f", *digest.AverageRating)
	}

	textBody := fmt.Sprintf(`Hi %s,

Here is the weekly summary for %s (%s to %s):

  %d responses this week (%d last week), %s.

Open your dashboard for the full picture: %s/dashboard

Thanks,
The Formpulse Team
`, name, digest.AccountName,
		digest.PeriodStart.Format("Jan 2"), digest.PeriodEnd.Format("Jan 2, 2006"),
		digest.TotalResponses, digest.PreviousResponses, rating, s.baseURL)

	email := Email{
		To:       to,
		Subject:  fmt.Sprintf("Your weekly feedback digest: %d responses", digest.TotalResponses),
		HTMLBody: htmlBody,
		TextBody: textBody,
	}

	return s.send(ctx, email)
}

// send sends an email via SMTP.
func (s *SMTPEmailService) send(ctx context.Context, email Email) error {
	msg := s.buildMessage(email)

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	// Mailhog takes no credentials.
	var auth smtp.Auth
	if s.config.Username != "" && s.config.Password != "" {
		auth = smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)
	}

	if err := smtp.SendMail(addr, auth, s.config.From, []string{email.To}, msg); err != nil {
		s.logger.Error("failed to send email",
			"to", email.To,
			"subject", email.Subject,
			"error", err,
		)
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Info("email sent",
		"to", email.To,
		"subject", email.Subject,
	)

	return nil
}

// buildMessage constructs the raw email message with headers.
func (s *SMTPEmailService) buildMessage(email Email) []byte {
	var buf bytes.Buffer

	fromHeader := fmt.Sprintf("%s <%s>", s.config.FromName, s.config.From)

	buf.WriteString(fmt.Sprintf("From: %s\r\n", fromHeader))
	buf.WriteString(fmt.Sprintf("To: %s\r\n", email.To))
	buf.WriteString(fmt.Sprintf("Subject: %s\r\n", email.Subject))
	buf.WriteString("MIME-Version: 1.0\r\n")

	boundary := "===============FORMPULSE_BOUNDARY==============="
	buf.WriteString(fmt.Sprintf("Content-Type: multipart/alternative; boundary=\"%s\"\r\n", boundary))
	buf.WriteString("\r\n")

	buf.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	buf.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	buf.WriteString("Content-Transfer-Encoding: quoted-printable\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(email.TextBody)
	buf.WriteString("\r\n")

	buf.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	buf.WriteString("Content-Type: text/html; charset=utf-8\r\n")
	buf.WriteString("Content-Transfer-Encoding: quoted-printable\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(email.HTMLBody)
	buf.WriteString("\r\n")

	buf.WriteString(fmt.Sprintf("--%s--\r\n", boundary))

	return buf.Bytes()
}

// renderTemplate renders an email template with the given data.
func (s *SMTPEmailService) renderTemplate(name string, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// emailTemplateFuncs returns functions available in email templates.
func emailTemplateFuncs() template.FuncMap {
	return template.FuncMap{
		"currentYear": func() int {
			return time.Now().Year()
		},
	}
}

var _ EmailService = (*SMTPEmailService)(nil)
