package mailer

import (
	"fmt"
	"time"

	"github.com/mentorlog/mentorlog-api/config"
	"github.com/mentorlog/mentorlog-api/pkg/logger"
	"github.com/mentorlog/mentorlog-api/pkg/metrics"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Email represents an email message.
type Email struct {
	To       []string
	Subject  string
	Body     string
	HTMLBody string
}

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// Mailer sends notification emails over SMTP. A nil Mailer is disabled.
type Mailer struct {
	from   string
	dialer dialer
}

// NewMailer returns nil when SMTP is not configured.
func NewMailer(cfg config.SMTPConfig) *Mailer {
	if cfg.Host == "" {
		return nil
	}
	return &Mailer{
		from:   cfg.From,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

// Enabled reports whether the mailer can deliver.
func (m *Mailer) Enabled() bool {
	return m != nil && m.dialer != nil
}

// Send sends a single email.
func (m *Mailer) Send(email Email) error {
	if !m.Enabled() {
		return nil
	}
	if len(email.To) == 0 {
		return fmt.Errorf("no recipients specified")
	}

	start := time.Now()
	err := m.dialer.DialAndSend(m.buildMessage(email))
	status := metrics.StatusLabel(err)

	metrics.OutboundDeliveries.WithLabelValues("email", status).Inc()
	logger.LogAPICall("smtp", "send", status, metrics.MeasureDuration(start),
		zap.Strings("to", email.To),
		zap.String("subject", email.Subject),
	)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// SendAsync sends in the background. Failures are only logged.
func (m *Mailer) SendAsync(email Email) {
	if !m.Enabled() {
		return
	}
	go func() {
		if err := m.Send(email); err != nil {
			logger.LogError(err, "Async email delivery failed", zap.String("subject", email.Subject))
		}
	}()
}

func (m *Mailer) buildMessage(email Email) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", email.To...)
	msg.SetHeader("Subject", email.Subject)

	if email.HTMLBody != "" {
		msg.SetBody("text/html", email.HTMLBody)
		if email.Body != "" {
			msg.AddAlternative("text/plain", email.Body)
		}
	} else {
		msg.SetBody("text/plain", email.Body)
	}
	return msg
}
