package mail

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

type Config struct {
	Host         string `env:"MAIL_HOST"`
	Port         int    `env:"MAIL_PORT" env-default:"587"`
	Username     string `env:"MAIL_USERNAME"`
	Password     string `env:"MAIL_PASSWORD"`
	From         string `env:"MAIL_FROM" env-default:"MAJAZ <concierge@majaz.ae>"`
	OpsAddress   string `env:"MAIL_OPS_ADDRESS" env-default:"operations@majaz.ae"`
	DashboardURL string `env:"MAIL_DASHBOARD_URL" env-default:"https://majaz.ae"`
}

func (c *Config) Enabled() bool {
	return c.Host != ""
}

type Message struct {
	To      string
	ReplyTo string
	Subject string
	HTML    string
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPSender(config *Config) *SMTPSender {
	return &SMTPSender{
		dialer: gomail.NewDialer(config.Host, config.Port, config.Username, config.Password),
		from:   config.From,
	}
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", msg.To)
	if msg.ReplyTo != "" {
		m.SetHeader("Reply-To", msg.ReplyTo)
	}
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.HTML)

	err := s.dialer.DialAndSend(m)
	if err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", msg.To, err)
	}
	return nil
}

// LogSender stands in for SMTP when no mail host is configured.
type LogSender struct {
	logger *zap.Logger
}

func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(_ context.Context, msg Message) error {
	s.logger.Info("mail delivery disabled, dropping message",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
	)
	return nil
}
