package mail

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	gomail "github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"github.com/buneko/backend/internal/infrastructure/config"
	"github.com/buneko/backend/internal/infrastructure/logger"
)

// Message is one outbound email
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Mailer delivers messages
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// dialer is the subset of *gomail.Client used for delivery
type dialer interface {
	DialAndSendWithContext(ctx context.Context, messages ...*gomail.Msg) error
}

// SMTPMailer sends mail through an SMTP relay, retrying transient failures
// with exponential backoff.
type SMTPMailer struct {
	client     dialer
	from       string
	fromName   string
	maxTries   uint
	timeout    time.Duration
	logger     *zap.Logger
	newBackOff func() backoff.BackOff
}

// NewSMTPMailer creates a mailer for the configured relay. STARTTLS is mandatory.
func NewSMTPMailer(cfg config.MailConfig, zapLogger *zap.Logger) (*SMTPMailer, error) {
	client, err := gomail.NewClient(cfg.Host,
		gomail.WithPort(cfg.Port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(cfg.Username),
		gomail.WithPassword(cfg.Password),
		gomail.WithTLSPortPolicy(gomail.TLSMandatory),
		gomail.WithTimeout(cfg.Timeout),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create smtp client: %w", err)
	}
	return newSMTPMailer(client, cfg, zapLogger), nil
}

func newSMTPMailer(client dialer, cfg config.MailConfig, zapLogger *zap.Logger) *SMTPMailer {
	if zapLogger == nil {
		zapLogger = zap.NewNop()
	}
	tries := cfg.MaxRetries
	if tries < 1 {
		tries = 1
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &SMTPMailer{
		client:   client,
		from:     cfg.Username,
		fromName: cfg.FromName,
		maxTries: uint(tries),
		timeout:  timeout,
		logger:   zapLogger,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 500 * time.Millisecond
			b.MaxInterval = 5 * time.Second
			return b
		},
	}
}

func (m *SMTPMailer) build(msg Message) (*gomail.Msg, error) {
	out := gomail.NewMsg()
	if err := out.FromFormat(m.fromName, m.from); err != nil {
		return nil, fmt.Errorf("invalid sender address: %w", err)
	}
	if err := out.To(msg.To); err != nil {
		return nil, fmt.Errorf("invalid recipient address %q: %w", msg.To, err)
	}
	out.Subject(msg.Subject)
	out.SetBodyString(gomail.TypeTextHTML, msg.HTML)
	if msg.Text != "" {
		out.AddAlternativeString(gomail.TypeTextPlain, msg.Text)
	}
	return out, nil
}

// Send delivers msg. Address errors are not retried.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	out, err := m.build(msg)
	if err != nil {
		return err
	}

	log := logger.Enrich(ctx, m.logger)
	attempt := 0
	_, err = backoff.Retry(ctx, func() (struct{}, error) {
		attempt++
		sendCtx, cancel := context.WithTimeout(ctx, m.timeout)
		defer cancel()
		if err := m.client.DialAndSendWithContext(sendCtx, out); err != nil {
			log.Warn("email delivery attempt failed",
				zap.String("to", msg.To),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			return struct{}{}, err
		}
		return struct{}{}, nil
	}, backoff.WithBackOff(m.newBackOff()), backoff.WithMaxTries(m.maxTries))
	if err != nil {
		return fmt.Errorf("failed to send email to %s after %d attempts: %w", msg.To, attempt, err)
	}

	log.Info("email sent", zap.String("to", msg.To), zap.String("subject", msg.Subject))
	return nil
}

// LogMailer records messages instead of sending them. It stands in when
// SMTP credentials are not configured.
type LogMailer struct {
	logger *zap.Logger
}

// NewLogMailer creates a log-only mailer
func NewLogMailer(zapLogger *zap.Logger) *LogMailer {
	if zapLogger == nil {
		zapLogger = zap.NewNop()
	}
	return &LogMailer{logger: zapLogger}
}

// Send logs the message envelope
func (m *LogMailer) Send(ctx context.Context, msg Message) error {
	logger.Enrich(ctx, m.logger).Warn("email credentials not configured, email not sent",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
	)
	return nil
}

var (
	_ Mailer = (*SMTPMailer)(nil)
	_ Mailer = (*LogMailer)(nil)
)
