package delivery

import (
	"context"
	"fmt"
	"time"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"

	"github.com/unclebandit/lifecycle-messaging/internal/metrics"
)

type sendClient interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

type SendGridMailer struct {
	FromName string
	FromMail string
	Timeout  time.Duration
	client   sendClient
	logger   *zap.Logger
}

func NewSendGridMailer(apiKey, fromName, fromMail string, logger *zap.Logger) *SendGridMailer {
	return &SendGridMailer{
		FromName: fromName,
		FromMail: fromMail,
		Timeout:  10 * time.Second,
		client:   sendgrid.NewSendClient(apiKey),
		logger:   logger,
	}
}

func (s *SendGridMailer) Send(ctx context.Context, e Email) error {
	from := mail.NewEmail(s.FromName, s.FromMail)
	to := mail.NewEmail("", e.To)
	message := mail.NewSingleEmail(from, e.Subject, to, e.Text, e.HTML)
	for k, v := range e.Headers {
		message.SetHeader(k, v)
	}
	if e.IdempotencyKey != "" {
		message.SetHeader("X-Idempotency-Key", e.IdempotencyKey)
		message.SetCustomArg("idempotency_key", e.IdempotencyKey)
	}

	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		metrics.ProviderCallsTotal.WithLabelValues("sendgrid", "error").Inc()
		return fmt.Errorf("sendgrid send error: %w", err)
	}
	if resp.StatusCode >= 400 {
		metrics.ProviderCallsTotal.WithLabelValues("sendgrid", "rejected").Inc()
		return fmt.Errorf("sendgrid API error: %d %s", resp.StatusCode, resp.Body)
	}

	metrics.ProviderCallsTotal.WithLabelValues("sendgrid", "accepted").Inc()
	s.logger.Debug("sendgrid accepted email",
		zap.String("to", e.To),
		zap.String("idempotency_key", e.IdempotencyKey),
		zap.Duration("latency", time.Since(start)),
	)
	return nil
}
