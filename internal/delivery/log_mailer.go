package delivery

import (
	"context"

	"go.uber.org/zap"
)

// LogMailer accepts every email and only logs it. Used for local runs.
type LogMailer struct {
	Logger *zap.Logger
}

func (m *LogMailer) Send(_ context.Context, e Email) error {
	m.Logger.Info("email (log provider)",
		zap.String("to", e.To),
		zap.String("subject", e.Subject),
		zap.String("idempotency_key", e.IdempotencyKey),
		zap.Int("html_bytes", len(e.HTML)),
		zap.Int("text_bytes", len(e.Text)),
	)
	return nil
}
