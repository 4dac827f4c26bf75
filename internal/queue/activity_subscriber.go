package queue

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/unclebandit/lifecycle-messaging/internal/metrics"
	"github.com/unclebandit/lifecycle-messaging/internal/model"
	"github.com/unclebandit/lifecycle-messaging/internal/repository"
)

// StartActivityEventSubscriber persists every event published on TopicActivityEvents.
// Malformed events are dropped rather than retried.
func StartActivityEventSubscriber(q Queue, repo repository.ActivityEventRepositoryInterface, logger *zap.Logger) error {
	return q.Subscribe(TopicActivityEvents, func(body []byte) error {
		var event model.ActivityEvent
		if err := json.Unmarshal(body, &event); err != nil {
			logger.Warn("invalid activity event payload", zap.ByteString("raw", body), zap.Error(err))
			metrics.ActivityEventsTotal.WithLabelValues("dropped").Inc()
			return nil
		}
		if event.TenantID <= 0 || !event.EventType.Valid() {
			logger.Warn("rejected activity event",
				zap.Int("tenant_id", event.TenantID), zap.String("event_type", string(event.EventType)))
			metrics.ActivityEventsTotal.WithLabelValues("dropped").Inc()
			return nil
		}
		if err := repo.Insert(context.Background(), &event); err != nil {
			logger.Error("failed to store activity event", zap.Int("tenant_id", event.TenantID), zap.Error(err))
			return err
		}
		metrics.ActivityEventsTotal.WithLabelValues("stored").Inc()
		return nil
	})
}
