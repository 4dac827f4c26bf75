package delivery

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Claimer records that an idempotency key has been handed to the provider.
type Claimer interface {
	// Claim returns false when the key was already claimed inside its TTL.
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// DedupMailer drops a repeat of a message whose idempotency key was already accepted,
// which covers a crash between a successful provider call and the ledger write.
// A claim failure fails open: the message is sent.
type DedupMailer struct {
	Next    Mailer
	Claimer Claimer
	TTL     time.Duration
	Logger  *zap.Logger
}

func (d *DedupMailer) Send(ctx context.Context, e Email) error {
	if e.IdempotencyKey == "" {
		return d.Next.Send(ctx, e)
	}

	claimed, err := d.Claimer.Claim(ctx, e.IdempotencyKey, d.TTL)
	if err != nil {
		d.Logger.Warn("dedupe claim failed, sending anyway",
			zap.String("idempotency_key", e.IdempotencyKey), zap.Error(err))
		return d.Next.Send(ctx, e)
	}
	if !claimed {
		d.Logger.Info("duplicate send suppressed", zap.String("idempotency_key", e.IdempotencyKey))
		return nil
	}

	if err := d.Next.Send(ctx, e); err != nil {
		if relErr := d.Claimer.Release(ctx, e.IdempotencyKey); relErr != nil {
			d.Logger.Warn("failed to release dedupe key",
				zap.String("idempotency_key", e.IdempotencyKey), zap.Error(relErr))
		}
		return err
	}
	return nil
}

const dedupePrefix = "lifecycle:sent:"

type RedisClaimer struct {
	Client *redis.Client
}

func NewRedisClaimer(addr string) *RedisClaimer {
	return &RedisClaimer{Client: redis.NewClient(&redis.Options{Addr: addr})}
}

func (r *RedisClaimer) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return r.Client.SetNX(ctx, dedupePrefix+key, time.Now().Unix(), ttl).Result()
}

func (r *RedisClaimer) Release(ctx context.Context, key string) error {
	return r.Client.Del(ctx, dedupePrefix+key).Err()
}
