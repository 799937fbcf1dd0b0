// Package ratelimit enforces the per-identity posting cooldown. State lives
// in a shared expiring key-value store so limiting stays consistent across
// concurrent handlers and processes.
package ratelimit

import (
	"context"
	"fmt"
	"math"
	"time"

	internal_errors "github.com/14ChannelBBS/Qua/internal/errors"
)

type Action string

const (
	ActionThread   Action = "thread"
	ActionResponse Action = "response"
)

// Store is the expiring KV capability the limiter needs. SetNX must be
// atomic: check-then-set in two steps would let two concurrent posts both
// pass.
type Store interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	TTL(ctx context.Context, key string) (time.Duration, error)
}

type Limiter struct {
	store            Store
	threadCooldown   time.Duration
	responseCooldown time.Duration
}

func New(store Store, threadCooldown, responseCooldown time.Duration) *Limiter {
	return &Limiter{
		store:            store,
		threadCooldown:   threadCooldown,
		responseCooldown: responseCooldown,
	}
}

func (l *Limiter) cooldown(action Action) time.Duration {
	if action == ActionThread {
		return l.threadCooldown
	}
	return l.responseCooldown
}

// CheckAndArm fails with PostRateLimit while a previously armed deadline for
// (identityId, action) is in the future; otherwise it arms a new one. The key
// expires at its own deadline, so stale locks self-clear.
func (l *Limiter) CheckAndArm(ctx context.Context, identityId string, action Action) error {
	key := fmt.Sprintf("ratelimit:%s:%s", action, identityId)
	cooldown := l.cooldown(action)

	armed, err := l.store.SetNX(ctx, key, time.Now().Add(cooldown).Unix(), cooldown)
	if err != nil {
		return fmt.Errorf("failed to arm rate limit: %w", err)
	}
	if armed {
		return nil
	}

	ttl, err := l.store.TTL(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to read rate limit ttl: %w", err)
	}
	remaining := int(math.Ceil(ttl.Seconds()))
	if remaining < 1 {
		// expired between the two calls
		remaining = 1
	}
	return &internal_errors.PostRateLimit{Remaining: remaining}
}
