package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/identitykit/account-service/internal/core/ports"
)

// ResendLimitRedisRepository throttles verification-email resends with a
// fixed-window key per address.
type ResendLimitRedisRepository struct {
	r      redis.Cmdable
	window time.Duration
	prefix string
}

func NewResendLimitRedisRepository(r redis.Cmdable, window time.Duration) ports.ResendLimiter {
	return &ResendLimitRedisRepository{r: r, window: window, prefix: "resend:verification"}
}

// Acquire claims the resend slot for email. SETNX makes the first caller in a
// window win; everyone else waits for the key to expire.
func (repo *ResendLimitRedisRepository) Acquire(ctx context.Context, email string) (bool, error) {
	if repo.window <= 0 {
		return true, nil
	}
	key := fmt.Sprintf("%s:%s", repo.prefix, email)
	ok, err := repo.r.SetNX(ctx, key, time.Now().Unix(), repo.window).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire resend slot: %w", err)
	}
	return ok, nil
}
