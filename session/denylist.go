package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Denylist remembers revoked token ids until the token would have expired
// anyway, and a per-user generation that a global sign-out bumps. Tokens
// issued under an older generation are dead.
type Denylist interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	RevokeAll(ctx context.Context, userID string) error
	Generation(ctx context.Context, userID string) (int64, error)
	IsRevoked(ctx context.Context, tokenID, userID string, gen int64) (bool, error)
}

const (
	revokedPrefix    = "session:revoked:"
	generationPrefix = "session:gen:"
)

type RedisDenylist struct{ rdb *redis.Client }

func NewRedisDenylist(rdb *redis.Client) *RedisDenylist { return &RedisDenylist{rdb} }

func (d *RedisDenylist) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return d.rdb.Set(ctx, revokedPrefix+tokenID, 1, ttl).Err()
}

// RevokeAll kills every token the user holds. The generation key has no
// expiry: letting it lapse would bring older generations back to life.
func (d *RedisDenylist) RevokeAll(ctx context.Context, userID string) error {
	return d.rdb.Incr(ctx, generationPrefix+userID).Err()
}

func (d *RedisDenylist) Generation(ctx context.Context, userID string) (int64, error) {
	n, err := d.rdb.Get(ctx, generationPrefix+userID).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

func (d *RedisDenylist) IsRevoked(ctx context.Context, tokenID, userID string, gen int64) (bool, error) {
	vals, err := d.rdb.MGet(ctx, revokedPrefix+tokenID, generationPrefix+userID).Result()
	if err != nil {
		return false, err
	}
	if vals[0] != nil {
		return true, nil
	}
	cur, err := parseGeneration(vals[1])
	if err != nil {
		return false, err
	}
	return gen < cur, nil
}

func parseGeneration(v any) (int64, error) {
	if v == nil {
		return 0, nil
	}
	s, ok := v.(string)
	if !ok {
		return 0, fmt.Errorf("generation: unexpected %T", v)
	}
	return strconv.ParseInt(s, 10, 64)
}
