package authflowrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const flowKeyPrefix = "relay:flow:"

var _ Repo = (*RedisRepo)(nil)

// RedisRepo stores auth flow states as JSON values expiring with the flow.
type RedisRepo struct {
	client *redis.Client
}

// NewRedisRepo constructs a Redis-backed auth flow repository.
func NewRedisRepo(client *redis.Client) *RedisRepo {
	return &RedisRepo{client: client}
}

func (r *RedisRepo) Upsert(ctx context.Context, authState *AuthFlowState) error {
	if authState == nil {
		return errors.New("authState cannot be nil")
	}
	if authState.State == "" {
		return errors.New("state cannot be empty")
	}

	var ttl time.Duration
	if !authState.ExpiresAt.IsZero() {
		ttl = time.Until(authState.ExpiresAt)
		if ttl <= 0 {
			return nil
		}
	}

	data, err := json.Marshal(authState)
	if err != nil {
		return fmt.Errorf("encode auth flow: %w", err)
	}
	return r.client.Set(ctx, flowKeyPrefix+authState.State, data, ttl).Err()
}

func (r *RedisRepo) Get(ctx context.Context, state string) (*AuthFlowState, error) {
	if state == "" {
		return nil, errors.New("state cannot be empty")
	}

	raw, err := r.client.Get(ctx, flowKeyPrefix+state).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get auth flow: %w", err)
	}
	return decodeFlow(raw)
}

// Consume uses GETDEL so concurrent relay instances cannot both read the same flow.
func (r *RedisRepo) Consume(ctx context.Context, state string) (*AuthFlowState, error) {
	if state == "" {
		return nil, errors.New("state cannot be empty")
	}

	raw, err := r.client.GetDel(ctx, flowKeyPrefix+state).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis getdel auth flow: %w", err)
	}
	return decodeFlow(raw)
}

func decodeFlow(raw []byte) (*AuthFlowState, error) {
	var authState AuthFlowState
	if err := json.Unmarshal(raw, &authState); err != nil {
		return nil, fmt.Errorf("decode auth flow: %w", err)
	}
	if authState.Expired(time.Now()) {
		return nil, ErrNotFound
	}
	return &authState, nil
}

func (r *RedisRepo) Delete(ctx context.Context, state string) error {
	return r.client.Del(ctx, flowKeyPrefix+state).Err()
}
