package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/andy/freelancedesk/internal/domain"
)

// RedisOTPStore keeps pending codes in Redis, letting key expiry drop stale ones
type RedisOTPStore struct {
	rdb    *redis.Client
	prefix string
	now    func() time.Time
}

func NewRedisOTPStore(rdb *redis.Client) *RedisOTPStore {
	return &RedisOTPStore{rdb: rdb, prefix: "freelancedesk:otp:", now: time.Now}
}

// DialRedis connects and pings addr
func DialRedis(ctx context.Context, addr string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return rdb, nil
}

func (r *RedisOTPStore) key(phone string) string {
	return r.prefix + phone
}

func (r *RedisOTPStore) Upsert(ctx context.Context, otp domain.OTP) error {
	ttl := otp.ExpiresAt.Sub(r.now())
	if ttl <= 0 {
		return r.Delete(ctx, otp.PhoneNumber)
	}
	b, err := json.Marshal(otp)
	if err != nil {
		return err
	}
	if err := r.rdb.Set(ctx, r.key(otp.PhoneNumber), b, ttl).Err(); err != nil {
		return domain.NewPersistenceError("upsert", "redis_otp", err)
	}
	return nil
}

func (r *RedisOTPStore) Get(ctx context.Context, phone string) (*domain.OTP, error) {
	val, err := r.rdb.Get(ctx, r.key(phone)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.NewPersistenceError("get", "redis_otp", err)
	}
	var otp domain.OTP
	if err := json.Unmarshal(val, &otp); err != nil {
		return nil, domain.NewPersistenceError("get", "redis_otp", fmt.Errorf("corrupt otp entry: %w", err))
	}
	return &otp, nil
}

func (r *RedisOTPStore) Delete(ctx context.Context, phone string) error {
	if err := r.rdb.Del(ctx, r.key(phone)).Err(); err != nil {
		return domain.NewPersistenceError("delete", "redis_otp", err)
	}
	return nil
}
