package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"medstore/models"
)

const otpKeyPattern = "otp:%s"

// RedisOTPStore keeps the latest code of each mobile number in Redis with a
// key expiry equal to the code lifetime. Issuing a new code replaces the old one.
type RedisOTPStore struct {
	client *redis.Client
	// afterLoad runs between the read and the delete of Consume
	afterLoad func()
}

func NewRedisOTPStore(client *redis.Client) *RedisOTPStore {
	return &RedisOTPStore{client: client}
}

// NewRedisClient dials addr and verifies the connection
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return client, nil
}

// Save stores a freshly issued code
func (s *RedisOTPStore) Save(ctx context.Context, otp *models.OTP) error {
	ttl := time.Until(otp.ExpiresAt)
	if ttl <= 0 {
		return errors.New("otp already expired")
	}
	if otp.CreatedAt.IsZero() {
		otp.CreatedAt = now()
	}

	payload, err := json.Marshal(otp)
	if err != nil {
		return fmt.Errorf("marshal otp: %w", err)
	}
	if err := s.client.Set(ctx, otpKey(otp.MobileNumber), payload, ttl).Err(); err != nil {
		return fmt.Errorf("store otp: %w", err)
	}
	return nil
}

// Consume deletes the stored code when it matches. The read and the delete
// run under WATCH, so a code replaced by a newer one in between is rejected
// and the newer code survives.
func (s *RedisOTPStore) Consume(ctx context.Context, mobile, code string, at time.Time) error {
	key := otpKey(mobile)

	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("load otp: %w", err)
		}

		var otp models.OTP
		if err := json.Unmarshal(raw, &otp); err != nil {
			return fmt.Errorf("unmarshal otp: %w", err)
		}
		if otp.Code != code || !otp.ExpiresAt.After(at) {
			return ErrNotFound
		}
		if s.afterLoad != nil {
			s.afterLoad()
		}

		var del *redis.IntCmd
		if _, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			del = pipe.Del(ctx, key)
			return nil
		}); err != nil {
			return err
		}
		if del.Val() == 0 {
			return ErrNotFound
		}
		return nil
	}, key)

	if errors.Is(err, redis.TxFailedErr) {
		return ErrNotFound
	}
	if err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("consume otp: %w", err)
	}
	return err
}

func otpKey(mobile string) string {
	return fmt.Sprintf(otpKeyPattern, mobile)
}
