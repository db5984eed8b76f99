package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gsmp/mentorship-backend/internal/config"
	"github.com/redis/go-redis/v9"
)

// SessionRepository keeps refresh token ids and password reset grants in Redis.
type SessionRepository struct {
	rdb *redis.Client
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(rdb *redis.Client) *SessionRepository {
	return &SessionRepository{rdb: rdb}
}

// StoreRefresh registers a live refresh token id for an account.
func (r *SessionRepository) StoreRefresh(ctx context.Context, jti string, accountID int, ttl time.Duration) error {
	setKey := config.CacheKey.AccountRefreshSetKey(accountID)
	pipe := r.rdb.TxPipeline()
	pipe.Set(ctx, config.CacheKey.RefreshTokenKey(jti), accountID, ttl)
	pipe.SAdd(ctx, setKey, jti)
	pipe.Expire(ctx, setKey, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store refresh token: %w", err)
	}
	return nil
}

// ConsumeRefresh atomically removes a refresh token id and returns its account.
// Unknown or already used ids return ErrNotFound.
func (r *SessionRepository) ConsumeRefresh(ctx context.Context, jti string) (int, error) {
	val, err := r.rdb.GetDel(ctx, config.CacheKey.RefreshTokenKey(jti)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("consume refresh token: %w", err)
	}
	accountID, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("invalid refresh token owner in redis: %w", err)
	}
	r.rdb.SRem(ctx, config.CacheKey.AccountRefreshSetKey(accountID), jti)
	return accountID, nil
}

// RevokeAllRefresh drops every refresh token of an account.
func (r *SessionRepository) RevokeAllRefresh(ctx context.Context, accountID int) error {
	setKey := config.CacheKey.AccountRefreshSetKey(accountID)
	jtis, err := r.rdb.SMembers(ctx, setKey).Result()
	if err != nil {
		return fmt.Errorf("list refresh tokens: %w", err)
	}
	keys := make([]string, 0, len(jtis)+1)
	for _, jti := range jtis {
		keys = append(keys, config.CacheKey.RefreshTokenKey(jti))
	}
	keys = append(keys, setKey)
	return r.rdb.Del(ctx, keys...).Err()
}

// GrantPasswordReset records that an account verified a password_reset OTP.
func (r *SessionRepository) GrantPasswordReset(ctx context.Context, accountID int, ttl time.Duration) error {
	return r.rdb.Set(ctx, config.CacheKey.PasswordResetGrantKey(accountID), "1", ttl).Err()
}

// ConsumePasswordResetGrant removes the grant and reports whether one existed.
func (r *SessionRepository) ConsumePasswordResetGrant(ctx context.Context, accountID int) (bool, error) {
	n, err := r.rdb.Del(ctx, config.CacheKey.PasswordResetGrantKey(accountID)).Result()
	if err != nil {
		return false, fmt.Errorf("consume reset grant: %w", err)
	}
	return n > 0, nil
}
