package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// RefreshTokenKey returns the cache key holding the account id of a live refresh token.
func (r *CacheKeyStruct) RefreshTokenKey(jti string) string {
	return fmt.Sprintf("refresh:%s", jti)
}

// AccountRefreshSetKey returns the cache key of the set of live refresh token ids for an account.
func (r *CacheKeyStruct) AccountRefreshSetKey(accountID int) string {
	return fmt.Sprintf("account:%d:refresh_tokens", accountID)
}

// PasswordResetGrantKey returns the cache key marking a verified password_reset OTP.
func (r *CacheKeyStruct) PasswordResetGrantKey(accountID int) string {
	return fmt.Sprintf("account:%d:password_reset_grant", accountID)
}

var CacheKey = NewCacheKeyStruct()
