package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gsmp/mentorship-backend/internal/model"
)

// TokenType distinguishes access from refresh tokens.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Claims extends JWT standard claims with app-specific fields.
type Claims struct {
	jwt.RegisteredClaims
	TokenType TokenType  `json:"token_type"`
	AccountID int        `json:"account_id"`
	Role      model.Role `json:"role"`
}

// TokenPair is returned on login and refresh.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// TokenService signs and validates JWTs and tracks refresh token ids.
type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	sessions   SessionStore
	now        func() time.Time
}

// NewTokenService creates a new TokenService.
func NewTokenService(secret string, accessTTL, refreshTTL time.Duration, sessions SessionStore) *TokenService {
	return &TokenService{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		sessions:   sessions,
		now:        time.Now,
	}
}

// IssuePair signs an access and a refresh token and registers the refresh id.
func (s *TokenService) IssuePair(ctx context.Context, a *model.Account) (*TokenPair, error) {
	access, _, err := s.sign(a, TokenTypeAccess, s.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, jti, err := s.sign(a, TokenTypeRefresh, s.refreshTTL)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.StoreRefresh(ctx, jti, a.ID, s.refreshTTL); err != nil {
		return nil, err
	}
	return &TokenPair{Access: access, Refresh: refresh}, nil
}

func (s *TokenService) sign(a *model.Account, typ TokenType, ttl time.Duration) (string, string, error) {
	jti := uuid.New().String()
	now := s.now()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   strconv.Itoa(a.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		TokenType: typ,
		AccountID: a.ID,
		Role:      a.Role(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", "", fmt.Errorf("sign token: %w", err)
	}
	return signed, jti, nil
}

// Validate parses a token and checks it has the expected type.
func (s *TokenService) Validate(tokenStr string, want TokenType) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.TokenType != want {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// Consume validates a refresh token and removes its id so it cannot be reused.
func (s *TokenService) Consume(ctx context.Context, refresh string) (*Claims, error) {
	claims, err := s.Validate(refresh, TokenTypeRefresh)
	if err != nil {
		return nil, err
	}
	owner, err := s.sessions.ConsumeRefresh(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrSessionInvalidated
		}
		return nil, err
	}
	if owner != claims.AccountID {
		return nil, ErrSessionInvalidated
	}
	return claims, nil
}

// RevokeAll drops every refresh token of an account.
func (s *TokenService) RevokeAll(ctx context.Context, accountID int) error {
	return s.sessions.RevokeAllRefresh(ctx, accountID)
}
