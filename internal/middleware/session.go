package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gsmp/mentorship-backend/internal/model"
	"github.com/gsmp/mentorship-backend/internal/response"
	"github.com/gsmp/mentorship-backend/internal/service"
	"github.com/rs/zerolog"
)

// ContextKeyAccount is the Gin context key for the caller's account.
const ContextKeyAccount = "account"

// AccountLoader resolves the account behind a token.
type AccountLoader interface {
	GetByID(ctx context.Context, id int) (*model.Account, error)
}

// LoadAccount fetches the caller's account after RequireAuth. Tokens of
// accounts that were deactivated or removed since issuance are rejected.
// Lookup failures other than a missing account answer INTERNAL_ERROR.
func LoadAccount(accounts AccountLoader, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		account, err := accounts.GetByID(c.Request.Context(), claims.AccountID)
		if err != nil && !errors.Is(err, service.ErrNotFound) {
			log.Error().Err(err).
				Str("request_id", response.RequestID(c)).
				Int("account_id", claims.AccountID).
				Msg("Failed to load session account")
			response.AbortFail(c, http.StatusInternalServerError, response.ErrInternal)
			return
		}
		if err != nil || !account.IsActive || account.Role() != claims.Role {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrSessionInvalidated)
			return
		}

		c.Set(ContextKeyAccount, account)
		c.Next()
	}
}

// GetAccount retrieves the account stored by LoadAccount.
func GetAccount(c *gin.Context) *model.Account {
	val, exists := c.Get(ContextKeyAccount)
	if !exists {
		return nil
	}
	account, _ := val.(*model.Account)
	return account
}
