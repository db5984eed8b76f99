package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/gsmp/mentorship-backend/internal/model"
	"github.com/gsmp/mentorship-backend/internal/repository"
	"github.com/rs/zerolog"
)

// NewAccount is the input for creating an account. An empty Password makes
// the service generate one.
type NewAccount struct {
	Email     string
	FirstName string
	LastName  string
	Title     string
	Phone     string
	IsActive  bool
	Profile   model.Profile
	Password  string
}

// AccountService creates accounts and serves profile lookups.
type AccountService struct {
	accounts AccountStore
	hasher   *PasswordHasher
	log      zerolog.Logger
}

// NewAccountService creates a new AccountService.
func NewAccountService(accounts AccountStore, hasher *PasswordHasher, log zerolog.Logger) *AccountService {
	return &AccountService{accounts: accounts, hasher: hasher, log: log}
}

// Create persists a new account with the hash of the given or generated
// password. The plaintext is returned so the caller can email it.
func (s *AccountService) Create(ctx context.Context, in NewAccount) (*model.Account, string, error) {
	if in.Profile == nil {
		return nil, "", fmt.Errorf("create account %s: %w", in.Email, ErrInvalidRole)
	}

	password := in.Password
	if password == "" {
		generated, err := GeneratePassword()
		if err != nil {
			return nil, "", err
		}
		password = generated
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, "", err
	}

	a := &model.Account{
		Email:        model.NormalizeEmail(in.Email),
		PasswordHash: hash,
		IsActive:     in.IsActive,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Title:        in.Title,
		Phone:        in.Phone,
		Profile:      in.Profile,
	}
	if err := s.accounts.Create(ctx, a); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, "", ErrConflict
		}
		return nil, "", err
	}

	s.log.Info().Int("account_id", a.ID).Str("role", string(a.Role())).Msg("Account created")
	return a, password, nil
}

// GetByID returns an account with its profile.
func (s *AccountService) GetByID(ctx context.Context, id int) (*model.Account, error) {
	return s.accounts.GetByID(ctx, id)
}

// ListActiveStudents lists every active student.
func (s *AccountService) ListActiveStudents(ctx context.Context) ([]model.Account, error) {
	return s.accounts.ListActiveByRole(ctx, model.RoleStudent)
}

// Activate marks an account active. Used by admins to approve mentor applications.
func (s *AccountService) Activate(ctx context.Context, id int) (*model.Account, error) {
	if err := s.accounts.SetActive(ctx, id, true); err != nil {
		return nil, err
	}
	s.log.Info().Int("account_id", id).Msg("Account activated")
	return s.accounts.GetByID(ctx, id)
}
