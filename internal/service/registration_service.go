package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"github.com/gsmp/mentorship-backend/internal/model"
	"github.com/rs/zerolog"
)

// RegistrationService handles mentor self-registration.
type RegistrationService struct {
	accounts AccountStore
	creator  *AccountService
	hasher   *PasswordHasher
	media    *MediaService
	notifier Notifier
	log      zerolog.Logger
	now      func() time.Time
}

// NewRegistrationService creates a new RegistrationService.
func NewRegistrationService(
	accounts AccountStore,
	creator *AccountService,
	hasher *PasswordHasher,
	media *MediaService,
	notifier Notifier,
	log zerolog.Logger,
) *RegistrationService {
	return &RegistrationService{
		accounts: accounts,
		creator:  creator,
		hasher:   hasher,
		media:    media,
		notifier: notifier,
		log:      log,
		now:      time.Now,
	}
}

// RegisterMentor validates the application and optional intro video, stores
// the video, then creates the inactive mentor (or claims an OTP placeholder
// with the same email). The confirmation email never carries credentials.
func (s *RegistrationService) RegisterMentor(ctx context.Context, req model.MentorRegistrationRequest, video *multipart.FileHeader) (*model.Account, error) {
	if video != nil {
		if _, err := s.media.Validate(video, MediaIntroVideo); err != nil {
			return nil, err
		}
	}

	var dob *time.Time
	if req.DOB != "" {
		t, err := time.Parse("2006-01-02", req.DOB)
		if err != nil {
			return nil, fmt.Errorf("parse dob: %w", err)
		}
		dob = &t
	}

	existing, err := s.accounts.GetByEmail(ctx, req.Email)
	switch {
	case errors.Is(err, ErrNotFound):
		existing = nil
	case err != nil:
		return nil, fmt.Errorf("registration lookup: %w", err)
	default:
		if m, ok := existing.Mentor(); !ok || !m.Placeholder() {
			return nil, ErrConflict
		}
	}

	var videoPath string
	if video != nil {
		videoPath, err = s.media.SaveIntroVideo(video, req.FirstName, req.LastName)
		if err != nil {
			return nil, err
		}
	}

	appliedAt := s.now()
	profile := &model.MentorProfile{
		DOB:                      dob,
		IDNumber:                 strings.TrimSpace(req.IDNumber),
		Bio:                      req.Bio,
		JobTitle:                 req.JobTitle,
		InstitutionalAffiliation: req.InstitutionalAffiliation,
		Nationality:              req.Nationality,
		City:                     req.City,
		IntroVideoPath:           videoPath,
		AppliedAt:                &appliedAt,
	}

	var account *model.Account
	if existing == nil {
		account, _, err = s.creator.Create(ctx, NewAccount{
			Email:     req.Email,
			FirstName: strings.TrimSpace(req.FirstName),
			LastName:  strings.TrimSpace(req.LastName),
			Title:     req.Title,
			Phone:     req.Phone,
			Profile:   profile,
		})
	} else {
		account, err = s.claimPlaceholder(ctx, existing, req, profile)
	}
	if err != nil {
		if rmErr := s.media.Remove(videoPath); rmErr != nil {
			s.log.Warn().Err(rmErr).Str("path", videoPath).Msg("Failed to remove orphaned intro video")
		}
		return nil, err
	}

	if err := s.notifier.SendMentorApplication(ctx, account.Email, account.FullName()); err != nil {
		s.log.Error().Err(err).Int("account_id", account.ID).Msg("Failed to send mentor application email")
	}
	return account, nil
}

func (s *RegistrationService) claimPlaceholder(ctx context.Context, a *model.Account, req model.MentorRegistrationRequest, profile *model.MentorProfile) (*model.Account, error) {
	password, err := GeneratePassword()
	if err != nil {
		return nil, err
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	a.PasswordHash = hash
	a.IsActive = false
	a.FirstName = strings.TrimSpace(req.FirstName)
	a.LastName = strings.TrimSpace(req.LastName)
	a.Title = req.Title
	a.Phone = req.Phone
	a.Profile = profile
	if err := s.accounts.SaveMentorApplication(ctx, a); err != nil {
		return nil, fmt.Errorf("claim placeholder: %w", err)
	}
	s.log.Info().Int("account_id", a.ID).Msg("Placeholder claimed by mentor application")
	return a, nil
}
