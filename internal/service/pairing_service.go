package service

import (
	"context"
	"errors"

	"github.com/gsmp/mentorship-backend/internal/model"
	"github.com/gsmp/mentorship-backend/internal/repository"
	"github.com/rs/zerolog"
)

// PairingService lists and manages mentor-student links.
type PairingService struct {
	accounts AccountStore
	pairings PairingStore
	log      zerolog.Logger
}

// NewPairingService creates a new PairingService.
func NewPairingService(accounts AccountStore, pairings PairingStore, log zerolog.Logger) *PairingService {
	return &PairingService{accounts: accounts, pairings: pairings, log: log}
}

// ListPartners returns a mentor's students or a student's mentors.
func (s *PairingService) ListPartners(ctx context.Context, a *model.Account) ([]model.Account, error) {
	switch a.Role() {
	case model.RoleMentor:
		return s.pairings.ListStudentsOf(ctx, a.ID)
	case model.RoleStudent:
		return s.pairings.ListMentorsOf(ctx, a.ID)
	default:
		return nil, ErrInvalidRole
	}
}

// Pair links a mentor and a student after checking both roles.
func (s *PairingService) Pair(ctx context.Context, mentorID, studentID int) (*model.Pairing, error) {
	if err := s.checkRoles(ctx, mentorID, studentID); err != nil {
		return nil, err
	}
	p, err := s.pairings.Create(ctx, mentorID, studentID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicatePairing):
			return nil, ErrConflict
		case errors.Is(err, repository.ErrRoleMismatch):
			return nil, ErrInvalidPairing
		}
		return nil, err
	}
	s.log.Info().Int("mentor_id", mentorID).Int("student_id", studentID).Msg("Pairing created")
	return p, nil
}

// Unpair removes a link.
func (s *PairingService) Unpair(ctx context.Context, mentorID, studentID int) error {
	if err := s.pairings.Delete(ctx, mentorID, studentID); err != nil {
		return err
	}
	s.log.Info().Int("mentor_id", mentorID).Int("student_id", studentID).Msg("Pairing removed")
	return nil
}

func (s *PairingService) checkRoles(ctx context.Context, mentorID, studentID int) error {
	mentor, err := s.accounts.GetByID(ctx, mentorID)
	if err != nil {
		return err
	}
	student, err := s.accounts.GetByID(ctx, studentID)
	if err != nil {
		return err
	}
	if mentor.Role() != model.RoleMentor || student.Role() != model.RoleStudent {
		return ErrInvalidPairing
	}
	return nil
}
