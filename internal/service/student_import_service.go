package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gsmp/mentorship-backend/internal/model"
	"github.com/rs/zerolog"
)

// StudentImportService creates student accounts in bulk.
type StudentImportService struct {
	accounts AccountStore
	creator  *AccountService
	notifier Notifier
	log      zerolog.Logger
	now      func() time.Time
}

// NewStudentImportService creates a new StudentImportService.
func NewStudentImportService(accounts AccountStore, creator *AccountService, notifier Notifier, log zerolog.Logger) *StudentImportService {
	return &StudentImportService{accounts: accounts, creator: creator, notifier: notifier, log: log, now: time.Now}
}

// Import creates an inactive first-login student per row. Existing emails are
// skipped. A positive expiry sets password_expiry that far from now. Welcome
// email failures are reported per row but never roll back the account.
func (s *StudentImportService) Import(ctx context.Context, rows []model.StudentImportRow, expiry time.Duration) (*model.ImportReport, error) {
	report := &model.ImportReport{Results: make([]model.ImportResult, 0, len(rows))}

	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		res := model.ImportResult{Line: row.Line, Email: model.NormalizeEmail(row.Email)}

		if _, err := s.accounts.GetByEmail(ctx, row.Email); err == nil {
			res.Outcome = model.ImportSkipped
			report.Add(res)
			continue
		} else if !errors.Is(err, ErrNotFound) {
			res.Outcome = model.ImportFailed
			res.Error = err.Error()
			report.Add(res)
			continue
		}

		profile := &model.StudentProfile{
			IDNumber:     row.IDNumber,
			DOB:          row.DOB,
			Nationality:  row.Nationality,
			City:         row.City,
			IsFirstLogin: true,
		}
		if expiry > 0 {
			t := s.now().Add(expiry)
			profile.PasswordExpiry = &t
		}

		first, last := SplitFullName(row.FullName)
		a, password, err := s.creator.Create(ctx, NewAccount{
			Email:     row.Email,
			FirstName: first,
			LastName:  last,
			Phone:     row.Phone,
			Profile:   profile,
		})
		if err != nil {
			if errors.Is(err, ErrConflict) {
				res.Outcome = model.ImportSkipped
			} else {
				res.Outcome = model.ImportFailed
				res.Error = err.Error()
			}
			report.Add(res)
			continue
		}

		res.Outcome = model.ImportCreated
		if err := s.notifier.SendStudentWelcome(ctx, a.Email, a.FullName(), password); err != nil {
			s.log.Error().Err(err).Int("account_id", a.ID).Msg("Failed to send student welcome email")
			res.Outcome = model.ImportCreatedNoEmail
			res.Error = err.Error()
		}
		report.Add(res)
	}

	s.log.Info().
		Int("created", report.Created).
		Int("skipped", report.Skipped).
		Int("failed", report.Failed).
		Msg("Student import finished")
	return report, nil
}

// SplitFullName puts the last word into the last name and the rest into the first name.
func SplitFullName(full string) (first, last string) {
	parts := strings.Fields(full)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	default:
		return strings.Join(parts[:len(parts)-1], " "), parts[len(parts)-1]
	}
}
