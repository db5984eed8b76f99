package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/gsmp/mentorship-backend/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const accountSelect = `SELECT a.id, a.email, a.password_hash, a.role, a.is_active, a.title, a.first_name, a.last_name, a.phone,
	a.email_otp, a.otp_created_at, a.created_at, a.updated_at,
	m.dob, m.id_number, m.bio, m.job_title, m.institutional_affiliation, m.nationality, m.city, m.intro_video_path, m.applied_at,
	s.id_number, s.dob, s.nationality, s.city, s.is_first_login, s.password_expiry
	FROM accounts a
	LEFT JOIN mentor_profiles m ON m.account_id = a.id
	LEFT JOIN student_profiles s ON s.account_id = a.id`

// AccountRepository handles account and profile data access.
type AccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

// GetByID retrieves an account with its profile.
func (r *AccountRepository) GetByID(ctx context.Context, id int) (*model.Account, error) {
	a, err := scanAccount(r.pool.QueryRow(ctx, accountSelect+` WHERE a.id = $1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return a, nil
}

// GetByEmail retrieves an account by its normalized email.
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*model.Account, error) {
	a, err := scanAccount(r.pool.QueryRow(ctx, accountSelect+` WHERE a.email = $1`, model.NormalizeEmail(email)))
	if err != nil {
		return nil, notFound(err)
	}
	return a, nil
}

// ListActiveByRole lists active accounts of one role ordered by name.
func (r *AccountRepository) ListActiveByRole(ctx context.Context, role model.Role) ([]model.Account, error) {
	rows, err := r.pool.Query(ctx,
		accountSelect+` WHERE a.role = $1 AND a.is_active ORDER BY a.first_name, a.last_name, a.id`, role)
	if err != nil {
		return nil, err
	}
	return collectAccounts(rows)
}

// Create inserts the account row and its profile row in one transaction.
func (r *AccountRepository) Create(ctx context.Context, a *model.Account) error {
	a.Email = model.NormalizeEmail(a.Email)
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`INSERT INTO accounts (email, password_hash, role, is_active, title, first_name, last_name, phone, email_otp, otp_created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			 RETURNING id, created_at, updated_at`,
			a.Email, a.PasswordHash, a.Role(), a.IsActive, a.Title, a.FirstName, a.LastName, a.Phone, a.EmailOTP, a.OTPCreatedAt,
		).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
		if err != nil {
			return err
		}
		return insertProfile(ctx, tx, a)
	})
	if err != nil {
		if pgCode(err) == pgUniqueViolation {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

// SaveAuthState persists the fields the auth state machine mutates: password,
// activation, OTP and, for students, the first-login and expiry fields.
func (r *AccountRepository) SaveAuthState(ctx context.Context, a *model.Account) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE accounts SET password_hash = $1, is_active = $2, email_otp = $3, otp_created_at = $4, updated_at = CURRENT_TIMESTAMP
			 WHERE id = $5`,
			a.PasswordHash, a.IsActive, a.EmailOTP, a.OTPCreatedAt, a.ID,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		if s, ok := a.Student(); ok {
			_, err = tx.Exec(ctx,
				`UPDATE student_profiles SET is_first_login = $1, password_expiry = $2 WHERE account_id = $3`,
				s.IsFirstLogin, s.PasswordExpiry, a.ID,
			)
		}
		return err
	})
}

// SaveMentorApplication writes the submitted application over a placeholder mentor.
func (r *AccountRepository) SaveMentorApplication(ctx context.Context, a *model.Account) error {
	m, ok := a.Mentor()
	if !ok {
		return ErrRoleMismatch
	}
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`UPDATE accounts SET password_hash = $1, is_active = $2, title = $3, first_name = $4, last_name = $5, phone = $6,
			 updated_at = CURRENT_TIMESTAMP WHERE id = $7`,
			a.PasswordHash, a.IsActive, a.Title, a.FirstName, a.LastName, a.Phone, a.ID,
		)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx,
			`UPDATE mentor_profiles SET dob = $1, id_number = $2, bio = $3, job_title = $4, institutional_affiliation = $5,
			 nationality = $6, city = $7, intro_video_path = $8, applied_at = $9 WHERE account_id = $10`,
			m.DOB, m.IDNumber, m.Bio, m.JobTitle, m.InstitutionalAffiliation, m.Nationality, m.City, m.IntroVideoPath, m.AppliedAt, a.ID,
		)
		return err
	})
}

// SetActive flips the activation flag, used by admins to approve mentors.
func (r *AccountRepository) SetActive(ctx context.Context, id int, active bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE accounts SET is_active = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`, active, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func insertProfile(ctx context.Context, tx pgx.Tx, a *model.Account) error {
	switch p := a.Profile.(type) {
	case *model.AdminProfile:
		return nil
	case *model.MentorProfile:
		_, err := tx.Exec(ctx,
			`INSERT INTO mentor_profiles (account_id, dob, id_number, bio, job_title, institutional_affiliation, nationality, city, intro_video_path, applied_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			a.ID, p.DOB, p.IDNumber, p.Bio, p.JobTitle, p.InstitutionalAffiliation, p.Nationality, p.City, p.IntroVideoPath, p.AppliedAt,
		)
		return err
	case *model.StudentProfile:
		_, err := tx.Exec(ctx,
			`INSERT INTO student_profiles (account_id, id_number, dob, nationality, city, is_first_login, password_expiry)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			a.ID, p.IDNumber, p.DOB, p.Nationality, p.City, p.IsFirstLogin, p.PasswordExpiry,
		)
		return err
	default:
		return fmt.Errorf("account %s has no profile", a.Email)
	}
}

func collectAccounts(rows pgx.Rows) ([]model.Account, error) {
	defer rows.Close()
	var accounts []model.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *a)
	}
	return accounts, rows.Err()
}

func scanAccount(row pgx.Row) (*model.Account, error) {
	var (
		a    model.Account
		role model.Role

		mDOB, mApplied                                   *time.Time
		mIDNumber, mBio, mJob, mAffil, mNat, mCity, mVid *string

		sIDNumber, sNat, sCity *string
		sDOB, sExpiry          *time.Time
		sFirstLogin            *bool
	)
	err := row.Scan(
		&a.ID, &a.Email, &a.PasswordHash, &role, &a.IsActive, &a.Title, &a.FirstName, &a.LastName, &a.Phone,
		&a.EmailOTP, &a.OTPCreatedAt, &a.CreatedAt, &a.UpdatedAt,
		&mDOB, &mIDNumber, &mBio, &mJob, &mAffil, &mNat, &mCity, &mVid, &mApplied,
		&sIDNumber, &sDOB, &sNat, &sCity, &sFirstLogin, &sExpiry,
	)
	if err != nil {
		return nil, err
	}

	switch role {
	case model.RoleAdmin:
		a.Profile = &model.AdminProfile{}
	case model.RoleMentor:
		a.Profile = &model.MentorProfile{
			DOB:                      mDOB,
			IDNumber:                 deref(mIDNumber),
			Bio:                      deref(mBio),
			JobTitle:                 deref(mJob),
			InstitutionalAffiliation: deref(mAffil),
			Nationality:              deref(mNat),
			City:                     deref(mCity),
			IntroVideoPath:           deref(mVid),
			AppliedAt:                mApplied,
		}
	case model.RoleStudent:
		a.Profile = &model.StudentProfile{
			IDNumber:       deref(sIDNumber),
			DOB:            sDOB,
			Nationality:    deref(sNat),
			City:           deref(sCity),
			IsFirstLogin:   sFirstLogin == nil || *sFirstLogin,
			PasswordExpiry: sExpiry,
		}
	default:
		return nil, fmt.Errorf("account %d has unknown role %q", a.ID, role)
	}
	return &a, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
