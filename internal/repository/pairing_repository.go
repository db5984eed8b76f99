package repository

import (
	"context"

	"github.com/gsmp/mentorship-backend/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PairingRepository handles mentor-student links.
type PairingRepository struct {
	pool *pgxpool.Pool
}

// NewPairingRepository creates a new PairingRepository.
func NewPairingRepository(pool *pgxpool.Pool) *PairingRepository {
	return &PairingRepository{pool: pool}
}

// ListStudentsOf returns the students paired with a mentor.
func (r *PairingRepository) ListStudentsOf(ctx context.Context, mentorID int) ([]model.Account, error) {
	rows, err := r.pool.Query(ctx,
		accountSelect+` JOIN pairings p ON p.student_id = a.id WHERE p.mentor_id = $1 ORDER BY p.created_at, a.id`, mentorID)
	if err != nil {
		return nil, err
	}
	return collectAccounts(rows)
}

// ListMentorsOf returns the mentors paired with a student.
func (r *PairingRepository) ListMentorsOf(ctx context.Context, studentID int) ([]model.Account, error) {
	rows, err := r.pool.Query(ctx,
		accountSelect+` JOIN pairings p ON p.mentor_id = a.id WHERE p.student_id = $1 ORDER BY p.created_at, a.id`, studentID)
	if err != nil {
		return nil, err
	}
	return collectAccounts(rows)
}

// Create links a mentor and a student.
func (r *PairingRepository) Create(ctx context.Context, mentorID, studentID int) (*model.Pairing, error) {
	p := &model.Pairing{MentorID: mentorID, StudentID: studentID}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO pairings (mentor_id, student_id) VALUES ($1, $2) RETURNING id, created_at`,
		mentorID, studentID,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		switch pgCode(err) {
		case pgUniqueViolation:
			return nil, ErrDuplicatePairing
		case pgForeignKeyViolation:
			return nil, ErrRoleMismatch
		}
		return nil, err
	}
	return p, nil
}

// Delete removes a link.
func (r *PairingRepository) Delete(ctx context.Context, mentorID, studentID int) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM pairings WHERE mentor_id = $1 AND student_id = $2`, mentorID, studentID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
