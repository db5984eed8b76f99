package repository

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/gsmp/mentorship-backend/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CourseRepository handles course data access.
type CourseRepository struct {
	pool *pgxpool.Pool
	sb   sq.StatementBuilderType
}

// NewCourseRepository creates a new CourseRepository.
func NewCourseRepository(pool *pgxpool.Pool) *CourseRepository {
	return &CourseRepository{
		pool: pool,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *CourseRepository) selectCourses() sq.SelectBuilder {
	return r.sb.Select(
		"c.id", "c.title", "c.slug", "c.description", "c.thumbnail_path", "c.owner_id", "c.status",
		"c.created_at", "c.updated_at",
		"COUNT(v.id)", "COALESCE(SUM(v.duration_seconds), 0)",
	).
		From("courses c").
		LeftJoin("videos v ON v.course_id = c.id AND v.status = 'active'").
		GroupBy("c.id")
}

// List returns courses newest first. Deactivated courses are included only on request.
func (r *CourseRepository) List(ctx context.Context, includeInactive bool) ([]model.Course, error) {
	q := r.selectCourses().OrderBy("c.created_at DESC", "c.id DESC")
	if !includeInactive {
		q = q.Where(sq.Eq{"c.status": model.StatusActive})
	}
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build course list: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var courses []model.Course
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		courses = append(courses, *c)
	}
	return courses, rows.Err()
}

// GetByID returns a course regardless of status.
func (r *CourseRepository) GetByID(ctx context.Context, id int) (*model.Course, error) {
	query, args, err := r.selectCourses().Where(sq.Eq{"c.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build course get: %w", err)
	}
	c, err := scanCourse(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, notFound(err)
	}
	return c, nil
}

// Create inserts a course. A taken slug yields ErrDuplicateSlug.
func (r *CourseRepository) Create(ctx context.Context, c *model.Course) error {
	query, args, err := r.sb.Insert("courses").
		Columns("title", "slug", "description", "thumbnail_path", "owner_id", "status").
		Values(c.Title, c.Slug, c.Description, c.ThumbnailPath, c.OwnerID, c.Status).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build course insert: %w", err)
	}
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if pgCode(err) == pgUniqueViolation {
			return ErrDuplicateSlug
		}
		return err
	}
	return nil
}

// Update writes every mutable column of c.
func (r *CourseRepository) Update(ctx context.Context, c *model.Course) error {
	query, args, err := r.sb.Update("courses").
		Set("title", c.Title).
		Set("slug", c.Slug).
		Set("description", c.Description).
		Set("thumbnail_path", c.ThumbnailPath).
		Set("status", c.Status).
		Set("updated_at", sq.Expr("CURRENT_TIMESTAMP")).
		Where(sq.Eq{"id": c.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build course update: %w", err)
	}
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&c.UpdatedAt); err != nil {
		if pgCode(err) == pgUniqueViolation {
			return ErrDuplicateSlug
		}
		return notFound(err)
	}
	return nil
}

// SetStatus changes only the lifecycle status.
func (r *CourseRepository) SetStatus(ctx context.Context, id int, status model.ContentStatus) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE courses SET status = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanCourse(row pgx.Row) (*model.Course, error) {
	var c model.Course
	err := row.Scan(
		&c.ID, &c.Title, &c.Slug, &c.Description, &c.ThumbnailPath, &c.OwnerID, &c.Status,
		&c.CreatedAt, &c.UpdatedAt, &c.VideoCount, &c.TotalDuration,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
