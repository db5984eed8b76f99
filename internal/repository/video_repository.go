package repository

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/gsmp/mentorship-backend/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// VideoFilter narrows a video listing. Zero value lists every active video.
type VideoFilter struct {
	CourseID        *int
	UploaderID      *int
	IncludeInactive bool
}

// VideoRepository handles video data access.
type VideoRepository struct {
	pool *pgxpool.Pool
	sb   sq.StatementBuilderType
}

// NewVideoRepository creates a new VideoRepository.
func NewVideoRepository(pool *pgxpool.Pool) *VideoRepository {
	return &VideoRepository{
		pool: pool,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *VideoRepository) selectVideos() sq.SelectBuilder {
	return r.sb.Select(
		"v.id", "v.title", "v.description", "v.file_path", "v.thumbnail_path", "v.course_id",
		"COALESCE(c.title, '')", "v.order_in_course", "v.uploader_id", "v.duration_seconds", "v.status", "v.uploaded_at",
	).
		From("videos v").
		LeftJoin("courses c ON c.id = v.course_id")
}

// List returns videos matching f. Course listings come back in course order,
// everything else newest first.
func (r *VideoRepository) List(ctx context.Context, f VideoFilter) ([]model.Video, error) {
	q := r.selectVideos()
	if !f.IncludeInactive {
		q = q.Where(sq.Eq{"v.status": model.StatusActive})
	}
	if f.UploaderID != nil {
		q = q.Where(sq.Eq{"v.uploader_id": *f.UploaderID})
	}
	if f.CourseID != nil {
		q = q.Where(sq.Eq{"v.course_id": *f.CourseID}).OrderBy("v.order_in_course ASC", "v.uploaded_at DESC")
	} else {
		q = q.OrderBy("v.uploaded_at DESC", "v.id DESC")
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build video list: %w", err)
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var videos []model.Video
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, err
		}
		videos = append(videos, *v)
	}
	return videos, rows.Err()
}

// GetByID returns a video regardless of status.
func (r *VideoRepository) GetByID(ctx context.Context, id int) (*model.Video, error) {
	query, args, err := r.selectVideos().Where(sq.Eq{"v.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build video get: %w", err)
	}
	v, err := scanVideo(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, notFound(err)
	}
	return v, nil
}

// Create inserts a video row.
func (r *VideoRepository) Create(ctx context.Context, v *model.Video) error {
	query, args, err := r.sb.Insert("videos").
		Columns("title", "description", "file_path", "thumbnail_path", "course_id", "order_in_course",
			"uploader_id", "duration_seconds", "status").
		Values(v.Title, v.Description, v.FilePath, v.ThumbnailPath, v.CourseID, v.OrderInCourse,
			v.UploaderID, v.DurationSeconds, v.Status).
		Suffix("RETURNING id, uploaded_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build video insert: %w", err)
	}
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&v.ID, &v.UploadedAt); err != nil {
		if pgCode(err) == pgForeignKeyViolation {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// Update writes every mutable column of v.
func (r *VideoRepository) Update(ctx context.Context, v *model.Video) error {
	query, args, err := r.sb.Update("videos").
		Set("title", v.Title).
		Set("description", v.Description).
		Set("file_path", v.FilePath).
		Set("thumbnail_path", v.ThumbnailPath).
		Set("course_id", v.CourseID).
		Set("order_in_course", v.OrderInCourse).
		Set("duration_seconds", v.DurationSeconds).
		Set("status", v.Status).
		Where(sq.Eq{"id": v.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build video update: %w", err)
	}
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		if pgCode(err) == pgForeignKeyViolation {
			return ErrNotFound
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetStatus changes only the lifecycle status.
func (r *VideoRepository) SetStatus(ctx context.Context, id int, status model.ContentStatus) error {
	tag, err := r.pool.Exec(ctx, `UPDATE videos SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanVideo(row pgx.Row) (*model.Video, error) {
	var v model.Video
	err := row.Scan(
		&v.ID, &v.Title, &v.Description, &v.FilePath, &v.ThumbnailPath, &v.CourseID,
		&v.CourseTitle, &v.OrderInCourse, &v.UploaderID, &v.DurationSeconds, &v.Status, &v.UploadedAt,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
