package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"slices"
	"strings"

	"github.com/gsmp/mentorship-backend/internal/model"
	"github.com/gsmp/mentorship-backend/internal/repository"
	"github.com/rs/zerolog"
)

const maxSlugAttempts = 20

// CourseDetail is a course with its active videos in course order.
type CourseDetail struct {
	Course *model.Course
	Videos []model.Video
}

// CourseService manages the course catalog.
type CourseService struct {
	courses CourseStore
	videos  VideoStore
	media   *MediaService
	log     zerolog.Logger
}

// NewCourseService creates a new CourseService.
func NewCourseService(courses CourseStore, videos VideoStore, media *MediaService, log zerolog.Logger) *CourseService {
	return &CourseService{courses: courses, videos: videos, media: media, log: log}
}

// List returns active courses, plus deactivated ones for admins.
func (s *CourseService) List(ctx context.Context, viewer Actor) ([]model.Course, error) {
	return s.courses.List(ctx, viewer.IsAdmin())
}

// Get returns a course visible to viewer.
func (s *CourseService) Get(ctx context.Context, viewer Actor, id int) (*model.Course, error) {
	c, err := s.courses.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.Status != model.StatusActive && !viewer.IsAdmin() {
		return nil, ErrNotFound
	}
	return c, nil
}

// Detail returns a course together with its ordered active videos.
func (s *CourseService) Detail(ctx context.Context, viewer Actor, id int) (*CourseDetail, error) {
	c, err := s.Get(ctx, viewer, id)
	if err != nil {
		return nil, err
	}
	videos, err := s.Videos(ctx, viewer, id)
	if err != nil {
		return nil, err
	}
	return &CourseDetail{Course: c, Videos: videos}, nil
}

// Videos lists the active videos of a course by order_in_course, newest upload first on ties.
func (s *CourseService) Videos(ctx context.Context, viewer Actor, id int) ([]model.Video, error) {
	if _, err := s.Get(ctx, viewer, id); err != nil {
		return nil, err
	}
	videos, err := s.videos.List(ctx, repository.VideoFilter{CourseID: &id})
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(videos, model.CompareCourseOrder)
	return videos, nil
}

// Create adds a course owned by the admin actor.
func (s *CourseService) Create(ctx context.Context, actor Actor, req model.CourseRequest, thumbnail *multipart.FileHeader) (*model.Course, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	c := &model.Course{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		OwnerID:     actor.ID,
		Status:      model.StatusActive,
	}
	if req.Status != nil {
		c.Status = *req.Status
	}

	if thumbnail != nil {
		p, err := s.media.SaveImage(thumbnail, DirCourseThumbnails)
		if err != nil {
			return nil, err
		}
		c.ThumbnailPath = p
	}

	if err := s.withUniqueSlug(c, func() error { return s.courses.Create(ctx, c) }); err != nil {
		s.discard(c.ThumbnailPath)
		return nil, err
	}
	s.log.Info().Int("course_id", c.ID).Str("slug", c.Slug).Msg("Course created")
	return c, nil
}

// Replace overwrites every editable field of a course.
func (s *CourseService) Replace(ctx context.Context, actor Actor, id int, req model.CourseRequest, thumbnail *multipart.FileHeader) (*model.Course, error) {
	status := model.StatusActive
	if req.Status != nil {
		status = *req.Status
	}
	title := req.Title
	desc := req.Description
	return s.update(ctx, actor, id, model.CoursePatch{Title: &title, Description: &desc, Status: &status}, thumbnail)
}

// Patch applies the non-nil fields of patch.
func (s *CourseService) Patch(ctx context.Context, actor Actor, id int, patch model.CoursePatch, thumbnail *multipart.FileHeader) (*model.Course, error) {
	return s.update(ctx, actor, id, patch, thumbnail)
}

func (s *CourseService) update(ctx context.Context, actor Actor, id int, patch model.CoursePatch, thumbnail *multipart.FileHeader) (*model.Course, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	c, err := s.courses.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	titleChanged := false
	if patch.Title != nil && strings.TrimSpace(*patch.Title) != c.Title {
		c.Title = strings.TrimSpace(*patch.Title)
		titleChanged = true
	}
	if patch.Description != nil {
		c.Description = *patch.Description
	}
	if patch.Status != nil {
		c.Status = *patch.Status
	}

	oldThumb := c.ThumbnailPath
	if thumbnail != nil {
		p, err := s.media.SaveImage(thumbnail, DirCourseThumbnails)
		if err != nil {
			return nil, err
		}
		c.ThumbnailPath = p
	}

	save := func() error { return s.courses.Update(ctx, c) }
	if titleChanged {
		err = s.withUniqueSlug(c, save)
	} else {
		err = save()
	}
	if err != nil {
		if thumbnail != nil {
			s.discard(c.ThumbnailPath)
		}
		return nil, err
	}
	if thumbnail != nil {
		s.discard(oldThumb)
	}
	return c, nil
}

// Deactivate soft-deletes a course.
func (s *CourseService) Deactivate(ctx context.Context, actor Actor, id int) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	return s.courses.SetStatus(ctx, id, model.StatusDeactivated)
}

// ToggleActive flips a course between active and deactivated.
func (s *CourseService) ToggleActive(ctx context.Context, actor Actor, id int) (*model.Course, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	c, err := s.courses.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Status = c.Status.Toggled()
	if err := s.courses.SetStatus(ctx, id, c.Status); err != nil {
		return nil, err
	}
	return c, nil
}

// withUniqueSlug derives a slug from the title and retries with a numeric
// suffix while the store reports it taken.
func (s *CourseService) withUniqueSlug(c *model.Course, save func() error) error {
	base := Slugify(c.Title)
	if base == "" {
		base = "course"
	}
	c.Slug = base
	for i := 2; i <= maxSlugAttempts+1; i++ {
		err := save()
		if !errors.Is(err, repository.ErrDuplicateSlug) {
			return err
		}
		c.Slug = fmt.Sprintf("%s-%d", base, i)
	}
	return ErrConflict
}

func (s *CourseService) discard(relPath string) {
	if err := s.media.Remove(relPath); err != nil {
		s.log.Warn().Err(err).Str("path", relPath).Msg("Failed to remove media file")
	}
}
