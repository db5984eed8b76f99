package service

import (
	"context"
	"mime/multipart"
	"slices"
	"strings"

	"github.com/gsmp/mentorship-backend/internal/model"
	"github.com/gsmp/mentorship-backend/internal/repository"
	"github.com/rs/zerolog"
)

// VideoUpload bundles the files of a video write. Both may be nil on updates.
type VideoUpload struct {
	File      *multipart.FileHeader
	Thumbnail *multipart.FileHeader
}

// VideoService manages lesson videos.
type VideoService struct {
	videos  VideoStore
	courses CourseStore
	media   *MediaService
	log     zerolog.Logger
}

// NewVideoService creates a new VideoService.
func NewVideoService(videos VideoStore, courses CourseStore, media *MediaService, log zerolog.Logger) *VideoService {
	return &VideoService{videos: videos, courses: courses, media: media, log: log}
}

// List returns every active video, newest first.
func (s *VideoService) List(ctx context.Context) ([]model.Video, error) {
	return s.videos.List(ctx, repository.VideoFilter{})
}

// Get returns a video visible to viewer.
func (s *VideoService) Get(ctx context.Context, viewer Actor, id int) (*model.Video, error) {
	v, err := s.videos.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if v.Status != model.StatusActive && !viewer.IsAdmin() {
		return nil, ErrNotFound
	}
	return v, nil
}

// Mine lists the videos uploaded by actor, including deactivated ones.
func (s *VideoService) Mine(ctx context.Context, actor Actor) ([]model.Video, error) {
	return s.videos.List(ctx, repository.VideoFilter{UploaderID: &actor.ID, IncludeInactive: true})
}

// ByCourse lists the active videos of a course in course order.
func (s *VideoService) ByCourse(ctx context.Context, courseID int) ([]model.Video, error) {
	videos, err := s.videos.List(ctx, repository.VideoFilter{CourseID: &courseID})
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(videos, model.CompareCourseOrder)
	return videos, nil
}

// Upload stores the files and creates the video row. The files are removed
// again if the row cannot be written.
func (s *VideoService) Upload(ctx context.Context, actor Actor, req model.VideoRequest, up VideoUpload) (*model.Video, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if up.File == nil {
		return nil, ErrFileRequired
	}
	if err := s.checkCourse(ctx, req.CourseID); err != nil {
		return nil, err
	}

	v := &model.Video{
		Title:           strings.TrimSpace(req.Title),
		Description:     req.Description,
		CourseID:        req.CourseID,
		OrderInCourse:   req.OrderInCourse,
		UploaderID:      actor.ID,
		DurationSeconds: req.DurationSeconds,
		Status:          model.StatusActive,
	}
	stored, err := s.storeFiles(v, up)
	if err != nil {
		return nil, err
	}
	if err := s.videos.Create(ctx, v); err != nil {
		s.discard(stored...)
		return nil, err
	}
	s.log.Info().Int("video_id", v.ID).Str("path", v.FilePath).Msg("Video uploaded")
	return v, nil
}

// Replace overwrites every editable field. Files are replaced only when given.
func (s *VideoService) Replace(ctx context.Context, actor Actor, id int, req model.VideoRequest, up VideoUpload) (*model.Video, error) {
	title, desc, order, dur := req.Title, req.Description, req.OrderInCourse, req.DurationSeconds
	patch := model.VideoPatch{
		Title:           &title,
		Description:     &desc,
		CourseID:        req.CourseID,
		OrderInCourse:   &order,
		DurationSeconds: &dur,
	}
	return s.update(ctx, actor, id, patch, up, true)
}

// Patch applies the non-nil fields of patch.
func (s *VideoService) Patch(ctx context.Context, actor Actor, id int, patch model.VideoPatch, up VideoUpload) (*model.Video, error) {
	return s.update(ctx, actor, id, patch, up, false)
}

func (s *VideoService) update(ctx context.Context, actor Actor, id int, patch model.VideoPatch, up VideoUpload, replaceCourse bool) (*model.Video, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	v, err := s.videos.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkCourse(ctx, patch.CourseID); err != nil {
		return nil, err
	}

	if patch.Title != nil {
		v.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Description != nil {
		v.Description = *patch.Description
	}
	if patch.CourseID != nil || replaceCourse {
		v.CourseID = patch.CourseID
	}
	if patch.OrderInCourse != nil {
		v.OrderInCourse = *patch.OrderInCourse
	}
	if patch.DurationSeconds != nil {
		v.DurationSeconds = *patch.DurationSeconds
	}

	oldFile, oldThumb := v.FilePath, v.ThumbnailPath
	stored, err := s.storeFiles(v, up)
	if err != nil {
		return nil, err
	}
	if err := s.videos.Update(ctx, v); err != nil {
		s.discard(stored...)
		return nil, err
	}
	if up.File != nil {
		s.discard(oldFile)
	}
	if up.Thumbnail != nil {
		s.discard(oldThumb)
	}
	return v, nil
}

// Deactivate soft-deletes a video.
func (s *VideoService) Deactivate(ctx context.Context, actor Actor, id int) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	return s.videos.SetStatus(ctx, id, model.StatusDeactivated)
}

// ToggleActive flips a video between active and deactivated.
func (s *VideoService) ToggleActive(ctx context.Context, actor Actor, id int) (*model.Video, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	v, err := s.videos.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	v.Status = v.Status.Toggled()
	if err := s.videos.SetStatus(ctx, id, v.Status); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *VideoService) checkCourse(ctx context.Context, courseID *int) error {
	if courseID == nil {
		return nil
	}
	_, err := s.courses.GetByID(ctx, *courseID)
	return err
}

// storeFiles saves the given files onto v and returns what was written.
func (s *VideoService) storeFiles(v *model.Video, up VideoUpload) ([]string, error) {
	var stored []string
	if up.File != nil {
		if _, err := s.media.Validate(up.File, MediaVideo); err != nil {
			return nil, err
		}
	}
	if up.Thumbnail != nil {
		if _, err := s.media.Validate(up.Thumbnail, MediaImage); err != nil {
			return nil, err
		}
	}
	if up.File != nil {
		p, err := s.media.SaveVideo(up.File)
		if err != nil {
			return nil, err
		}
		v.FilePath = p
		stored = append(stored, p)
	}
	if up.Thumbnail != nil {
		p, err := s.media.SaveImage(up.Thumbnail, DirVideoThumbnails)
		if err != nil {
			s.discard(stored...)
			return nil, err
		}
		v.ThumbnailPath = p
		stored = append(stored, p)
	}
	return stored, nil
}

func (s *VideoService) discard(paths ...string) {
	for _, p := range paths {
		if err := s.media.Remove(p); err != nil {
			s.log.Warn().Err(err).Str("path", p).Msg("Failed to remove media file")
		}
	}
}
