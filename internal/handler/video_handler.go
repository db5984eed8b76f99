package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gsmp/mentorship-backend/internal/middleware"
	"github.com/gsmp/mentorship-backend/internal/model"
	"github.com/gsmp/mentorship-backend/internal/response"
	"github.com/gsmp/mentorship-backend/internal/service"
	"github.com/gsmp/mentorship-backend/internal/validator"
	"github.com/rs/zerolog"
)

// VideoFileField is the multipart part carrying the video itself.
const VideoFileField = "video_file"

// VideoHandler handles video catalog endpoints.
type VideoHandler struct {
	videos *service.VideoService
	urls   MediaURLs
	log    zerolog.Logger
}

// NewVideoHandler creates a new VideoHandler.
func NewVideoHandler(videos *service.VideoService, urls MediaURLs, log zerolog.Logger) *VideoHandler {
	return &VideoHandler{videos: videos, urls: urls, log: log}
}

// List godoc
// GET /api/v1/videos
func (h *VideoHandler) List(c *gin.Context) {
	videos, err := h.videos.List(c.Request.Context())
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, newVideoViews(c, h.urls, videos))
}

// Get godoc
// GET /api/v1/videos/:id
func (h *VideoHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	video, err := h.videos.Get(c.Request.Context(), middleware.Actor(c), id)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, newVideoView(c, h.urls, video))
}

// Mine godoc
// GET /api/v1/videos/mine
// Videos uploaded by the caller, deactivated ones included.
func (h *VideoHandler) Mine(c *gin.Context) {
	videos, err := h.videos.Mine(c.Request.Context(), middleware.Actor(c))
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, newVideoViews(c, h.urls, videos))
}

// ByCourse godoc
// GET /api/v1/videos/by-course?course_id=
func (h *VideoHandler) ByCourse(c *gin.Context) {
	courseID, err := strconv.Atoi(c.Query("course_id"))
	if err != nil || courseID <= 0 {
		failValidation(c, map[string]string{"course_id": "course_id parameter is required"})
		return
	}

	videos, err := h.videos.ByCourse(c.Request.Context(), courseID)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, newVideoViews(c, h.urls, videos))
}

// Upload godoc
// POST /api/v1/videos
// Multipart: metadata fields, video_file and an optional thumbnail.
func (h *VideoHandler) Upload(c *gin.Context) {
	var req model.VideoRequest
	if fields := validator.BindForm(c, &req); fields != nil {
		failValidation(c, fields)
		return
	}
	up, ok := h.uploads(c)
	if !ok {
		return
	}

	video, err := h.videos.Upload(c.Request.Context(), middleware.Actor(c), req, up)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusCreated, newVideoView(c, h.urls, video))
}

// Replace godoc
// PUT /api/v1/videos/:id
func (h *VideoHandler) Replace(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req model.VideoRequest
	if fields := validator.BindForm(c, &req); fields != nil {
		failValidation(c, fields)
		return
	}
	up, ok := h.uploads(c)
	if !ok {
		return
	}

	video, err := h.videos.Replace(c.Request.Context(), middleware.Actor(c), id, req, up)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, newVideoView(c, h.urls, video))
}

// Patch godoc
// PATCH /api/v1/videos/:id
func (h *VideoHandler) Patch(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var patch model.VideoPatch
	if fields := validator.BindForm(c, &patch); fields != nil {
		failValidation(c, fields)
		return
	}
	up, ok := h.uploads(c)
	if !ok {
		return
	}

	video, err := h.videos.Patch(c.Request.Context(), middleware.Actor(c), id, patch, up)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, newVideoView(c, h.urls, video))
}

// Delete godoc
// DELETE /api/v1/videos/:id
// Deactivates the video; rows are never removed.
func (h *VideoHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.videos.Deactivate(c.Request.Context(), middleware.Actor(c), id); err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"id": id, "status": model.StatusDeactivated})
}

// ToggleActive godoc
// POST /api/v1/videos/:id/toggle-active
func (h *VideoHandler) ToggleActive(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	video, err := h.videos.ToggleActive(c.Request.Context(), middleware.Actor(c), id)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, newVideoView(c, h.urls, video))
}

func (h *VideoHandler) uploads(c *gin.Context) (service.VideoUpload, bool) {
	file, err := optionalFile(c, VideoFileField)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return service.VideoUpload{}, false
	}
	thumb, err := optionalFile(c, ThumbnailField)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return service.VideoUpload{}, false
	}
	return service.VideoUpload{File: file, Thumbnail: thumb}, true
}
