package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gsmp/mentorship-backend/internal/middleware"
	"github.com/gsmp/mentorship-backend/internal/model"
	"github.com/gsmp/mentorship-backend/internal/response"
	"github.com/gsmp/mentorship-backend/internal/service"
	"github.com/gsmp/mentorship-backend/internal/validator"
	"github.com/rs/zerolog"
)

// ThumbnailField is the multipart part carrying a course or video thumbnail.
const ThumbnailField = "thumbnail"

// CourseHandler handles course catalog endpoints.
type CourseHandler struct {
	courses *service.CourseService
	urls    MediaURLs
	log     zerolog.Logger
}

// NewCourseHandler creates a new CourseHandler.
func NewCourseHandler(courses *service.CourseService, urls MediaURLs, log zerolog.Logger) *CourseHandler {
	return &CourseHandler{courses: courses, urls: urls, log: log}
}

// List godoc
// GET /api/v1/courses
// Admins also see deactivated courses.
func (h *CourseHandler) List(c *gin.Context) {
	courses, err := h.courses.List(c.Request.Context(), middleware.Actor(c))
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, newCourseViews(c, h.urls, courses))
}

// Get godoc
// GET /api/v1/courses/:id
// Returns the course with its active videos in course order.
func (h *CourseHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	detail, err := h.courses.Detail(c.Request.Context(), middleware.Actor(c), id)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, courseDetailView{
		courseView: newCourseView(c, h.urls, detail.Course),
		Videos:     newVideoViews(c, h.urls, detail.Videos),
	})
}

// Videos godoc
// GET /api/v1/courses/:id/videos
func (h *CourseHandler) Videos(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	videos, err := h.courses.Videos(c.Request.Context(), middleware.Actor(c), id)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, newVideoViews(c, h.urls, videos))
}

// Create godoc
// POST /api/v1/courses
// JSON, or multipart with an optional thumbnail part.
func (h *CourseHandler) Create(c *gin.Context) {
	var req model.CourseRequest
	if fields := validator.BindForm(c, &req); fields != nil {
		failValidation(c, fields)
		return
	}
	thumb, err := optionalFile(c, ThumbnailField)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}

	course, err := h.courses.Create(c.Request.Context(), middleware.Actor(c), req, thumb)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusCreated, newCourseView(c, h.urls, course))
}

// Replace godoc
// PUT /api/v1/courses/:id
func (h *CourseHandler) Replace(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req model.CourseRequest
	if fields := validator.BindForm(c, &req); fields != nil {
		failValidation(c, fields)
		return
	}
	thumb, err := optionalFile(c, ThumbnailField)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}

	course, err := h.courses.Replace(c.Request.Context(), middleware.Actor(c), id, req, thumb)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, newCourseView(c, h.urls, course))
}

// Patch godoc
// PATCH /api/v1/courses/:id
func (h *CourseHandler) Patch(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var patch model.CoursePatch
	if fields := validator.BindForm(c, &patch); fields != nil {
		failValidation(c, fields)
		return
	}
	thumb, err := optionalFile(c, ThumbnailField)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}

	course, err := h.courses.Patch(c.Request.Context(), middleware.Actor(c), id, patch, thumb)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, newCourseView(c, h.urls, course))
}

// Delete godoc
// DELETE /api/v1/courses/:id
// Deactivates the course; rows are never removed.
func (h *CourseHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.courses.Deactivate(c.Request.Context(), middleware.Actor(c), id); err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"id": id, "status": model.StatusDeactivated})
}

// ToggleActive godoc
// POST /api/v1/courses/:id/toggle-active
func (h *CourseHandler) ToggleActive(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	course, err := h.courses.ToggleActive(c.Request.Context(), middleware.Actor(c), id)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, newCourseView(c, h.urls, course))
}
