package handler

import (
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gsmp/mentorship-backend/internal/model"
)

// MediaPrefix is the route stored media is served under.
const MediaPrefix = "/media"

// MediaURLs turns stored relative paths into absolute URLs.
type MediaURLs struct {
	// BaseURL overrides the request scheme and host when set.
	BaseURL string
}

// Abs returns the absolute URL of a stored file, or nil for an empty path.
func (u MediaURLs) Abs(c *gin.Context, relPath string) *string {
	if relPath == "" {
		return nil
	}
	base := u.BaseURL
	if base == "" {
		base = requestOrigin(c)
	}
	escaped := (&url.URL{Path: relPath}).EscapedPath()
	s := strings.TrimRight(base, "/") + MediaPrefix + "/" + strings.TrimLeft(escaped, "/")
	return &s
}

func requestOrigin(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto == "http" || proto == "https" {
		scheme = proto
	}
	return scheme + "://" + c.Request.Host
}

// ─── Accounts ───────────────────────────────────────────────────────────

func publicAccount(c *gin.Context, urls MediaURLs, a *model.Account) model.PublicAccount {
	v := model.PublicAccount{
		ID:        a.ID,
		Email:     a.Email,
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Role:      a.Role(),
	}
	if m, ok := a.Mentor(); ok {
		v.MentorIntroVideo = urls.Abs(c, m.IntroVideoPath)
	}
	return v
}

func publicAccounts(c *gin.Context, urls MediaURLs, accounts []model.Account) []model.PublicAccount {
	out := make([]model.PublicAccount, 0, len(accounts))
	for i := range accounts {
		out = append(out, publicAccount(c, urls, &accounts[i]))
	}
	return out
}

// ─── Catalog ────────────────────────────────────────────────────────────

type courseView struct {
	ID           int                 `json:"id"`
	Title        string              `json:"title"`
	Slug         string              `json:"slug"`
	Description  string              `json:"description"`
	ThumbnailURL *string             `json:"thumbnail_url"`
	CreatedBy    int                 `json:"created_by"`
	Status       model.ContentStatus `json:"status"`
	IsActive     bool                `json:"is_active"`
	VideoCount   int                 `json:"video_count"`
	Duration     int                 `json:"duration"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

type courseDetailView struct {
	courseView
	Videos []videoView `json:"videos"`
}

type videoView struct {
	ID            int                 `json:"id"`
	Title         string              `json:"title"`
	Description   string              `json:"description"`
	VideoFileURL  *string             `json:"video_file_url"`
	ThumbnailURL  *string             `json:"thumbnail_url"`
	CourseID      *int                `json:"course"`
	CourseTitle   *string             `json:"course_title"`
	OrderInCourse int                 `json:"order_in_course"`
	UploadedBy    int                 `json:"uploaded_by"`
	UploadDate    time.Time           `json:"upload_date"`
	Status        model.ContentStatus `json:"status"`
	IsActive      bool                `json:"is_active"`
	Duration      int                 `json:"duration"`
}

func newCourseView(c *gin.Context, urls MediaURLs, course *model.Course) courseView {
	return courseView{
		ID:           course.ID,
		Title:        course.Title,
		Slug:         course.Slug,
		Description:  course.Description,
		ThumbnailURL: urls.Abs(c, course.ThumbnailPath),
		CreatedBy:    course.OwnerID,
		Status:       course.Status,
		IsActive:     course.Status == model.StatusActive,
		VideoCount:   course.VideoCount,
		Duration:     course.TotalDuration,
		CreatedAt:    course.CreatedAt,
		UpdatedAt:    course.UpdatedAt,
	}
}

func newCourseViews(c *gin.Context, urls MediaURLs, courses []model.Course) []courseView {
	out := make([]courseView, 0, len(courses))
	for i := range courses {
		out = append(out, newCourseView(c, urls, &courses[i]))
	}
	return out
}

func newVideoView(c *gin.Context, urls MediaURLs, v *model.Video) videoView {
	view := videoView{
		ID:            v.ID,
		Title:         v.Title,
		Description:   v.Description,
		VideoFileURL:  urls.Abs(c, v.FilePath),
		ThumbnailURL:  urls.Abs(c, v.ThumbnailPath),
		CourseID:      v.CourseID,
		OrderInCourse: v.OrderInCourse,
		UploadedBy:    v.UploaderID,
		UploadDate:    v.UploadedAt,
		Status:        v.Status,
		IsActive:      v.Status == model.StatusActive,
		Duration:      v.DurationSeconds,
	}
	if v.CourseID != nil && v.CourseTitle != "" {
		title := v.CourseTitle
		view.CourseTitle = &title
	}
	return view
}

func newVideoViews(c *gin.Context, urls MediaURLs, videos []model.Video) []videoView {
	out := make([]videoView, 0, len(videos))
	for i := range videos {
		out = append(out, newVideoView(c, urls, &videos[i]))
	}
	return out
}
