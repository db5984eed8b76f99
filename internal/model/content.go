package model

import "time"

// ContentStatus is the lifecycle state of a course or video.
type ContentStatus string

const (
	StatusActive      ContentStatus = "active"
	StatusDeactivated ContentStatus = "deactivated"
)

// Toggled returns the opposite state.
func (s ContentStatus) Toggled() ContentStatus {
	if s == StatusActive {
		return StatusDeactivated
	}
	return StatusActive
}

// Course groups ordered videos.
type Course struct {
	ID            int
	Title         string
	Slug          string
	Description   string
	ThumbnailPath string
	OwnerID       int
	Status        ContentStatus
	// VideoCount and TotalDuration cover active videos only.
	VideoCount    int
	TotalDuration int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Video is an uploaded lesson, optionally placed in a course.
type Video struct {
	ID              int
	Title           string
	Description     string
	FilePath        string
	ThumbnailPath   string
	CourseID        *int
	CourseTitle     string
	OrderInCourse   int
	UploaderID      int
	DurationSeconds int
	Status          ContentStatus
	UploadedAt      time.Time
}

// CompareCourseOrder orders videos inside a course: order_in_course
// ascending, then most recent upload first.
func CompareCourseOrder(a, b Video) int {
	if a.OrderInCourse != b.OrderInCourse {
		if a.OrderInCourse < b.OrderInCourse {
			return -1
		}
		return 1
	}
	return b.UploadedAt.Compare(a.UploadedAt)
}

// ─── Requests ───────────────────────────────────────────────────────────

// CourseRequest is the payload for creating or fully replacing a course.
type CourseRequest struct {
	Title       string         `json:"title" form:"title" binding:"required,min=1,max=255"`
	Description string         `json:"description" form:"description" binding:"max=10000"`
	Status      *ContentStatus `json:"status" form:"status" binding:"omitempty,oneof=active deactivated"`
}

// CoursePatch is a partial course update.
type CoursePatch struct {
	Title       *string        `json:"title" form:"title" binding:"omitempty,min=1,max=255"`
	Description *string        `json:"description" form:"description" binding:"omitempty,max=10000"`
	Status      *ContentStatus `json:"status" form:"status" binding:"omitempty,oneof=active deactivated"`
}

// VideoRequest is the metadata part of a video upload or full replace.
type VideoRequest struct {
	Title           string `form:"title" json:"title" binding:"required,min=1,max=255"`
	Description     string `form:"description" json:"description" binding:"max=10000"`
	CourseID        *int   `form:"course" json:"course" binding:"omitempty,min=1"`
	OrderInCourse   int    `form:"order_in_course" json:"order_in_course" binding:"min=0"`
	DurationSeconds int    `form:"duration" json:"duration" binding:"min=0"`
}

// VideoPatch is a partial video update.
type VideoPatch struct {
	Title           *string `json:"title" form:"title" binding:"omitempty,min=1,max=255"`
	Description     *string `json:"description" form:"description" binding:"omitempty,max=10000"`
	CourseID        *int    `json:"course" form:"course" binding:"omitempty,min=1"`
	OrderInCourse   *int    `json:"order_in_course" form:"order_in_course" binding:"omitempty,min=0"`
	DurationSeconds *int    `json:"duration" form:"duration" binding:"omitempty,min=0"`
}
