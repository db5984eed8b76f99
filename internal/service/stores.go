package service

import (
	"context"
	"time"

	"github.com/gsmp/mentorship-backend/internal/model"
	"github.com/gsmp/mentorship-backend/internal/repository"
)

// AccountStore is the persistence needed by account-facing services.
type AccountStore interface {
	GetByID(ctx context.Context, id int) (*model.Account, error)
	GetByEmail(ctx context.Context, email string) (*model.Account, error)
	ListActiveByRole(ctx context.Context, role model.Role) ([]model.Account, error)
	Create(ctx context.Context, a *model.Account) error
	SaveAuthState(ctx context.Context, a *model.Account) error
	SaveMentorApplication(ctx context.Context, a *model.Account) error
	SetActive(ctx context.Context, id int, active bool) error
}

// PairingStore persists mentor-student links.
type PairingStore interface {
	ListStudentsOf(ctx context.Context, mentorID int) ([]model.Account, error)
	ListMentorsOf(ctx context.Context, studentID int) ([]model.Account, error)
	Create(ctx context.Context, mentorID, studentID int) (*model.Pairing, error)
	Delete(ctx context.Context, mentorID, studentID int) error
}

// CourseStore persists courses.
type CourseStore interface {
	List(ctx context.Context, includeInactive bool) ([]model.Course, error)
	GetByID(ctx context.Context, id int) (*model.Course, error)
	Create(ctx context.Context, c *model.Course) error
	Update(ctx context.Context, c *model.Course) error
	SetStatus(ctx context.Context, id int, status model.ContentStatus) error
}

// VideoStore persists videos.
type VideoStore interface {
	List(ctx context.Context, f repository.VideoFilter) ([]model.Video, error)
	GetByID(ctx context.Context, id int) (*model.Video, error)
	Create(ctx context.Context, v *model.Video) error
	Update(ctx context.Context, v *model.Video) error
	SetStatus(ctx context.Context, id int, status model.ContentStatus) error
}

// SessionStore keeps refresh token ids and reset grants.
type SessionStore interface {
	StoreRefresh(ctx context.Context, jti string, accountID int, ttl time.Duration) error
	ConsumeRefresh(ctx context.Context, jti string) (int, error)
	RevokeAllRefresh(ctx context.Context, accountID int) error
	GrantPasswordReset(ctx context.Context, accountID int, ttl time.Duration) error
	ConsumePasswordResetGrant(ctx context.Context, accountID int) (bool, error)
}

// Notifier delivers account emails.
type Notifier interface {
	SendOTP(ctx context.Context, to, name, code string, purpose model.OTPPurpose) error
	SendMentorApplication(ctx context.Context, to, name string) error
	SendStudentWelcome(ctx context.Context, to, name, password string) error
}

// MessageBridge is the external chat platform.
type MessageBridge interface {
	AppendMessage(ctx context.Context, chatID string, msg model.ChatMessage) error
	CustomToken(ctx context.Context, uid string, claims map[string]interface{}) (string, error)
}
