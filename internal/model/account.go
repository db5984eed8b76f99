package model

import (
	"strings"
	"time"
)

// Role identifies which profile an account carries.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleMentor  Role = "mentor"
	RoleStudent Role = "student"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleMentor, RoleStudent:
		return true
	}
	return false
}

// Profile is the role-specific part of an account. The set of
// implementations is closed: AdminProfile, MentorProfile, StudentProfile.
type Profile interface {
	Role() Role
	sealed()
}

// AdminProfile carries no extra fields.
type AdminProfile struct{}

func (*AdminProfile) Role() Role { return RoleAdmin }
func (*AdminProfile) sealed()    {}

// MentorProfile holds the mentor application.
type MentorProfile struct {
	DOB                      *time.Time
	IDNumber                 string
	Bio                      string
	JobTitle                 string
	InstitutionalAffiliation string
	Nationality              string
	City                     string
	IntroVideoPath           string
	// AppliedAt is nil for placeholder accounts created by send-otp.
	AppliedAt *time.Time
}

func (*MentorProfile) Role() Role { return RoleMentor }
func (*MentorProfile) sealed()    {}

// Placeholder reports whether the mentor never submitted an application.
func (m *MentorProfile) Placeholder() bool { return m.AppliedAt == nil }

// StudentProfile holds imported student data and the forced-reset lifecycle.
type StudentProfile struct {
	IDNumber       string
	DOB            *time.Time
	Nationality    string
	City           string
	IsFirstLogin   bool
	PasswordExpiry *time.Time
}

func (*StudentProfile) Role() Role { return RoleStudent }
func (*StudentProfile) sealed()    {}

// PasswordExpired reports whether the expiry is set and strictly before now.
func (s *StudentProfile) PasswordExpired(now time.Time) bool {
	return s.PasswordExpiry != nil && now.After(*s.PasswordExpiry)
}

// Account is a platform user. Its role is fixed by Profile.
type Account struct {
	ID           int
	Email        string
	PasswordHash string
	IsActive     bool
	FirstName    string
	LastName     string
	Title        string
	Phone        string
	EmailOTP     *string
	OTPCreatedAt *time.Time
	Profile      Profile
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Role returns the role implied by the profile.
func (a *Account) Role() Role {
	if a.Profile == nil {
		return ""
	}
	return a.Profile.Role()
}

// Mentor returns the mentor profile when the account is a mentor.
func (a *Account) Mentor() (*MentorProfile, bool) {
	p, ok := a.Profile.(*MentorProfile)
	return p, ok
}

// Student returns the student profile when the account is a student.
func (a *Account) Student() (*StudentProfile, bool) {
	p, ok := a.Profile.(*StudentProfile)
	return p, ok
}

// FullName joins first and last name.
func (a *Account) FullName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

// NormalizeEmail trims and lower-cases an address. Every lookup goes through it.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NewProfile returns an empty profile for role.
func NewProfile(role Role) Profile {
	switch role {
	case RoleAdmin:
		return &AdminProfile{}
	case RoleMentor:
		return &MentorProfile{}
	case RoleStudent:
		return &StudentProfile{}
	}
	return nil
}

// ─── Views ──────────────────────────────────────────────────────────────

// PublicAccount is the profile shape returned by listing endpoints.
type PublicAccount struct {
	ID               int     `json:"id"`
	Email            string  `json:"email"`
	FirstName        string  `json:"first_name"`
	LastName         string  `json:"last_name"`
	Role             Role    `json:"role"`
	MentorIntroVideo *string `json:"mentor_intro_video"`
}

// AccountSnapshot is the profile snapshot returned with a login.
type AccountSnapshot struct {
	ID                       int    `json:"id"`
	Email                    string `json:"email"`
	FullName                 string `json:"full_name"`
	Role                     Role   `json:"role"`
	FirstName                string `json:"first_name"`
	LastName                 string `json:"last_name"`
	Title                    string `json:"title"`
	Phone                    string `json:"phone"`
	Bio                      string `json:"bio"`
	JobTitle                 string `json:"job_title"`
	InstitutionalAffiliation string `json:"institutional_affiliation"`
	Nationality              string `json:"nationality"`
	City                     string `json:"city"`
}

// Snapshot flattens the account and its profile.
func (a *Account) Snapshot() AccountSnapshot {
	s := AccountSnapshot{
		ID:        a.ID,
		Email:     a.Email,
		FullName:  a.FullName(),
		Role:      a.Role(),
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Title:     a.Title,
		Phone:     a.Phone,
	}
	switch p := a.Profile.(type) {
	case *MentorProfile:
		s.Bio = p.Bio
		s.JobTitle = p.JobTitle
		s.InstitutionalAffiliation = p.InstitutionalAffiliation
		s.Nationality = p.Nationality
		s.City = p.City
	case *StudentProfile:
		s.Nationality = p.Nationality
		s.City = p.City
	}
	return s
}

// ─── Requests ───────────────────────────────────────────────────────────

// LoginRequest is the payload for role-aware login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,max=128"`
}

// PasswordResetRequest is the payload for setting a new password.
type PasswordResetRequest struct {
	Email           string `json:"email" binding:"required,email,max=255"`
	NewPassword     string `json:"new_password" binding:"required,min=8,max=128"`
	ConfirmPassword string `json:"confirm_password" binding:"required,max=128"`
}

// RefreshRequest carries a refresh token for rotation or logout.
type RefreshRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

// MentorRegistrationRequest is the multipart form of a mentor application.
// The intro video travels as the mentor_intro_video file part.
type MentorRegistrationRequest struct {
	Email                    string `form:"email" binding:"required,email,max=255"`
	FirstName                string `form:"first_name" binding:"required,max=255"`
	LastName                 string `form:"last_name" binding:"required,max=255"`
	Title                    string `form:"title" binding:"max=255"`
	DOB                      string `form:"dob" binding:"omitempty,datetime=2006-01-02"`
	IDNumber                 string `form:"id_number" binding:"max=100"`
	Phone                    string `form:"phone" binding:"max=15"`
	Bio                      string `form:"bio" binding:"max=500"`
	JobTitle                 string `form:"job_title" binding:"max=100"`
	InstitutionalAffiliation string `form:"institutional_affiliation" binding:"max=100"`
	Nationality              string `form:"nationality" binding:"max=100"`
	City                     string `form:"city" binding:"max=100"`
}
