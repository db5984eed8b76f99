package model

import "time"

// Pairing links one mentor with one student.
type Pairing struct {
	ID        int       `json:"id"`
	MentorID  int       `json:"mentor_id"`
	StudentID int       `json:"student_id"`
	CreatedAt time.Time `json:"created_at"`
}

// PairingRequest is the admin payload for creating or removing a pairing.
type PairingRequest struct {
	MentorID  int `json:"mentor_id" binding:"required,min=1"`
	StudentID int `json:"student_id" binding:"required,min=1"`
}
