package dto

import (
	"time"

	"github.com/albecabrera/ejercicios-didActicos-espaNol/internal/models"
)

// RegisterRequest is the payload for creating a Code Lab account.
type RegisterRequest struct {
	Username          string `json:"username" validate:"required,min=3,max=50"`
	Email             string `json:"email" validate:"required,email"`
	Password          string `json:"password" validate:"required"`
	Role              string `json:"role" validate:"required,oneof=student teacher"`
	FullName          string `json:"full_name" validate:"required,max=120"`
	PreferredLanguage string `json:"preferred_language" validate:"omitempty,max=8"`
}

// LoginRequest carries the login identifier, which may be a username or an
// email address, matching the original wire field name.
type LoginRequest struct {
	Identifier string `json:"username" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

// RegisterResponse is returned after successful registration.
type RegisterResponse struct {
	UserID       uint   `json:"user_id"`
	Username     string `json:"username"`
	Role         string `json:"role"`
	SessionToken string `json:"session_token"`
}

// LoginResponse is returned after successful login.
type LoginResponse struct {
	UserID            uint   `json:"user_id"`
	Username          string `json:"username"`
	Email             string `json:"email"`
	Role              string `json:"role"`
	FullName          string `json:"full_name"`
	PreferredLanguage string `json:"preferred_language"`
	SessionToken      string `json:"session_token"`
}

// VerifyResponse identifies the session owner.
type VerifyResponse struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// StudentProfileStats summarises a student's submission history.
type StudentProfileStats struct {
	TotalSubmissions int64    `json:"total_submissions"`
	AvgPoints        *float64 `json:"avg_points"`
	TotalTime        int64    `json:"total_time"`
	TasksAttempted   int64    `json:"tasks_attempted"`
}

// TeacherProfileStats summarises a teacher's footprint.
type TeacherProfileStats struct {
	TotalTasks       int64 `json:"total_tasks"`
	TotalStudents    int64 `json:"total_students"`
	TotalSubmissions int64 `json:"total_submissions"`
}

// ProfileResponse is the full profile including role-dependent statistics.
type ProfileResponse struct {
	ID                uint        `json:"id"`
	Username          string      `json:"username"`
	Email             string      `json:"email"`
	Role              string      `json:"role"`
	FullName          string      `json:"full_name"`
	PreferredLanguage string      `json:"preferred_language"`
	CreatedAt         time.Time   `json:"created_at"`
	LastLogin         *time.Time  `json:"last_login"`
	Statistics        interface{} `json:"statistics,omitempty"`
}

// NewProfileResponse maps a user model to its profile representation.
func NewProfileResponse(user models.User) ProfileResponse {
	return ProfileResponse{
		ID:                user.ID,
		Username:          user.Username,
		Email:             user.Email,
		Role:              user.Role,
		FullName:          user.FullName,
		PreferredLanguage: user.PreferredLanguage,
		CreatedAt:         user.CreatedAt,
		LastLogin:         user.LastLogin,
	}
}
