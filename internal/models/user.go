package models

import "time"

// Roles a Code Lab account can hold.
const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
)

// User is a Code Lab account, either a student or a teacher.
type User struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	Username          string     `gorm:"size:50;uniqueIndex;not null" json:"username"`
	Email             string     `gorm:"size:120;uniqueIndex;not null" json:"email"`
	PasswordHash      string     `gorm:"size:255;not null" json:"-"`
	Role              string     `gorm:"size:16;not null" json:"role"`
	FullName          string     `gorm:"size:120;not null" json:"full_name"`
	PreferredLanguage string     `gorm:"size:8;not null;default:de" json:"preferred_language"`
	CreatedAt         time.Time  `json:"created_at"`
	LastLogin         *time.Time `json:"last_login"`
}

// IsTeacher reports whether the account holds the teacher role.
func (u User) IsTeacher() bool {
	return u.Role == RoleTeacher
}

// IsStudent reports whether the account holds the student role.
func (u User) IsStudent() bool {
	return u.Role == RoleStudent
}
