package models

import "time"

// Submission statuses.
const (
	SubmissionStatusSubmitted = "submitted"
	SubmissionStatusReviewed  = "reviewed"
)

// Submission is one immutable attempt a student made on a task. Prior
// attempts are never overwritten; each submit appends a new row.
type Submission struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	TaskID          uint      `gorm:"not null;index" json:"task_id"`
	StudentID       uint      `gorm:"not null;index" json:"student_id"`
	CodeSolution    string    `gorm:"type:text;not null" json:"code_solution"`
	ExecutionOutput string    `gorm:"type:text" json:"execution_output"`
	PointsEarned    int       `gorm:"not null;default:0" json:"points_earned"`
	MaxPoints       int       `gorm:"not null" json:"max_points"`
	TimeSpent       int       `gorm:"not null;default:0" json:"time_spent"`
	Attempt         int       `gorm:"not null;default:1" json:"attempt"`
	IsPassed        bool      `gorm:"not null;default:false" json:"is_passed"`
	Status          string    `gorm:"size:32;not null;default:submitted" json:"status"`
	Feedback        string    `gorm:"type:text" json:"feedback"`
	SubmittedAt     time.Time `gorm:"autoCreateTime;index" json:"submitted_at"`
	Task            Task      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Student         User      `gorm:"foreignKey:StudentID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}
