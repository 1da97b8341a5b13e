package models

import (
	"time"

	"gorm.io/datatypes"
)

// ExerciseStart records one attempt at an exercise. Incomplete starts for a
// (student, exercise) pair are superseded and removed when the exercise is
// completed; exactly one completed start row remains per completion.
type ExerciseStart struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	StudentID     uint      `gorm:"not null;index" json:"student_id"`
	ExerciseID    string    `gorm:"size:100;not null;index" json:"exercise_id"`
	ExerciseTitle string    `gorm:"size:255;not null" json:"exercise_title"`
	StartedAt     time.Time `gorm:"autoCreateTime;index" json:"started_at"`
	Completed     bool      `gorm:"not null;default:false;index" json:"completed"`
	Student       Student   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// ExerciseResult is an append-only completion record with the raw result
// payload the widget reported.
type ExerciseResult struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	StudentID     uint           `gorm:"not null;index" json:"student_id"`
	ExerciseID    string         `gorm:"size:100;not null;index" json:"exercise_id"`
	ExerciseTitle string         `gorm:"size:255;not null" json:"exercise_title"`
	Payload       datatypes.JSON `gorm:"type:json;not null" json:"payload"`
	Score         *int           `gorm:"index" json:"score"`
	Level         *string        `gorm:"size:50;index" json:"level"`
	TimeElapsed   *int           `json:"time_elapsed"`
	CompletedAt   time.Time      `gorm:"autoCreateTime;index" json:"completed_at"`
	Student       Student        `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}
