package models

import "time"

// TaskAssignment links a task to a student, optionally with a deadline.
// The (task, student) pair is unique; re-assigning updates the deadline.
type TaskAssignment struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	TaskID     uint       `gorm:"not null;uniqueIndex:idx_task_student" json:"task_id"`
	StudentID  uint       `gorm:"not null;uniqueIndex:idx_task_student" json:"student_id"`
	Deadline   *time.Time `json:"deadline"`
	AssignedAt time.Time  `gorm:"autoCreateTime" json:"assigned_at"`
	Task       Task       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Student    User       `gorm:"foreignKey:StudentID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// PastDeadline reports whether the deadline exists and lies before the
// reference time. Late submissions are flagged, never blocked.
func (a TaskAssignment) PastDeadline(reference time.Time) bool {
	return a.Deadline != nil && reference.After(*a.Deadline)
}
