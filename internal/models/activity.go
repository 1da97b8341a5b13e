package models

import (
	"time"

	"gorm.io/datatypes"
)

// Activity types recorded in the audit stream.
const (
	ActivityLogin       = "login"
	ActivityLoginFailed = "login_failed"
	ActivityLogout      = "logout"
	ActivityTaskView    = "task_view"
	ActivityTaskSubmit  = "task_submit"
)

// ActivityLog is an append-only event stream of user actions.
type ActivityLog struct {
	ID           uint              `gorm:"primaryKey" json:"id"`
	UserID       uint              `gorm:"not null;index" json:"user_id"`
	ActivityType string            `gorm:"size:50;not null" json:"activity_type"`
	TaskID       *uint             `json:"task_id"`
	Details      datatypes.JSONMap `gorm:"type:json" json:"details"`
	CreatedAt    time.Time         `json:"created_at"`
}
