package models

import "time"

// Student is an Ejercicios participant, keyed by exact full-name match.
// There is no secondary key; two students sharing a full name collapse into
// one record. This is a documented limitation of the identity model.
type Student struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	FullName     string    `gorm:"size:255;not null;index" json:"full_name"`
	FirstName    string    `gorm:"size:120;not null;index" json:"first_name"`
	RegisteredAt time.Time `gorm:"autoCreateTime" json:"registered_at"`
}
