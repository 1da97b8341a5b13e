package models

import "time"

// Session is an opaque bearer token backed by a database row. A session is
// valid solely by existing and not being past its expiry; revocation is row
// deletion.
type Session struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Token     string    `gorm:"size:64;uniqueIndex;not null" json:"-"`
	IPAddress string    `gorm:"size:45" json:"ip_address"`
	UserAgent string    `gorm:"size:255" json:"user_agent"`
	ExpiresAt time.Time `gorm:"not null;index" json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// Expired reports whether the session is past its expiry at the given time.
func (s Session) Expired(reference time.Time) bool {
	return !reference.Before(s.ExpiresAt)
}
