package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/albecabrera/ejercicios-didActicos-espaNol/internal/models"
)

// SessionRepository persists opaque bearer sessions.
type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	GetActiveByToken(ctx context.Context, token string, now time.Time) (models.Session, error)
	DeleteByToken(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context, now time.Time) error
}

type sessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository constructs the session repository.
func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(ctx context.Context, session *models.Session) error {
	return r.db.WithContext(ctx).Create(session).Error
}

// GetActiveByToken resolves a token to its session and owning user, ignoring
// rows that are already past expiry even if not yet swept.
func (r *sessionRepository) GetActiveByToken(ctx context.Context, token string, now time.Time) (models.Session, error) {
	var session models.Session
	if err := r.db.WithContext(ctx).
		Preload("User").
		Where("token = ? AND expires_at > ?", token, now).
		First(&session).Error; err != nil {
		return models.Session{}, err
	}
	return session, nil
}

func (r *sessionRepository) DeleteByToken(ctx context.Context, token string) error {
	return r.db.WithContext(ctx).
		Where("token = ?", token).
		Delete(&models.Session{}).Error
}

func (r *sessionRepository) DeleteExpired(ctx context.Context, now time.Time) error {
	return r.db.WithContext(ctx).
		Where("expires_at < ?", now).
		Delete(&models.Session{}).Error
}
