package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/albecabrera/ejercicios-didActicos-espaNol/internal/models"
)

// AdminRepository defines data operations for dashboard operators.
type AdminRepository interface {
	Create(ctx context.Context, admin *models.Admin) error
	GetByUsername(ctx context.Context, username string) (models.Admin, error)
	CreateSession(ctx context.Context, session *models.AdminSession) error
	GetActiveSession(ctx context.Context, token string, now time.Time) (models.AdminSession, error)
	DeleteSession(ctx context.Context, token string) error
	DeleteExpiredSessions(ctx context.Context, now time.Time) error
}

type adminRepository struct {
	db *gorm.DB
}

// NewAdminRepository constructs the admin repository.
func NewAdminRepository(db *gorm.DB) AdminRepository {
	return &adminRepository{db: db}
}

func (r *adminRepository) Create(ctx context.Context, admin *models.Admin) error {
	return r.db.WithContext(ctx).Create(admin).Error
}

func (r *adminRepository) GetByUsername(ctx context.Context, username string) (models.Admin, error) {
	var admin models.Admin
	if err := r.db.WithContext(ctx).
		Where("username = ?", username).
		First(&admin).Error; err != nil {
		return models.Admin{}, err
	}
	return admin, nil
}

func (r *adminRepository) CreateSession(ctx context.Context, session *models.AdminSession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *adminRepository) GetActiveSession(ctx context.Context, token string, now time.Time) (models.AdminSession, error) {
	var session models.AdminSession
	if err := r.db.WithContext(ctx).
		Preload("Admin").
		Where("token = ? AND expires_at > ?", token, now).
		First(&session).Error; err != nil {
		return models.AdminSession{}, err
	}
	return session, nil
}

func (r *adminRepository) DeleteSession(ctx context.Context, token string) error {
	return r.db.WithContext(ctx).
		Where("token = ?", token).
		Delete(&models.AdminSession{}).Error
}

func (r *adminRepository) DeleteExpiredSessions(ctx context.Context, now time.Time) error {
	return r.db.WithContext(ctx).
		Where("expires_at < ?", now).
		Delete(&models.AdminSession{}).Error
}
