package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/albecabrera/ejercicios-didActicos-espaNol/internal/models"
)

// StudentRepository defines data operations for Ejercicios students.
type StudentRepository interface {
	Create(ctx context.Context, student *models.Student) error
	GetByFullName(ctx context.Context, fullName string) (models.Student, error)
	GetOverview(ctx context.Context, id uint) (models.StudentOverview, error)
}

type studentRepository struct {
	db *gorm.DB
}

// NewStudentRepository instantiates the repository.
func NewStudentRepository(db *gorm.DB) StudentRepository {
	return &studentRepository{db: db}
}

func (r *studentRepository) Create(ctx context.Context, student *models.Student) error {
	return r.db.WithContext(ctx).Create(student).Error
}

// GetByFullName looks up a student by exact full-name match. Name equality is
// the only identity key in this system.
func (r *studentRepository) GetByFullName(ctx context.Context, fullName string) (models.Student, error) {
	var student models.Student
	if err := r.db.WithContext(ctx).
		Where("full_name = ?", fullName).
		First(&student).Error; err != nil {
		return models.Student{}, err
	}
	return student, nil
}

func (r *studentRepository) GetOverview(ctx context.Context, id uint) (models.StudentOverview, error) {
	var overview models.StudentOverview
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&overview).Error; err != nil {
		return models.StudentOverview{}, err
	}
	return overview, nil
}
