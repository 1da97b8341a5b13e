package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/albecabrera/ejercicios-didActicos-espaNol/internal/models"
)

// AssignmentRepository defines data operations for task assignments.
type AssignmentRepository interface {
	Upsert(ctx context.Context, taskID, studentID uint, deadline *time.Time) error
	Get(ctx context.Context, taskID, studentID uint) (models.TaskAssignment, error)
	ListByStudent(ctx context.Context, studentID uint) ([]models.TaskAssignment, error)
	ListByTask(ctx context.Context, taskID uint) ([]models.TaskAssignment, error)
	CountDistinctStudentsByTeacher(ctx context.Context, teacherID uint) (int64, error)
}

type assignmentRepository struct {
	db *gorm.DB
}

// NewAssignmentRepository instantiates the repository.
func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &assignmentRepository{db: db}
}

// Upsert inserts the assignment or, when the (task, student) pair already
// exists, updates the deadline instead of duplicating the row.
func (r *assignmentRepository) Upsert(ctx context.Context, taskID, studentID uint, deadline *time.Time) error {
	assignment := models.TaskAssignment{
		TaskID:    taskID,
		StudentID: studentID,
		Deadline:  deadline,
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "task_id"}, {Name: "student_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"deadline": deadline}),
	}).Create(&assignment).Error
}

func (r *assignmentRepository) Get(ctx context.Context, taskID, studentID uint) (models.TaskAssignment, error) {
	var assignment models.TaskAssignment
	if err := r.db.WithContext(ctx).
		Where("task_id = ? AND student_id = ?", taskID, studentID).
		First(&assignment).Error; err != nil {
		return models.TaskAssignment{}, err
	}
	return assignment, nil
}

func (r *assignmentRepository) ListByStudent(ctx context.Context, studentID uint) ([]models.TaskAssignment, error) {
	var assignments []models.TaskAssignment
	if err := r.db.WithContext(ctx).
		Preload("Task").
		Where("student_id = ?", studentID).
		Find(&assignments).Error; err != nil {
		return nil, err
	}
	return assignments, nil
}

func (r *assignmentRepository) ListByTask(ctx context.Context, taskID uint) ([]models.TaskAssignment, error) {
	var assignments []models.TaskAssignment
	if err := r.db.WithContext(ctx).
		Preload("Student").
		Where("task_id = ?", taskID).
		Find(&assignments).Error; err != nil {
		return nil, err
	}
	return assignments, nil
}

func (r *assignmentRepository) CountDistinctStudentsByTeacher(ctx context.Context, teacherID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.TaskAssignment{}).
		Joins("JOIN tasks ON tasks.id = task_assignments.task_id").
		Where("tasks.teacher_id = ?", teacherID).
		Distinct("task_assignments.student_id").
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
