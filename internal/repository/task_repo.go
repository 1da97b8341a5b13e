package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/albecabrera/ejercicios-didActicos-espaNol/internal/models"
)

// TaskCounts carries per-task rollup counters for the teacher task list.
type TaskCounts struct {
	TaskID           uint
	AssignedStudents int64
	TotalSubmissions int64
}

// TaskRepository defines data operations for tasks.
type TaskRepository interface {
	Create(ctx context.Context, task *models.Task) error
	GetByID(ctx context.Context, id uint) (models.Task, error)
	GetByShareCode(ctx context.Context, code string) (models.Task, error)
	ShareCodeExists(ctx context.Context, code string) (bool, error)
	ListByTeacher(ctx context.Context, teacherID uint) ([]models.Task, error)
	CountsByTeacher(ctx context.Context, teacherID uint) (map[uint]TaskCounts, error)
	UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error
	DeleteCascade(ctx context.Context, id uint) error
}

type taskRepository struct {
	db *gorm.DB
}

// NewTaskRepository instantiates the repository.
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) Create(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

func (r *taskRepository) GetByID(ctx context.Context, id uint) (models.Task, error) {
	var task models.Task
	if err := r.db.WithContext(ctx).First(&task, id).Error; err != nil {
		return models.Task{}, err
	}
	return task, nil
}

// GetByShareCode resolves a share code, restricted to active tasks.
func (r *taskRepository) GetByShareCode(ctx context.Context, code string) (models.Task, error) {
	var task models.Task
	if err := r.db.WithContext(ctx).
		Where("share_code = ? AND is_active = ?", code, true).
		First(&task).Error; err != nil {
		return models.Task{}, err
	}
	return task, nil
}

func (r *taskRepository) ShareCodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Task{}).
		Where("share_code = ?", code).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *taskRepository) ListByTeacher(ctx context.Context, teacherID uint) ([]models.Task, error) {
	var tasks []models.Task
	if err := r.db.WithContext(ctx).
		Where("teacher_id = ?", teacherID).
		Order("created_at DESC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *taskRepository) CountsByTeacher(ctx context.Context, teacherID uint) (map[uint]TaskCounts, error) {
	counts := make(map[uint]TaskCounts)

	var assigned []struct {
		TaskID uint
		Count  int64
	}
	if err := r.db.WithContext(ctx).Model(&models.TaskAssignment{}).
		Select("task_assignments.task_id AS task_id, COUNT(DISTINCT task_assignments.student_id) AS count").
		Joins("JOIN tasks ON tasks.id = task_assignments.task_id").
		Where("tasks.teacher_id = ?", teacherID).
		Group("task_assignments.task_id").
		Scan(&assigned).Error; err != nil {
		return nil, err
	}
	for _, row := range assigned {
		entry := counts[row.TaskID]
		entry.TaskID = row.TaskID
		entry.AssignedStudents = row.Count
		counts[row.TaskID] = entry
	}

	var submitted []struct {
		TaskID uint
		Count  int64
	}
	if err := r.db.WithContext(ctx).Model(&models.Submission{}).
		Select("submissions.task_id AS task_id, COUNT(*) AS count").
		Joins("JOIN tasks ON tasks.id = submissions.task_id").
		Where("tasks.teacher_id = ?", teacherID).
		Group("submissions.task_id").
		Scan(&submitted).Error; err != nil {
		return nil, err
	}
	for _, row := range submitted {
		entry := counts[row.TaskID]
		entry.TaskID = row.TaskID
		entry.TotalSubmissions = row.Count
		counts[row.TaskID] = entry
	}

	return counts, nil
}

func (r *taskRepository) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&models.Task{}).
		Where("id = ?", id).
		Updates(fields).Error
}

// DeleteCascade removes the task and its dependent assignment and submission
// rows in one transaction; no orphan rows survive a delete.
func (r *taskRepository) DeleteCascade(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", id).Delete(&models.Submission{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id = ?", id).Delete(&models.TaskAssignment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Task{}, id).Error
	})
}
