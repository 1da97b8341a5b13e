package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/albecabrera/ejercicios-didActicos-espaNol/internal/models"
)

// StudentTaskStats carries per-task attempt rollups for one student.
type StudentTaskStats struct {
	TaskID    uint
	Attempts  int64
	BestScore int
}

// SubmissionRepository defines data operations for submissions.
type SubmissionRepository interface {
	Create(ctx context.Context, submission *models.Submission) error
	CountByTaskAndStudent(ctx context.Context, taskID, studentID uint) (int64, error)
	ListByStudent(ctx context.Context, studentID uint) ([]models.Submission, error)
	ListByTaskAndStudent(ctx context.Context, taskID, studentID uint) ([]models.Submission, error)
	ListByTask(ctx context.Context, taskID uint) ([]models.Submission, error)
	ListByTeacher(ctx context.Context, teacherID uint) ([]models.Submission, error)
	ListByTeacherAndStudent(ctx context.Context, teacherID, studentID uint) ([]models.Submission, error)
	StatsByStudent(ctx context.Context, studentID uint) (map[uint]StudentTaskStats, error)
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository instantiates the repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

func (r *submissionRepository) CountByTaskAndStudent(ctx context.Context, taskID, studentID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Submission{}).
		Where("task_id = ? AND student_id = ?", taskID, studentID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *submissionRepository) ListByStudent(ctx context.Context, studentID uint) ([]models.Submission, error) {
	var submissions []models.Submission
	if err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("submitted_at DESC").
		Find(&submissions).Error; err != nil {
		return nil, err
	}
	return submissions, nil
}

func (r *submissionRepository) ListByTaskAndStudent(ctx context.Context, taskID, studentID uint) ([]models.Submission, error) {
	var submissions []models.Submission
	if err := r.db.WithContext(ctx).
		Where("task_id = ? AND student_id = ?", taskID, studentID).
		Order("submitted_at DESC").
		Find(&submissions).Error; err != nil {
		return nil, err
	}
	return submissions, nil
}

func (r *submissionRepository) ListByTask(ctx context.Context, taskID uint) ([]models.Submission, error) {
	var submissions []models.Submission
	if err := r.db.WithContext(ctx).
		Preload("Student").
		Where("task_id = ?", taskID).
		Order("submitted_at DESC").
		Find(&submissions).Error; err != nil {
		return nil, err
	}
	return submissions, nil
}

// ListByTeacher returns all submissions across the teacher's tasks, newest
// first, with task and student identity loaded for reporting.
func (r *submissionRepository) ListByTeacher(ctx context.Context, teacherID uint) ([]models.Submission, error) {
	var submissions []models.Submission
	if err := r.db.WithContext(ctx).
		Preload("Task").
		Preload("Student").
		Joins("JOIN tasks ON tasks.id = submissions.task_id").
		Where("tasks.teacher_id = ?", teacherID).
		Order("submissions.submitted_at DESC").
		Find(&submissions).Error; err != nil {
		return nil, err
	}
	return submissions, nil
}

func (r *submissionRepository) ListByTeacherAndStudent(ctx context.Context, teacherID, studentID uint) ([]models.Submission, error) {
	var submissions []models.Submission
	if err := r.db.WithContext(ctx).
		Preload("Task").
		Joins("JOIN tasks ON tasks.id = submissions.task_id").
		Where("tasks.teacher_id = ? AND submissions.student_id = ?", teacherID, studentID).
		Order("submissions.submitted_at DESC").
		Find(&submissions).Error; err != nil {
		return nil, err
	}
	return submissions, nil
}

func (r *submissionRepository) StatsByStudent(ctx context.Context, studentID uint) (map[uint]StudentTaskStats, error) {
	var rows []struct {
		TaskID    uint
		Attempts  int64
		BestScore int
	}
	if err := r.db.WithContext(ctx).Model(&models.Submission{}).
		Select("task_id, COUNT(*) AS attempts, MAX(points_earned) AS best_score").
		Where("student_id = ?", studentID).
		Group("task_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	stats := make(map[uint]StudentTaskStats, len(rows))
	for _, row := range rows {
		stats[row.TaskID] = StudentTaskStats{
			TaskID:    row.TaskID,
			Attempts:  row.Attempts,
			BestScore: row.BestScore,
		}
	}
	return stats, nil
}
