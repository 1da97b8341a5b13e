package repository

import (
	"context"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/albecabrera/ejercicios-didActicos-espaNol/internal/models"
)

// CompletionRecord carries everything persisted when an exercise is completed.
type CompletionRecord struct {
	StudentID     uint
	ExerciseID    string
	ExerciseTitle string
	Payload       datatypes.JSON
	Score         *int
	Level         *string
	TimeElapsed   *int
}

// ResultFilter narrows the dashboard result listing. All filters are
// optional and composed with AND.
type ResultFilter struct {
	ExerciseID  string
	StudentName string
	Level       string
	From        *time.Time
	To          *time.Time
	Limit       int
}

// ExerciseOption is a distinct (id, title) pair used to populate the
// dashboard filter dropdown.
type ExerciseOption struct {
	ExerciseID    string
	ExerciseTitle string
}

// ExerciseRepository defines data operations for exercise tracking.
type ExerciseRepository interface {
	CreateStart(ctx context.Context, start *models.ExerciseStart) error
	Complete(ctx context.Context, record CompletionRecord) (models.ExerciseResult, error)
	ListStarts(ctx context.Context, studentID uint, exerciseID string) ([]models.ExerciseStart, error)
	ListResults(ctx context.Context, filter ResultFilter) ([]models.ExerciseResult, error)
	ListStatistics(ctx context.Context) ([]models.ExerciseStatistics, error)
	ListExerciseOptions(ctx context.Context) ([]ExerciseOption, error)
	ListLevels(ctx context.Context) ([]string, error)
	CountStudents(ctx context.Context) (int64, error)
	CountResults(ctx context.Context) (int64, error)
	CountAbandoned(ctx context.Context) (int64, error)
	AverageScore(ctx context.Context) (*float64, error)
}

type exerciseRepository struct {
	db *gorm.DB
}

// NewExerciseRepository instantiates the repository.
func NewExerciseRepository(db *gorm.DB) ExerciseRepository {
	return &exerciseRepository{db: db}
}

func (r *exerciseRepository) CreateStart(ctx context.Context, start *models.ExerciseStart) error {
	return r.db.WithContext(ctx).Create(start).Error
}

// Complete performs the three-step completion atomically: stale incomplete
// starts for the (student, exercise) pair are removed, one result row is
// appended, and one completed start row is written. Any failure rolls the
// whole operation back.
func (r *exerciseRepository) Complete(ctx context.Context, record CompletionRecord) (models.ExerciseResult, error) {
	result := models.ExerciseResult{
		StudentID:     record.StudentID,
		ExerciseID:    record.ExerciseID,
		ExerciseTitle: record.ExerciseTitle,
		Payload:       record.Payload,
		Score:         record.Score,
		Level:         record.Level,
		TimeElapsed:   record.TimeElapsed,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("student_id = ? AND exercise_id = ? AND completed = ?", record.StudentID, record.ExerciseID, false).
			Delete(&models.ExerciseStart{}).Error; err != nil {
			return err
		}

		if err := tx.Create(&result).Error; err != nil {
			return err
		}

		completedStart := models.ExerciseStart{
			StudentID:     record.StudentID,
			ExerciseID:    record.ExerciseID,
			ExerciseTitle: record.ExerciseTitle,
			Completed:     true,
		}
		return tx.Create(&completedStart).Error
	})
	if err != nil {
		return models.ExerciseResult{}, err
	}

	return result, nil
}

func (r *exerciseRepository) ListStarts(ctx context.Context, studentID uint, exerciseID string) ([]models.ExerciseStart, error) {
	query := r.db.WithContext(ctx).Where("student_id = ?", studentID)
	if exerciseID != "" {
		query = query.Where("exercise_id = ?", exerciseID)
	}

	var starts []models.ExerciseStart
	if err := query.Order("started_at DESC").Find(&starts).Error; err != nil {
		return nil, err
	}
	return starts, nil
}

func (r *exerciseRepository) ListResults(ctx context.Context, filter ResultFilter) ([]models.ExerciseResult, error) {
	query := r.db.WithContext(ctx).Model(&models.ExerciseResult{}).Preload("Student")

	if filter.ExerciseID != "" {
		query = query.Where("exercise_results.exercise_id = ?", filter.ExerciseID)
	}
	if filter.StudentName != "" {
		query = query.
			Joins("JOIN students ON students.id = exercise_results.student_id").
			Where("students.full_name LIKE ? OR students.first_name LIKE ?",
				"%"+filter.StudentName+"%", "%"+filter.StudentName+"%")
	}
	if filter.Level != "" {
		query = query.Where("exercise_results.level = ?", filter.Level)
	}
	if filter.From != nil {
		query = query.Where("exercise_results.completed_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("exercise_results.completed_at < ?", *filter.To)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var results []models.ExerciseResult
	if err := query.Order("exercise_results.completed_at DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *exerciseRepository) ListStatistics(ctx context.Context) ([]models.ExerciseStatistics, error) {
	var stats []models.ExerciseStatistics
	if err := r.db.WithContext(ctx).
		Order("total_completed DESC").
		Find(&stats).Error; err != nil {
		return nil, err
	}
	return stats, nil
}

func (r *exerciseRepository) ListExerciseOptions(ctx context.Context) ([]ExerciseOption, error) {
	var options []ExerciseOption
	if err := r.db.WithContext(ctx).Model(&models.ExerciseResult{}).
		Distinct("exercise_id", "exercise_title").
		Order("exercise_title").
		Scan(&options).Error; err != nil {
		return nil, err
	}
	return options, nil
}

func (r *exerciseRepository) ListLevels(ctx context.Context) ([]string, error) {
	var levels []string
	if err := r.db.WithContext(ctx).Model(&models.ExerciseResult{}).
		Distinct().
		Where("level IS NOT NULL").
		Order("level").
		Pluck("level", &levels).Error; err != nil {
		return nil, err
	}
	return levels, nil
}

func (r *exerciseRepository) CountStudents(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Student{}).Count(&count).Error
	return count, err
}

func (r *exerciseRepository) CountResults(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ExerciseResult{}).Count(&count).Error
	return count, err
}

func (r *exerciseRepository) CountAbandoned(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ExerciseStart{}).
		Where("completed = ?", false).
		Count(&count).Error
	return count, err
}

func (r *exerciseRepository) AverageScore(ctx context.Context) (*float64, error) {
	var avg *float64
	err := r.db.WithContext(ctx).Model(&models.ExerciseResult{}).
		Select("AVG(score)").
		Scan(&avg).Error
	return avg, err
}
