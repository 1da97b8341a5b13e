package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/albecabrera/ejercicios-didActicos-espaNol/internal/models"
)

const exerciseStatisticsView = `
CREATE VIEW exercise_statistics AS
SELECT
    es.exercise_id,
    es.exercise_title,
    COUNT(DISTINCT r.student_id) AS total_students,
    COUNT(DISTINCT r.id) AS total_completed,
    AVG(r.score) AS avg_score,
    MAX(r.score) AS best_score,
    MIN(r.score) AS worst_score,
    AVG(r.time_elapsed) AS avg_time
FROM exercise_starts es
LEFT JOIN exercise_results r ON es.exercise_id = r.exercise_id
WHERE es.completed = true
GROUP BY es.exercise_id, es.exercise_title`

const studentOverviewView = `
CREATE VIEW student_overview AS
SELECT
    s.id,
    s.full_name,
    s.first_name,
    s.registered_at,
    COUNT(DISTINCT r.exercise_id) AS exercises_completed,
    COUNT(DISTINCT es.id) AS exercises_started,
    COALESCE(AVG(r.score), 0) AS avg_score
FROM students s
LEFT JOIN exercise_starts es ON s.id = es.student_id
LEFT JOIN exercise_results r ON s.id = r.student_id
GROUP BY s.id, s.full_name, s.first_name, s.registered_at`

// Migrate creates or updates the schema for both systems and (re)creates the
// two reporting views the Ejercicios dashboard reads from.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.Task{},
		&models.TaskAssignment{},
		&models.Submission{},
		&models.ActivityLog{},
		&models.Student{},
		&models.ExerciseStart{},
		&models.ExerciseResult{},
		&models.Admin{},
		&models.AdminSession{},
	); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	for name, statement := range map[string]string{
		"exercise_statistics": exerciseStatisticsView,
		"student_overview":    studentOverviewView,
	} {
		if err := db.Exec(fmt.Sprintf("DROP VIEW IF EXISTS %s", name)).Error; err != nil {
			return fmt.Errorf("failed to drop view %s: %w", name, err)
		}
		if err := db.Exec(statement).Error; err != nil {
			return fmt.Errorf("failed to create view %s: %w", name, err)
		}
	}

	return nil
}
