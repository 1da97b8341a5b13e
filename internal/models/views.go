package models

import "time"

// ExerciseStatistics maps the read-only exercise_statistics view, one row
// per completed exercise with score and timing rollups.
type ExerciseStatistics struct {
	ExerciseID     string   `json:"exercise_id"`
	ExerciseTitle  string   `json:"exercise_title"`
	TotalStudents  int64    `json:"total_students"`
	TotalCompleted int64    `json:"total_completed"`
	AvgScore       *float64 `json:"avg_score"`
	BestScore      *int     `json:"best_score"`
	WorstScore     *int     `json:"worst_score"`
	AvgTime        *float64 `json:"avg_time"`
}

// TableName points GORM at the SQL view instead of a table.
func (ExerciseStatistics) TableName() string {
	return "exercise_statistics"
}

// StudentOverview maps the read-only student_overview view, one row per
// student with completion and score rollups.
type StudentOverview struct {
	ID                 uint      `json:"id"`
	FullName           string    `json:"full_name"`
	FirstName          string    `json:"first_name"`
	RegisteredAt       time.Time `json:"registered_at"`
	ExercisesCompleted int64     `json:"exercises_completed"`
	ExercisesStarted   int64     `json:"exercises_started"`
	AvgScore           float64   `json:"avg_score"`
}

// TableName points GORM at the SQL view instead of a table.
func (StudentOverview) TableName() string {
	return "student_overview"
}
