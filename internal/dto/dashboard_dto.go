package dto

import (
	"time"

	"github.com/albecabrera/ejercicios-didActicos-espaNol/internal/models"
)

// AdminLoginRequest authenticates a dashboard administrator.
type AdminLoginRequest struct {
	Username string `form:"username" json:"username" validate:"required"`
	Password string `form:"password" json:"password" validate:"required"`
}

// AdminSessionResponse reports the authenticated administrator.
type AdminSessionResponse struct {
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expires_at"`
}

// DashboardFilter carries the query-string filters of the results table.
// Date fields use the YYYY-MM-DD form the date inputs produce.
type DashboardFilter struct {
	ExerciseID  string `query:"ejercicio"`
	StudentName string `query:"estudiante"`
	Level       string `query:"nivel"`
	DateFrom    string `query:"desde"`
	DateTo      string `query:"hasta"`
}

// DashboardSummary holds the headline counters at the top of the dashboard.
type DashboardSummary struct {
	TotalStudents    int64    `json:"total_students"`
	TotalCompletions int64    `json:"total_completions"`
	TotalAbandoned   int64    `json:"total_abandoned"`
	AvgScore         *float64 `json:"avg_score"`
}

// DashboardResultRow is one row of the filtered results table.
type DashboardResultRow struct {
	StudentName   string    `json:"student_name"`
	ExerciseID    string    `json:"exercise_id"`
	ExerciseTitle string    `json:"exercise_title"`
	Score         *int      `json:"score"`
	Level         *string   `json:"level"`
	TimeElapsed   *int      `json:"time_elapsed"`
	CompletedAt   time.Time `json:"completed_at"`
}

// ExerciseStatisticsRow is one row of the per-exercise statistics table.
type ExerciseStatisticsRow struct {
	ExerciseID     string   `json:"exercise_id"`
	ExerciseTitle  string   `json:"exercise_title"`
	TotalStudents  int64    `json:"total_students"`
	TotalCompleted int64    `json:"total_completed"`
	AvgScore       *float64 `json:"avg_score"`
	BestScore      *int     `json:"best_score"`
	WorstScore     *int     `json:"worst_score"`
	AvgTime        *float64 `json:"avg_time"`
}

// ExerciseOptionItem populates the exercise filter dropdown.
type ExerciseOptionItem struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// DashboardData is everything the dashboard template renders.
type DashboardData struct {
	Summary    DashboardSummary        `json:"summary"`
	Results    []DashboardResultRow    `json:"results"`
	Statistics []ExerciseStatisticsRow `json:"statistics"`
	Exercises  []ExerciseOptionItem    `json:"exercises"`
	Levels     []string                `json:"levels"`
	Filter     DashboardFilter         `json:"filter"`
}

// NewDashboardResultRow maps a result with its preloaded student.
func NewDashboardResultRow(result models.ExerciseResult) DashboardResultRow {
	return DashboardResultRow{
		StudentName:   result.Student.FullName,
		ExerciseID:    result.ExerciseID,
		ExerciseTitle: result.ExerciseTitle,
		Score:         result.Score,
		Level:         result.Level,
		TimeElapsed:   result.TimeElapsed,
		CompletedAt:   result.CompletedAt,
	}
}

// NewExerciseStatisticsRow maps a statistics view row.
func NewExerciseStatisticsRow(stat models.ExerciseStatistics) ExerciseStatisticsRow {
	return ExerciseStatisticsRow{
		ExerciseID:     stat.ExerciseID,
		ExerciseTitle:  stat.ExerciseTitle,
		TotalStudents:  stat.TotalStudents,
		TotalCompleted: stat.TotalCompleted,
		AvgScore:       stat.AvgScore,
		BestScore:      stat.BestScore,
		WorstScore:     stat.WorstScore,
		AvgTime:        stat.AvgTime,
	}
}
