package dto

import (
	"encoding/json"
	"time"

	"github.com/albecabrera/ejercicios-didActicos-espaNol/internal/models"
)

// RegisterStudentRequest resolves or creates a student by display name.
type RegisterStudentRequest struct {
	FullName string `json:"full_name" validate:"required,max=255"`
}

// StudentResponse is the identity record returned to the widget.
type StudentResponse struct {
	ID        uint   `json:"id"`
	FullName  string `json:"full_name"`
	FirstName string `json:"first_name"`
}

// RegisterStudentResponse reports the resolved identity and whether a new
// record was created.
type RegisterStudentResponse struct {
	Student StudentResponse `json:"student"`
	New     bool            `json:"new"`
}

// StartExerciseRequest records the beginning of an attempt.
type StartExerciseRequest struct {
	StudentID     uint   `json:"student_id" validate:"required"`
	ExerciseID    string `json:"exercise_id" validate:"required,max=100"`
	ExerciseTitle string `json:"exercise_title" validate:"required,max=255"`
}

// StartExerciseResponse returns the created start row id.
type StartExerciseResponse struct {
	StartID uint `json:"start_id"`
}

// CompleteExerciseRequest records a completed exercise with its raw result
// payload.
type CompleteExerciseRequest struct {
	StudentID     uint            `json:"student_id" validate:"required"`
	ExerciseID    string          `json:"exercise_id" validate:"required,max=100"`
	ExerciseTitle string          `json:"exercise_title" validate:"required,max=255"`
	Result        json.RawMessage `json:"result" validate:"required"`
	Score         *int            `json:"score"`
	Level         *string         `json:"level" validate:"omitempty,max=50"`
	TimeElapsed   *int            `json:"time_elapsed" validate:"omitempty,gte=0"`
}

// CompleteExerciseResponse returns the appended result row id.
type CompleteExerciseResponse struct {
	ResultID uint `json:"result_id"`
}

// StudentOverviewResponse is the per-student rollup from the reporting view.
type StudentOverviewResponse struct {
	ID                 uint      `json:"id"`
	FullName           string    `json:"full_name"`
	FirstName          string    `json:"first_name"`
	RegisteredAt       time.Time `json:"registered_at"`
	ExercisesCompleted int64     `json:"exercises_completed"`
	ExercisesStarted   int64     `json:"exercises_started"`
	AvgScore           float64   `json:"avg_score"`
}

// NewStudentResponse maps a student model.
func NewStudentResponse(student models.Student) StudentResponse {
	return StudentResponse{
		ID:        student.ID,
		FullName:  student.FullName,
		FirstName: student.FirstName,
	}
}

// NewStudentOverviewResponse maps a student overview view row.
func NewStudentOverviewResponse(overview models.StudentOverview) StudentOverviewResponse {
	return StudentOverviewResponse{
		ID:                 overview.ID,
		FullName:           overview.FullName,
		FirstName:          overview.FirstName,
		RegisteredAt:       overview.RegisteredAt,
		ExercisesCompleted: overview.ExercisesCompleted,
		ExercisesStarted:   overview.ExercisesStarted,
		AvgScore:           overview.AvgScore,
	}
}
