package dto

import (
	"time"

	"github.com/albecabrera/ejercicios-didActicos-espaNol/internal/models"
)

// TaskCreateRequest is the payload for creating a task.
type TaskCreateRequest struct {
	Title               string   `json:"title" validate:"required,max=255"`
	Description         string   `json:"description"`
	ProgrammingLanguage string   `json:"programming_language" validate:"required,max=50"`
	TaskContent         string   `json:"task_content" validate:"required"`
	TaskType            string   `json:"task_type" validate:"omitempty,max=32"`
	ExpectedOutput      string   `json:"expected_output"`
	Hints               []string `json:"hints"`
	MaxPoints           *int     `json:"max_points" validate:"omitempty,gt=0"`
	TimeLimit           *int     `json:"time_limit" validate:"omitempty,gt=0"`
	Difficulty          string   `json:"difficulty" validate:"omitempty,max=32"`
}

// TaskUpdateRequest is a typed partial update: only non-nil fields are
// written, validated against the update allow-list.
type TaskUpdateRequest struct {
	Title               *string   `json:"title" validate:"omitempty,max=255"`
	Description         *string   `json:"description"`
	ProgrammingLanguage *string   `json:"programming_language" validate:"omitempty,max=50"`
	TaskContent         *string   `json:"task_content"`
	TaskType            *string   `json:"task_type" validate:"omitempty,max=32"`
	ExpectedOutput      *string   `json:"expected_output"`
	Hints               *[]string `json:"hints"`
	MaxPoints           *int      `json:"max_points" validate:"omitempty,gt=0"`
	TimeLimit           *int      `json:"time_limit" validate:"omitempty,gt=0"`
	Difficulty          *string   `json:"difficulty" validate:"omitempty,max=32"`
	IsActive            *bool     `json:"is_active"`
}

// AssignRequest assigns a task to a list of students with an optional shared
// deadline.
type AssignRequest struct {
	StudentIDs []uint     `json:"student_ids" validate:"required,min=1"`
	Deadline   *time.Time `json:"deadline"`
}

// TaskResponse is the teacher-facing representation of a task.
type TaskResponse struct {
	ID                  uint      `json:"id"`
	TeacherID           uint      `json:"teacher_id"`
	Title               string    `json:"title"`
	Description         string    `json:"description"`
	ProgrammingLanguage string    `json:"programming_language"`
	TaskContent         string    `json:"task_content"`
	TaskType            string    `json:"task_type"`
	ExpectedOutput      string    `json:"expected_output"`
	Hints               []string  `json:"hints"`
	MaxPoints           int       `json:"max_points"`
	TimeLimit           *int      `json:"time_limit"`
	Difficulty          string    `json:"difficulty"`
	ShareCode           string    `json:"share_code"`
	IsActive            bool      `json:"is_active"`
	CreatedAt           time.Time `json:"created_at"`
	AssignedStudents    int64     `json:"assigned_students"`
	TotalSubmissions    int64     `json:"total_submissions"`
}

// StudentTaskResponse is the assignment-scoped view a student receives.
type StudentTaskResponse struct {
	ID                  uint       `json:"id"`
	Title               string     `json:"title"`
	Description         string     `json:"description"`
	ProgrammingLanguage string     `json:"programming_language"`
	TaskContent         string     `json:"task_content"`
	TaskType            string     `json:"task_type"`
	Hints               []string   `json:"hints"`
	MaxPoints           int        `json:"max_points"`
	TimeLimit           *int       `json:"time_limit"`
	Difficulty          string     `json:"difficulty"`
	Deadline            *time.Time `json:"deadline"`
	AssignedAt          time.Time  `json:"assigned_at"`
	MySubmissions       int64      `json:"my_submissions"`
	MyBestScore         *int       `json:"my_best_score"`
}

// StudentTaskDetailResponse adds the student's own submission history.
type StudentTaskDetailResponse struct {
	StudentTaskResponse
	SubmissionHistory []SubmissionResponse `json:"my_submission_history"`
}

// SharedTaskResponse is the public summary returned for a share-code lookup.
type SharedTaskResponse struct {
	ID                  uint   `json:"id"`
	Title               string `json:"title"`
	Description         string `json:"description"`
	ProgrammingLanguage string `json:"programming_language"`
	Difficulty          string `json:"difficulty"`
	MaxPoints           int    `json:"max_points"`
	TimeLimit           *int   `json:"time_limit"`
}

// TaskCreatedResponse is returned after creating a task.
type TaskCreatedResponse struct {
	TaskID    uint   `json:"task_id"`
	ShareCode string `json:"share_code"`
}

// AssignResponse reports how many students were actually assigned; ids that
// did not resolve to students are skipped silently.
type AssignResponse struct {
	AssignedCount int `json:"assigned_count"`
}

// NewTaskResponse maps a task model plus rollup counters.
func NewTaskResponse(task models.Task, assignedStudents, totalSubmissions int64) TaskResponse {
	return TaskResponse{
		ID:                  task.ID,
		TeacherID:           task.TeacherID,
		Title:               task.Title,
		Description:         task.Description,
		ProgrammingLanguage: task.ProgrammingLanguage,
		TaskContent:         task.TaskContent,
		TaskType:            task.TaskType,
		ExpectedOutput:      task.ExpectedOutput,
		Hints:               task.HintsSlice(),
		MaxPoints:           task.MaxPoints,
		TimeLimit:           task.TimeLimit,
		Difficulty:          task.Difficulty,
		ShareCode:           task.ShareCode,
		IsActive:            task.IsActive,
		CreatedAt:           task.CreatedAt,
		AssignedStudents:    assignedStudents,
		TotalSubmissions:    totalSubmissions,
	}
}

// NewSharedTaskResponse maps a task to its public share-code summary.
func NewSharedTaskResponse(task models.Task) SharedTaskResponse {
	return SharedTaskResponse{
		ID:                  task.ID,
		Title:               task.Title,
		Description:         task.Description,
		ProgrammingLanguage: task.ProgrammingLanguage,
		Difficulty:          task.Difficulty,
		MaxPoints:           task.MaxPoints,
		TimeLimit:           task.TimeLimit,
	}
}
