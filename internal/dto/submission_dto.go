package dto

import (
	"time"

	"github.com/albecabrera/ejercicios-didActicos-espaNol/internal/models"
)

// SubmissionCreateRequest is the payload a student submits for a task.
type SubmissionCreateRequest struct {
	TaskID          uint   `json:"task_id" validate:"required"`
	CodeSolution    string `json:"code_solution" validate:"required"`
	ExecutionOutput string `json:"execution_output"`
	TimeSpent       int    `json:"time_spent" validate:"omitempty,gte=0"`
}

// SubmissionResponse is one submission row as seen by its author.
type SubmissionResponse struct {
	ID              uint      `json:"id"`
	TaskID          uint      `json:"task_id"`
	CodeSolution    string    `json:"code_solution"`
	ExecutionOutput string    `json:"execution_output"`
	PointsEarned    int       `json:"points_earned"`
	MaxPoints       int       `json:"max_points"`
	TimeSpent       int       `json:"time_spent"`
	Attempt         int       `json:"attempt"`
	IsPassed        bool      `json:"is_passed"`
	Status          string    `json:"status"`
	Feedback        string    `json:"feedback"`
	SubmittedAt     time.Time `json:"submitted_at"`
}

// TeacherSubmissionResponse adds student identity for the teacher view.
type TeacherSubmissionResponse struct {
	SubmissionResponse
	StudentID uint   `json:"student_id"`
	Username  string `json:"username"`
	FullName  string `json:"full_name"`
}

// SubmissionResultResponse is returned right after grading a submission.
type SubmissionResultResponse struct {
	SubmissionID uint `json:"submission_id"`
	PointsEarned int  `json:"points_earned"`
	MaxPoints    int  `json:"max_points"`
	IsPassed     bool `json:"is_passed"`
	Attempt      int  `json:"attempt"`
	PastDeadline bool `json:"past_deadline"`
}

// NewSubmissionResponse maps a submission model.
func NewSubmissionResponse(submission models.Submission) SubmissionResponse {
	return SubmissionResponse{
		ID:              submission.ID,
		TaskID:          submission.TaskID,
		CodeSolution:    submission.CodeSolution,
		ExecutionOutput: submission.ExecutionOutput,
		PointsEarned:    submission.PointsEarned,
		MaxPoints:       submission.MaxPoints,
		TimeSpent:       submission.TimeSpent,
		Attempt:         submission.Attempt,
		IsPassed:        submission.IsPassed,
		Status:          submission.Status,
		Feedback:        submission.Feedback,
		SubmittedAt:     submission.SubmittedAt,
	}
}

// NewSubmissionResponseSlice maps a slice of submissions.
func NewSubmissionResponseSlice(submissions []models.Submission) []SubmissionResponse {
	responses := make([]SubmissionResponse, 0, len(submissions))
	for _, submission := range submissions {
		responses = append(responses, NewSubmissionResponse(submission))
	}
	return responses
}

// NewTeacherSubmissionResponse maps a submission with its student loaded.
func NewTeacherSubmissionResponse(submission models.Submission) TeacherSubmissionResponse {
	return TeacherSubmissionResponse{
		SubmissionResponse: NewSubmissionResponse(submission),
		StudentID:          submission.StudentID,
		Username:           submission.Student.Username,
		FullName:           submission.Student.FullName,
	}
}
