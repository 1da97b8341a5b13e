package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/albecabrera/ejercicios-didActicos-espaNol/internal/dto"
	"github.com/albecabrera/ejercicios-didActicos-espaNol/internal/models"
	"github.com/albecabrera/ejercicios-didActicos-espaNol/internal/repository"
	"github.com/albecabrera/ejercicios-didActicos-espaNol/pkg/similarity"
)

// SubmissionService exposes submission use cases.
type SubmissionService interface {
	Submit(ctx context.Context, studentID uint, req dto.SubmissionCreateRequest) (dto.SubmissionResultResponse, error)
	ListForStudent(ctx context.Context, studentID, taskID uint) ([]dto.SubmissionResponse, error)
	ListForTeacher(ctx context.Context, teacherID, taskID uint) ([]dto.TeacherSubmissionResponse, error)
}

type submissionService struct {
	submissions repository.SubmissionRepository
	tasks       repository.TaskRepository
	assignments repository.AssignmentRepository
	activity    repository.ActivityLogRepository
	logger      zerolog.Logger
	now         func() time.Time
}

// NewSubmissionService builds the submission service.
func NewSubmissionService(
	submissions repository.SubmissionRepository,
	tasks repository.TaskRepository,
	assignments repository.AssignmentRepository,
	activity repository.ActivityLogRepository,
	logger zerolog.Logger,
) SubmissionService {
	return &submissionService{
		submissions: submissions,
		tasks:       tasks,
		assignments: assignments,
		activity:    activity,
		logger:      logger.With().Str("component", "submission_service").Logger(),
		now:         time.Now,
	}
}

// Submit grades and stores one immutable submission row. Late submissions
// are accepted; the deadline only flags the result.
func (s *submissionService) Submit(ctx context.Context, studentID uint, req dto.SubmissionCreateRequest) (dto.SubmissionResultResponse, error) {
	task, err := s.tasks.GetByID(ctx, req.TaskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResultResponse{}, ErrTaskNotFound
		}
		return dto.SubmissionResultResponse{}, fmt.Errorf("load task: %w", err)
	}

	assignment, err := s.assignments.Get(ctx, req.TaskID, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResultResponse{}, ErrNotAssigned
		}
		return dto.SubmissionResultResponse{}, fmt.Errorf("load assignment: %w", err)
	}

	prior, err := s.submissions.CountByTaskAndStudent(ctx, req.TaskID, studentID)
	if err != nil {
		return dto.SubmissionResultResponse{}, fmt.Errorf("count submissions: %w", err)
	}

	points := 0
	passed := false
	if task.ExpectedOutput != "" && req.ExecutionOutput != "" {
		percent := similarity.Percent(task.ExpectedOutput, req.ExecutionOutput)
		points = similarity.Grade(percent, task.MaxPoints)
		passed = percent >= models.PassThresholdPct
	}

	submission := models.Submission{
		TaskID:          req.TaskID,
		StudentID:       studentID,
		CodeSolution:    req.CodeSolution,
		ExecutionOutput: req.ExecutionOutput,
		PointsEarned:    points,
		MaxPoints:       task.MaxPoints,
		TimeSpent:       req.TimeSpent,
		Attempt:         int(prior) + 1,
		IsPassed:        passed,
		Status:          models.SubmissionStatusSubmitted,
	}
	if err := s.submissions.Create(ctx, &submission); err != nil {
		return dto.SubmissionResultResponse{}, fmt.Errorf("create submission: %w", err)
	}

	s.recordActivity(ctx, studentID, req.TaskID, submission.Attempt, points)

	return dto.SubmissionResultResponse{
		SubmissionID: submission.ID,
		PointsEarned: submission.PointsEarned,
		MaxPoints:    submission.MaxPoints,
		IsPassed:     submission.IsPassed,
		Attempt:      submission.Attempt,
		PastDeadline: assignment.PastDeadline(s.now()),
	}, nil
}

// ListForStudent returns the student's own rows, scoped to one task when a
// task id is given.
func (s *submissionService) ListForStudent(ctx context.Context, studentID, taskID uint) ([]dto.SubmissionResponse, error) {
	var (
		submissions []models.Submission
		err         error
	)
	if taskID > 0 {
		submissions, err = s.submissions.ListByTaskAndStudent(ctx, taskID, studentID)
	} else {
		submissions, err = s.submissions.ListByStudent(ctx, studentID)
	}
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	return dto.NewSubmissionResponseSlice(submissions), nil
}

// ListForTeacher returns submissions with student identity across the
// teacher's tasks, or for one owned task when a task id is given.
func (s *submissionService) ListForTeacher(ctx context.Context, teacherID, taskID uint) ([]dto.TeacherSubmissionResponse, error) {
	var (
		submissions []models.Submission
		err         error
	)
	if taskID > 0 {
		task, loadErr := s.tasks.GetByID(ctx, taskID)
		if loadErr != nil {
			if errors.Is(loadErr, gorm.ErrRecordNotFound) {
				return nil, ErrTaskNotFound
			}
			return nil, fmt.Errorf("load task: %w", loadErr)
		}
		if task.TeacherID != teacherID {
			return nil, ErrTaskForbidden
		}
		submissions, err = s.submissions.ListByTask(ctx, taskID)
	} else {
		submissions, err = s.submissions.ListByTeacher(ctx, teacherID)
	}
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}

	responses := make([]dto.TeacherSubmissionResponse, 0, len(submissions))
	for _, submission := range submissions {
		responses = append(responses, dto.NewTeacherSubmissionResponse(submission))
	}
	return responses, nil
}

func (s *submissionService) recordActivity(ctx context.Context, studentID, taskID uint, attempt, points int) {
	entry := models.ActivityLog{
		UserID:       studentID,
		ActivityType: models.ActivityTaskSubmit,
		TaskID:       &taskID,
		Details: datatypes.JSONMap{
			"attempt": attempt,
			"points":  points,
		},
	}
	if err := s.activity.Create(ctx, &entry); err != nil {
		s.logger.Warn().Err(err).Uint("task_id", taskID).Msg("activity log write failed")
	}
}
