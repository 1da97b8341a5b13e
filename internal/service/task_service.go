package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/albecabrera/ejercicios-didActicos-espaNol/internal/dto"
	"github.com/albecabrera/ejercicios-didActicos-espaNol/internal/models"
	"github.com/albecabrera/ejercicios-didActicos-espaNol/internal/repository"
)

var (
	// ErrTaskNotFound indicates the requested task does not exist.
	ErrTaskNotFound = errors.New("task not found")
	// ErrTaskForbidden indicates the caller does not own the task.
	ErrTaskForbidden = errors.New("task belongs to another teacher")
	// ErrNotAssigned indicates the student has no assignment for the task.
	ErrNotAssigned = errors.New("task not assigned to student")
	// ErrNothingToUpdate indicates a partial update carried no fields.
	ErrNothingToUpdate = errors.New("nothing to update")
	// ErrShareCodeExhausted indicates share code generation kept colliding.
	ErrShareCodeExhausted = errors.New("could not generate unique share code")
)

const shareCodeMaxAttempts = 10

// TaskService exposes task use cases for both roles.
type TaskService interface {
	Create(ctx context.Context, teacherID uint, req dto.TaskCreateRequest) (dto.TaskCreatedResponse, error)
	Update(ctx context.Context, taskID, teacherID uint, req dto.TaskUpdateRequest) error
	Delete(ctx context.Context, taskID, teacherID uint) error
	Assign(ctx context.Context, taskID, teacherID uint, req dto.AssignRequest) (dto.AssignResponse, error)
	ListForTeacher(ctx context.Context, teacherID uint) ([]dto.TaskResponse, error)
	ListForStudent(ctx context.Context, studentID uint) ([]dto.StudentTaskResponse, error)
	GetForTeacher(ctx context.Context, taskID, teacherID uint) (dto.TaskResponse, error)
	GetForStudent(ctx context.Context, taskID, studentID uint) (dto.StudentTaskDetailResponse, error)
	GetShared(ctx context.Context, code string) (dto.SharedTaskResponse, error)
}

type taskService struct {
	tasks       repository.TaskRepository
	assignments repository.AssignmentRepository
	submissions repository.SubmissionRepository
	users       repository.UserRepository
	activity    repository.ActivityLogRepository
	logger      zerolog.Logger
}

// NewTaskService builds the task service.
func NewTaskService(
	tasks repository.TaskRepository,
	assignments repository.AssignmentRepository,
	submissions repository.SubmissionRepository,
	users repository.UserRepository,
	activity repository.ActivityLogRepository,
	logger zerolog.Logger,
) TaskService {
	return &taskService{
		tasks:       tasks,
		assignments: assignments,
		submissions: submissions,
		users:       users,
		activity:    activity,
		logger:      logger.With().Str("component", "task_service").Logger(),
	}
}

func (s *taskService) Create(ctx context.Context, teacherID uint, req dto.TaskCreateRequest) (dto.TaskCreatedResponse, error) {
	code, err := s.uniqueShareCode(ctx)
	if err != nil {
		return dto.TaskCreatedResponse{}, err
	}

	task := models.Task{
		TeacherID:           teacherID,
		Title:               strings.TrimSpace(req.Title),
		Description:         req.Description,
		ProgrammingLanguage: req.ProgrammingLanguage,
		TaskContent:         req.TaskContent,
		TaskType:            req.TaskType,
		ExpectedOutput:      req.ExpectedOutput,
		Hints:               models.EncodeHints(req.Hints),
		MaxPoints:           models.DefaultMaxPoints,
		TimeLimit:           req.TimeLimit,
		Difficulty:          req.Difficulty,
		ShareCode:           code,
		IsActive:            true,
	}
	if task.TaskType == "" {
		task.TaskType = models.TaskTypePlaintext
	}
	if task.Difficulty == "" {
		task.Difficulty = models.DifficultyBeginner
	}
	if req.MaxPoints != nil {
		task.MaxPoints = *req.MaxPoints
	}

	if err := s.tasks.Create(ctx, &task); err != nil {
		return dto.TaskCreatedResponse{}, fmt.Errorf("create task: %w", err)
	}

	s.logger.Info().Uint("task_id", task.ID).Uint("teacher_id", teacherID).Msg("task created")

	return dto.TaskCreatedResponse{TaskID: task.ID, ShareCode: task.ShareCode}, nil
}

func (s *taskService) Update(ctx context.Context, taskID, teacherID uint, req dto.TaskUpdateRequest) error {
	if _, err := s.ownedTask(ctx, taskID, teacherID); err != nil {
		return err
	}

	fields := map[string]interface{}{}
	if req.Title != nil {
		fields["title"] = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.ProgrammingLanguage != nil {
		fields["programming_language"] = *req.ProgrammingLanguage
	}
	if req.TaskContent != nil {
		fields["task_content"] = *req.TaskContent
	}
	if req.TaskType != nil {
		fields["task_type"] = *req.TaskType
	}
	if req.ExpectedOutput != nil {
		fields["expected_output"] = *req.ExpectedOutput
	}
	if req.Hints != nil {
		fields["hints"] = models.EncodeHints(*req.Hints)
	}
	if req.MaxPoints != nil {
		fields["max_points"] = *req.MaxPoints
	}
	if req.TimeLimit != nil {
		fields["time_limit"] = *req.TimeLimit
	}
	if req.Difficulty != nil {
		fields["difficulty"] = *req.Difficulty
	}
	if req.IsActive != nil {
		fields["is_active"] = *req.IsActive
	}

	if len(fields) == 0 {
		return ErrNothingToUpdate
	}

	if err := s.tasks.UpdateFields(ctx, taskID, fields); err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return nil
}

func (s *taskService) Delete(ctx context.Context, taskID, teacherID uint) error {
	if _, err := s.ownedTask(ctx, taskID, teacherID); err != nil {
		return err
	}
	if err := s.tasks.DeleteCascade(ctx, taskID); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	s.logger.Info().Uint("task_id", taskID).Msg("task deleted")
	return nil
}

// Assign upserts one assignment per student id. Ids that do not resolve to a
// student account are skipped without failing the batch.
func (s *taskService) Assign(ctx context.Context, taskID, teacherID uint, req dto.AssignRequest) (dto.AssignResponse, error) {
	if _, err := s.ownedTask(ctx, taskID, teacherID); err != nil {
		return dto.AssignResponse{}, err
	}

	assigned := 0
	for _, studentID := range req.StudentIDs {
		if _, err := s.users.GetStudentByID(ctx, studentID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				s.logger.Debug().Uint("student_id", studentID).Msg("assign target is not a student, skipped")
				continue
			}
			return dto.AssignResponse{}, fmt.Errorf("load student: %w", err)
		}
		if err := s.assignments.Upsert(ctx, taskID, studentID, req.Deadline); err != nil {
			return dto.AssignResponse{}, fmt.Errorf("assign student %d: %w", studentID, err)
		}
		assigned++
	}

	return dto.AssignResponse{AssignedCount: assigned}, nil
}

func (s *taskService) ListForTeacher(ctx context.Context, teacherID uint) ([]dto.TaskResponse, error) {
	tasks, err := s.tasks.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	counts, err := s.tasks.CountsByTeacher(ctx, teacherID)
	if err != nil {
		return nil, fmt.Errorf("count tasks: %w", err)
	}

	responses := make([]dto.TaskResponse, 0, len(tasks))
	for _, task := range tasks {
		entry := counts[task.ID]
		responses = append(responses, dto.NewTaskResponse(task, entry.AssignedStudents, entry.TotalSubmissions))
	}
	return responses, nil
}

// ListForStudent returns the student's active assigned tasks ordered by
// deadline, tasks without a deadline last.
func (s *taskService) ListForStudent(ctx context.Context, studentID uint) ([]dto.StudentTaskResponse, error) {
	assignments, err := s.assignments.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	stats, err := s.submissions.StatsByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("load submission stats: %w", err)
	}

	responses := make([]dto.StudentTaskResponse, 0, len(assignments))
	for _, assignment := range assignments {
		if !assignment.Task.IsActive {
			continue
		}
		responses = append(responses, s.studentTaskView(assignment, stats))
	}

	sort.SliceStable(responses, func(i, j int) bool {
		a, b := responses[i].Deadline, responses[j].Deadline
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.Before(*b)
		}
	})

	return responses, nil
}

func (s *taskService) GetForTeacher(ctx context.Context, taskID, teacherID uint) (dto.TaskResponse, error) {
	task, err := s.ownedTask(ctx, taskID, teacherID)
	if err != nil {
		return dto.TaskResponse{}, err
	}

	assignments, err := s.assignments.ListByTask(ctx, taskID)
	if err != nil {
		return dto.TaskResponse{}, fmt.Errorf("list assignments: %w", err)
	}
	submissions, err := s.submissions.ListByTask(ctx, taskID)
	if err != nil {
		return dto.TaskResponse{}, fmt.Errorf("list submissions: %w", err)
	}

	return dto.NewTaskResponse(task, int64(len(assignments)), int64(len(submissions))), nil
}

func (s *taskService) GetForStudent(ctx context.Context, taskID, studentID uint) (dto.StudentTaskDetailResponse, error) {
	assignment, err := s.assignments.Get(ctx, taskID, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.StudentTaskDetailResponse{}, ErrNotAssigned
		}
		return dto.StudentTaskDetailResponse{}, fmt.Errorf("load assignment: %w", err)
	}

	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.StudentTaskDetailResponse{}, ErrTaskNotFound
		}
		return dto.StudentTaskDetailResponse{}, fmt.Errorf("load task: %w", err)
	}
	assignment.Task = task

	history, err := s.submissions.ListByTaskAndStudent(ctx, taskID, studentID)
	if err != nil {
		return dto.StudentTaskDetailResponse{}, fmt.Errorf("list submissions: %w", err)
	}

	stats := map[uint]repository.StudentTaskStats{}
	if len(history) > 0 {
		best := history[0].PointsEarned
		for _, submission := range history {
			if submission.PointsEarned > best {
				best = submission.PointsEarned
			}
		}
		stats[taskID] = repository.StudentTaskStats{
			TaskID:    taskID,
			Attempts:  int64(len(history)),
			BestScore: best,
		}
	}

	s.recordActivity(ctx, studentID, models.ActivityTaskView, taskID)

	return dto.StudentTaskDetailResponse{
		StudentTaskResponse: s.studentTaskView(assignment, stats),
		SubmissionHistory:   dto.NewSubmissionResponseSlice(history),
	}, nil
}

func (s *taskService) GetShared(ctx context.Context, code string) (dto.SharedTaskResponse, error) {
	task, err := s.tasks.GetByShareCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SharedTaskResponse{}, ErrTaskNotFound
		}
		return dto.SharedTaskResponse{}, fmt.Errorf("load task: %w", err)
	}
	return dto.NewSharedTaskResponse(task), nil
}

func (s *taskService) studentTaskView(assignment models.TaskAssignment, stats map[uint]repository.StudentTaskStats) dto.StudentTaskResponse {
	task := assignment.Task
	view := dto.StudentTaskResponse{
		ID:                  task.ID,
		Title:               task.Title,
		Description:         task.Description,
		ProgrammingLanguage: task.ProgrammingLanguage,
		TaskContent:         task.TaskContent,
		TaskType:            task.TaskType,
		Hints:               task.HintsSlice(),
		MaxPoints:           task.MaxPoints,
		TimeLimit:           task.TimeLimit,
		Difficulty:          task.Difficulty,
		Deadline:            assignment.Deadline,
		AssignedAt:          assignment.AssignedAt,
	}
	if entry, ok := stats[task.ID]; ok {
		view.MySubmissions = entry.Attempts
		best := entry.BestScore
		view.MyBestScore = &best
	}
	return view
}

func (s *taskService) ownedTask(ctx context.Context, taskID, teacherID uint) (models.Task, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Task{}, ErrTaskNotFound
		}
		return models.Task{}, fmt.Errorf("load task: %w", err)
	}
	if task.TeacherID != teacherID {
		return models.Task{}, ErrTaskForbidden
	}
	return task, nil
}

func (s *taskService) recordActivity(ctx context.Context, userID uint, activityType string, taskID uint) {
	entry := models.ActivityLog{
		UserID:       userID,
		ActivityType: activityType,
		TaskID:       &taskID,
		Details:      datatypes.JSONMap{},
	}
	if err := s.activity.Create(ctx, &entry); err != nil {
		s.logger.Warn().Err(err).Str("activity", activityType).Msg("activity log write failed")
	}
}

func (s *taskService) uniqueShareCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < shareCodeMaxAttempts; attempt++ {
		code, err := generateShareCode()
		if err != nil {
			return "", fmt.Errorf("generate share code: %w", err)
		}
		exists, err := s.tasks.ShareCodeExists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("check share code: %w", err)
		}
		if !exists {
			return code, nil
		}
	}
	return "", ErrShareCodeExhausted
}

func generateShareCode() (string, error) {
	buf := make([]byte, models.ShareCodeLength/2)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return strings.ToUpper(hex.EncodeToString(buf)), nil
}
