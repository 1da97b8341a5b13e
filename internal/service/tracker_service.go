package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/albecabrera/ejercicios-didActicos-espaNol/internal/dto"
	"github.com/albecabrera/ejercicios-didActicos-espaNol/internal/models"
	"github.com/albecabrera/ejercicios-didActicos-espaNol/internal/repository"
)

var (
	// ErrStudentNameEmpty indicates the full name was blank after trimming.
	ErrStudentNameEmpty = errors.New("student name empty")
	// ErrStudentNotFound indicates the requested student does not exist.
	ErrStudentNotFound = errors.New("student not found")
)

// TrackerService exposes the anonymous exercise tracking use cases.
type TrackerService interface {
	RegisterStudent(ctx context.Context, req dto.RegisterStudentRequest) (dto.RegisterStudentResponse, error)
	StudentOverview(ctx context.Context, id uint) (dto.StudentOverviewResponse, error)
	StartExercise(ctx context.Context, req dto.StartExerciseRequest) (dto.StartExerciseResponse, error)
	CompleteExercise(ctx context.Context, req dto.CompleteExerciseRequest) (dto.CompleteExerciseResponse, error)
}

type trackerService struct {
	students  repository.StudentRepository
	exercises repository.ExerciseRepository
	sanitiser *bluemonday.Policy
	logger    zerolog.Logger
}

// NewTrackerService builds the tracker service.
func NewTrackerService(
	students repository.StudentRepository,
	exercises repository.ExerciseRepository,
	logger zerolog.Logger,
) TrackerService {
	return &trackerService{
		students:  students,
		exercises: exercises,
		sanitiser: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "tracker_service").Logger(),
	}
}

// RegisterStudent resolves the trimmed full name to an existing student or
// creates one. The name itself is the identity key.
func (s *trackerService) RegisterStudent(ctx context.Context, req dto.RegisterStudentRequest) (dto.RegisterStudentResponse, error) {
	fullName := strings.Join(strings.Fields(req.FullName), " ")
	if fullName == "" {
		return dto.RegisterStudentResponse{}, ErrStudentNameEmpty
	}

	student, err := s.students.GetByFullName(ctx, fullName)
	if err == nil {
		return dto.RegisterStudentResponse{Student: dto.NewStudentResponse(student), New: false}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.RegisterStudentResponse{}, fmt.Errorf("load student: %w", err)
	}

	student = models.Student{
		FullName:  fullName,
		FirstName: strings.Fields(fullName)[0],
	}
	if err := s.students.Create(ctx, &student); err != nil {
		return dto.RegisterStudentResponse{}, fmt.Errorf("create student: %w", err)
	}

	s.logger.Info().Uint("student_id", student.ID).Msg("student registered")

	return dto.RegisterStudentResponse{Student: dto.NewStudentResponse(student), New: true}, nil
}

func (s *trackerService) StudentOverview(ctx context.Context, id uint) (dto.StudentOverviewResponse, error) {
	overview, err := s.students.GetOverview(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.StudentOverviewResponse{}, ErrStudentNotFound
		}
		return dto.StudentOverviewResponse{}, fmt.Errorf("load overview: %w", err)
	}
	return dto.NewStudentOverviewResponse(overview), nil
}

func (s *trackerService) StartExercise(ctx context.Context, req dto.StartExerciseRequest) (dto.StartExerciseResponse, error) {
	start := models.ExerciseStart{
		StudentID:     req.StudentID,
		ExerciseID:    strings.TrimSpace(req.ExerciseID),
		ExerciseTitle: s.cleanTitle(req.ExerciseTitle),
	}
	if err := s.exercises.CreateStart(ctx, &start); err != nil {
		return dto.StartExerciseResponse{}, fmt.Errorf("create start: %w", err)
	}
	return dto.StartExerciseResponse{StartID: start.ID}, nil
}

func (s *trackerService) CompleteExercise(ctx context.Context, req dto.CompleteExerciseRequest) (dto.CompleteExerciseResponse, error) {
	record := repository.CompletionRecord{
		StudentID:     req.StudentID,
		ExerciseID:    strings.TrimSpace(req.ExerciseID),
		ExerciseTitle: s.cleanTitle(req.ExerciseTitle),
		Payload:       datatypes.JSON(req.Result),
		Score:         req.Score,
		Level:         req.Level,
		TimeElapsed:   req.TimeElapsed,
	}

	result, err := s.exercises.Complete(ctx, record)
	if err != nil {
		return dto.CompleteExerciseResponse{}, fmt.Errorf("complete exercise: %w", err)
	}

	s.logger.Info().
		Uint("student_id", req.StudentID).
		Str("exercise_id", record.ExerciseID).
		Msg("exercise completed")

	return dto.CompleteExerciseResponse{ResultID: result.ID}, nil
}

// cleanTitle strips markup from widget-supplied titles before they reach the
// dashboard HTML.
func (s *trackerService) cleanTitle(title string) string {
	return strings.TrimSpace(s.sanitiser.Sanitize(title))
}
