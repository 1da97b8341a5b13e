package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/albecabrera/ejercicios-didActicos-espaNol/internal/dto"
	"github.com/albecabrera/ejercicios-didActicos-espaNol/internal/models"
	"github.com/albecabrera/ejercicios-didActicos-espaNol/internal/repository"
)

var (
	// ErrInvalidAdminCredentials indicates the dashboard login failed.
	ErrInvalidAdminCredentials = errors.New("invalid admin credentials")
	// ErrAdminSessionInvalid indicates the dashboard session is unknown or expired.
	ErrAdminSessionInvalid = errors.New("admin session invalid or expired")
)

const dashboardResultLimit = 100

// DashboardService exposes the admin dashboard use cases.
type DashboardService interface {
	Login(ctx context.Context, req dto.AdminLoginRequest) (string, time.Time, error)
	Logout(ctx context.Context, token string) error
	Session(ctx context.Context, token string) (dto.AdminSessionResponse, error)
	Data(ctx context.Context, filter dto.DashboardFilter) (dto.DashboardData, error)
	EnsureDefaultAdmin(ctx context.Context, username, password string) error
}

type dashboardService struct {
	admins          repository.AdminRepository
	exercises       repository.ExerciseRepository
	sessionLifetime time.Duration
	logger          zerolog.Logger
	now             func() time.Time
}

// NewDashboardService builds the dashboard service.
func NewDashboardService(
	admins repository.AdminRepository,
	exercises repository.ExerciseRepository,
	sessionLifetime time.Duration,
	logger zerolog.Logger,
) DashboardService {
	return &dashboardService{
		admins:          admins,
		exercises:       exercises,
		sessionLifetime: sessionLifetime,
		logger:          logger.With().Str("component", "dashboard_service").Logger(),
		now:             time.Now,
	}
}

func (s *dashboardService) Login(ctx context.Context, req dto.AdminLoginRequest) (string, time.Time, error) {
	admin, err := s.admins.GetByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", time.Time{}, ErrInvalidAdminCredentials
		}
		return "", time.Time{}, fmt.Errorf("load admin: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)); err != nil {
		return "", time.Time{}, ErrInvalidAdminCredentials
	}

	now := s.now()
	if err := s.admins.DeleteExpiredSessions(ctx, now); err != nil {
		s.logger.Warn().Err(err).Msg("expired admin session sweep failed")
	}

	token, err := generateToken()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("generate token: %w", err)
	}

	session := models.AdminSession{
		AdminID:   admin.ID,
		Token:     token,
		ExpiresAt: now.Add(s.sessionLifetime),
	}
	if err := s.admins.CreateSession(ctx, &session); err != nil {
		return "", time.Time{}, fmt.Errorf("create session: %w", err)
	}

	s.logger.Info().Str("username", admin.Username).Msg("admin logged in")

	return token, session.ExpiresAt, nil
}

func (s *dashboardService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.admins.DeleteSession(ctx, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *dashboardService) Session(ctx context.Context, token string) (dto.AdminSessionResponse, error) {
	if token == "" {
		return dto.AdminSessionResponse{}, ErrAdminSessionInvalid
	}

	session, err := s.admins.GetActiveSession(ctx, token, s.now())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AdminSessionResponse{}, ErrAdminSessionInvalid
		}
		return dto.AdminSessionResponse{}, fmt.Errorf("load session: %w", err)
	}

	return dto.AdminSessionResponse{
		Username:  session.Admin.Username,
		ExpiresAt: session.ExpiresAt,
	}, nil
}

// Data builds everything the dashboard template renders. Filters compose
// with AND; the result list is capped.
func (s *dashboardService) Data(ctx context.Context, filter dto.DashboardFilter) (dto.DashboardData, error) {
	resultFilter := repository.ResultFilter{
		ExerciseID:  strings.TrimSpace(filter.ExerciseID),
		StudentName: strings.TrimSpace(filter.StudentName),
		Level:       strings.TrimSpace(filter.Level),
		Limit:       dashboardResultLimit,
	}
	if from, err := parseDay(filter.DateFrom); err == nil {
		resultFilter.From = &from
	}
	if to, err := parseDay(filter.DateTo); err == nil {
		end := to.AddDate(0, 0, 1)
		resultFilter.To = &end
	}

	results, err := s.exercises.ListResults(ctx, resultFilter)
	if err != nil {
		return dto.DashboardData{}, fmt.Errorf("list results: %w", err)
	}

	statistics, err := s.exercises.ListStatistics(ctx)
	if err != nil {
		return dto.DashboardData{}, fmt.Errorf("list statistics: %w", err)
	}

	options, err := s.exercises.ListExerciseOptions(ctx)
	if err != nil {
		return dto.DashboardData{}, fmt.Errorf("list exercises: %w", err)
	}

	levels, err := s.exercises.ListLevels(ctx)
	if err != nil {
		return dto.DashboardData{}, fmt.Errorf("list levels: %w", err)
	}

	summary, err := s.buildSummary(ctx)
	if err != nil {
		return dto.DashboardData{}, err
	}

	data := dto.DashboardData{
		Summary:    summary,
		Results:    make([]dto.DashboardResultRow, 0, len(results)),
		Statistics: make([]dto.ExerciseStatisticsRow, 0, len(statistics)),
		Exercises:  make([]dto.ExerciseOptionItem, 0, len(options)),
		Levels:     levels,
		Filter:     filter,
	}
	for _, result := range results {
		data.Results = append(data.Results, dto.NewDashboardResultRow(result))
	}
	for _, stat := range statistics {
		data.Statistics = append(data.Statistics, dto.NewExerciseStatisticsRow(stat))
	}
	for _, option := range options {
		data.Exercises = append(data.Exercises, dto.ExerciseOptionItem{
			ID:    option.ExerciseID,
			Title: option.ExerciseTitle,
		})
	}

	return data, nil
}

// EnsureDefaultAdmin creates the bootstrap admin account when missing.
// Running it repeatedly is a no-op.
func (s *dashboardService) EnsureDefaultAdmin(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return nil
	}

	if _, err := s.admins.GetByUsername(ctx, username); err == nil {
		return nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("load admin: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	admin := models.Admin{Username: username, PasswordHash: string(hash)}
	if err := s.admins.Create(ctx, &admin); err != nil {
		return fmt.Errorf("create admin: %w", err)
	}

	s.logger.Info().Str("username", username).Msg("default admin created")
	return nil
}

func (s *dashboardService) buildSummary(ctx context.Context) (dto.DashboardSummary, error) {
	students, err := s.exercises.CountStudents(ctx)
	if err != nil {
		return dto.DashboardSummary{}, fmt.Errorf("count students: %w", err)
	}
	completions, err := s.exercises.CountResults(ctx)
	if err != nil {
		return dto.DashboardSummary{}, fmt.Errorf("count results: %w", err)
	}
	abandoned, err := s.exercises.CountAbandoned(ctx)
	if err != nil {
		return dto.DashboardSummary{}, fmt.Errorf("count abandoned: %w", err)
	}
	avg, err := s.exercises.AverageScore(ctx)
	if err != nil {
		return dto.DashboardSummary{}, fmt.Errorf("average score: %w", err)
	}

	return dto.DashboardSummary{
		TotalStudents:    students,
		TotalCompletions: completions,
		TotalAbandoned:   abandoned,
		AvgScore:         avg,
	}, nil
}

func parseDay(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, errors.New("empty date")
	}
	return time.Parse("2006-01-02", value)
}
