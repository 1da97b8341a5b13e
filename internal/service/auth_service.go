package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/albecabrera/ejercicios-didActicos-espaNol/internal/dto"
	"github.com/albecabrera/ejercicios-didActicos-espaNol/internal/models"
	"github.com/albecabrera/ejercicios-didActicos-espaNol/internal/repository"
)

var (
	// ErrUserConflict indicates the username or email is already taken.
	ErrUserConflict = errors.New("username or email already taken")
	// ErrWeakPassword indicates the password is below the configured minimum length.
	ErrWeakPassword = errors.New("password too short")
	// ErrInvalidCredentials indicates the identifier or password did not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrSessionInvalid indicates the session token is unknown or expired.
	ErrSessionInvalid = errors.New("session invalid or expired")
	// ErrUserNotFound indicates the requested account does not exist.
	ErrUserNotFound = errors.New("user not found")
)

// sessionTokenBytes yields 32 hex characters per token.
const sessionTokenBytes = 16

// SessionContext carries the request metadata recorded alongside a session.
type SessionContext struct {
	IPAddress string
	UserAgent string
}

// AuthService exposes account and session use cases.
type AuthService interface {
	Register(ctx context.Context, req dto.RegisterRequest, meta SessionContext) (dto.RegisterResponse, error)
	Login(ctx context.Context, req dto.LoginRequest, meta SessionContext) (dto.LoginResponse, error)
	Logout(ctx context.Context, token string) error
	Verify(ctx context.Context, token string) (dto.VerifyResponse, error)
	Profile(ctx context.Context, userID uint) (dto.ProfileResponse, error)
}

type authService struct {
	users             repository.UserRepository
	sessions          repository.SessionRepository
	tasks             repository.TaskRepository
	assignments       repository.AssignmentRepository
	submissions       repository.SubmissionRepository
	activity          repository.ActivityLogRepository
	sessionLifetime   time.Duration
	passwordMinLength int
	logger            zerolog.Logger
	now               func() time.Time
}

// NewAuthService builds the auth service.
func NewAuthService(
	users repository.UserRepository,
	sessions repository.SessionRepository,
	tasks repository.TaskRepository,
	assignments repository.AssignmentRepository,
	submissions repository.SubmissionRepository,
	activity repository.ActivityLogRepository,
	sessionLifetime time.Duration,
	passwordMinLength int,
	logger zerolog.Logger,
) AuthService {
	return &authService{
		users:             users,
		sessions:          sessions,
		tasks:             tasks,
		assignments:       assignments,
		submissions:       submissions,
		activity:          activity,
		sessionLifetime:   sessionLifetime,
		passwordMinLength: passwordMinLength,
		logger:            logger.With().Str("component", "auth_service").Logger(),
		now:               time.Now,
	}
}

func (s *authService) Register(ctx context.Context, req dto.RegisterRequest, meta SessionContext) (dto.RegisterResponse, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if len(req.Password) < s.passwordMinLength {
		return dto.RegisterResponse{}, ErrWeakPassword
	}

	taken, err := s.users.ExistsByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return dto.RegisterResponse{}, fmt.Errorf("check existing account: %w", err)
	}
	if taken {
		return dto.RegisterResponse{}, ErrUserConflict
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return dto.RegisterResponse{}, fmt.Errorf("hash password: %w", err)
	}

	language := strings.TrimSpace(req.PreferredLanguage)
	if language == "" {
		language = "de"
	}

	user := models.User{
		Username:          username,
		Email:             email,
		PasswordHash:      string(hash),
		Role:              req.Role,
		FullName:          strings.TrimSpace(req.FullName),
		PreferredLanguage: language,
	}
	if err := s.users.Create(ctx, &user); err != nil {
		return dto.RegisterResponse{}, fmt.Errorf("create user: %w", err)
	}

	session, err := s.createSession(ctx, user.ID, meta)
	if err != nil {
		return dto.RegisterResponse{}, err
	}

	s.logger.Info().Uint("user_id", user.ID).Str("role", user.Role).Msg("account registered")

	return dto.RegisterResponse{
		UserID:       user.ID,
		Username:     user.Username,
		Role:         user.Role,
		SessionToken: session.Token,
	}, nil
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest, meta SessionContext) (dto.LoginResponse, error) {
	identifier := strings.TrimSpace(req.Identifier)

	user, err := s.users.GetByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.recordActivity(ctx, 0, models.ActivityLoginFailed, nil, datatypes.JSONMap{"identifier": identifier})
			return dto.LoginResponse{}, ErrInvalidCredentials
		}
		return dto.LoginResponse{}, fmt.Errorf("load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.recordActivity(ctx, user.ID, models.ActivityLoginFailed, nil, nil)
		return dto.LoginResponse{}, ErrInvalidCredentials
	}

	session, err := s.createSession(ctx, user.ID, meta)
	if err != nil {
		return dto.LoginResponse{}, err
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID, s.now()); err != nil {
		s.logger.Warn().Err(err).Uint("user_id", user.ID).Msg("update last login failed")
	}
	s.recordActivity(ctx, user.ID, models.ActivityLogin, nil, nil)

	return dto.LoginResponse{
		UserID:            user.ID,
		Username:          user.Username,
		Email:             user.Email,
		Role:              user.Role,
		FullName:          user.FullName,
		PreferredLanguage: user.PreferredLanguage,
		SessionToken:      session.Token,
	}, nil
}

func (s *authService) Logout(ctx context.Context, token string) error {
	session, err := s.sessions.GetActiveByToken(ctx, token, s.now())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSessionInvalid
		}
		return fmt.Errorf("load session: %w", err)
	}

	if err := s.sessions.DeleteByToken(ctx, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	s.recordActivity(ctx, session.UserID, models.ActivityLogout, nil, nil)
	return nil
}

func (s *authService) Verify(ctx context.Context, token string) (dto.VerifyResponse, error) {
	session, err := s.sessions.GetActiveByToken(ctx, token, s.now())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.VerifyResponse{}, ErrSessionInvalid
		}
		return dto.VerifyResponse{}, fmt.Errorf("load session: %w", err)
	}

	return dto.VerifyResponse{
		UserID:   session.UserID,
		Username: session.User.Username,
		Role:     session.User.Role,
	}, nil
}

func (s *authService) Profile(ctx context.Context, userID uint) (dto.ProfileResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ProfileResponse{}, ErrUserNotFound
		}
		return dto.ProfileResponse{}, fmt.Errorf("load user: %w", err)
	}

	profile := dto.NewProfileResponse(user)

	switch user.Role {
	case models.RoleStudent:
		stats, err := s.studentStats(ctx, user.ID)
		if err != nil {
			return dto.ProfileResponse{}, err
		}
		profile.Statistics = stats
	case models.RoleTeacher:
		stats, err := s.teacherStats(ctx, user.ID)
		if err != nil {
			return dto.ProfileResponse{}, err
		}
		profile.Statistics = stats
	}

	return profile, nil
}

func (s *authService) studentStats(ctx context.Context, studentID uint) (dto.StudentProfileStats, error) {
	submissions, err := s.submissions.ListByStudent(ctx, studentID)
	if err != nil {
		return dto.StudentProfileStats{}, fmt.Errorf("list submissions: %w", err)
	}

	stats := dto.StudentProfileStats{TotalSubmissions: int64(len(submissions))}
	tasks := make(map[uint]struct{})
	var totalPoints int
	for _, submission := range submissions {
		tasks[submission.TaskID] = struct{}{}
		totalPoints += submission.PointsEarned
		stats.TotalTime += int64(submission.TimeSpent)
	}
	stats.TasksAttempted = int64(len(tasks))
	if len(submissions) > 0 {
		avg := float64(totalPoints) / float64(len(submissions))
		stats.AvgPoints = &avg
	}
	return stats, nil
}

func (s *authService) teacherStats(ctx context.Context, teacherID uint) (dto.TeacherProfileStats, error) {
	tasks, err := s.tasks.ListByTeacher(ctx, teacherID)
	if err != nil {
		return dto.TeacherProfileStats{}, fmt.Errorf("list tasks: %w", err)
	}
	students, err := s.assignments.CountDistinctStudentsByTeacher(ctx, teacherID)
	if err != nil {
		return dto.TeacherProfileStats{}, fmt.Errorf("count students: %w", err)
	}
	submissions, err := s.submissions.ListByTeacher(ctx, teacherID)
	if err != nil {
		return dto.TeacherProfileStats{}, fmt.Errorf("list submissions: %w", err)
	}

	return dto.TeacherProfileStats{
		TotalTasks:       int64(len(tasks)),
		TotalStudents:    students,
		TotalSubmissions: int64(len(submissions)),
	}, nil
}

// createSession mints an opaque token and sweeps rows that are already past
// expiry, keeping the table bounded without a background job.
func (s *authService) createSession(ctx context.Context, userID uint, meta SessionContext) (models.Session, error) {
	now := s.now()
	if err := s.sessions.DeleteExpired(ctx, now); err != nil {
		s.logger.Warn().Err(err).Msg("expired session sweep failed")
	}

	token, err := generateToken()
	if err != nil {
		return models.Session{}, fmt.Errorf("generate token: %w", err)
	}

	session := models.Session{
		Token:     token,
		UserID:    userID,
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
		ExpiresAt: now.Add(s.sessionLifetime),
	}
	if err := s.sessions.Create(ctx, &session); err != nil {
		return models.Session{}, fmt.Errorf("create session: %w", err)
	}
	return session, nil
}

func (s *authService) recordActivity(ctx context.Context, userID uint, activityType string, taskID *uint, details datatypes.JSONMap) {
	if userID == 0 {
		return
	}
	entry := models.ActivityLog{
		UserID:       userID,
		ActivityType: activityType,
		TaskID:       taskID,
		Details:      details,
	}
	if err := s.activity.Create(ctx, &entry); err != nil {
		s.logger.Warn().Err(err).Str("activity", activityType).Msg("activity log write failed")
	}
}

func generateToken() (string, error) {
	buf := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
