package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/albecabrera/ejercicios-didActicos-espaNol/internal/database"
	"github.com/albecabrera/ejercicios-didActicos-espaNol/internal/dto"
	"github.com/albecabrera/ejercicios-didActicos-espaNol/internal/models"
	"github.com/albecabrera/ejercicios-didActicos-espaNol/internal/repository"
)

func setupServiceDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func newAuthService(t *testing.T, db *gorm.DB) AuthService {
	t.Helper()
	return NewAuthService(
		repository.NewUserRepository(db),
		repository.NewSessionRepository(db),
		repository.NewTaskRepository(db),
		repository.NewAssignmentRepository(db),
		repository.NewSubmissionRepository(db),
		repository.NewActivityLogRepository(db),
		24*time.Hour,
		6,
		zerolog.Nop(),
	)
}

func registerRequest(username, email string) dto.RegisterRequest {
	return dto.RegisterRequest{
		Username: username,
		Email:    email,
		Password: "geheim123",
		Role:     models.RoleStudent,
		FullName: "Test Schüler",
	}
}

func TestAuthServiceRegisterAndVerify(t *testing.T) {
	db := setupServiceDB(t)
	svc := newAuthService(t, db)

	resp, err := svc.Register(context.Background(), registerRequest("mara", "mara@example.com"), SessionContext{IPAddress: "127.0.0.1"})
	require.NoError(t, err)
	require.NotZero(t, resp.UserID)
	require.Equal(t, models.RoleStudent, resp.Role)
	require.Len(t, resp.SessionToken, 32)

	verified, err := svc.Verify(context.Background(), resp.SessionToken)
	require.NoError(t, err)
	require.Equal(t, resp.UserID, verified.UserID)
	require.Equal(t, "mara", verified.Username)
}

func TestAuthServiceRegisterRejectsDuplicates(t *testing.T) {
	db := setupServiceDB(t)
	svc := newAuthService(t, db)

	_, err := svc.Register(context.Background(), registerRequest("mara", "mara@example.com"), SessionContext{})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), registerRequest("mara", "other@example.com"), SessionContext{})
	require.ErrorIs(t, err, ErrUserConflict)

	_, err = svc.Register(context.Background(), registerRequest("other", "mara@example.com"), SessionContext{})
	require.ErrorIs(t, err, ErrUserConflict)
}

func TestAuthServiceRegisterRejectsShortPassword(t *testing.T) {
	db := setupServiceDB(t)
	svc := newAuthService(t, db)

	req := registerRequest("mara", "mara@example.com")
	req.Password = "abc"
	_, err := svc.Register(context.Background(), req, SessionContext{})
	require.ErrorIs(t, err, ErrWeakPassword)
}

func TestAuthServiceLogin(t *testing.T) {
	db := setupServiceDB(t)
	svc := newAuthService(t, db)

	_, err := svc.Register(context.Background(), registerRequest("mara", "mara@example.com"), SessionContext{})
	require.NoError(t, err)

	resp, err := svc.Login(context.Background(), dto.LoginRequest{Identifier: "mara", Password: "geheim123"}, SessionContext{})
	require.NoError(t, err)
	require.Equal(t, "mara@example.com", resp.Email)
	require.Len(t, resp.SessionToken, 32)

	// Email works as the identifier too.
	_, err = svc.Login(context.Background(), dto.LoginRequest{Identifier: "mara@example.com", Password: "geheim123"}, SessionContext{})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), dto.LoginRequest{Identifier: "mara", Password: "falsch"}, SessionContext{})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), dto.LoginRequest{Identifier: "niemand", Password: "geheim123"}, SessionContext{})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthServiceVerifyRejectsExpiredSession(t *testing.T) {
	db := setupServiceDB(t)
	svc := newAuthService(t, db)

	resp, err := svc.Register(context.Background(), registerRequest("mara", "mara@example.com"), SessionContext{})
	require.NoError(t, err)

	require.NoError(t, db.Model(&models.Session{}).
		Where("token = ?", resp.SessionToken).
		Update("expires_at", time.Now().Add(-time.Minute)).Error)

	_, err = svc.Verify(context.Background(), resp.SessionToken)
	require.ErrorIs(t, err, ErrSessionInvalid)
}

func TestAuthServiceLoginSweepsExpiredSessions(t *testing.T) {
	db := setupServiceDB(t)
	svc := newAuthService(t, db)

	resp, err := svc.Register(context.Background(), registerRequest("mara", "mara@example.com"), SessionContext{})
	require.NoError(t, err)
	require.NoError(t, db.Model(&models.Session{}).
		Where("token = ?", resp.SessionToken).
		Update("expires_at", time.Now().Add(-time.Minute)).Error)

	_, err = svc.Login(context.Background(), dto.LoginRequest{Identifier: "mara", Password: "geheim123"}, SessionContext{})
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.Session{}).Count(&count).Error)
	require.Equal(t, int64(1), count, "expired sessions are removed when a new one is created")
}

func TestAuthServiceLogout(t *testing.T) {
	db := setupServiceDB(t)
	svc := newAuthService(t, db)

	resp, err := svc.Register(context.Background(), registerRequest("mara", "mara@example.com"), SessionContext{})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), resp.SessionToken))
	require.ErrorIs(t, svc.Logout(context.Background(), resp.SessionToken), ErrSessionInvalid)

	_, err = svc.Verify(context.Background(), resp.SessionToken)
	require.ErrorIs(t, err, ErrSessionInvalid)
}

func TestAuthServiceProfileStudentStatistics(t *testing.T) {
	db := setupServiceDB(t)
	svc := newAuthService(t, db)

	teacher := models.User{Username: "lehrer", Email: "lehrer@example.com", PasswordHash: "x", Role: models.RoleTeacher}
	require.NoError(t, db.Create(&teacher).Error)

	resp, err := svc.Register(context.Background(), registerRequest("mara", "mara@example.com"), SessionContext{})
	require.NoError(t, err)

	task := models.Task{TeacherID: teacher.ID, Title: "Schleifen", TaskType: models.TaskTypePlaintext, MaxPoints: 100, IsActive: true, ShareCode: "AB12CD34"}
	require.NoError(t, db.Create(&task).Error)
	for _, points := range []int{40, 80} {
		submission := models.Submission{TaskID: task.ID, StudentID: resp.UserID, Attempt: 1, PointsEarned: points, MaxPoints: 100, TimeSpent: 60, Status: models.SubmissionStatusSubmitted}
		require.NoError(t, db.Create(&submission).Error)
	}

	profile, err := svc.Profile(context.Background(), resp.UserID)
	require.NoError(t, err)
	stats, ok := profile.Statistics.(dto.StudentProfileStats)
	require.True(t, ok)
	require.Equal(t, int64(2), stats.TotalSubmissions)
	require.Equal(t, int64(1), stats.TasksAttempted)
	require.Equal(t, int64(120), stats.TotalTime)
	require.NotNil(t, stats.AvgPoints)
	require.InDelta(t, 60, *stats.AvgPoints, 0.001)
}

func TestAuthServiceProfileUnknownUser(t *testing.T) {
	db := setupServiceDB(t)
	svc := newAuthService(t, db)

	_, err := svc.Profile(context.Background(), 999)
	require.ErrorIs(t, err, ErrUserNotFound)
}
