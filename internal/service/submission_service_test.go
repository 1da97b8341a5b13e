package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/albecabrera/ejercicios-didActicos-espaNol/internal/dto"
	"github.com/albecabrera/ejercicios-didActicos-espaNol/internal/models"
	"github.com/albecabrera/ejercicios-didActicos-espaNol/internal/repository"
)

func newSubmissionService(t *testing.T, db *gorm.DB) SubmissionService {
	t.Helper()
	return NewSubmissionService(
		repository.NewSubmissionRepository(db),
		repository.NewTaskRepository(db),
		repository.NewAssignmentRepository(db),
		repository.NewActivityLogRepository(db),
		zerolog.Nop(),
	)
}

func seedAssignedTask(t *testing.T, db *gorm.DB, teacherID, studentID uint, expectedOutput string, deadline *time.Time) models.Task {
	t.Helper()
	var existing int64
	require.NoError(t, db.Model(&models.Task{}).Count(&existing).Error)
	task := models.Task{
		TeacherID:           teacherID,
		Title:               "Schleifen",
		ProgrammingLanguage: "python",
		TaskContent:         "Schreibe eine Schleife.",
		TaskType:            models.TaskTypePlaintext,
		ExpectedOutput:      expectedOutput,
		MaxPoints:           models.DefaultMaxPoints,
		Difficulty:          models.DifficultyBeginner,
		ShareCode:           fmt.Sprintf("%08X", existing+1),
		IsActive:            true,
	}
	require.NoError(t, db.Create(&task).Error)
	assignment := models.TaskAssignment{TaskID: task.ID, StudentID: studentID, Deadline: deadline}
	require.NoError(t, db.Create(&assignment).Error)
	return task
}

func TestSubmissionServiceGradesAgainstExpectedOutput(t *testing.T) {
	db := setupServiceDB(t)
	svc := newSubmissionService(t, db)
	teacher := seedUser(t, db, "lehrer", models.RoleTeacher)
	student := seedUser(t, db, "mara", models.RoleStudent)
	task := seedAssignedTask(t, db, teacher.ID, student.ID, "Hallo Welt", nil)

	result, err := svc.Submit(context.Background(), student.ID, dto.SubmissionCreateRequest{
		TaskID:          task.ID,
		CodeSolution:    `print("Hallo Welt")`,
		ExecutionOutput: "Hallo Welt",
		TimeSpent:       90,
	})
	require.NoError(t, err)
	require.Equal(t, 100, result.PointsEarned)
	require.Equal(t, 100, result.MaxPoints)
	require.True(t, result.IsPassed)
	require.Equal(t, 1, result.Attempt)
	require.False(t, result.PastDeadline)
}

func TestSubmissionServicePartialMatchScoresProportionally(t *testing.T) {
	db := setupServiceDB(t)
	svc := newSubmissionService(t, db)
	teacher := seedUser(t, db, "lehrer", models.RoleTeacher)
	student := seedUser(t, db, "mara", models.RoleStudent)
	task := seedAssignedTask(t, db, teacher.ID, student.ID, "Hallo Welt", nil)

	result, err := svc.Submit(context.Background(), student.ID, dto.SubmissionCreateRequest{
		TaskID:          task.ID,
		CodeSolution:    `print("Hallo")`,
		ExecutionOutput: "Hallo Unfug",
	})
	require.NoError(t, err)
	require.Greater(t, result.PointsEarned, 0)
	require.Less(t, result.PointsEarned, 100)
	require.False(t, result.IsPassed)
}

func TestSubmissionServiceSkipsGradingWithoutOutput(t *testing.T) {
	db := setupServiceDB(t)
	svc := newSubmissionService(t, db)
	teacher := seedUser(t, db, "lehrer", models.RoleTeacher)
	student := seedUser(t, db, "mara", models.RoleStudent)

	// No expected output on the task at all.
	task := seedAssignedTask(t, db, teacher.ID, student.ID, "", nil)
	result, err := svc.Submit(context.Background(), student.ID, dto.SubmissionCreateRequest{
		TaskID:          task.ID,
		CodeSolution:    "x = 1",
		ExecutionOutput: "irgendwas",
	})
	require.NoError(t, err)
	require.Zero(t, result.PointsEarned)
	require.False(t, result.IsPassed)

	// Expected output set, but the student reported none.
	student2 := seedUser(t, db, "finn", models.RoleStudent)
	task2 := seedAssignedTask(t, db, teacher.ID, student2.ID, "Hallo Welt", nil)
	result, err = svc.Submit(context.Background(), student2.ID, dto.SubmissionCreateRequest{
		TaskID:       task2.ID,
		CodeSolution: "x = 1",
	})
	require.NoError(t, err)
	require.Zero(t, result.PointsEarned)
	require.False(t, result.IsPassed)
}

func TestSubmissionServiceRequiresAssignment(t *testing.T) {
	db := setupServiceDB(t)
	svc := newSubmissionService(t, db)
	teacher := seedUser(t, db, "lehrer", models.RoleTeacher)
	student := seedUser(t, db, "mara", models.RoleStudent)
	outsider := seedUser(t, db, "finn", models.RoleStudent)
	task := seedAssignedTask(t, db, teacher.ID, student.ID, "Hallo Welt", nil)

	_, err := svc.Submit(context.Background(), outsider.ID, dto.SubmissionCreateRequest{
		TaskID:       task.ID,
		CodeSolution: "x = 1",
	})
	require.ErrorIs(t, err, ErrNotAssigned)

	_, err = svc.Submit(context.Background(), student.ID, dto.SubmissionCreateRequest{
		TaskID:       9999,
		CodeSolution: "x = 1",
	})
	require.ErrorIs(t, err, ErrTaskNotFound)
}

func TestSubmissionServiceAttemptsIncrement(t *testing.T) {
	db := setupServiceDB(t)
	svc := newSubmissionService(t, db)
	teacher := seedUser(t, db, "lehrer", models.RoleTeacher)
	student := seedUser(t, db, "mara", models.RoleStudent)
	task := seedAssignedTask(t, db, teacher.ID, student.ID, "Hallo Welt", nil)

	for want := 1; want <= 3; want++ {
		result, err := svc.Submit(context.Background(), student.ID, dto.SubmissionCreateRequest{
			TaskID:          task.ID,
			CodeSolution:    "x = 1",
			ExecutionOutput: "Hallo Welt",
		})
		require.NoError(t, err)
		require.Equal(t, want, result.Attempt)
	}

	history, err := svc.ListForStudent(context.Background(), student.ID, task.ID)
	require.NoError(t, err)
	require.Len(t, history, 3, "every attempt is kept")
}

func TestSubmissionServiceFlagsLateSubmissions(t *testing.T) {
	db := setupServiceDB(t)
	svc := newSubmissionService(t, db)
	teacher := seedUser(t, db, "lehrer", models.RoleTeacher)
	student := seedUser(t, db, "mara", models.RoleStudent)
	past := time.Now().Add(-time.Hour)
	task := seedAssignedTask(t, db, teacher.ID, student.ID, "Hallo Welt", &past)

	result, err := svc.Submit(context.Background(), student.ID, dto.SubmissionCreateRequest{
		TaskID:          task.ID,
		CodeSolution:    "x = 1",
		ExecutionOutput: "Hallo Welt",
	})
	require.NoError(t, err)
	require.True(t, result.PastDeadline, "late submissions are accepted but flagged")
	require.Equal(t, 100, result.PointsEarned)
}

func TestSubmissionServiceListForTeacherChecksOwnership(t *testing.T) {
	db := setupServiceDB(t)
	svc := newSubmissionService(t, db)
	teacher := seedUser(t, db, "lehrer", models.RoleTeacher)
	other := seedUser(t, db, "kollege", models.RoleTeacher)
	student := seedUser(t, db, "mara", models.RoleStudent)
	task := seedAssignedTask(t, db, teacher.ID, student.ID, "Hallo Welt", nil)

	_, err := svc.Submit(context.Background(), student.ID, dto.SubmissionCreateRequest{
		TaskID:          task.ID,
		CodeSolution:    "x = 1",
		ExecutionOutput: "Hallo Welt",
	})
	require.NoError(t, err)

	listed, err := svc.ListForTeacher(context.Background(), teacher.ID, task.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Equal(t, "mara", listed[0].Username)

	_, err = svc.ListForTeacher(context.Background(), other.ID, task.ID)
	require.ErrorIs(t, err, ErrTaskForbidden)

	all, err := svc.ListForTeacher(context.Background(), other.ID, 0)
	require.NoError(t, err)
	require.Empty(t, all)
}
