package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/albecabrera/ejercicios-didActicos-espaNol/internal/database"
	"github.com/albecabrera/ejercicios-didActicos-espaNol/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func createTeacher(t *testing.T, db *gorm.DB, username string) models.User {
	t.Helper()
	teacher := models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		Role:         models.RoleTeacher,
		FullName:     "Lehrer " + username,
	}
	require.NoError(t, db.Create(&teacher).Error)
	return teacher
}

func createStudent(t *testing.T, db *gorm.DB, username string) models.User {
	t.Helper()
	student := models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		Role:         models.RoleStudent,
		FullName:     "Schüler " + username,
	}
	require.NoError(t, db.Create(&student).Error)
	return student
}

func createTask(t *testing.T, db *gorm.DB, teacherID uint, code string) models.Task {
	t.Helper()
	task := models.Task{
		TeacherID:           teacherID,
		Title:               "FizzBuzz",
		ProgrammingLanguage: "python",
		TaskContent:         "Schreibe FizzBuzz",
		TaskType:            models.TaskTypePlaintext,
		MaxPoints:           models.DefaultMaxPoints,
		Difficulty:          models.DifficultyBeginner,
		ShareCode:           code,
		IsActive:            true,
	}
	require.NoError(t, db.Create(&task).Error)
	return task
}

func TestTaskRepositoryShareCodeLookupSkipsInactive(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTaskRepository(db)
	teacher := createTeacher(t, db, "frau.meier")
	task := createTask(t, db, teacher.ID, "AB12CD34")

	found, err := repo.GetByShareCode(context.Background(), "AB12CD34")
	require.NoError(t, err)
	require.Equal(t, task.ID, found.ID)

	exists, err := repo.ShareCodeExists(context.Background(), "AB12CD34")
	require.NoError(t, err)
	require.True(t, exists)

	require.NoError(t, repo.UpdateFields(context.Background(), task.ID, map[string]interface{}{"is_active": false}))

	_, err = repo.GetByShareCode(context.Background(), "AB12CD34")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// The code stays reserved even while the task is inactive.
	exists, err = repo.ShareCodeExists(context.Background(), "AB12CD34")
	require.NoError(t, err)
	require.True(t, exists)
}

func TestTaskRepositoryDeleteCascade(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTaskRepository(db)
	teacher := createTeacher(t, db, "herr.braun")
	student := createStudent(t, db, "ana")
	task := createTask(t, db, teacher.ID, "11223344")

	require.NoError(t, db.Create(&models.TaskAssignment{TaskID: task.ID, StudentID: student.ID}).Error)
	require.NoError(t, db.Create(&models.Submission{
		TaskID:       task.ID,
		StudentID:    student.ID,
		CodeSolution: "print('hi')",
		MaxPoints:    100,
		Attempt:      1,
		Status:       models.SubmissionStatusSubmitted,
	}).Error)

	require.NoError(t, repo.DeleteCascade(context.Background(), task.ID))

	var taskCount, assignmentCount, submissionCount int64
	require.NoError(t, db.Model(&models.Task{}).Count(&taskCount).Error)
	require.NoError(t, db.Model(&models.TaskAssignment{}).Count(&assignmentCount).Error)
	require.NoError(t, db.Model(&models.Submission{}).Count(&submissionCount).Error)
	require.Zero(t, taskCount)
	require.Zero(t, assignmentCount)
	require.Zero(t, submissionCount)
}

func TestTaskRepositoryCountsByTeacher(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTaskRepository(db)
	teacher := createTeacher(t, db, "frau.kern")
	other := createTeacher(t, db, "herr.voss")
	studentA := createStudent(t, db, "ben")
	studentB := createStudent(t, db, "mia")
	task := createTask(t, db, teacher.ID, "AAAA1111")
	foreign := createTask(t, db, other.ID, "BBBB2222")

	require.NoError(t, db.Create(&models.TaskAssignment{TaskID: task.ID, StudentID: studentA.ID}).Error)
	require.NoError(t, db.Create(&models.TaskAssignment{TaskID: task.ID, StudentID: studentB.ID}).Error)
	require.NoError(t, db.Create(&models.TaskAssignment{TaskID: foreign.ID, StudentID: studentA.ID}).Error)
	for i := 0; i < 3; i++ {
		require.NoError(t, db.Create(&models.Submission{
			TaskID:       task.ID,
			StudentID:    studentA.ID,
			CodeSolution: "x",
			MaxPoints:    100,
			Attempt:      i + 1,
			Status:       models.SubmissionStatusSubmitted,
		}).Error)
	}

	counts, err := repo.CountsByTeacher(context.Background(), teacher.ID)
	require.NoError(t, err)
	require.Len(t, counts, 1)
	require.Equal(t, int64(2), counts[task.ID].AssignedStudents)
	require.Equal(t, int64(3), counts[task.ID].TotalSubmissions)
}
