package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/albecabrera/ejercicios-didActicos-espaNol/internal/models"
)

func TestAssignmentRepositoryUpsertUpdatesDeadline(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAssignmentRepository(db)
	teacher := createTeacher(t, db, "frau.adam")
	student := createStudent(t, db, "lena")
	task := createTask(t, db, teacher.ID, "CAFE0001")

	first := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Second)
	require.NoError(t, repo.Upsert(context.Background(), task.ID, student.ID, &first))

	second := first.Add(48 * time.Hour)
	require.NoError(t, repo.Upsert(context.Background(), task.ID, student.ID, &second))

	var count int64
	require.NoError(t, db.Model(&models.TaskAssignment{}).Count(&count).Error)
	require.Equal(t, int64(1), count, "upsert must not duplicate the (task, student) pair")

	assignment, err := repo.Get(context.Background(), task.ID, student.ID)
	require.NoError(t, err)
	require.NotNil(t, assignment.Deadline)
	require.WithinDuration(t, second, *assignment.Deadline, time.Second)
}

func TestAssignmentRepositoryCountDistinctStudents(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAssignmentRepository(db)
	teacher := createTeacher(t, db, "herr.falk")
	studentA := createStudent(t, db, "omar")
	studentB := createStudent(t, db, "ines")
	taskOne := createTask(t, db, teacher.ID, "CAFE0002")
	taskTwo := createTask(t, db, teacher.ID, "CAFE0003")

	require.NoError(t, repo.Upsert(context.Background(), taskOne.ID, studentA.ID, nil))
	require.NoError(t, repo.Upsert(context.Background(), taskTwo.ID, studentA.ID, nil))
	require.NoError(t, repo.Upsert(context.Background(), taskOne.ID, studentB.ID, nil))

	count, err := repo.CountDistinctStudentsByTeacher(context.Background(), teacher.ID)
	require.NoError(t, err)
	require.Equal(t, int64(2), count, "same student across tasks counts once")
}
