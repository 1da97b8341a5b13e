package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/albecabrera/ejercicios-didActicos-espaNol/internal/models"
)

func TestSessionRepositoryActiveLookup(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSessionRepository(db)
	user := createStudent(t, db, "tomas")
	now := time.Now()

	require.NoError(t, repo.Create(context.Background(), &models.Session{
		Token:     "livetoken0000000000000000000000",
		UserID:    user.ID,
		ExpiresAt: now.Add(time.Hour),
	}))
	require.NoError(t, repo.Create(context.Background(), &models.Session{
		Token:     "deadtoken0000000000000000000000",
		UserID:    user.ID,
		ExpiresAt: now.Add(-time.Hour),
	}))

	session, err := repo.GetActiveByToken(context.Background(), "livetoken0000000000000000000000", now)
	require.NoError(t, err)
	require.Equal(t, user.ID, session.UserID)
	require.Equal(t, user.Username, session.User.Username)

	_, err = repo.GetActiveByToken(context.Background(), "deadtoken0000000000000000000000", now)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestSessionRepositoryDeleteExpiredKeepsLiveSessions(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSessionRepository(db)
	user := createStudent(t, db, "carla")
	now := time.Now()

	require.NoError(t, repo.Create(context.Background(), &models.Session{
		Token:     "fresh000000000000000000000000000",
		UserID:    user.ID,
		ExpiresAt: now.Add(time.Hour),
	}))
	require.NoError(t, repo.Create(context.Background(), &models.Session{
		Token:     "stale000000000000000000000000000",
		UserID:    user.ID,
		ExpiresAt: now.Add(-time.Minute),
	}))

	require.NoError(t, repo.DeleteExpired(context.Background(), now))

	var count int64
	require.NoError(t, db.Model(&models.Session{}).Count(&count).Error)
	require.Equal(t, int64(1), count)

	_, err := repo.GetActiveByToken(context.Background(), "fresh000000000000000000000000000", now)
	require.NoError(t, err)
}
