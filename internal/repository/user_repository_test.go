package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/vuln-kanban-api/internal/models"
)

func TestMemoryUserRepository(t *testing.T) {
	repo := NewUserRepository()

	require.NoError(t, repo.Create(&models.User{ID: "u1", Email: "Analyst@Example.com", Name: "Analyst"}))
	require.ErrorIs(t, repo.Create(&models.User{ID: "u2", Email: "analyst@example.com "}), ErrDuplicateEmail)

	byEmail, err := repo.FindByEmail("analyst@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", byEmail.ID)

	byID, err := repo.FindByID("u1")
	require.NoError(t, err)
	byID.Name = "mutated"

	again, err := repo.FindByID("u1")
	require.NoError(t, err)
	assert.Equal(t, "Analyst", again.Name)

	_, err = repo.FindByID("missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
	_, err = repo.FindByEmail("missing@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
