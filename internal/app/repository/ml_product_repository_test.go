package repository

import (
	"testing"

	"github.com/krishnakath/dairyshop-backend/internal/app/model"
	"github.com/krishnakath/dairyshop-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMLProductRepository_UpsertAndFindAll(t *testing.T) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	repo := NewMLProductRepository(testDB)

	rows := []model.MLProduct{
		{ProductID: 1, ProductName: "Fresh Milk 1L", Description: "full cream milk"},
		{ProductID: 2, ProductName: "Paneer 200g", Description: "cottage cheese"},
	}
	require.NoError(t, repo.Upsert(rows))

	// Upserting again replaces the description and the catalog reference
	require.NoError(t, repo.Upsert([]model.MLProduct{
		{ProductID: 7, ProductName: "Fresh Milk 1L", Description: "pasteurized full cream milk"},
	}))

	all, err := repo.FindAll()
	require.NoError(t, err)
	require.Len(t, all, 2)

	byName := map[string]model.MLProduct{}
	for _, row := range all {
		byName[row.ProductName] = row
	}
	assert.Equal(t, "pasteurized full cream milk", byName["Fresh Milk 1L"].Description)
	assert.Equal(t, uint(7), byName["Fresh Milk 1L"].ProductID)
	assert.Equal(t, "cottage cheese", byName["Paneer 200g"].Description)
	assert.Equal(t, uint(2), byName["Paneer 200g"].ProductID)
}

func TestMLProductRepository_UpsertEmpty(t *testing.T) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	repo := NewMLProductRepository(testDB)
	assert.NoError(t, repo.Upsert(nil))
}

func TestFeedbackRepository_CreateAndFindAll(t *testing.T) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	repo := NewFeedbackRepository(testDB)

	require.NoError(t, repo.Create(&model.Feedback{
		Name:    "Guest",
		Email:   "guest@example.com",
		Message: "Loved the paneer",
	}))

	user := &model.User{Email: "user@example.com", PasswordHash: "hash", Name: "User", Role: model.RoleUser}
	testDB.Create(user)
	require.NoError(t, repo.Create(&model.Feedback{
		UserID:  &user.ID,
		Name:    user.Name,
		Email:   user.Email,
		Message: "Please stock more ghee",
	}))

	all, err := repo.FindAll()
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.NotNil(t, all[0].CreatedAt)
}
