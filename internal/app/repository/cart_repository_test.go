package repository

import (
	"testing"

	"github.com/krishnakath/dairyshop-backend/internal/app/model"
	"github.com/krishnakath/dairyshop-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupCartTest(t *testing.T) (*gorm.DB, CartRepository, *model.User, *model.Product) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	repo := NewCartRepository(testDB)

	user := &model.User{
		Email:        "test@example.com",
		PasswordHash: "hash",
		Name:         "Test User",
		Role:         model.RoleUser,
	}
	testDB.Create(user)

	product := &model.Product{
		Name:          "Fresh Milk 1L",
		Price:         60,
		Category:      model.CategoryMilk,
		StockQuantity: 10,
	}
	testDB.Create(product)

	return testDB, repo, user, product
}

func TestCartRepository_FindOrCreateByUserID(t *testing.T) {
	_, repo, user, _ := setupCartTest(t)

	cart, err := repo.FindOrCreateByUserID(user.ID)
	require.NoError(t, err)
	assert.NotZero(t, cart.ID)
	assert.Equal(t, user.ID, cart.UserID)

	// Second call returns the same cart
	again, err := repo.FindOrCreateByUserID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, cart.ID, again.ID)
}

func TestCartRepository_CreateItem(t *testing.T) {
	_, repo, user, product := setupCartTest(t)

	cart, err := repo.FindOrCreateByUserID(user.ID)
	require.NoError(t, err)

	item := &model.CartItem{
		CartID:    cart.ID,
		ProductID: product.ID,
		Quantity:  2,
	}
	err = repo.CreateItem(item)
	assert.NoError(t, err)
	assert.NotZero(t, item.ID)
}

func TestCartRepository_FindItems(t *testing.T) {
	testDB, repo, user, product := setupCartTest(t)

	cart, err := repo.FindOrCreateByUserID(user.ID)
	require.NoError(t, err)

	other := &model.Product{
		Name:          "Paneer 200g",
		Price:         90,
		Category:      model.CategoryPaneer,
		StockQuantity: 5,
	}
	testDB.Create(other)

	require.NoError(t, repo.CreateItem(&model.CartItem{CartID: cart.ID, ProductID: product.ID, Quantity: 2}))
	require.NoError(t, repo.CreateItem(&model.CartItem{CartID: cart.ID, ProductID: other.ID, Quantity: 1}))

	items, err := repo.FindItems(cart.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, product.Name, items[0].Product.Name)
}

func TestCartRepository_FindItem(t *testing.T) {
	_, repo, user, product := setupCartTest(t)

	cart, err := repo.FindOrCreateByUserID(user.ID)
	require.NoError(t, err)

	require.NoError(t, repo.CreateItem(&model.CartItem{CartID: cart.ID, ProductID: product.ID, Quantity: 3}))

	found, err := repo.FindItem(cart.ID, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, found.Quantity)

	_, err = repo.FindItem(cart.ID, 9999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCartRepository_UpdateItem(t *testing.T) {
	_, repo, user, product := setupCartTest(t)

	cart, err := repo.FindOrCreateByUserID(user.ID)
	require.NoError(t, err)

	item := &model.CartItem{CartID: cart.ID, ProductID: product.ID, Quantity: 1}
	require.NoError(t, repo.CreateItem(item))

	item.Quantity = 5
	require.NoError(t, repo.UpdateItem(item))

	found, err := repo.FindItem(cart.ID, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, found.Quantity)
}

func TestCartRepository_DeleteItem(t *testing.T) {
	_, repo, user, product := setupCartTest(t)

	cart, err := repo.FindOrCreateByUserID(user.ID)
	require.NoError(t, err)

	require.NoError(t, repo.CreateItem(&model.CartItem{CartID: cart.ID, ProductID: product.ID, Quantity: 2}))
	require.NoError(t, repo.DeleteItem(cart.ID, product.ID))

	_, err = repo.FindItem(cart.ID, product.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCartRepository_DeleteItems(t *testing.T) {
	testDB, repo, user, product := setupCartTest(t)

	cart, err := repo.FindOrCreateByUserID(user.ID)
	require.NoError(t, err)

	other := &model.Product{
		Name:          "Ghee 500ml",
		Price:         450,
		Category:      model.CategoryGhee,
		StockQuantity: 8,
	}
	testDB.Create(other)

	require.NoError(t, repo.CreateItem(&model.CartItem{CartID: cart.ID, ProductID: product.ID, Quantity: 2}))
	require.NoError(t, repo.CreateItem(&model.CartItem{CartID: cart.ID, ProductID: other.ID, Quantity: 1}))

	require.NoError(t, repo.DeleteItems(cart.ID))

	items, err := repo.FindItems(cart.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}
