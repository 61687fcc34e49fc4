package service

import (
	"path/filepath"
	"testing"

	"github.com/krishnakath/dairyshop-backend/config"
	"github.com/krishnakath/dairyshop-backend/internal/app/model"
	"github.com/krishnakath/dairyshop-backend/internal/app/repository"
	"github.com/krishnakath/dairyshop-backend/internal/db"
	"github.com/krishnakath/dairyshop-backend/pkg/similarity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func trainTestModel(t *testing.T, products []model.Product) string {
	entries := make([]similarity.Entry, 0, len(products))
	docs := make([]string, 0, len(products))
	for _, p := range products {
		entries = append(entries, similarity.Entry{ProductID: p.ID, ProductName: p.Name})
		docs = append(docs, p.Name+" "+p.Description)
	}

	_, m, err := similarity.Train(entries, docs)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "similarity.gob")
	require.NoError(t, similarity.SaveModel(m, path))
	return path
}

func setupRecommendationTest(t *testing.T) (RecommendationService, []model.Product, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	products := []model.Product{
		{Name: "Full Cream Milk 1L", Description: "Fresh creamy cow milk rich and creamy", Price: 60, Category: model.CategoryMilk, StockQuantity: 50},
		{Name: "Toned Milk 1L", Description: "Light cow milk fresh and healthy", Price: 48, Category: model.CategoryMilk, StockQuantity: 30},
		{Name: "Malai Paneer 200g", Description: "Soft paneer cubes for curry", Price: 90, Category: model.CategoryPaneer, StockQuantity: 20},
		{Name: "Kaju Katli 250g", Description: "Cashew sweet with silver leaf", Price: 250, Category: model.CategorySweets, StockQuantity: 15},
	}
	for i := range products {
		require.NoError(t, testDB.Create(&products[i]).Error)
	}

	modelPath := trainTestModel(t, products)
	productRepo := repository.NewProductRepository(testDB)
	svc := NewRecommendationService(productRepo, config.RecommenderConfig{
		ModelPath: modelPath,
		TopN:      3,
	})

	return svc, products, testDB
}

func TestRecommendationService_RelatedProducts(t *testing.T) {
	svc, products, _ := setupRecommendationTest(t)
	require.True(t, svc.Ready())

	related, err := svc.RelatedProducts(products[0].ID, products[0].Name)
	require.NoError(t, err)
	require.NotEmpty(t, related)

	// The other milk shares the most vocabulary so it ranks first, and the
	// query product itself is never returned.
	assert.Equal(t, "Toned Milk 1L", related[0].Name)
	for _, p := range related {
		assert.NotEqual(t, products[0].Name, p.Name)
	}
}

func TestRecommendationService_UnknownProduct(t *testing.T) {
	svc, _, _ := setupRecommendationTest(t)

	related, err := svc.RelatedProducts(9999, "Nonexistent Product")
	assert.NoError(t, err)
	assert.Empty(t, related)
}

func TestRecommendationService_DeletedProductDropped(t *testing.T) {
	svc, products, testDB := setupRecommendationTest(t)

	// Delete a catalog product after training; it must vanish from results
	// rather than erroring.
	require.NoError(t, testDB.Delete(&model.Product{}, products[1].ID).Error)

	related, err := svc.RelatedProducts(products[0].ID, products[0].Name)
	require.NoError(t, err)
	for _, p := range related {
		assert.NotEqual(t, products[1].Name, p.Name)
	}
}

func TestRecommendationService_MissingArtifact(t *testing.T) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	productRepo := repository.NewProductRepository(testDB)
	svc := NewRecommendationService(productRepo, config.RecommenderConfig{
		ModelPath: filepath.Join(t.TempDir(), "missing.gob"),
		TopN:      3,
	})

	assert.False(t, svc.Ready())

	related, err := svc.RelatedProducts(1, "Full Cream Milk 1L")
	assert.NoError(t, err)
	assert.Empty(t, related)
}

func TestRecommendationService_Reload(t *testing.T) {
	svc, _, testDB := setupRecommendationTest(t)

	// Retrain with an extra product and reload in place.
	extra := model.Product{Name: "Fresh Cream 250ml", Description: "Rich creamy milk cream", Price: 80, Category: model.CategoryMilk, StockQuantity: 10}
	require.NoError(t, testDB.Create(&extra).Error)

	var all []model.Product
	require.NoError(t, testDB.Find(&all).Error)
	newPath := trainTestModel(t, all)

	impl := svc.(*recommendationService)
	impl.cfg.ModelPath = newPath
	require.NoError(t, svc.Reload())

	related, err := svc.RelatedProducts(extra.ID, "Fresh Cream 250ml")
	require.NoError(t, err)
	assert.NotEmpty(t, related)
}

func TestRecommendationService_CaseVariantNameExcluded(t *testing.T) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	// Unique names are case-sensitive, so "Milk" and "MILK" coexist in the
	// catalog while the case-insensitive name lookup matches both.
	products := []model.Product{
		{Name: "Milk", Description: "Fresh cow milk", Price: 60, Category: model.CategoryMilk, StockQuantity: 50},
		{Name: "MILK", Description: "Fresh cow milk bottled", Price: 62, Category: model.CategoryMilk, StockQuantity: 40},
		{Name: "Curd", Description: "Thick set curd from cow milk", Price: 45, Category: model.CategoryCurd, StockQuantity: 20},
	}
	for i := range products {
		require.NoError(t, testDB.Create(&products[i]).Error)
	}

	modelPath := trainTestModel(t, products)
	productRepo := repository.NewProductRepository(testDB)
	svc := NewRecommendationService(productRepo, config.RecommenderConfig{
		ModelPath: modelPath,
		TopN:      3,
	})

	related, err := svc.RelatedProducts(products[1].ID, products[1].Name)
	require.NoError(t, err)
	for _, p := range related {
		assert.NotEqual(t, products[1].ID, p.ID)
	}
}
