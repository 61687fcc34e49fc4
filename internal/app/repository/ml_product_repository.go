package repository

import (
	"github.com/krishnakath/dairyshop-backend/internal/app/model"
	"github.com/krishnakath/dairyshop-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MLProductRepository manages the recommendation training corpus.
type MLProductRepository interface {
	Upsert(rows []model.MLProduct) error
	FindAll() ([]model.MLProduct, error)
}

type mlProductRepository struct {
	db *gorm.DB
}

func NewMLProductRepository(db *gorm.DB) MLProductRepository {
	return &mlProductRepository{db: db}
}

// Upsert inserts corpus rows, replacing descriptions for existing names.
func (r *mlProductRepository) Upsert(rows []model.MLProduct) error {
	if len(rows) == 0 {
		return nil
	}

	logger.Debug("Upserting training corpus rows in database", map[string]interface{}{
		"count": len(rows),
	})

	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "product_name"}},
		DoUpdates: clause.AssignmentColumns([]string{"product_id", "description"}),
	}).Create(&rows).Error
	if err != nil {
		logger.Error("Failed to upsert training corpus rows in database", err, map[string]interface{}{
			"count": len(rows),
		})
		return err
	}
	return nil
}

func (r *mlProductRepository) FindAll() ([]model.MLProduct, error) {
	var rows []model.MLProduct
	if err := r.db.Order("id ASC").Find(&rows).Error; err != nil {
		logger.Error("Failed to find training corpus rows in database", err, nil)
		return nil, err
	}
	return rows, nil
}
