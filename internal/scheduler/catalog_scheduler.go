package scheduler

import (
	"github.com/krishnakath/dairyshop-backend/config"
	"github.com/krishnakath/dairyshop-backend/internal/app/service"
	"github.com/krishnakath/dairyshop-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

// CatalogScheduler runs the periodic catalog jobs: reloading the trained
// similarity model and scanning for products running low on stock.
type CatalogScheduler struct {
	cron                  *cron.Cron
	recommendationService service.RecommendationService
	productService        service.ProductService
	cfg                   config.RecommenderConfig
}

func NewCatalogScheduler(
	recommendationService service.RecommendationService,
	productService service.ProductService,
	cfg config.RecommenderConfig,
) *CatalogScheduler {
	return &CatalogScheduler{
		cron:                  cron.New(),
		recommendationService: recommendationService,
		productService:        productService,
		cfg:                   cfg,
	}
}

func (s *CatalogScheduler) Start() error {
	// Pick up a freshly trained similarity model without a restart.
	_, err := s.cron.AddFunc(s.cfg.ReloadSchedule, func() {
		logger.Info("Reloading similarity model", map[string]interface{}{
			"model_path": s.cfg.ModelPath,
		})

		if err := s.recommendationService.Reload(); err != nil {
			logger.Warn("Similarity model reload failed", map[string]interface{}{
				"model_path": s.cfg.ModelPath,
				"error":      err.Error(),
			})
			return
		}

		logger.Info("Similarity model reloaded", nil)
	})
	if err != nil {
		logger.Error("Failed to schedule model reload", err, map[string]interface{}{
			"schedule": s.cfg.ReloadSchedule,
		})
		return err
	}

	// Nightly low stock scan at 3 AM, before the morning restock run.
	_, err = s.cron.AddFunc("0 3 * * *", func() {
		products, err := s.productService.LowStockProducts()
		if err != nil {
			logger.Error("Low stock scan failed", err, nil)
			return
		}

		if len(products) == 0 {
			logger.Info("Low stock scan found nothing to restock", nil)
			return
		}

		for _, product := range products {
			logger.Warn("Product running low on stock", map[string]interface{}{
				"product_id": product.ID,
				"name":       product.Name,
				"stock":      product.StockQuantity,
			})
		}
	})
	if err != nil {
		logger.Error("Failed to schedule low stock scan", err, nil)
		return err
	}

	s.cron.Start()
	logger.Info("Catalog scheduler started", map[string]interface{}{
		"reload_schedule": s.cfg.ReloadSchedule,
	})

	return nil
}

func (s *CatalogScheduler) Stop() {
	logger.Info("Stopping catalog scheduler...", nil)
	s.cron.Stop()
	logger.Info("Catalog scheduler stopped", nil)
}
