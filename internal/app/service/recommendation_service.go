package service

import (
	"sync"

	"github.com/krishnakath/dairyshop-backend/config"
	"github.com/krishnakath/dairyshop-backend/internal/app/model"
	"github.com/krishnakath/dairyshop-backend/internal/app/repository"
	"github.com/krishnakath/dairyshop-backend/pkg/logger"
	"github.com/krishnakath/dairyshop-backend/pkg/similarity"
)

// RecommendationService serves product recommendations from a precomputed
// similarity model. The model is trained offline (cmd/train) and loaded from
// disk; Reload picks up a retrained artifact without a restart.
type RecommendationService interface {
	RelatedProducts(productID uint, productName string) ([]model.Product, error)
	Reload() error
	Ready() bool
}

type recommendationService struct {
	productRepo repository.ProductRepository
	cfg         config.RecommenderConfig

	mu    sync.RWMutex
	model *similarity.Model
}

func NewRecommendationService(
	productRepo repository.ProductRepository,
	cfg config.RecommenderConfig,
) RecommendationService {
	s := &recommendationService{
		productRepo: productRepo,
		cfg:         cfg,
	}

	// A missing artifact is not fatal. The service answers with empty
	// recommendations until a model is trained and reloaded.
	if err := s.Reload(); err != nil {
		logger.Warn("Similarity model not loaded, recommendations disabled", map[string]interface{}{
			"model_path": cfg.ModelPath,
			"error":      err.Error(),
		})
	}

	return s
}

func (s *recommendationService) Reload() error {
	m, err := similarity.LoadModel(s.cfg.ModelPath)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.model = m
	s.mu.Unlock()

	logger.Info("Similarity model loaded", map[string]interface{}{
		"model_path": s.cfg.ModelPath,
		"products":   len(m.Entries),
	})

	return nil
}

func (s *recommendationService) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.model != nil
}

func (s *recommendationService) RelatedProducts(productID uint, productName string) ([]model.Product, error) {
	s.mu.RLock()
	m := s.model
	s.mu.RUnlock()

	if m == nil {
		logger.Debug("Recommendation requested but no model loaded", map[string]interface{}{
			"product_name": productName,
		})
		return []model.Product{}, nil
	}

	if !m.Contains(productName) {
		logger.Debug("Product not present in similarity model", map[string]interface{}{
			"product_name": productName,
		})
		return []model.Product{}, nil
	}

	scored := m.TopN(productName, s.cfg.TopN)
	if len(scored) == 0 {
		return []model.Product{}, nil
	}

	names := make([]string, 0, len(scored))
	for _, sc := range scored {
		names = append(names, sc.Entry.ProductName)
	}

	// FindByNames preserves ranking order and silently drops names that no
	// longer exist in the catalog (deleted since the model was trained).
	resolved, err := s.productRepo.FindByNames(names)
	if err != nil {
		logger.Error("Failed to resolve recommended products", err, map[string]interface{}{
			"product_name": productName,
		})
		return nil, err
	}

	// The name lookup is case-insensitive, so a case-variant catalog name
	// can resolve back to the query product. Drop it by ID.
	products := make([]model.Product, 0, len(resolved))
	for _, p := range resolved {
		if p.ID == productID {
			continue
		}
		products = append(products, p)
	}

	logger.Debug("Recommendations served", map[string]interface{}{
		"product_name": productName,
		"count":        len(products),
	})

	return products, nil
}
