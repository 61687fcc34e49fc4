package service

import (
	"errors"

	"github.com/krishnakath/dairyshop-backend/config"
	"github.com/krishnakath/dairyshop-backend/internal/app/model"
	"github.com/krishnakath/dairyshop-backend/internal/app/repository"
	"github.com/krishnakath/dairyshop-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

type ProductSort string

const (
	ProductSortPrice     ProductSort = "price"
	ProductSortCreatedAt ProductSort = "created_at"
	ProductSortName      ProductSort = "name"
)

type ProductListOptions struct {
	Category      *model.ProductCategory
	Search        string
	InStockOnly   bool
	Sort          ProductSort
	SortAscending bool
	Limit         int
	Offset        int
}

type ProductService interface {
	ListProducts(opts ProductListOptions) ([]model.Product, error)
	GetProductByID(id uint) (*model.Product, error)
	GetProductsByCategory(category model.ProductCategory) ([]model.Product, error)
	ListCategories() ([]model.ProductCategory, error)
	CreateProduct(product *model.Product) error
	UpdateProduct(product *model.Product) error
	DeleteProduct(id uint) error
	AdjustStock(productID uint, delta int) (int, error)
	LowStockProducts() ([]model.Product, error)
}

type productService struct {
	productRepo repository.ProductRepository
	catalog     config.CatalogConfig
}

func NewProductService(productRepo repository.ProductRepository, catalog config.CatalogConfig) ProductService {
	return &productService{
		productRepo: productRepo,
		catalog:     catalog,
	}
}

func (s *productService) ListProducts(opts ProductListOptions) ([]model.Product, error) {
	logger.Debug("Listing products", map[string]interface{}{
		"category": opts.Category,
		"search":   opts.Search,
		"sort":     opts.Sort,
		"limit":    opts.Limit,
		"offset":   opts.Offset,
	})

	filter := repository.ProductFilter{
		Category:      opts.Category,
		Search:        opts.Search,
		InStockOnly:   opts.InStockOnly,
		SortAscending: opts.SortAscending,
		Limit:         opts.Limit,
		Offset:        opts.Offset,
	}

	switch opts.Sort {
	case ProductSortPrice:
		filter.SortBy = repository.ProductSortPrice
	case ProductSortName:
		filter.SortBy = repository.ProductSortName
	case ProductSortCreatedAt:
		fallthrough
	default:
		filter.SortBy = repository.ProductSortCreatedAt
	}

	products, err := s.productRepo.FindWithFilter(filter)
	if err != nil {
		logger.Error("Failed to list products", err)
		return nil, err
	}
	return products, nil
}

func (s *productService) GetProductByID(id uint) (*model.Product, error) {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Product not found", map[string]interface{}{
				"product_id": id,
			})
			return nil, ErrProductNotFound
		}
		logger.Error("Failed to fetch product", err, map[string]interface{}{
			"product_id": id,
		})
		return nil, err
	}
	return product, nil
}

func (s *productService) GetProductsByCategory(category model.ProductCategory) ([]model.Product, error) {
	products, err := s.productRepo.FindByCategory(category)
	if err != nil {
		logger.Error("Failed to fetch products by category", err, map[string]interface{}{
			"category": category,
		})
		return nil, err
	}
	return products, nil
}

func (s *productService) ListCategories() ([]model.ProductCategory, error) {
	categories, err := s.productRepo.ListCategories()
	if err != nil {
		logger.Error("Failed to fetch product categories", err, nil)
		return nil, err
	}
	return categories, nil
}

// CreateProduct saves a new catalog entry. A zero stock quantity is
// replaced by the catalog default so new products are sellable immediately.
func (s *productService) CreateProduct(product *model.Product) error {
	if product.StockQuantity == 0 {
		product.StockQuantity = s.catalog.DefaultStock
	}

	logger.Info("Creating product", map[string]interface{}{
		"name":     product.Name,
		"category": product.Category,
		"stock":    product.StockQuantity,
	})

	if err := s.productRepo.Create(product); err != nil {
		logger.Error("Failed to create product", err, map[string]interface{}{
			"name": product.Name,
		})
		return err
	}
	return nil
}

func (s *productService) UpdateProduct(product *model.Product) error {
	_, err := s.productRepo.FindByID(product.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		logger.Error("Failed to check product existence", err, map[string]interface{}{
			"product_id": product.ID,
		})
		return err
	}

	if err := s.productRepo.Update(product); err != nil {
		logger.Error("Failed to update product", err, map[string]interface{}{
			"product_id": product.ID,
		})
		return err
	}
	return nil
}

func (s *productService) DeleteProduct(id uint) error {
	_, err := s.productRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return err
	}
	return s.productRepo.Delete(id)
}

// AdjustStock applies a relative stock change and returns the new level.
// A negative delta larger than the current stock clamps to zero instead of
// going negative. The clamp is computed here so it behaves the same on
// every database backend.
func (s *productService) AdjustStock(productID uint, delta int) (int, error) {
	logger.Info("Adjusting product stock", map[string]interface{}{
		"product_id": productID,
		"delta":      delta,
	})

	product, err := s.productRepo.FindByID(productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrProductNotFound
		}
		return 0, err
	}

	newLevel := product.StockQuantity + delta
	if newLevel < 0 {
		newLevel = 0
	}

	if err := s.productRepo.SetStock(productID, newLevel); err != nil {
		logger.Error("Failed to adjust product stock", err, map[string]interface{}{
			"product_id": productID,
			"new_level":  newLevel,
		})
		return 0, err
	}

	if newLevel < s.catalog.LowStockThreshold {
		logger.Warn("Product stock below threshold", map[string]interface{}{
			"product_id": productID,
			"stock":      newLevel,
			"threshold":  s.catalog.LowStockThreshold,
		})
	}

	logger.Info("Product stock adjusted", map[string]interface{}{
		"product_id": productID,
		"new_level":  newLevel,
	})
	return newLevel, nil
}

func (s *productService) LowStockProducts() ([]model.Product, error) {
	return s.productRepo.FindBelowStock(s.catalog.LowStockThreshold)
}
