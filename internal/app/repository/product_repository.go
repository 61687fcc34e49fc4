package repository

import (
	"fmt"
	"strings"

	"github.com/krishnakath/dairyshop-backend/internal/app/model"
	"github.com/krishnakath/dairyshop-backend/pkg/logger"
	"gorm.io/gorm"
)

type ProductSort string

const (
	ProductSortPrice     ProductSort = "price"
	ProductSortCreatedAt ProductSort = "created_at"
	ProductSortName      ProductSort = "name"
)

type ProductFilter struct {
	Category      *model.ProductCategory
	Search        string
	InStockOnly   bool
	SortBy        ProductSort
	SortAscending bool
	Limit         int
	Offset        int
}

type ProductRepository interface {
	Create(product *model.Product) error
	FindAll() ([]model.Product, error)
	FindWithFilter(filter ProductFilter) ([]model.Product, error)
	FindByID(id uint) (*model.Product, error)
	FindByIDs(ids []uint) ([]model.Product, error)
	FindByName(name string) (*model.Product, error)
	FindByNames(names []string) ([]model.Product, error)
	FindByCategory(category model.ProductCategory) ([]model.Product, error)
	FindBelowStock(threshold int) ([]model.Product, error)
	ListCategories() ([]model.ProductCategory, error)
	Update(product *model.Product) error
	Delete(id uint) error
	SetStock(id uint, quantity int) error
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(product *model.Product) error {
	logger.Debug("Creating product in database", map[string]interface{}{
		"name":     product.Name,
		"category": product.Category,
	})

	if err := r.db.Create(product).Error; err != nil {
		logger.Error("Failed to create product in database", err, map[string]interface{}{
			"name":     product.Name,
			"category": product.Category,
		})
		return err
	}

	logger.Debug("Product created in database", map[string]interface{}{
		"product_id": product.ID,
		"name":       product.Name,
	})
	return nil
}

func (r *productRepository) baseQuery() *gorm.DB {
	return r.db.Model(&model.Product{}).Preload("Specifications")
}

func (r *productRepository) FindAll() ([]model.Product, error) {
	return r.FindWithFilter(ProductFilter{})
}

func (r *productRepository) FindWithFilter(filter ProductFilter) ([]model.Product, error) {
	logger.Debug("Finding products with filter", map[string]interface{}{
		"category":  filter.Category,
		"search":    filter.Search,
		"in_stock":  filter.InStockOnly,
		"sort_by":   filter.SortBy,
		"ascending": filter.SortAscending,
		"limit":     filter.Limit,
		"offset":    filter.Offset,
	})

	query := r.baseQuery()

	if filter.Category != nil {
		query = query.Where("category = ?", *filter.Category)
	}
	if filter.InStockOnly {
		query = query.Where("stock_quantity > 0")
	}
	if filter.Search != "" {
		like := fmt.Sprintf("%%%s%%", filter.Search)
		query = query.Where("name LIKE ? OR description LIKE ?", like, like)
	}

	direction := "DESC"
	if filter.SortAscending {
		direction = "ASC"
	}
	switch filter.SortBy {
	case ProductSortPrice:
		query = query.Order("price " + direction)
	case ProductSortName:
		query = query.Order("name " + direction)
	case ProductSortCreatedAt:
		fallthrough
	default:
		query = query.Order("created_at " + direction)
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var products []model.Product
	if err := query.Find(&products).Error; err != nil {
		logger.Error("Failed to find products with filter", err, map[string]interface{}{
			"category": filter.Category,
			"search":   filter.Search,
		})
		return nil, err
	}

	logger.Debug("Products found with filter", map[string]interface{}{
		"count": len(products),
	})
	return products, nil
}

func (r *productRepository) FindByID(id uint) (*model.Product, error) {
	var product model.Product
	if err := r.baseQuery().First(&product, id).Error; err != nil {
		logger.Error("Failed to find product by ID in database", err, map[string]interface{}{
			"product_id": id,
		})
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) FindByIDs(ids []uint) ([]model.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var products []model.Product
	if err := r.baseQuery().Where("id IN ?", ids).Find(&products).Error; err != nil {
		logger.Error("Failed to find products by IDs in database", err, map[string]interface{}{
			"count": len(ids),
		})
		return nil, err
	}
	return products, nil
}

func (r *productRepository) FindByName(name string) (*model.Product, error) {
	var product model.Product
	if err := r.baseQuery().Where("LOWER(name) = ?", strings.ToLower(name)).First(&product).Error; err != nil {
		logger.Error("Failed to find product by name in database", err, map[string]interface{}{
			"name": name,
		})
		return nil, err
	}
	return &product, nil
}

// FindByNames returns products matching the given names, preserving the
// input order. Names without a live product are skipped.
func (r *productRepository) FindByNames(names []string) ([]model.Product, error) {
	if len(names) == 0 {
		return nil, nil
	}

	lowered := make([]string, len(names))
	for i, n := range names {
		lowered[i] = strings.ToLower(n)
	}

	var products []model.Product
	if err := r.baseQuery().Where("LOWER(name) IN ?", lowered).Find(&products).Error; err != nil {
		logger.Error("Failed to find products by names in database", err, map[string]interface{}{
			"count": len(names),
		})
		return nil, err
	}

	byName := make(map[string]model.Product, len(products))
	for _, p := range products {
		byName[strings.ToLower(p.Name)] = p
	}

	ordered := make([]model.Product, 0, len(names))
	for _, n := range lowered {
		if p, ok := byName[n]; ok {
			ordered = append(ordered, p)
		}
	}
	return ordered, nil
}

func (r *productRepository) FindByCategory(category model.ProductCategory) ([]model.Product, error) {
	return r.FindWithFilter(ProductFilter{Category: &category})
}

func (r *productRepository) FindBelowStock(threshold int) ([]model.Product, error) {
	var products []model.Product
	if err := r.db.Where("stock_quantity < ?", threshold).
		Order("stock_quantity ASC").
		Find(&products).Error; err != nil {
		logger.Error("Failed to find low stock products in database", err, map[string]interface{}{
			"threshold": threshold,
		})
		return nil, err
	}
	return products, nil
}

func (r *productRepository) ListCategories() ([]model.ProductCategory, error) {
	var values []string
	if err := r.db.Model(&model.Product{}).
		Where("category IS NOT NULL AND category <> ''").
		Distinct().
		Order("category ASC").
		Pluck("category", &values).Error; err != nil {
		logger.Error("Failed to fetch distinct categories", err, nil)
		return nil, err
	}

	categories := make([]model.ProductCategory, len(values))
	for i, v := range values {
		categories[i] = model.ProductCategory(v)
	}
	return categories, nil
}

func (r *productRepository) Update(product *model.Product) error {
	logger.Debug("Updating product in database", map[string]interface{}{
		"product_id": product.ID,
		"name":       product.Name,
	})

	if err := r.db.Save(product).Error; err != nil {
		logger.Error("Failed to update product in database", err, map[string]interface{}{
			"product_id": product.ID,
			"name":       product.Name,
		})
		return err
	}
	return nil
}

func (r *productRepository) Delete(id uint) error {
	logger.Debug("Deleting product from database", map[string]interface{}{
		"product_id": id,
	})

	if err := r.db.Delete(&model.Product{}, id).Error; err != nil {
		logger.Error("Failed to delete product from database", err, map[string]interface{}{
			"product_id": id,
		})
		return err
	}
	return nil
}

// SetStock writes an absolute stock level. Relative adjustments are
// computed and clamped by the service layer.
func (r *productRepository) SetStock(id uint, quantity int) error {
	logger.Debug("Setting product stock in database", map[string]interface{}{
		"product_id": id,
		"quantity":   quantity,
	})

	result := r.db.Model(&model.Product{}).Where("id = ?", id).
		Update("stock_quantity", quantity)
	if result.Error != nil {
		logger.Error("Failed to set product stock in database", result.Error, map[string]interface{}{
			"product_id": id,
			"quantity":   quantity,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
