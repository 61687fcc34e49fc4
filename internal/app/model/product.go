package model

import (
	"time"

	"gorm.io/gorm"
)

type ProductCategory string

const (
	CategoryMilk   ProductCategory = "milk"
	CategoryCurd   ProductCategory = "curd"
	CategoryPaneer ProductCategory = "paneer"
	CategoryButter ProductCategory = "butter"
	CategoryGhee   ProductCategory = "ghee"
	CategoryCheese ProductCategory = "cheese"
	CategorySweets ProductCategory = "sweets"
)

type Product struct {
	ID            uint            `gorm:"primarykey" json:"id"`
	Name          string          `gorm:"uniqueIndex;not null" json:"name"`
	Description   string          `gorm:"type:text" json:"description"`
	Price         float64         `gorm:"not null" json:"price"`
	Category      ProductCategory `gorm:"type:varchar(50)" json:"category"`
	StockQuantity int             `gorm:"default:0" json:"stock_quantity"`
	ImageURL      string          `json:"image_url"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	DeletedAt     gorm.DeletedAt  `gorm:"index" json:"-"`

	// Relationships
	Specifications []ProductSpecification `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"specifications,omitempty"`
	OrderItems     []OrderItem            `gorm:"foreignKey:ProductID" json:"-"`
	CartItems      []CartItem             `gorm:"foreignKey:ProductID" json:"-"`
}

func (Product) TableName() string {
	return "products"
}

// ProductSpecification is a labelled attribute of a product, such as fat
// content or net weight.
type ProductSpecification struct {
	ID        uint   `gorm:"primarykey" json:"id"`
	ProductID uint   `gorm:"not null;index" json:"product_id"`
	Name      string `gorm:"not null" json:"name"`
	Value     string `gorm:"not null" json:"value"`

	Product Product `gorm:"foreignKey:ProductID" json:"-"`
}

func (ProductSpecification) TableName() string {
	return "product_specifications"
}
