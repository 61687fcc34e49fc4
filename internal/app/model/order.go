package model

import (
	"time"

	"gorm.io/gorm"
)

type OrderStatus string

const (
	// OrderStatusPendingVerification is the initial state. The buyer has
	// submitted a transaction reference and the payment awaits admin review.
	OrderStatusPendingVerification OrderStatus = "pending_verification"
	OrderStatusApproved            OrderStatus = "approved"
	OrderStatusRejected            OrderStatus = "rejected"
)

type Order struct {
	ID                uint           `gorm:"primarykey" json:"id"`
	UserID            uint           `gorm:"not null;index" json:"user_id"`
	TotalAmount       float64        `gorm:"not null" json:"total_amount"`
	Status            OrderStatus    `gorm:"type:varchar(30);default:'pending_verification'" json:"status"`
	TransactionID     string         `gorm:"type:varchar(100);index" json:"transaction_id"`
	PaymentScreenshot string         `json:"payment_screenshot,omitempty"`
	ShippingAddress   string         `gorm:"type:text" json:"shipping_address"`
	ContactPhone      string         `json:"contact_phone"`
	ReviewedAt        *time.Time     `json:"reviewed_at,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`

	User       User        `gorm:"foreignKey:UserID" json:"user,omitempty"`
	OrderItems []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"order_items,omitempty"`
}

func (Order) TableName() string {
	return "orders"
}

// OrderItem snapshots the unit price at checkout time. Later catalog price
// changes never alter an existing order.
type OrderItem struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	OrderID   uint           `gorm:"not null;index" json:"order_id"`
	ProductID uint           `gorm:"not null;index" json:"product_id"`
	Quantity  int            `gorm:"not null" json:"quantity"`
	Price     float64        `gorm:"not null" json:"price"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Order   Order   `gorm:"foreignKey:OrderID" json:"-"`
	Product Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

func (OrderItem) TableName() string {
	return "order_items"
}

// Subtotal returns the line total for the item.
func (i *OrderItem) Subtotal() float64 {
	return i.Price * float64(i.Quantity)
}

// IsTerminal reports whether the status admits no further transitions.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusApproved || s == OrderStatusRejected
}
