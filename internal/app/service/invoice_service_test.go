package service

import (
	"testing"
	"time"

	"github.com/krishnakath/dairyshop-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvoiceService_Render(t *testing.T) {
	svc := NewInvoiceService("Krishna Dairy", "45 Market Road, Nashik")

	now := time.Now()
	order := &model.Order{
		ID:              42,
		UserID:          1,
		TotalAmount:     570,
		Status:          model.OrderStatusApproved,
		TransactionID:   "TXN-2042",
		ShippingAddress: "12 Dairy Lane",
		ReviewedAt:      &now,
		CreatedAt:       now,
		User: model.User{
			Name:  "Buyer",
			Email: "buyer@example.com",
		},
		OrderItems: []model.OrderItem{
			{
				ProductID: 1,
				Quantity:  2,
				Price:     60,
				Product:   model.Product{Name: "Full Cream Milk 1L"},
			},
			{
				ProductID: 2,
				Quantity:  1,
				Price:     450,
				Product:   model.Product{Name: "Pure Desi Ghee 500g"},
			},
		},
	}

	pdf, err := svc.Render(order)
	require.NoError(t, err)
	require.NotEmpty(t, pdf)

	// PDF magic bytes.
	assert.Equal(t, "%PDF", string(pdf[:4]))
}

func TestInvoiceService_Render_MissingProductName(t *testing.T) {
	svc := NewInvoiceService("Krishna Dairy", "45 Market Road, Nashik")

	order := &model.Order{
		ID:          7,
		UserID:      1,
		TotalAmount: 120,
		Status:      model.OrderStatusPendingVerification,
		CreatedAt:   time.Now(),
		OrderItems: []model.OrderItem{
			{ProductID: 99, Quantity: 2, Price: 60},
		},
	}

	pdf, err := svc.Render(order)
	require.NoError(t, err)
	assert.NotEmpty(t, pdf)
}
