package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/krishnakath/dairyshop-backend/internal/app/model"
	"github.com/krishnakath/dairyshop-backend/internal/app/repository"
	"github.com/krishnakath/dairyshop-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrOrderNotFound        = errors.New("order not found")
	ErrEmptyCart            = errors.New("cart is empty")
	ErrTransactionRequired  = errors.New("transaction reference is required")
	ErrOrderAlreadyReviewed = errors.New("order has already been reviewed")
)

// CheckoutInput carries the buyer's payment claim. The transaction ID
// references a bank/UPI transfer the admin verifies by hand.
type CheckoutInput struct {
	TransactionID     string
	PaymentScreenshot string
	ShippingAddress   string
	ContactPhone      string
}

// OrderNotifier receives order lifecycle events. The websocket hub feeds
// the admin dashboard through this; a nil notifier is a no-op.
type OrderNotifier interface {
	OrderCreated(order *model.Order)
	OrderReviewed(order *model.Order)
}

type OrderService interface {
	Checkout(ctx context.Context, userID uint, input CheckoutInput) (*model.Order, error)
	GetUserOrders(userID uint) ([]model.Order, error)
	GetOrderByID(userID, orderID uint) (*model.Order, error)
	GetOrder(orderID uint) (*model.Order, error)
	ListOrders(status model.OrderStatus) ([]model.Order, error)
	Review(orderID uint, approve bool) (*model.Order, error)
	Stats() (map[string]interface{}, error)
}

type orderService struct {
	orderRepo repository.OrderRepository
	cartRepo  repository.CartRepository
	db        *gorm.DB
	notifier  OrderNotifier
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	db *gorm.DB,
	notifier OrderNotifier,
) OrderService {
	return &orderService{
		orderRepo: orderRepo,
		cartRepo:  cartRepo,
		db:        db,
		notifier:  notifier,
	}
}

// Checkout converts the user's cart into an order in one transaction:
// every product row is locked, stock is re-checked authoritatively,
// prices are snapshotted, stock is decremented and the cart is cleared.
// Any failure rolls the whole thing back, so stock never moves for an
// order that was not created.
func (s *orderService) Checkout(ctx context.Context, userID uint, input CheckoutInput) (*model.Order, error) {
	logger.Info("Creating order from cart", map[string]interface{}{
		"user_id":        userID,
		"transaction_id": input.TransactionID,
	})

	if input.TransactionID == "" {
		return nil, ErrTransactionRequired
	}

	cart, err := s.cartRepo.FindOrCreateByUserID(userID)
	if err != nil {
		return nil, err
	}

	cartItems, err := s.cartRepo.FindItems(cart.ID)
	if err != nil {
		logger.Error("Failed to fetch cart items", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	if len(cartItems) == 0 {
		logger.Warn("Cannot create order: cart is empty", map[string]interface{}{
			"user_id": userID,
		})
		return nil, ErrEmptyCart
	}

	tx := s.db.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			logger.Error("Panic during order creation, rolling back", fmt.Errorf("panic: %v", r), map[string]interface{}{
				"user_id": userID,
			})
		}
	}()

	var (
		totalAmount float64
		orderItems  []model.OrderItem
	)

	for _, cartItem := range cartItems {
		var product model.Product
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&product, cartItem.ProductID).Error; err != nil {
			tx.Rollback()
			if errors.Is(err, gorm.ErrRecordNotFound) {
				logger.Warn("Product not found during order creation", map[string]interface{}{
					"user_id":    userID,
					"product_id": cartItem.ProductID,
				})
				return nil, ErrProductNotFound
			}
			logger.Error("Failed to fetch product during order creation", err, map[string]interface{}{
				"user_id":    userID,
				"product_id": cartItem.ProductID,
			})
			return nil, err
		}

		if product.StockQuantity < cartItem.Quantity {
			tx.Rollback()
			logger.Warn("Order creation failed: insufficient product stock", map[string]interface{}{
				"user_id":    userID,
				"product_id": cartItem.ProductID,
				"requested":  cartItem.Quantity,
				"available":  product.StockQuantity,
			})
			return nil, fmt.Errorf("%w: %s", ErrInsufficientStock, product.Name)
		}

		orderItems = append(orderItems, model.OrderItem{
			ProductID: cartItem.ProductID,
			Quantity:  cartItem.Quantity,
			Price:     product.Price,
		})
		totalAmount += product.Price * float64(cartItem.Quantity)

		if err := tx.Model(&model.Product{}).
			Where("id = ?", product.ID).
			Update("stock_quantity", gorm.Expr("stock_quantity - ?", cartItem.Quantity)).Error; err != nil {
			tx.Rollback()
			logger.Error("Failed to update product stock", err, map[string]interface{}{
				"user_id":    userID,
				"product_id": product.ID,
			})
			return nil, err
		}
	}

	order := &model.Order{
		UserID:            userID,
		TotalAmount:       totalAmount,
		Status:            model.OrderStatusPendingVerification,
		TransactionID:     input.TransactionID,
		PaymentScreenshot: input.PaymentScreenshot,
		ShippingAddress:   input.ShippingAddress,
		ContactPhone:      input.ContactPhone,
		OrderItems:        orderItems,
	}

	if err := tx.Create(order).Error; err != nil {
		tx.Rollback()
		logger.Error("Failed to create order", err, map[string]interface{}{
			"user_id":      userID,
			"total_amount": totalAmount,
		})
		return nil, err
	}

	if err := tx.Where("cart_id = ?", cart.ID).Delete(&model.CartItem{}).Error; err != nil {
		tx.Rollback()
		logger.Error("Failed to clear cart after order creation", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		logger.Error("Failed to commit order transaction", err, map[string]interface{}{
			"user_id":  userID,
			"order_id": order.ID,
		})
		return nil, err
	}

	logger.Info("Order created successfully", map[string]interface{}{
		"user_id":      userID,
		"order_id":     order.ID,
		"total_amount": totalAmount,
		"item_count":   len(orderItems),
	})

	created, err := s.orderRepo.FindByID(order.ID)
	if err != nil {
		return nil, err
	}
	if s.notifier != nil {
		s.notifier.OrderCreated(created)
	}
	return created, nil
}

func (s *orderService) GetUserOrders(userID uint) ([]model.Order, error) {
	logger.Debug("Fetching user orders", map[string]interface{}{
		"user_id": userID,
	})

	orders, err := s.orderRepo.FindByUserID(userID)
	if err != nil {
		logger.Error("Failed to fetch user orders", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	logger.Info("User orders fetched successfully", map[string]interface{}{
		"user_id": userID,
		"count":   len(orders),
	})
	return orders, nil
}

func (s *orderService) GetOrderByID(userID, orderID uint) (*model.Order, error) {
	logger.Debug("Fetching order by ID", map[string]interface{}{
		"user_id":  userID,
		"order_id": orderID,
	})

	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Order not found", map[string]interface{}{
				"user_id":  userID,
				"order_id": orderID,
			})
			return nil, ErrOrderNotFound
		}
		logger.Error("Failed to fetch order", err, map[string]interface{}{
			"user_id":  userID,
			"order_id": orderID,
		})
		return nil, err
	}

	// Ownership mismatch reads as not-found so order IDs cannot be probed.
	if order.UserID != userID {
		logger.Warn("Order access denied: ownership mismatch", map[string]interface{}{
			"user_id":  userID,
			"order_id": orderID,
			"owner_id": order.UserID,
		})
		return nil, ErrOrderNotFound
	}

	return order, nil
}

func (s *orderService) GetOrder(orderID uint) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

func (s *orderService) ListOrders(status model.OrderStatus) ([]model.Order, error) {
	return s.orderRepo.FindAll(status)
}

// Review approves or rejects a pending order. Both outcomes are terminal
// and only flip the status: rejected stock stays sold until an admin
// explicitly adjusts it back.
func (s *orderService) Review(orderID uint, approve bool) (*model.Order, error) {
	logger.Info("Reviewing order", map[string]interface{}{
		"order_id": orderID,
		"approve":  approve,
	})

	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	if order.Status.IsTerminal() {
		logger.Warn("Order already reviewed", map[string]interface{}{
			"order_id": orderID,
			"status":   order.Status,
		})
		return nil, ErrOrderAlreadyReviewed
	}

	status := model.OrderStatusApproved
	if !approve {
		status = model.OrderStatusRejected
	}
	now := time.Now()

	if err := s.db.Model(&model.Order{}).Where("id = ?", orderID).
		Updates(map[string]interface{}{
			"status":      status,
			"reviewed_at": now,
		}).Error; err != nil {
		logger.Error("Failed to update order status", err, map[string]interface{}{
			"order_id": orderID,
			"status":   status,
		})
		return nil, err
	}

	logger.Info("Order reviewed successfully", map[string]interface{}{
		"order_id": orderID,
		"status":   status,
	})

	reviewed, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		return nil, err
	}
	if s.notifier != nil {
		s.notifier.OrderReviewed(reviewed)
	}
	return reviewed, nil
}

func (s *orderService) Stats() (map[string]interface{}, error) {
	return s.orderRepo.GetStats()
}
