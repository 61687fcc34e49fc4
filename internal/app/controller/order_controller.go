package controller

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/krishnakath/dairyshop-backend/internal/app/service"
	"github.com/krishnakath/dairyshop-backend/internal/middleware"
)

type OrderController struct {
	orderService   service.OrderService
	invoiceService service.InvoiceService
}

func NewOrderController(orderService service.OrderService, invoiceService service.InvoiceService) *OrderController {
	return &OrderController{
		orderService:   orderService,
		invoiceService: invoiceService,
	}
}

type CheckoutRequest struct {
	TransactionID     string `json:"transaction_id" binding:"required"`
	PaymentScreenshot string `json:"payment_screenshot"`
	ShippingAddress   string `json:"shipping_address" binding:"required"`
	ContactPhone      string `json:"contact_phone" binding:"required"`
}

// CreateOrder converts the user's cart into an order
// POST /api/v1/orders
func (ctrl *OrderController) CreateOrder(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		log.Warn("Unauthorized attempt to create order", nil)
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid checkout request", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid checkout details",
		})
		return
	}

	order, err := ctrl.orderService.Checkout(c.Request.Context(), userID, service.CheckoutInput{
		TransactionID:     req.TransactionID,
		PaymentScreenshot: req.PaymentScreenshot,
		ShippingAddress:   req.ShippingAddress,
		ContactPhone:      req.ContactPhone,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyCart):
			log.Warn("Checkout failed: cart is empty", map[string]interface{}{
				"user_id": userID,
			})
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Your cart is empty",
			})
		case errors.Is(err, service.ErrTransactionRequired):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "A payment transaction reference is required",
			})
		case errors.Is(err, service.ErrInsufficientStock):
			log.Warn("Checkout failed: insufficient stock", map[string]interface{}{
				"user_id": userID,
				"detail":  err.Error(),
			})
			c.JSON(http.StatusConflict, gin.H{
				"error": err.Error(),
			})
		case errors.Is(err, service.ErrProductNotFound):
			c.JSON(http.StatusConflict, gin.H{
				"error": "A product in your cart is no longer available",
			})
		default:
			log.Error("Checkout failed", err, map[string]interface{}{
				"user_id": userID,
			})
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to create order",
			})
		}
		return
	}

	log.Info("Order created successfully", map[string]interface{}{
		"user_id":  userID,
		"order_id": order.ID,
		"total":    order.TotalAmount,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order placed, awaiting payment verification",
		"order":   order,
	})
}

// GetOrders returns the current user's orders
// GET /api/v1/orders
func (ctrl *OrderController) GetOrders(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	orders, err := ctrl.orderService.GetUserOrders(userID)
	if err != nil {
		log.Error("Failed to fetch orders", err, map[string]interface{}{
			"user_id": userID,
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to fetch orders",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"count":  len(orders),
	})
}

// GetOrderByID returns one of the current user's orders
// GET /api/v1/orders/:id
func (ctrl *OrderController) GetOrderByID(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	orderID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid order ID",
		})
		return
	}

	order, err := ctrl.orderService.GetOrderByID(userID, uint(orderID))
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			log.Warn("Order not found", map[string]interface{}{
				"user_id":  userID,
				"order_id": orderID,
			})
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Order not found",
			})
			return
		}
		log.Error("Failed to fetch order", err, map[string]interface{}{
			"order_id": orderID,
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to fetch order",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order": order,
	})
}

// DownloadInvoice streams a PDF invoice for one of the user's orders
// GET /api/v1/orders/:id/invoice
func (ctrl *OrderController) DownloadInvoice(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	orderID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid order ID",
		})
		return
	}

	order, err := ctrl.orderService.GetOrderByID(userID, uint(orderID))
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Order not found",
			})
			return
		}
		log.Error("Failed to fetch order for invoice", err, map[string]interface{}{
			"order_id": orderID,
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to fetch order",
		})
		return
	}

	pdf, err := ctrl.invoiceService.Render(order)
	if err != nil {
		log.Error("Failed to render invoice", err, map[string]interface{}{
			"order_id": orderID,
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to generate invoice",
		})
		return
	}

	log.Info("Invoice downloaded", map[string]interface{}{
		"user_id":  userID,
		"order_id": orderID,
	})

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="invoice-%d.pdf"`, order.ID))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
