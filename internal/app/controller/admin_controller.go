package controller

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/krishnakath/dairyshop-backend/internal/app/model"
	"github.com/krishnakath/dairyshop-backend/internal/app/service"
	"github.com/krishnakath/dairyshop-backend/internal/middleware"
)

// AdminController bundles the staff-only operations: payment review,
// stock adjustments and reporting. Every route behind it requires the
// admin role.
type AdminController struct {
	orderService    service.OrderService
	productService  service.ProductService
	reportService   service.ReportService
	feedbackService service.FeedbackService
}

func NewAdminController(
	orderService service.OrderService,
	productService service.ProductService,
	reportService service.ReportService,
	feedbackService service.FeedbackService,
) *AdminController {
	return &AdminController{
		orderService:    orderService,
		productService:  productService,
		reportService:   reportService,
		feedbackService: feedbackService,
	}
}

// GetAllOrders lists orders across all users, optionally filtered by status
// GET /api/v1/admin/orders?status=pending_verification
func (ctrl *AdminController) GetAllOrders(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	status := model.OrderStatus(c.Query("status"))
	orders, err := ctrl.orderService.ListOrders(status)
	if err != nil {
		log.Error("Failed to list orders", err, map[string]interface{}{
			"status": status,
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

// GetOrder returns a single order with its items, regardless of owner
// GET /api/v1/admin/orders/:id
func (ctrl *AdminController) GetOrder(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	orderID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid order ID",
		})
		return
	}

	order, err := ctrl.orderService.GetOrder(uint(orderID))
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
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

type ReviewOrderRequest struct {
	Approve bool `json:"approve"`
}

// ReviewOrder approves or rejects a pending payment. Either way only the
// status changes; stock corrections go through AdjustStock.
// POST /api/v1/admin/orders/:id/review
func (ctrl *AdminController) ReviewOrder(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	orderID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid order ID",
		})
		return
	}

	var req ReviewOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid review request",
		})
		return
	}

	order, err := ctrl.orderService.Review(uint(orderID), req.Approve)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Order not found",
			})
		case errors.Is(err, service.ErrOrderAlreadyReviewed):
			c.JSON(http.StatusConflict, gin.H{
				"error": "Order has already been reviewed",
			})
		default:
			log.Error("Failed to review order", err, map[string]interface{}{
				"order_id": orderID,
				"approve":  req.Approve,
			})
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to review order",
			})
		}
		return
	}

	log.Info("Order reviewed", map[string]interface{}{
		"order_id": order.ID,
		"status":   order.Status,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Order reviewed",
		"order":   order,
	})
}

type AdjustStockRequest struct {
	Delta int `json:"delta" binding:"required"`
}

// AdjustStock applies a relative stock change to a product. Negative deltas
// clamp at zero rather than going below it.
// POST /api/v1/admin/products/:id/stock
func (ctrl *AdminController) AdjustStock(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	productID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid product ID",
		})
		return
	}

	var req AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "A non-zero stock delta is required",
		})
		return
	}

	stock, err := ctrl.productService.AdjustStock(uint(productID), req.Delta)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Product not found",
			})
			return
		}
		log.Error("Failed to adjust stock", err, map[string]interface{}{
			"product_id": productID,
			"delta":      req.Delta,
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to adjust stock",
		})
		return
	}

	log.Info("Stock adjusted", map[string]interface{}{
		"product_id": productID,
		"delta":      req.Delta,
		"stock":      stock,
	})

	c.JSON(http.StatusOK, gin.H{
		"product_id":     uint(productID),
		"stock_quantity": stock,
	})
}

// GetLowStockProducts lists products at or below the low-stock threshold
// GET /api/v1/admin/products/low-stock
func (ctrl *AdminController) GetLowStockProducts(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	products, err := ctrl.productService.LowStockProducts()
	if err != nil {
		log.Error("Failed to fetch low stock products", err, nil)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to fetch low stock products",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"count":    len(products),
	})
}

// GetStats returns the dashboard aggregates
// GET /api/v1/admin/stats
func (ctrl *AdminController) GetStats(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	stats, err := ctrl.orderService.Stats()
	if err != nil {
		log.Error("Failed to compute stats", err, nil)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to compute stats",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"stats": stats,
	})
}

// ExportOrders streams the order book as an Excel workbook
// GET /api/v1/admin/orders/export?status=approved
func (ctrl *AdminController) ExportOrders(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	status := model.OrderStatus(c.Query("status"))
	data, err := ctrl.reportService.ExportOrders(status)
	if err != nil {
		log.Error("Failed to export orders", err, map[string]interface{}{
			"status": status,
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to export orders",
		})
		return
	}

	filename := fmt.Sprintf("orders-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// GetFeedback lists customer feedback for review, newest first
// GET /api/v1/admin/feedback?limit=10
func (ctrl *AdminController) GetFeedback(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var entries []model.Feedback
	var err error
	if limitStr := c.Query("limit"); limitStr != "" {
		limit, convErr := strconv.Atoi(limitStr)
		if convErr != nil || limit <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid limit",
			})
			return
		}
		entries, err = ctrl.feedbackService.Recent(limit)
	} else {
		entries, err = ctrl.feedbackService.List()
	}
	if err != nil {
		log.Error("Failed to fetch feedback", err, nil)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to fetch feedback",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"feedback": entries,
		"count":    len(entries),
	})
}

// DeleteFeedback removes a feedback entry
// DELETE /api/v1/admin/feedback/:id
func (ctrl *AdminController) DeleteFeedback(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	feedbackID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid feedback ID",
		})
		return
	}

	if err := ctrl.feedbackService.Delete(uint(feedbackID)); err != nil {
		if errors.Is(err, service.ErrFeedbackNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Feedback not found",
			})
			return
		}
		log.Error("Failed to delete feedback", err, map[string]interface{}{
			"feedback_id": feedbackID,
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to delete feedback",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Feedback deleted",
	})
}
