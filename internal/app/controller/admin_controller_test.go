package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/krishnakath/dairyshop-backend/config"
	"github.com/krishnakath/dairyshop-backend/internal/app/model"
	"github.com/krishnakath/dairyshop-backend/internal/app/repository"
	"github.com/krishnakath/dairyshop-backend/internal/app/service"
	"github.com/krishnakath/dairyshop-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type adminTestEnv struct {
	controller   *AdminController
	orderService service.OrderService
	cartService  service.CartService
	productRepo  repository.ProductRepository
	feedbackRepo repository.FeedbackRepository
	admin        *model.User
	buyer        *model.User
	product      *model.Product
}

func setupAdminControllerTest(t *testing.T) *adminTestEnv {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	orderRepo := repository.NewOrderRepository(testDB)
	cartRepo := repository.NewCartRepository(testDB)
	productRepo := repository.NewProductRepository(testDB)
	feedbackRepo := repository.NewFeedbackRepository(testDB)
	sessionStore := newMemSessionCartStore()

	cartService := service.NewCartService(cartRepo, sessionStore, productRepo)
	orderService := service.NewOrderService(orderRepo, cartRepo, testDB, nil)
	productService := service.NewProductService(productRepo, config.CatalogConfig{
		DefaultStock:      100,
		LowStockThreshold: 5,
	})
	reportService := service.NewReportService(orderRepo)
	feedbackService := service.NewFeedbackService(feedbackRepo)

	controller := NewAdminController(orderService, productService, reportService, feedbackService)

	admin := &model.User{
		Email:        fmt.Sprintf("admin-%d@example.com", time.Now().UnixNano()),
		PasswordHash: "hashed-password",
		Name:         "Shop Admin",
		Role:         model.RoleAdmin,
	}
	require.NoError(t, testDB.Create(admin).Error)

	buyer := &model.User{
		Email:        fmt.Sprintf("buyer-%d@example.com", time.Now().UnixNano()),
		PasswordHash: "hashed-password",
		Name:         "Regular Buyer",
	}
	require.NoError(t, testDB.Create(buyer).Error)

	product := &model.Product{
		Name:          "Amul Style Butter 500g",
		Price:         250,
		Category:      model.CategoryButter,
		StockQuantity: 10,
	}
	require.NoError(t, testDB.Create(product).Error)

	return &adminTestEnv{
		controller:   controller,
		orderService: orderService,
		cartService:  cartService,
		productRepo:  productRepo,
		feedbackRepo: feedbackRepo,
		admin:        admin,
		buyer:        buyer,
		product:      product,
	}
}

func (env *adminTestEnv) placeOrder(t *testing.T, quantity int) *model.Order {
	t.Helper()
	owner := service.UserOwner(env.buyer.ID)
	require.NoError(t, env.cartService.Add(context.Background(), owner, env.product.ID, quantity))

	order, err := env.orderService.Checkout(context.Background(), env.buyer.ID, service.CheckoutInput{
		TransactionID:   fmt.Sprintf("TXN-%d", time.Now().UnixNano()),
		ShippingAddress: "42 Milk Colony, Pune",
		ContactPhone:    "9876543210",
	})
	require.NoError(t, err)
	return order
}

func TestAdminController_GetAllOrders(t *testing.T) {
	env := setupAdminControllerTest(t)
	env.placeOrder(t, 1)
	env.placeOrder(t, 2)

	router := userRouter(env.admin.ID)
	router.GET("/admin/orders", env.controller.GetAllOrders)

	req := httptest.NewRequest(http.MethodGet, "/admin/orders", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, float64(2), response["count"])
}

func TestAdminController_GetAllOrders_StatusFilter(t *testing.T) {
	env := setupAdminControllerTest(t)
	order := env.placeOrder(t, 1)
	env.placeOrder(t, 1)

	_, err := env.orderService.Review(order.ID, true)
	require.NoError(t, err)

	router := userRouter(env.admin.ID)
	router.GET("/admin/orders", env.controller.GetAllOrders)

	req := httptest.NewRequest(http.MethodGet, "/admin/orders?status=approved", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, float64(1), response["count"])
}

func TestAdminController_GetOrder(t *testing.T) {
	env := setupAdminControllerTest(t)
	order := env.placeOrder(t, 1)

	router := userRouter(env.admin.ID)
	router.GET("/admin/orders/:id", env.controller.GetOrder)

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/admin/orders/%d", order.ID), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdminController_GetOrder_NotFound(t *testing.T) {
	env := setupAdminControllerTest(t)

	router := userRouter(env.admin.ID)
	router.GET("/admin/orders/:id", env.controller.GetOrder)

	req := httptest.NewRequest(http.MethodGet, "/admin/orders/9999", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminController_ReviewOrder_Approve(t *testing.T) {
	env := setupAdminControllerTest(t)
	order := env.placeOrder(t, 2)

	router := userRouter(env.admin.ID)
	router.POST("/admin/orders/:id/review", env.controller.ReviewOrder)

	body, _ := json.Marshal(ReviewOrderRequest{Approve: true})
	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/admin/orders/%d/review", order.ID), bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	reviewed, err := env.orderService.GetOrder(order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusApproved, reviewed.Status)

	// Approval keeps the stock decrement from checkout.
	product, err := env.productRepo.FindByID(env.product.ID)
	require.NoError(t, err)
	assert.Equal(t, 8, product.StockQuantity)
}

func TestAdminController_ReviewOrder_RejectKeepsStock(t *testing.T) {
	env := setupAdminControllerTest(t)
	order := env.placeOrder(t, 3)

	router := userRouter(env.admin.ID)
	router.POST("/admin/orders/:id/review", env.controller.ReviewOrder)

	body, _ := json.Marshal(ReviewOrderRequest{Approve: false})
	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/admin/orders/%d/review", order.ID), bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	// Stock keeps the checkout-time decrement; returning it is a separate
	// explicit stock adjustment.
	product, err := env.productRepo.FindByID(env.product.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, product.StockQuantity)
}

func TestAdminController_ReviewOrder_AlreadyReviewed(t *testing.T) {
	env := setupAdminControllerTest(t)
	order := env.placeOrder(t, 1)
	_, err := env.orderService.Review(order.ID, true)
	require.NoError(t, err)

	router := userRouter(env.admin.ID)
	router.POST("/admin/orders/:id/review", env.controller.ReviewOrder)

	body, _ := json.Marshal(ReviewOrderRequest{Approve: false})
	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/admin/orders/%d/review", order.ID), bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAdminController_ReviewOrder_NotFound(t *testing.T) {
	env := setupAdminControllerTest(t)

	router := userRouter(env.admin.ID)
	router.POST("/admin/orders/:id/review", env.controller.ReviewOrder)

	body, _ := json.Marshal(ReviewOrderRequest{Approve: true})
	req := httptest.NewRequest(http.MethodPost, "/admin/orders/9999/review", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminController_AdjustStock(t *testing.T) {
	env := setupAdminControllerTest(t)

	router := userRouter(env.admin.ID)
	router.POST("/admin/products/:id/stock", env.controller.AdjustStock)

	body, _ := json.Marshal(AdjustStockRequest{Delta: 15})
	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/admin/products/%d/stock", env.product.ID), bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, float64(25), response["stock_quantity"])
}

func TestAdminController_AdjustStock_ProductNotFound(t *testing.T) {
	env := setupAdminControllerTest(t)

	router := userRouter(env.admin.ID)
	router.POST("/admin/products/:id/stock", env.controller.AdjustStock)

	body, _ := json.Marshal(AdjustStockRequest{Delta: 5})
	req := httptest.NewRequest(http.MethodPost, "/admin/products/9999/stock", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminController_GetLowStockProducts(t *testing.T) {
	env := setupAdminControllerTest(t)
	require.NoError(t, env.productRepo.Create(&model.Product{
		Name:          "Last Few Paneer 200g",
		Price:         90,
		Category:      model.CategoryPaneer,
		StockQuantity: 2,
	}))

	router := userRouter(env.admin.ID)
	router.GET("/admin/products/low-stock", env.controller.GetLowStockProducts)

	req := httptest.NewRequest(http.MethodGet, "/admin/products/low-stock", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, float64(1), response["count"])
}

func TestAdminController_GetStats(t *testing.T) {
	env := setupAdminControllerTest(t)
	order := env.placeOrder(t, 2)
	_, err := env.orderService.Review(order.ID, true)
	require.NoError(t, err)

	router := userRouter(env.admin.ID)
	router.GET("/admin/stats", env.controller.GetStats)

	req := httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	stats := response["stats"].(map[string]interface{})
	assert.Equal(t, float64(1), stats["total_orders"])
	assert.Equal(t, float64(1), stats["approved_orders"])
	assert.Equal(t, float64(500), stats["total_revenue"])
}

func TestAdminController_ExportOrders(t *testing.T) {
	env := setupAdminControllerTest(t)
	env.placeOrder(t, 1)

	router := userRouter(env.admin.ID)
	router.GET("/admin/orders/export", env.controller.ExportOrders)

	req := httptest.NewRequest(http.MethodGet, "/admin/orders/export", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".xlsx")
	// XLSX files are zip archives.
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("PK")))
}

func TestAdminController_GetFeedback(t *testing.T) {
	env := setupAdminControllerTest(t)
	require.NoError(t, env.feedbackRepo.Create(&model.Feedback{
		Name:    "Happy Customer",
		Email:   "happy@example.com",
		Message: "The ghee is excellent",
	}))

	router := userRouter(env.admin.ID)
	router.GET("/admin/feedback", env.controller.GetFeedback)

	req := httptest.NewRequest(http.MethodGet, "/admin/feedback", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, float64(1), response["count"])
}

func TestAdminController_GetFeedback_Limit(t *testing.T) {
	env := setupAdminControllerTest(t)
	for i := 0; i < 3; i++ {
		require.NoError(t, env.feedbackRepo.Create(&model.Feedback{
			Name:    "Customer",
			Email:   fmt.Sprintf("customer-%d@example.com", i),
			Message: "Great curd",
		}))
	}

	router := userRouter(env.admin.ID)
	router.GET("/admin/feedback", env.controller.GetFeedback)

	req := httptest.NewRequest(http.MethodGet, "/admin/feedback?limit=2", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, float64(2), response["count"])
}

func TestAdminController_DeleteFeedback(t *testing.T) {
	env := setupAdminControllerTest(t)
	entry := &model.Feedback{
		Name:    "Unhappy Customer",
		Email:   "unhappy@example.com",
		Message: "Milk arrived late",
	}
	require.NoError(t, env.feedbackRepo.Create(entry))

	router := userRouter(env.admin.ID)
	router.DELETE("/admin/feedback/:id", env.controller.DeleteFeedback)

	req := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/admin/feedback/%d", entry.ID), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	remaining, err := env.feedbackRepo.FindAll()
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestAdminController_DeleteFeedback_NotFound(t *testing.T) {
	env := setupAdminControllerTest(t)

	router := userRouter(env.admin.ID)
	router.DELETE("/admin/feedback/:id", env.controller.DeleteFeedback)

	req := httptest.NewRequest(http.MethodDelete, "/admin/feedback/9999", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
