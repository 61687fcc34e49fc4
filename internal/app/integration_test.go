package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/krishnakath/dairyshop-backend/config"
	"github.com/krishnakath/dairyshop-backend/internal/app/controller"
	"github.com/krishnakath/dairyshop-backend/internal/app/model"
	"github.com/krishnakath/dairyshop-backend/internal/app/repository"
	"github.com/krishnakath/dairyshop-backend/internal/app/service"
	"github.com/krishnakath/dairyshop-backend/internal/db"
	"github.com/krishnakath/dairyshop-backend/internal/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// mapSessionCartStore keeps guest carts in memory so integration tests do
// not need a Redis instance.
type mapSessionCartStore struct {
	carts map[string]map[uint]int
}

func (s *mapSessionCartStore) Get(ctx context.Context, sessionID string) (map[uint]int, error) {
	lines := make(map[uint]int, len(s.carts[sessionID]))
	for id, qty := range s.carts[sessionID] {
		lines[id] = qty
	}
	return lines, nil
}

func (s *mapSessionCartStore) Save(ctx context.Context, sessionID string, lines map[uint]int) error {
	if len(lines) == 0 {
		delete(s.carts, sessionID)
		return nil
	}
	copied := make(map[uint]int, len(lines))
	for id, qty := range lines {
		copied[id] = qty
	}
	s.carts[sessionID] = copied
	return nil
}

func (s *mapSessionCartStore) Delete(ctx context.Context, sessionID string) error {
	delete(s.carts, sessionID)
	return nil
}

type TestServer struct {
	Router      *gin.Engine
	DB          *gorm.DB
	AuthService service.AuthService
}

func setupIntegrationTest(t *testing.T) *TestServer {
	gin.SetMode(gin.TestMode)

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)

	userRepo := repository.NewUserRepository(testDB)
	productRepo := repository.NewProductRepository(testDB)
	orderRepo := repository.NewOrderRepository(testDB)
	cartRepo := repository.NewCartRepository(testDB)
	feedbackRepo := repository.NewFeedbackRepository(testDB)
	sessionStore := &mapSessionCartStore{carts: make(map[string]map[uint]int)}

	authService := service.NewAuthService(
		userRepo,
		"test-secret",
		15*time.Minute,
		7*24*time.Hour,
	)
	productService := service.NewProductService(productRepo, config.CatalogConfig{
		DefaultStock:      100,
		LowStockThreshold: 5,
	})
	recommendationService := service.NewRecommendationService(productRepo, config.RecommenderConfig{
		ModelPath: "does-not-exist.gob",
		TopN:      5,
	})
	cartService := service.NewCartService(cartRepo, sessionStore, productRepo)
	orderService := service.NewOrderService(orderRepo, cartRepo, testDB, nil)
	invoiceService := service.NewInvoiceService("Shree Dairy", "14 Market Road, Pune")
	reportService := service.NewReportService(orderRepo)
	feedbackService := service.NewFeedbackService(feedbackRepo)

	authController := controller.NewAuthController(authService, cartService)
	productController := controller.NewProductController(productService, recommendationService)
	cartController := controller.NewCartController(cartService)
	orderController := controller.NewOrderController(orderService, invoiceService)
	adminController := controller.NewAdminController(orderService, productService, reportService, feedbackService)
	feedbackController := controller.NewFeedbackController(feedbackService)

	authMiddleware := middleware.NewAuthMiddleware("test-secret")
	sessionMiddleware := middleware.SessionMiddleware(config.SessionConfig{
		CookieName: "cart_session",
		TTL:        time.Hour,
	})

	router := gin.New()

	auth := router.Group("/api/v1/auth")
	auth.Use(sessionMiddleware)
	{
		auth.POST("/register", authController.Register)
		auth.POST("/login", authController.Login)
		auth.GET("/me", authMiddleware.Authenticate(), authController.GetMe)
	}

	products := router.Group("/api/v1/products")
	{
		products.GET("", productController.GetAllProducts)
		products.GET("/categories", productController.GetCategories)
		products.GET("/:id", productController.GetProductByID)
		products.POST("", authMiddleware.Authenticate(), authMiddleware.RequireRole("admin"), productController.CreateProduct)
	}

	cart := router.Group("/api/v1/cart")
	cart.Use(authMiddleware.OptionalAuthenticate(), sessionMiddleware)
	{
		cart.GET("", cartController.GetCart)
		cart.POST("", cartController.AddToCart)
		cart.PUT("/:productId", cartController.UpdateCartItem)
		cart.DELETE("/:productId", cartController.RemoveFromCart)
	}

	orders := router.Group("/api/v1/orders")
	orders.Use(authMiddleware.Authenticate())
	{
		orders.GET("", orderController.GetOrders)
		orders.GET("/:id", orderController.GetOrderByID)
		orders.GET("/:id/invoice", orderController.DownloadInvoice)
		orders.POST("", orderController.CreateOrder)
	}

	admin := router.Group("/api/v1/admin")
	admin.Use(authMiddleware.Authenticate(), authMiddleware.RequireRole("admin"))
	{
		admin.GET("/orders", adminController.GetAllOrders)
		admin.POST("/orders/:id/review", adminController.ReviewOrder)
		admin.GET("/stats", adminController.GetStats)
	}

	router.POST("/api/v1/feedback", authMiddleware.OptionalAuthenticate(), feedbackController.SubmitFeedback)

	return &TestServer{
		Router:      router,
		DB:          testDB,
		AuthService: authService,
	}
}

func TestCompleteShoppingJourney(t *testing.T) {
	ts := setupIntegrationTest(t)
	defer db.CleanupTestDB(ts.DB)

	product := &model.Product{
		Name:          "Full Cream Milk 1L",
		Description:   "Fresh pasteurized whole milk",
		Price:         60,
		Category:      model.CategoryMilk,
		StockQuantity: 10,
	}
	require.NoError(t, ts.DB.Create(product).Error)

	// 1. Register a buyer
	registerReq := map[string]string{
		"email":    "buyer@example.com",
		"password": "password123",
		"name":     "Test Buyer",
		"phone":    "9876543210",
		"address":  "42 Milk Colony, Pune",
	}
	body, _ := json.Marshal(registerReq)
	req := httptest.NewRequest("POST", "/api/v1/auth/register", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	ts.Router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusCreated, w.Code)

	var registerResp map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &registerResp)
	tokens := registerResp["tokens"].(map[string]interface{})
	accessToken := tokens["access_token"].(string)

	// 2. Browse the catalog
	req = httptest.NewRequest("GET", "/api/v1/products", nil)
	w = httptest.NewRecorder()
	ts.Router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var productsResp map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &productsResp)
	assert.NotNil(t, productsResp["products"])

	// 3. Add to cart
	addToCartReq := map[string]interface{}{
		"product_id": product.ID,
		"quantity":   2,
	}
	body, _ = json.Marshal(addToCartReq)
	req = httptest.NewRequest("POST", "/api/v1/cart", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)
	w = httptest.NewRecorder()
	ts.Router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	// 4. View cart
	req = httptest.NewRequest("GET", "/api/v1/cart", nil)
	req.Header.Set("Authorization", "Bearer "+accessToken)
	w = httptest.NewRecorder()
	ts.Router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var cartResp map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &cartResp)
	cartItems := cartResp["cart_items"].([]interface{})
	assert.Len(t, cartItems, 1)

	// 5. Checkout with a payment reference
	createOrderReq := map[string]string{
		"transaction_id":   "TXN-2026-0001",
		"shipping_address": "42 Milk Colony, Pune",
		"contact_phone":    "9876543210",
	}
	body, _ = json.Marshal(createOrderReq)
	req = httptest.NewRequest("POST", "/api/v1/orders", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)
	w = httptest.NewRecorder()
	ts.Router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusCreated, w.Code)

	var orderResp map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &orderResp)
	order := orderResp["order"].(map[string]interface{})
	require.NotNil(t, order)
	assert.Equal(t, "pending_verification", order["status"])
	orderID := int(order["id"].(float64))

	// 6. Cart is empty after checkout
	req = httptest.NewRequest("GET", "/api/v1/cart", nil)
	req.Header.Set("Authorization", "Bearer "+accessToken)
	w = httptest.NewRecorder()
	ts.Router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	json.Unmarshal(w.Body.Bytes(), &cartResp)
	assert.Len(t, cartResp["cart_items"].([]interface{}), 0)

	// 7. Stock was decremented at checkout
	var updatedProduct model.Product
	ts.DB.First(&updatedProduct, product.ID)
	assert.Equal(t, 8, updatedProduct.StockQuantity)

	// 8. Admin approves the payment
	admin, _, err := ts.AuthService.Register("admin@example.com", "password123", "Admin", "", "")
	require.NoError(t, err)
	require.NoError(t, ts.DB.Model(&model.User{}).Where("id = ?", admin.ID).Update("role", model.RoleAdmin).Error)
	_, adminTokens, err := ts.AuthService.Login("admin@example.com", "password123")
	require.NoError(t, err)

	body, _ = json.Marshal(map[string]bool{"approve": true})
	reviewPath := "/api/v1/admin/orders/" + strconv.Itoa(orderID) + "/review"
	req = httptest.NewRequest("POST", reviewPath, bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+adminTokens.AccessToken)
	w = httptest.NewRecorder()
	ts.Router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	// 9. Buyer downloads the invoice
	req = httptest.NewRequest("GET", "/api/v1/orders/"+strconv.Itoa(orderID)+"/invoice", nil)
	req.Header.Set("Authorization", "Bearer "+accessToken)
	w = httptest.NewRecorder()
	ts.Router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
}

func TestGuestCartMergesAtLogin(t *testing.T) {
	ts := setupIntegrationTest(t)
	defer db.CleanupTestDB(ts.DB)

	product := &model.Product{
		Name:          "Fresh Paneer 200g",
		Price:         90,
		Category:      model.CategoryPaneer,
		StockQuantity: 10,
	}
	require.NoError(t, ts.DB.Create(product).Error)

	_, _, err := ts.AuthService.Register("merger@example.com", "password123", "Merge User", "", "")
	require.NoError(t, err)

	// Guest adds to cart; the session middleware issues a cookie.
	addToCartReq := map[string]interface{}{
		"product_id": product.ID,
		"quantity":   3,
	}
	body, _ := json.Marshal(addToCartReq)
	req := httptest.NewRequest("POST", "/api/v1/cart", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	ts.Router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	// Login with the same session cookie merges the guest cart.
	loginReq := map[string]string{
		"email":    "merger@example.com",
		"password": "password123",
	}
	body, _ = json.Marshal(loginReq)
	req = httptest.NewRequest("POST", "/api/v1/auth/login", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	w = httptest.NewRecorder()
	ts.Router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var loginResp map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &loginResp)
	accessToken := loginResp["tokens"].(map[string]interface{})["access_token"].(string)

	req = httptest.NewRequest("GET", "/api/v1/cart", nil)
	req.Header.Set("Authorization", "Bearer "+accessToken)
	w = httptest.NewRecorder()
	ts.Router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var cartResp map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &cartResp)
	cartItems := cartResp["cart_items"].([]interface{})
	require.Len(t, cartItems, 1)
	line := cartItems[0].(map[string]interface{})
	assert.Equal(t, float64(3), line["quantity"])
}

func TestAuthenticationFlow(t *testing.T) {
	ts := setupIntegrationTest(t)
	defer db.CleanupTestDB(ts.DB)

	registerReq := map[string]string{
		"email":    "test@example.com",
		"password": "password123",
		"name":     "Test User",
		"phone":    "9876543210",
	}
	body, _ := json.Marshal(registerReq)
	req := httptest.NewRequest("POST", "/api/v1/auth/register", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	ts.Router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusCreated, w.Code)

	var registerResp map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &registerResp)
	tokens := registerResp["tokens"].(map[string]interface{})
	accessToken := tokens["access_token"].(string)

	loginReq := map[string]string{
		"email":    "test@example.com",
		"password": "password123",
	}
	body, _ = json.Marshal(loginReq)
	req = httptest.NewRequest("POST", "/api/v1/auth/login", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	ts.Router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest("GET", "/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+accessToken)
	w = httptest.NewRecorder()
	ts.Router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var meResp map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &meResp)
	user := meResp["user"].(map[string]interface{})
	assert.Equal(t, "test@example.com", user["email"])
	assert.Equal(t, "Test User", user["name"])
}

func TestUnauthorizedAccess(t *testing.T) {
	ts := setupIntegrationTest(t)
	defer db.CleanupTestDB(ts.DB)

	protectedRoutes := []string{
		"/api/v1/auth/me",
		"/api/v1/orders",
		"/api/v1/admin/orders",
	}

	for _, route := range protectedRoutes {
		t.Run(route, func(t *testing.T) {
			req := httptest.NewRequest("GET", route, nil)
			w := httptest.NewRecorder()

			ts.Router.ServeHTTP(w, req)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestAdminRouteForbiddenForUser(t *testing.T) {
	ts := setupIntegrationTest(t)
	defer db.CleanupTestDB(ts.DB)

	_, tokens, err := ts.AuthService.Register("plain@example.com", "password123", "Plain User", "", "")
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/api/v1/admin/orders", nil)
	req.Header.Set("Authorization", "Bearer "+tokens.AccessToken)
	w := httptest.NewRecorder()
	ts.Router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}
