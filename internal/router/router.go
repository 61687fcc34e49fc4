package router

import (
	"github.com/gin-gonic/gin"
	"github.com/krishnakath/dairyshop-backend/config"
	"github.com/krishnakath/dairyshop-backend/internal/app/controller"
	"github.com/krishnakath/dairyshop-backend/internal/middleware"
	"github.com/krishnakath/dairyshop-backend/internal/websocket"
)

type Router struct {
	authController     *controller.AuthController
	productController  *controller.ProductController
	cartController     *controller.CartController
	orderController    *controller.OrderController
	adminController    *controller.AdminController
	feedbackController *controller.FeedbackController
	uploadController   *controller.UploadController
	authMiddleware     *middleware.AuthMiddleware
	hub                *websocket.Hub
	config             *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	productController *controller.ProductController,
	cartController *controller.CartController,
	orderController *controller.OrderController,
	adminController *controller.AdminController,
	feedbackController *controller.FeedbackController,
	uploadController *controller.UploadController,
	authMiddleware *middleware.AuthMiddleware,
	hub *websocket.Hub,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:     authController,
		productController:  productController,
		cartController:     cartController,
		orderController:    orderController,
		adminController:    adminController,
		feedbackController: feedbackController,
		uploadController:   uploadController,
		authMiddleware:     authMiddleware,
		hub:                hub,
		config:             cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	sessionMiddleware := middleware.SessionMiddleware(r.config.Session)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "DAIRYSHOP API is running",
		})
	})

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		auth.Use(sessionMiddleware)
		{
			auth.POST("/register", r.authController.Register)
			auth.POST("/login", r.authController.Login)
			auth.POST("/logout", r.authController.Logout)
			auth.GET("/me", r.authMiddleware.Authenticate(), r.authController.GetMe)
			auth.PUT("/me", r.authMiddleware.Authenticate(), r.authController.UpdateMe)
			auth.PUT("/password", r.authMiddleware.Authenticate(), r.authController.ChangePassword)
		}

		products := v1.Group("/products")
		{
			products.GET("", r.productController.GetAllProducts)
			products.GET("/categories", r.productController.GetCategories)
			products.GET("/:id", r.productController.GetProductByID)
			products.GET("/:id/recommendations", r.productController.GetRecommendations)

			products.POST("",
				r.authMiddleware.Authenticate(),
				r.authMiddleware.RequireRole("admin"),
				r.productController.CreateProduct,
			)
			products.PUT("/:id",
				r.authMiddleware.Authenticate(),
				r.authMiddleware.RequireRole("admin"),
				r.productController.UpdateProduct,
			)
			products.DELETE("/:id",
				r.authMiddleware.Authenticate(),
				r.authMiddleware.RequireRole("admin"),
				r.productController.DeleteProduct,
			)
		}

		// Cart works for guests and signed-in users alike. The optional
		// auth must run first so a valid token wins over the cookie.
		cart := v1.Group("/cart")
		cart.Use(r.authMiddleware.OptionalAuthenticate(), sessionMiddleware)
		{
			cart.GET("", r.cartController.GetCart)
			cart.GET("/count", r.cartController.GetCartCount)
			cart.POST("", r.cartController.AddToCart)
			cart.PUT("/:productId", r.cartController.UpdateCartItem)
			cart.DELETE("/:productId", r.cartController.RemoveFromCart)
			cart.DELETE("", r.cartController.ClearCart)
		}

		orders := v1.Group("/orders")
		orders.Use(r.authMiddleware.Authenticate())
		{
			orders.GET("", r.orderController.GetOrders)
			orders.GET("/:id", r.orderController.GetOrderByID)
			orders.GET("/:id/invoice", r.orderController.DownloadInvoice)
			orders.POST("", r.orderController.CreateOrder)
		}

		v1.POST("/feedback",
			r.authMiddleware.OptionalAuthenticate(),
			r.feedbackController.SubmitFeedback,
		)

		uploads := v1.Group("/uploads")
		uploads.Use(r.authMiddleware.Authenticate())
		{
			uploads.POST("/presign", r.uploadController.PresignUpload)
		}

		admin := v1.Group("/admin")
		admin.Use(r.authMiddleware.Authenticate(), r.authMiddleware.RequireRole("admin"))
		{
			admin.GET("/orders", r.adminController.GetAllOrders)
			admin.GET("/orders/export", r.adminController.ExportOrders)
			admin.GET("/orders/:id", r.adminController.GetOrder)
			admin.POST("/orders/:id/review", r.adminController.ReviewOrder)
			admin.POST("/products/:id/stock", r.adminController.AdjustStock)
			admin.GET("/products/low-stock", r.adminController.GetLowStockProducts)
			admin.GET("/stats", r.adminController.GetStats)
			admin.GET("/feedback", r.adminController.GetFeedback)
			admin.DELETE("/feedback/:id", r.adminController.DeleteFeedback)
			admin.GET("/ws", websocket.ServeWS(r.hub))
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
