package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/krishnakath/dairyshop-backend/internal/app/service"
	"github.com/krishnakath/dairyshop-backend/internal/middleware"
)

type CartController struct {
	cartService service.CartService
}

func NewCartController(cartService service.CartService) *CartController {
	return &CartController{
		cartService: cartService,
	}
}

type AddToCartRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,gt=0"`
}

type UpdateCartRequest struct {
	Quantity int `json:"quantity" binding:"gte=0"`
}

// cartOwner resolves who the cart belongs to: the authenticated user if a
// valid token accompanied the request, otherwise the guest session cookie.
func cartOwner(c *gin.Context) (service.CartOwner, bool) {
	if userID, ok := middleware.GetUserID(c); ok {
		return service.UserOwner(userID), true
	}
	if sessionID, ok := middleware.GetSessionID(c); ok {
		return service.SessionOwner(sessionID), true
	}
	return service.CartOwner{}, false
}

// GetCart returns the cart for the current user or guest session
// GET /api/v1/cart
func (ctrl *CartController) GetCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	owner, ok := cartOwner(c)
	if !ok {
		log.Warn("Cart request without user or session", nil)
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "No cart session",
		})
		return
	}

	view, err := ctrl.cartService.Items(c.Request.Context(), owner)
	if err != nil {
		log.Error("Failed to fetch cart", err, nil)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to fetch cart",
		})
		return
	}

	log.Info("Cart fetched successfully", map[string]interface{}{
		"count": len(view.Lines),
		"total": view.Total,
	})

	c.JSON(http.StatusOK, gin.H{
		"cart_items": view.Lines,
		"count":      len(view.Lines),
		"total":      view.Total,
	})
}

// GetCartCount returns the badge count for the header
// GET /api/v1/cart/count
func (ctrl *CartController) GetCartCount(c *gin.Context) {
	owner, ok := cartOwner(c)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"count": 0})
		return
	}

	count := ctrl.cartService.Count(c.Request.Context(), owner)
	c.JSON(http.StatusOK, gin.H{"count": count})
}

// AddToCart adds an item to the cart
// POST /api/v1/cart
func (ctrl *CartController) AddToCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	owner, ok := cartOwner(c)
	if !ok {
		log.Warn("Add to cart without user or session", nil)
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "No cart session",
		})
		return
	}

	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid add to cart request", map[string]interface{}{
			"error": err.Error(),
		})
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request data",
		})
		return
	}

	err := ctrl.cartService.Add(c.Request.Context(), owner, req.ProductID, req.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProductNotFound):
			log.Warn("Add to cart failed: product not found", map[string]interface{}{
				"product_id": req.ProductID,
			})
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Product not found",
			})
		case errors.Is(err, service.ErrInsufficientStock):
			log.Warn("Add to cart failed: insufficient stock", map[string]interface{}{
				"product_id": req.ProductID,
				"quantity":   req.Quantity,
			})
			c.JSON(http.StatusConflict, gin.H{
				"error": "Not enough stock available",
			})
		case errors.Is(err, service.ErrInvalidQuantity):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Quantity must be positive",
			})
		default:
			log.Error("Failed to add item to cart", err, map[string]interface{}{
				"product_id": req.ProductID,
			})
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to add item to cart",
			})
		}
		return
	}

	log.Info("Item added to cart", map[string]interface{}{
		"product_id": req.ProductID,
		"quantity":   req.Quantity,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Item added to cart",
	})
}

// UpdateCartItem replaces an item's quantity; zero removes it
// PUT /api/v1/cart/:productId
func (ctrl *CartController) UpdateCartItem(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	owner, ok := cartOwner(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "No cart session",
		})
		return
	}

	productID, err := strconv.ParseUint(c.Param("productId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid product ID",
		})
		return
	}

	var req UpdateCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid cart update request", map[string]interface{}{
			"error": err.Error(),
		})
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request data",
		})
		return
	}

	err = ctrl.cartService.SetQuantity(c.Request.Context(), owner, uint(productID), req.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCartItemNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Cart item not found",
			})
		case errors.Is(err, service.ErrProductNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Product not found",
			})
		case errors.Is(err, service.ErrInsufficientStock):
			c.JSON(http.StatusConflict, gin.H{
				"error": "Not enough stock available",
			})
		default:
			log.Error("Failed to update cart item", err, map[string]interface{}{
				"product_id": productID,
			})
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to update cart item",
			})
		}
		return
	}

	log.Info("Cart item updated", map[string]interface{}{
		"product_id": productID,
		"quantity":   req.Quantity,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart updated",
	})
}

// RemoveFromCart removes an item from the cart
// DELETE /api/v1/cart/:productId
func (ctrl *CartController) RemoveFromCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	owner, ok := cartOwner(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "No cart session",
		})
		return
	}

	productID, err := strconv.ParseUint(c.Param("productId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid product ID",
		})
		return
	}

	err = ctrl.cartService.Remove(c.Request.Context(), owner, uint(productID))
	if err != nil {
		if errors.Is(err, service.ErrCartItemNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Cart item not found",
			})
			return
		}
		log.Error("Failed to remove cart item", err, map[string]interface{}{
			"product_id": productID,
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to remove cart item",
		})
		return
	}

	log.Info("Cart item removed", map[string]interface{}{
		"product_id": productID,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Item removed from cart",
	})
}

// ClearCart empties the cart
// DELETE /api/v1/cart
func (ctrl *CartController) ClearCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	owner, ok := cartOwner(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "No cart session",
		})
		return
	}

	if err := ctrl.cartService.Clear(c.Request.Context(), owner); err != nil {
		log.Error("Failed to clear cart", err, nil)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to clear cart",
		})
		return
	}

	log.Info("Cart cleared", nil)

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart cleared",
	})
}
