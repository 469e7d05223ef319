package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/marketclient/internal/server/http/dto"
)

// CartHandler serves the customer cart.
type CartHandler struct {
	facade CartFacade
}

// NewCartHandler creates CartHandler instance.
func NewCartHandler(facade CartFacade) *CartHandler {
	return &CartHandler{facade: facade}
}

// Get handles GET /api/cart.
func (h *CartHandler) Get(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewCartResponse(h.facade.Cart()))
}

// Add handles POST /api/cart/items.
func (h *CartHandler) Add(c *gin.Context) {
	var req dto.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	cart, err := h.facade.AddToCart(req.ProductID, req.UnitPrice, quantity, req.Metadata)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewCartResponse(cart))
}

// Update handles PUT /api/cart/items/:productID.
func (h *CartHandler) Update(c *gin.Context) {
	var req dto.UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	cart, err := h.facade.UpdateCartQuantity(c.Param("productID"), req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewCartResponse(cart))
}

// Remove handles DELETE /api/cart/items/:productID.
func (h *CartHandler) Remove(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewCartResponse(h.facade.RemoveFromCart(c.Param("productID"))))
}

// Clear handles DELETE /api/cart.
func (h *CartHandler) Clear(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewCartResponse(h.facade.ClearCart()))
}

// CheckoutCompleted handles POST /api/cart/checkout-complete.
func (h *CartHandler) CheckoutCompleted(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewCartResponse(h.facade.CheckoutCompleted()))
}
