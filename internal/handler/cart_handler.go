package handler

import (
	"encoding/json"
	"net/http"

	"cartapi/internal/middleware"
	"cartapi/internal/usecase"
	"cartapi/internal/validator"

	"github.com/labstack/echo/v4"
)

// /cartのHTTP
type CartHandler struct {
	uc *usecase.CartUsecase
}

// DI
func NewCartHandler(uc *usecase.CartUsecase) *CartHandler {
	return &CartHandler{uc: uc}
}

// quantityは数値でも文字列でも受ける（validator.ClampQuantityで丸める）
type AddCartRequest struct {
	ProductID string          `json:"productId"`
	Quantity  json.RawMessage `json:"quantity"`
}

type UpdateCartItemRequest struct {
	Quantity json.RawMessage `json:"quantity"`
}

// /cart, /cart/{id} を登録
func (h *CartHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/cart", h.getCart)
	g.POST("/cart", h.addToCart)
	g.DELETE("/cart", h.clearCart)
	g.GET("/cart/total", h.getTotal)
	g.PUT("/cart/:id", h.putItem)
	g.DELETE("/cart/:id", h.deleteItem)
}

func (h *CartHandler) getCart(c echo.Context) error {
	sessionID, _ := middleware.SessionID(c)

	out, err := h.uc.GetCart(c.Request().Context(), sessionID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) addToCart(c echo.Context) error {
	sessionID, _ := middleware.SessionID(c)

	var req AddCartRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	out, err := h.uc.AddToCart(c.Request().Context(), sessionID, usecase.AddCartInput{
		ProductID: req.ProductID,
		Quantity:  validator.ClampQuantity(req.Quantity),
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) putItem(c echo.Context) error {
	sessionID, _ := middleware.SessionID(c)

	var req UpdateCartItemRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	out, err := h.uc.UpdateCartItem(c.Request().Context(), sessionID, c.Param("id"), usecase.UpdateCartItemInput{
		Quantity: validator.ClampQuantity(req.Quantity),
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) deleteItem(c echo.Context) error {
	sessionID, _ := middleware.SessionID(c)

	out, err := h.uc.DeleteCartItem(c.Request().Context(), sessionID, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) clearCart(c echo.Context) error {
	sessionID, _ := middleware.SessionID(c)

	out, err := h.uc.ClearCart(c.Request().Context(), sessionID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) getTotal(c echo.Context) error {
	sessionID, _ := middleware.SessionID(c)

	out, err := h.uc.GetTotal(c.Request().Context(), sessionID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}
