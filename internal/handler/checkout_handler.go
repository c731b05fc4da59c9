package handler

import (
	"net/http"

	"cartapi/internal/middleware"
	"cartapi/internal/usecase"

	"github.com/labstack/echo/v4"
)

type CheckoutHandler struct {
	uc *usecase.CheckoutUsecase
}

func NewCheckoutHandler(uc *usecase.CheckoutUsecase) *CheckoutHandler {
	return &CheckoutHandler{uc: uc}
}

type CheckoutRequest struct {
	PaymentMethod string `json:"paymentMethod"`
}

func (h *CheckoutHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/checkout", h.checkout)
	g.GET("/orders", h.listOrders)
}

func (h *CheckoutHandler) checkout(c echo.Context) error {
	sessionID, _ := middleware.SessionID(c)

	//bodyなしも許す（paymentMethodはcredit扱い）
	var req CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	out, err := h.uc.Checkout(c.Request().Context(), sessionID, usecase.CheckoutInput{
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *CheckoutHandler) listOrders(c echo.Context) error {
	sessionID, _ := middleware.SessionID(c)

	out, err := h.uc.ListOrders(c.Request().Context(), sessionID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
