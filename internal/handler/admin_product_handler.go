package handler

import (
	"encoding/json"
	"net/http"

	"cartapi/internal/middleware"
	"cartapi/internal/usecase"
	"cartapi/internal/validator"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type SuccessResponse struct {
	Message string `json:"message"`
}

// priceとstockは数値でも文字列でも受ける（管理画面のフォームは文字列で送る）
type ProductWriteRequest struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       json.RawMessage `json:"stock"`
	IsActive    *bool           `json:"isActive"` // 未指定ならtrue
}

// /products の書き込み（管理者のみ）
type AdminProductHandler struct {
	uc *usecase.ProductUsecase
}

// DI
func NewAdminProductHandler(uc *usecase.ProductUsecase) *AdminProductHandler {
	return &AdminProductHandler{uc: uc}
}

// GETは公開のまま、書き込みだけguardを通す
func (h *AdminProductHandler) RegisterRoutes(e *echo.Echo, guard echo.MiddlewareFunc) {
	e.POST("/products", h.createProduct, guard)
	e.PUT("/products/:id", h.updateProduct, guard)
	e.DELETE("/products/:id", h.deleteProduct, guard)
}

func (h *AdminProductHandler) createProduct(c echo.Context) error {
	in, ok, err := bindProductWrite(c)
	if !ok {
		return err
	}

	adminID, ok := middleware.AdminSubject(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: usecase.CodeUnauthorized})
	}

	p, err := h.uc.AdminCreateProduct(c.Request().Context(), adminID, in)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, p)
}

func (h *AdminProductHandler) updateProduct(c echo.Context) error {
	in, ok, err := bindProductWrite(c)
	if !ok {
		return err
	}

	adminID, ok := middleware.AdminSubject(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: usecase.CodeUnauthorized})
	}

	p, err := h.uc.AdminUpdateProduct(c.Request().Context(), adminID, c.Param("id"), in)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, p)
}

func (h *AdminProductHandler) deleteProduct(c echo.Context) error {
	adminID, ok := middleware.AdminSubject(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: usecase.CodeUnauthorized})
	}

	if err := h.uc.AdminDeleteProduct(c.Request().Context(), adminID, c.Param("id")); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Message: "deleted"})
}

// okがfalseならレスポンスは書き込み済み
func bindProductWrite(c echo.Context) (usecase.AdminProductInput, bool, error) {
	var req ProductWriteRequest
	if err := c.Bind(&req); err != nil {
		return usecase.AdminProductInput{}, false, badRequest(c, "invalid body")
	}

	stock, err := validator.ParseStock(req.Stock)
	if err != nil {
		return usecase.AdminProductInput{}, false, badRequest(c, "invalid stock")
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	return usecase.AdminProductInput{
		ID:          req.ID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       stock,
		IsActive:    active,
	}, true, nil
}
