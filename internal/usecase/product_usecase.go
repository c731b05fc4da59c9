package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"cartapi/internal/domain/model"
	repo "cartapi/internal/repository"
	"cartapi/internal/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// 機械可読なエラーコード（handlerがそのままerrorに入れる）
const (
	CodeInvalidInput       = "INVALID_INPUT"
	CodeInvalidProduct     = "INVALID_PRODUCT"
	CodeNotFound           = "NOT_FOUND"
	CodeEmptyCart          = "EMPTY_CART"
	CodePaymentFailed      = "PAYMENT_FAILED"
	CodeCheckoutInProgress = "CHECKOUT_IN_PROGRESS"
	CodeCheckoutCanceled   = "CHECKOUT_CANCELED"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeForbidden          = "FORBIDDEN"
	CodeConflict           = "CONFLICT"
	CodeInternal           = "INTERNAL"
)

type HTTPError struct {
	Status  int
	Code    string
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Status, e.Code, e.Message)
}

func NewHTTPError(status int, code string, message string) error {
	return &HTTPError{
		Status:  status,
		Code:    code,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

func internalError(log *zap.Logger, msg string, err error, fields ...zap.Field) error {
	log.Error(msg, append(fields, zap.Error(err))...)
	return NewHTTPError(http.StatusInternalServerError, CodeInternal, "internal error")
}

// /products（読み取りのみ）
type ProductUsecase struct {
	productRepo repo.ProductRepository
	log         *zap.Logger
}

// DI
func NewProductUsecase(productRepo repo.ProductRepository, log *zap.Logger) *ProductUsecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProductUsecase{
		productRepo: productRepo,
		log:         log,
	}
}

// GET /productsの入力DTO
type ListProductsInput struct {
	Page  int
	Limit int
	Q     string
}

type ProductListOutput struct {
	Items []model.Product `json:"items"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

func (u *ProductUsecase) ListActiveProducts(ctx context.Context, in ListProductsInput) (ProductListOutput, error) {
	if in.Page < 1 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, CodeInvalidInput, "invalid page")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, CodeInvalidInput, "invalid limit")
	}
	q := strings.TrimSpace(in.Q)
	if len(q) > 100 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, CodeInvalidInput, "invalid q")
	}

	items, total, err := u.productRepo.ListActive(ctx, repo.ProductListQuery{
		Page:  in.Page,
		Limit: in.Limit,
		Q:     q,
	})
	if err != nil {
		return ProductListOutput{}, internalError(u.log, "list products failed", err)
	}

	return ProductListOutput{
		Items: items,
		Total: total,
		Page:  in.Page,
		Limit: in.Limit,
	}, nil
}

func (u *ProductUsecase) GetProductDetail(ctx context.Context, id string) (model.Product, error) {
	p, err := u.productRepo.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Product{}, NewHTTPError(http.StatusNotFound, CodeNotFound, "product not found")
	}
	if err != nil {
		return model.Product{}, internalError(u.log, "find product failed", err, zap.String("product_id", id))
	}
	if !p.IsActive {
		return model.Product{}, NewHTTPError(http.StatusNotFound, CodeNotFound, "product not found")
	}
	return p, nil
}

// 管理画面からの商品入力。IDが空なら採番する（作成時のみ）。
type AdminProductInput struct {
	ID          string
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int64
	IsActive    bool
}

// 商品を作る。actorは操作した管理者（ログ用）。
func (u *ProductUsecase) AdminCreateProduct(ctx context.Context, actor string, in AdminProductInput) (model.Product, error) {
	if actor == "" {
		return model.Product{}, NewHTTPError(http.StatusUnauthorized, CodeUnauthorized, "unauthorized")
	}

	id := strings.TrimSpace(in.ID)
	if id == "" {
		id = uuid.NewString()
	}
	if err := validator.ValidateProductID(id); err != nil {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, CodeInvalidInput, "invalid id")
	}
	p, err := buildProduct(id, in)
	if err != nil {
		return model.Product{}, err
	}

	created, err := u.productRepo.Create(ctx, p)
	if errors.Is(err, repo.ErrConflict) {
		return model.Product{}, NewHTTPError(http.StatusConflict, CodeConflict, "product already exists")
	}
	if err != nil {
		return model.Product{}, internalError(u.log, "create product failed", err, zap.String("product_id", id))
	}

	u.log.Info("product created", zap.String("actor", actor), zap.String("product_id", id), zap.String("price", created.Price.StringFixed(2)))
	return created, nil
}

// 商品を更新する。カートに入っている明細の価格は変わらない。
func (u *ProductUsecase) AdminUpdateProduct(ctx context.Context, actor string, productID string, in AdminProductInput) (model.Product, error) {
	if actor == "" {
		return model.Product{}, NewHTTPError(http.StatusUnauthorized, CodeUnauthorized, "unauthorized")
	}
	if err := validator.ValidateProductID(productID); err != nil {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, CodeInvalidInput, "invalid product id")
	}
	p, err := buildProduct(productID, in)
	if err != nil {
		return model.Product{}, err
	}

	err = u.productRepo.Update(ctx, p)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Product{}, NewHTTPError(http.StatusNotFound, CodeNotFound, "product not found")
	}
	if err != nil {
		return model.Product{}, internalError(u.log, "update product failed", err, zap.String("product_id", productID))
	}

	u.log.Info("product updated", zap.String("actor", actor), zap.String("product_id", productID), zap.String("price", p.Price.StringFixed(2)))
	return p, nil
}

func (u *ProductUsecase) AdminDeleteProduct(ctx context.Context, actor string, productID string) error {
	if actor == "" {
		return NewHTTPError(http.StatusUnauthorized, CodeUnauthorized, "unauthorized")
	}
	if err := validator.ValidateProductID(productID); err != nil {
		return NewHTTPError(http.StatusBadRequest, CodeInvalidInput, "invalid product id")
	}

	err := u.productRepo.Delete(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return NewHTTPError(http.StatusNotFound, CodeNotFound, "product not found")
	}
	if err != nil {
		return internalError(u.log, "delete product failed", err, zap.String("product_id", productID))
	}

	u.log.Info("product deleted", zap.String("actor", actor), zap.String("product_id", productID))
	return nil
}

func buildProduct(id string, in AdminProductInput) (model.Product, error) {
	name, err := validator.ValidateProductName(in.Name)
	if err != nil {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, CodeInvalidInput, "name required")
	}
	price, err := validator.ValidatePrice(in.Price)
	if err != nil {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, CodeInvalidInput, "invalid price")
	}
	if in.Stock < 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, CodeInvalidInput, "stock must be >= 0")
	}

	return model.Product{
		ID:          id,
		Name:        name,
		Description: in.Description,
		Price:       price,
		Stock:       in.Stock,
		IsActive:    in.IsActive,
	}, nil
}
