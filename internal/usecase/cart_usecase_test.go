package usecase_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"cartapi/internal/cartstore"
	"cartapi/internal/domain/model"
	repo "cartapi/internal/repository"
	"cartapi/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func activeProduct(id string, price string) model.Product {
	return model.Product{
		ID:       id,
		Name:     "Product " + id,
		Price:    decimal.RequireFromString(price),
		Stock:    10,
		IsActive: true,
	}
}

func assertHTTPError(t *testing.T, err error, status int, code string) {
	t.Helper()
	he, ok := usecase.AsHTTPError(err)
	require.True(t, ok, "expected HTTPError, got %v", err)
	assert.Equal(t, status, he.Status)
	assert.Equal(t, code, he.Code)
}

func newCartUC(products repo.ProductRepository) (*usecase.CartUsecase, *cartstore.Registry) {
	carts := cartstore.NewRegistry(time.Hour)
	return usecase.NewCartUsecase(carts, products, nil), carts
}

func TestCartUsecase_AddToCart_ResolvesPriceFromCatalog(t *testing.T) {
	ctx := context.Background()
	pRepo := new(ProductRepoMock)
	uc, _ := newCartUC(pRepo)

	pRepo.On("FindByID", mock.Anything, "p1").Return(activeProduct("p1", "5.00"), nil).Twice()

	_, err := uc.AddToCart(ctx, "s1", usecase.AddCartInput{ProductID: "p1", Quantity: 2})
	require.NoError(t, err)
	cart, err := uc.AddToCart(ctx, "s1", usecase.AddCartInput{ProductID: "p1", Quantity: 3})
	require.NoError(t, err)

	require.Len(t, cart.Lines, 1)
	assert.Equal(t, int64(5), cart.Lines[0].Quantity)
	assert.Equal(t, "Product p1", cart.Lines[0].Name)
	assert.True(t, decimal.RequireFromString("25").Equal(cart.Total))

	pRepo.AssertExpectations(t)
}

func TestCartUsecase_AddToCart_UnknownProduct(t *testing.T) {
	pRepo := new(ProductRepoMock)
	uc, carts := newCartUC(pRepo)

	pRepo.On("FindByID", mock.Anything, "nope").Return(model.Product{}, repo.ErrNotFound)

	_, err := uc.AddToCart(context.Background(), "s1", usecase.AddCartInput{ProductID: "nope", Quantity: 1})
	assertHTTPError(t, err, http.StatusBadRequest, usecase.CodeInvalidProduct)
	assert.Empty(t, carts.Get("s1").List().Lines)
}

func TestCartUsecase_AddToCart_InactiveProduct(t *testing.T) {
	pRepo := new(ProductRepoMock)
	uc, _ := newCartUC(pRepo)

	p := activeProduct("p1", "5.00")
	p.IsActive = false
	pRepo.On("FindByID", mock.Anything, "p1").Return(p, nil)

	_, err := uc.AddToCart(context.Background(), "s1", usecase.AddCartInput{ProductID: "p1", Quantity: 1})
	assertHTTPError(t, err, http.StatusBadRequest, usecase.CodeInvalidProduct)
}

func TestCartUsecase_AddToCart_InvalidProductID(t *testing.T) {
	pRepo := new(ProductRepoMock)
	uc, _ := newCartUC(pRepo)

	_, err := uc.AddToCart(context.Background(), "s1", usecase.AddCartInput{ProductID: " ", Quantity: 1})
	assertHTTPError(t, err, http.StatusBadRequest, usecase.CodeInvalidInput)

	//カタログは呼ばれない
	pRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestCartUsecase_AddToCart_CatalogFailure(t *testing.T) {
	pRepo := new(ProductRepoMock)
	uc, _ := newCartUC(pRepo)

	pRepo.On("FindByID", mock.Anything, "p1").Return(model.Product{}, errors.New("connection refused"))

	_, err := uc.AddToCart(context.Background(), "s1", usecase.AddCartInput{ProductID: "p1", Quantity: 1})
	assertHTTPError(t, err, http.StatusInternalServerError, usecase.CodeInternal)
}

func TestCartUsecase_NoSession(t *testing.T) {
	uc, _ := newCartUC(new(ProductRepoMock))

	_, err := uc.GetCart(context.Background(), "")
	assertHTTPError(t, err, http.StatusUnauthorized, usecase.CodeUnauthorized)
}

func TestCartUsecase_UpdateCartItem(t *testing.T) {
	ctx := context.Background()
	pRepo := new(ProductRepoMock)
	uc, _ := newCartUC(pRepo)
	pRepo.On("FindByID", mock.Anything, "p1").Return(activeProduct("p1", "5.00"), nil)

	_, err := uc.AddToCart(ctx, "s1", usecase.AddCartInput{ProductID: "p1", Quantity: 5})
	require.NoError(t, err)

	cart, err := uc.UpdateCartItem(ctx, "s1", "p1", usecase.UpdateCartItemInput{Quantity: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(1), cart.Lines[0].Quantity)

	_, err = uc.UpdateCartItem(ctx, "s1", "p9", usecase.UpdateCartItemInput{Quantity: 1})
	assertHTTPError(t, err, http.StatusNotFound, usecase.CodeNotFound)
}

func TestCartUsecase_DeleteCartItem_Idempotent(t *testing.T) {
	ctx := context.Background()
	pRepo := new(ProductRepoMock)
	uc, _ := newCartUC(pRepo)
	pRepo.On("FindByID", mock.Anything, "p1").Return(activeProduct("p1", "5.00"), nil)

	_, err := uc.AddToCart(ctx, "s1", usecase.AddCartInput{ProductID: "p1", Quantity: 2})
	require.NoError(t, err)

	first, err := uc.DeleteCartItem(ctx, "s1", "p1")
	require.NoError(t, err)
	second, err := uc.DeleteCartItem(ctx, "s1", "p1")
	require.NoError(t, err)

	assert.Empty(t, first.Lines)
	assert.Equal(t, first.Lines, second.Lines)
}

func TestCartUsecase_GetTotal(t *testing.T) {
	ctx := context.Background()
	pRepo := new(ProductRepoMock)
	uc, _ := newCartUC(pRepo)
	pRepo.On("FindByID", mock.Anything, "p1").Return(activeProduct("p1", "5.00"), nil)
	pRepo.On("FindByID", mock.Anything, "p2").Return(activeProduct("p2", "3.50"), nil)

	_, err := uc.AddToCart(ctx, "s1", usecase.AddCartInput{ProductID: "p1", Quantity: 2})
	require.NoError(t, err)
	_, err = uc.AddToCart(ctx, "s1", usecase.AddCartInput{ProductID: "p2", Quantity: 1})
	require.NoError(t, err)

	out, err := uc.GetTotal(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("13.50").Equal(out.Total))

	//別セッションには見えない
	other, err := uc.GetTotal(ctx, "s2")
	require.NoError(t, err)
	assert.True(t, other.Total.IsZero())
}

func TestCartUsecase_ClearCart_ConflictsWithCheckout(t *testing.T) {
	ctx := context.Background()
	pRepo := new(ProductRepoMock)
	uc, carts := newCartUC(pRepo)
	pRepo.On("FindByID", mock.Anything, "p1").Return(activeProduct("p1", "5.00"), nil)

	_, err := uc.AddToCart(ctx, "s1", usecase.AddCartInput{ProductID: "p1", Quantity: 2})
	require.NoError(t, err)

	snap, err := carts.Get("s1").BeginCheckout()
	require.NoError(t, err)

	_, err = uc.ClearCart(ctx, "s1")
	assertHTTPError(t, err, http.StatusConflict, usecase.CodeCheckoutInProgress)

	require.NoError(t, carts.Get("s1").AbortCheckout(snap))
	cart, err := uc.ClearCart(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, cart.Lines)
}

func TestCartUsecase_ReadsDoNotCreateCart(t *testing.T) {
	uc, carts := newCartUC(new(ProductRepoMock))

	cart, err := uc.GetCart(context.Background(), "s1")
	require.NoError(t, err)
	assert.NotNil(t, cart.Lines)
	assert.Empty(t, cart.Lines)
	assert.Equal(t, model.CheckoutStatusIdle, cart.CheckoutStatus)

	out, err := uc.GetTotal(context.Background(), "s1")
	require.NoError(t, err)
	assert.True(t, out.Total.IsZero())

	assert.Equal(t, 0, carts.Len())
}
