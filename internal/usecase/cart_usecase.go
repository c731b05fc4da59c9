package usecase

import (
	"context"
	"errors"
	"net/http"

	"cartapi/internal/cartstore"
	"cartapi/internal/domain/model"
	repo "cartapi/internal/repository"
	"cartapi/internal/validator"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CartUsecase は /cart の業務ロジック。
// カート自体はセッションごとのcartstore.Storeが持ち、ここでは価格の解決とエラー変換だけをする。
type CartUsecase struct {
	carts    *cartstore.Registry
	products repo.ProductRepository
	log      *zap.Logger
}

func NewCartUsecase(carts *cartstore.Registry, products repo.ProductRepository, log *zap.Logger) *CartUsecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &CartUsecase{
		carts:    carts,
		products: products,
		log:      log,
	}
}

type AddCartInput struct {
	ProductID string
	Quantity  int64
}

type UpdateCartItemInput struct {
	Quantity int64
}

type TotalOutput struct {
	Total decimal.Decimal `json:"total"`
}

func (u *CartUsecase) GetCart(ctx context.Context, sessionID string) (model.Cart, error) {
	if sessionID == "" {
		return model.Cart{}, NewHTTPError(http.StatusUnauthorized, CodeUnauthorized, "no session")
	}
	//読むだけならカートを作らない
	store, ok := u.carts.Lookup(sessionID)
	if !ok {
		return emptyCart(), nil
	}
	return store.List(), nil
}

// AddToCart はカートに追加（同一商品は数量加算）。
func (u *CartUsecase) AddToCart(ctx context.Context, sessionID string, in AddCartInput) (model.Cart, error) {
	if sessionID == "" {
		return model.Cart{}, NewHTTPError(http.StatusUnauthorized, CodeUnauthorized, "no session")
	}
	if err := validator.ValidateProductID(in.ProductID); err != nil {
		return model.Cart{}, NewHTTPError(http.StatusBadRequest, CodeInvalidInput, "invalid productId")
	}

	// カタログ参照はStoreのロック外で行う
	p, err := u.products.FindByID(ctx, in.ProductID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Cart{}, NewHTTPError(http.StatusBadRequest, CodeInvalidProduct, "unknown product")
	}
	if err != nil {
		return model.Cart{}, internalError(u.log, "catalog lookup failed", err, zap.String("product_id", in.ProductID))
	}
	if !p.IsActive || p.Price.IsNegative() {
		return model.Cart{}, NewHTTPError(http.StatusBadRequest, CodeInvalidProduct, "unknown product")
	}

	return u.carts.Get(sessionID).Add(p, in.Quantity), nil
}

// 数量変更（置き換え）。
func (u *CartUsecase) UpdateCartItem(ctx context.Context, sessionID string, productID string, in UpdateCartItemInput) (model.Cart, error) {
	if sessionID == "" {
		return model.Cart{}, NewHTTPError(http.StatusUnauthorized, CodeUnauthorized, "no session")
	}

	cart, err := u.carts.Get(sessionID).Update(productID, in.Quantity)
	if errors.Is(err, cartstore.ErrLineNotFound) {
		return model.Cart{}, NewHTTPError(http.StatusNotFound, CodeNotFound, "item not found in cart")
	}
	if err != nil {
		return model.Cart{}, internalError(u.log, "update cart line failed", err)
	}
	return cart, nil
}

// 明細削除（無くても成功）
func (u *CartUsecase) DeleteCartItem(ctx context.Context, sessionID string, productID string) (model.Cart, error) {
	if sessionID == "" {
		return model.Cart{}, NewHTTPError(http.StatusUnauthorized, CodeUnauthorized, "no session")
	}
	return u.carts.Get(sessionID).Remove(productID), nil
}

// カートを空にする。チェックアウト中は409。
func (u *CartUsecase) ClearCart(ctx context.Context, sessionID string) (model.Cart, error) {
	if sessionID == "" {
		return model.Cart{}, NewHTTPError(http.StatusUnauthorized, CodeUnauthorized, "no session")
	}

	store := u.carts.Get(sessionID)
	if err := store.Clear(); err != nil {
		if errors.Is(err, cartstore.ErrCheckoutInProgress) {
			return model.Cart{}, NewHTTPError(http.StatusConflict, CodeCheckoutInProgress, "checkout in progress")
		}
		return model.Cart{}, internalError(u.log, "clear cart failed", err)
	}
	return store.List(), nil
}

func (u *CartUsecase) GetTotal(ctx context.Context, sessionID string) (TotalOutput, error) {
	if sessionID == "" {
		return TotalOutput{}, NewHTTPError(http.StatusUnauthorized, CodeUnauthorized, "no session")
	}
	store, ok := u.carts.Lookup(sessionID)
	if !ok {
		return TotalOutput{Total: decimal.Zero}, nil
	}
	return TotalOutput{Total: store.Total()}, nil
}

func emptyCart() model.Cart {
	return model.Cart{
		Lines:          []model.CartLine{},
		Total:          decimal.Zero,
		CheckoutStatus: model.CheckoutStatusIdle,
	}
}
