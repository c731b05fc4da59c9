package usecase

import (
	"context"
	"errors"
	"net/http"
	"time"

	"cartapi/internal/cartstore"
	"cartapi/internal/domain/model"
	repo "cartapi/internal/repository"
	"cartapi/internal/validator"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CheckoutUsecase はカートを注文に確定させる。
// IDLE -> PROCESSING -> COMPLETED / FAILED
type CheckoutUsecase struct {
	carts    *cartstore.Registry
	payments PaymentProcessor
	orders   repo.OrderRepository
	log      *zap.Logger
	now      func() time.Time
}

// ordersはnilでもよい（注文を記録しない）
func NewCheckoutUsecase(carts *cartstore.Registry, payments PaymentProcessor, orders repo.OrderRepository, log *zap.Logger) *CheckoutUsecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &CheckoutUsecase{
		carts:    carts,
		payments: payments,
		orders:   orders,
		log:      log,
		now:      time.Now,
	}
}

type CheckoutInput struct {
	PaymentMethod string
}

func (u *CheckoutUsecase) Checkout(ctx context.Context, sessionID string, in CheckoutInput) (model.Order, error) {
	if sessionID == "" {
		return model.Order{}, NewHTTPError(http.StatusUnauthorized, CodeUnauthorized, "no session")
	}
	method, err := validator.ValidatePaymentMethod(in.PaymentMethod)
	if err != nil {
		return model.Order{}, NewHTTPError(http.StatusBadRequest, CodeInvalidInput, "invalid paymentMethod")
	}

	store := u.carts.Get(sessionID)

	//スナップショットを取ってclearの権利を確保
	snap, err := store.BeginCheckout()
	if errors.Is(err, cartstore.ErrEmptyCart) {
		return model.Order{}, NewHTTPError(http.StatusBadRequest, CodeEmptyCart, "cart is empty")
	}
	if errors.Is(err, cartstore.ErrCheckoutInProgress) {
		return model.Order{}, NewHTTPError(http.StatusConflict, CodeCheckoutInProgress, "checkout in progress")
	}
	if err != nil {
		return model.Order{}, internalError(u.log, "begin checkout failed", err)
	}

	orderID := uuid.NewString()
	log := u.log.With(
		zap.String("session_id", sessionID),
		zap.String("order_id", orderID),
		zap.String("payment_method", method),
	)
	log.Info("checkout processing",
		zap.Int("lines", len(snap.Lines)),
		zap.String("total", snap.Total.StringFixed(2)))

	//決済（ロックは持たない）
	receipt, err := u.payments.Charge(ctx, PaymentRequest{
		OrderID: orderID,
		Method:  method,
		Amount:  snap.Total,
	})
	if err != nil {
		if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			//キャンセル：カートは開始前のまま
			if aerr := store.AbortCheckout(snap); aerr != nil {
				log.Error("abort checkout failed", zap.Error(aerr))
			}
			log.Warn("checkout canceled", zap.Error(err), zap.String("status", string(store.Status())))
			return model.Order{}, NewHTTPError(http.StatusRequestTimeout, CodeCheckoutCanceled, "checkout canceled")
		}

		if ferr := store.FailCheckout(snap); ferr != nil {
			log.Error("fail checkout failed", zap.Error(ferr))
		}
		log.Warn("checkout failed", zap.Error(err), zap.String("status", string(store.Status())))
		return model.Order{}, NewHTTPError(http.StatusPaymentRequired, CodePaymentFailed, "payment failed")
	}

	if err := store.CompleteCheckout(snap); err != nil {
		return model.Order{}, internalError(log, "complete checkout failed", err)
	}

	order := model.Order{
		ID:            orderID,
		SessionID:     sessionID,
		PaymentMethod: method,
		PaymentRef:    receipt.Reference,
		Total:         snap.Total,
		CompletedAt:   u.now().UTC(),
		Lines:         model.NewOrderLines(snap.Lines),
	}

	//記録の失敗で確定済みのチェックアウトは戻さない
	if u.orders != nil {
		if err := u.orders.Create(context.WithoutCancel(ctx), order); err != nil {
			log.Error("record order failed", zap.Error(err))
		}
	}

	log.Info("checkout completed", zap.String("payment_ref", receipt.Reference))
	return order, nil
}

// 自セッションの注文履歴（新しい順）
func (u *CheckoutUsecase) ListOrders(ctx context.Context, sessionID string) ([]model.Order, error) {
	if sessionID == "" {
		return []model.Order{}, NewHTTPError(http.StatusUnauthorized, CodeUnauthorized, "no session")
	}
	if u.orders == nil {
		return []model.Order{}, nil
	}

	orders, err := u.orders.ListBySession(ctx, sessionID, 50)
	if err != nil {
		return []model.Order{}, internalError(u.log, "list orders failed", err, zap.String("session_id", sessionID))
	}
	return orders, nil
}
