package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// 決済が拒否された
var ErrPaymentDeclined = errors.New("payment declined")

type PaymentRequest struct {
	OrderID string
	Method  string
	Amount  decimal.Decimal
}

type PaymentReceipt struct {
	Reference string
	ChargedAt time.Time
}

// 決済の約束。実ゲートウェイは持たない。
type PaymentProcessor interface {
	Charge(ctx context.Context, req PaymentRequest) (PaymentReceipt, error)
}

// SimulatedPaymentProcessor は一定時間待ってから承認/拒否を返す。
type SimulatedPaymentProcessor struct {
	delay     time.Duration
	methods   map[string]struct{}
	maxAmount decimal.Decimal
}

// maxAmountが0以下なら上限なし
func NewSimulatedPaymentProcessor(delay time.Duration, methods []string, maxAmount decimal.Decimal) *SimulatedPaymentProcessor {
	set := make(map[string]struct{}, len(methods))
	for _, m := range methods {
		m = strings.ToLower(strings.TrimSpace(m))
		if m != "" {
			set[m] = struct{}{}
		}
	}
	return &SimulatedPaymentProcessor{
		delay:     delay,
		methods:   set,
		maxAmount: maxAmount,
	}
}

func (p *SimulatedPaymentProcessor) Charge(ctx context.Context, req PaymentRequest) (PaymentReceipt, error) {
	if p.delay > 0 {
		t := time.NewTimer(p.delay)
		defer t.Stop()

		select {
		case <-ctx.Done():
			return PaymentReceipt{}, ctx.Err()
		case <-t.C:
		}
	} else if err := ctx.Err(); err != nil {
		return PaymentReceipt{}, err
	}

	if _, ok := p.methods[req.Method]; !ok {
		return PaymentReceipt{}, fmt.Errorf("%w: unsupported method %q", ErrPaymentDeclined, req.Method)
	}
	if req.Amount.IsNegative() {
		return PaymentReceipt{}, fmt.Errorf("%w: negative amount", ErrPaymentDeclined)
	}
	if p.maxAmount.IsPositive() && req.Amount.GreaterThan(p.maxAmount) {
		return PaymentReceipt{}, fmt.Errorf("%w: amount %s exceeds limit %s", ErrPaymentDeclined, req.Amount.StringFixed(2), p.maxAmount.StringFixed(2))
	}

	return PaymentReceipt{
		Reference: "sim_" + uuid.NewString(),
		ChargedAt: time.Now(),
	}, nil
}
