package usecase_test

import (
	"context"

	"cartapi/internal/domain/model"
	repo "cartapi/internal/repository"
	"cartapi/internal/usecase"

	"github.com/stretchr/testify/mock"
)

// =====================
// Mocks
// =====================

type ProductRepoMock struct{ mock.Mock }

func (m *ProductRepoMock) ListActive(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	args := m.Called(ctx, q)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *ProductRepoMock) FindByID(ctx context.Context, id string) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *ProductRepoMock) Create(ctx context.Context, p model.Product) (model.Product, error) {
	args := m.Called(ctx, p)
	out, _ := args.Get(0).(model.Product)
	return out, args.Error(1)
}

func (m *ProductRepoMock) Update(ctx context.Context, p model.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *ProductRepoMock) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

var _ repo.ProductRepository = (*ProductRepoMock)(nil)

type OrderRepoMock struct{ mock.Mock }

func (m *OrderRepoMock) Create(ctx context.Context, order model.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *OrderRepoMock) ListBySession(ctx context.Context, sessionID string, limit int) ([]model.Order, error) {
	args := m.Called(ctx, sessionID, limit)
	orders, _ := args.Get(0).([]model.Order)
	return orders, args.Error(1)
}

var _ repo.OrderRepository = (*OrderRepoMock)(nil)

type PaymentMock struct{ mock.Mock }

func (m *PaymentMock) Charge(ctx context.Context, req usecase.PaymentRequest) (usecase.PaymentReceipt, error) {
	args := m.Called(ctx, req)
	r, _ := args.Get(0).(usecase.PaymentReceipt)
	return r, args.Error(1)
}

var _ usecase.PaymentProcessor = (*PaymentMock)(nil)

// blockingPayment は release が閉じられるまで決済を止める。
type blockingPayment struct {
	started chan struct{}
	release chan struct{}
	err     error
}

func newBlockingPayment(err error) *blockingPayment {
	return &blockingPayment{
		started: make(chan struct{}),
		release: make(chan struct{}),
		err:     err,
	}
}

func (p *blockingPayment) Charge(ctx context.Context, req usecase.PaymentRequest) (usecase.PaymentReceipt, error) {
	close(p.started)
	select {
	case <-ctx.Done():
		return usecase.PaymentReceipt{}, ctx.Err()
	case <-p.release:
	}
	if p.err != nil {
		return usecase.PaymentReceipt{}, p.err
	}
	return usecase.PaymentReceipt{Reference: "blocking-ok"}, nil
}
