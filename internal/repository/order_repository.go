package repository

import (
	"context"

	"cartapi/internal/domain/model"
)

// 完了した注文の記録先
type OrderRepository interface {
	Create(ctx context.Context, order model.Order) error
	ListBySession(ctx context.Context, sessionID string, limit int) ([]model.Order, error)
}
