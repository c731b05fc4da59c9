package repository

import (
	"context"
	"sort"
	"sync"

	"cartapi/internal/domain/model"
)

// DBなしで動かすときの注文履歴。プロセス終了で消える。
type OrderMemoryRepository struct {
	mu        sync.RWMutex
	bySession map[string][]model.Order
}

func NewOrderMemoryRepository() *OrderMemoryRepository {
	return &OrderMemoryRepository{bySession: make(map[string][]model.Order)}
}

func (r *OrderMemoryRepository) Create(ctx context.Context, order model.Order) error {
	lines := make([]model.OrderLine, len(order.Lines))
	copy(lines, order.Lines)
	order.Lines = lines

	r.mu.Lock()
	defer r.mu.Unlock()

	r.bySession[order.SessionID] = append(r.bySession[order.SessionID], order)
	return nil
}

func (r *OrderMemoryRepository) ListBySession(ctx context.Context, sessionID string, limit int) ([]model.Order, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	r.mu.RLock()
	src := r.bySession[sessionID]
	out := make([]model.Order, len(src))
	copy(out, src)
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CompletedAt.After(out[j].CompletedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
