package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"cartapi/internal/domain/model"
	repo "cartapi/internal/repository"
)

// DBなしで動かすときのカタログ。
type ProductMemoryRepository struct {
	mu       sync.RWMutex
	products map[string]model.Product
}

func NewProductMemoryRepository(seed []model.Product) *ProductMemoryRepository {
	r := &ProductMemoryRepository{products: make(map[string]model.Product, len(seed))}
	for _, p := range seed {
		r.products[p.ID] = p
	}
	return r
}

func (r *ProductMemoryRepository) ListActive(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	needle := strings.ToLower(strings.TrimSpace(q.Q))
	matched := make([]model.Product, 0, len(r.products))
	for _, p := range r.products {
		if !p.IsActive {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(p.Name), needle) {
			continue
		}
		matched = append(matched, p)
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Name != matched[j].Name {
			return matched[i].Name < matched[j].Name
		}
		return matched[i].ID < matched[j].ID
	})

	total := int64(len(matched))
	offset := (q.Page - 1) * q.Limit
	if offset < 0 || offset >= len(matched) {
		return []model.Product{}, total, nil
	}
	end := offset + q.Limit
	if q.Limit <= 0 || end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (r *ProductMemoryRepository) FindByID(ctx context.Context, id string) (model.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[id]
	if !ok || !p.IsActive {
		return model.Product{}, repo.ErrNotFound
	}
	return p, nil
}

func (r *ProductMemoryRepository) Create(ctx context.Context, p model.Product) (model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[p.ID]; ok {
		return model.Product{}, repo.ErrConflict
	}
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	r.products[p.ID] = p
	return p, nil
}

// 非公開の商品も更新できる
func (r *ProductMemoryRepository) Update(ctx context.Context, p model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.products[p.ID]
	if !ok {
		return repo.ErrNotFound
	}
	cur.Name = p.Name
	cur.Description = p.Description
	cur.Price = p.Price
	cur.Stock = p.Stock
	cur.IsActive = p.IsActive
	cur.UpdatedAt = time.Now()
	r.products[p.ID] = cur
	return nil
}

func (r *ProductMemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return repo.ErrNotFound
	}
	delete(r.products, id)
	return nil
}
