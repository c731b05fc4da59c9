package repository

import (
	"context"
	"errors"

	"cartapi/internal/domain/model"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")
)

// 一覧検索
type ProductListQuery struct {
	Page  int
	Limit int
	Q     string
}

// カタログの約束。
// 参照系は公開中(is_active)の商品だけを返し、それ以外はErrNotFound。
// 更新系は非公開の商品も対象にする（削除済みは対象外）。
type ProductRepository interface {
	ListActive(ctx context.Context, q ProductListQuery) ([]model.Product, int64, error)
	FindByID(ctx context.Context, id string) (model.Product, error)

	Create(ctx context.Context, p model.Product) (model.Product, error)
	Update(ctx context.Context, p model.Product) error
	Delete(ctx context.Context, id string) error
}
