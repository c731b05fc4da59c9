package repository

import (
	"context"

	"cartapi/internal/domain/model"

	"gorm.io/gorm"
)

type OrderGormRepository struct {
	db *gorm.DB
}

func NewOrderGormRepository(db *gorm.DB) *OrderGormRepository {
	return &OrderGormRepository{db: db}
}

// 注文と明細を1トランザクションで保存
func (r *OrderGormRepository) Create(ctx context.Context, order model.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lines := order.Lines
		order.Lines = nil

		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		if len(lines) == 0 {
			return nil
		}

		for i := range lines {
			lines[i].OrderID = order.ID
		}
		return tx.Create(&lines).Error
	})
}

func (r *OrderGormRepository) ListBySession(ctx context.Context, sessionID string, limit int) ([]model.Order, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	var orders []model.Order
	err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("id asc")
		}).
		Where("session_id = ?", sessionID).
		Order("completed_at desc").
		Limit(limit).
		Find(&orders).Error
	if err != nil {
		return []model.Order{}, err
	}
	return orders, nil
}
