package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// カタログの商品。カートはここから価格を読むだけ。
type Product struct {
	ID          string          `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Name        string          `gorm:"type:varchar(255);not null" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Stock       int64           `gorm:"not null" json:"stock"`
	IsActive    bool            `gorm:"not null;default:false" json:"isActive"`
	CreatedAt   time.Time       `gorm:"not null;autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time       `gorm:"not null;autoUpdateTime" json:"updatedAt"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`
}
