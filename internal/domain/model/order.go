package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// チェックアウト完了で作られる注文。
type Order struct {
	ID            string          `gorm:"primaryKey;type:varchar(36)" json:"id"`
	SessionID     string          `gorm:"type:varchar(255);not null;index" json:"-"`
	PaymentMethod string          `gorm:"type:varchar(32);not null" json:"paymentMethod"`
	PaymentRef    string          `gorm:"type:varchar(64);not null" json:"paymentRef"`
	Total         decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"total"`
	CompletedAt   time.Time       `gorm:"not null;index" json:"completedAt"`
	Lines         []OrderLine     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"lines"`
}

// 注文明細（カート明細のスナップショット）
type OrderLine struct {
	ID        int64           `gorm:"primaryKey;autoIncrement" json:"-"`
	OrderID   string          `gorm:"type:varchar(36);not null;index" json:"-"`
	ProductID string          `gorm:"type:varchar(64);not null" json:"productId"`
	Name      string          `gorm:"type:varchar(255);not null" json:"name"`
	Quantity  int64           `gorm:"not null" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unitPrice"`
}

func NewOrderLines(lines []CartLine) []OrderLine {
	out := make([]OrderLine, 0, len(lines))
	for _, l := range lines {
		out = append(out, OrderLine{
			ProductID: l.ProductID,
			Name:      l.Name,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		})
	}
	return out
}
