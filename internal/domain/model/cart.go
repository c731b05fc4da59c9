package model

import "github.com/shopspring/decimal"

type CheckoutStatus string

const (
	CheckoutStatusIdle       CheckoutStatus = "IDLE"
	CheckoutStatusProcessing CheckoutStatus = "PROCESSING"
	CheckoutStatusCompleted  CheckoutStatus = "COMPLETED"
	CheckoutStatusFailed     CheckoutStatus = "FAILED"
)

// カートの明細
// unit_priceは追加時点の価格を保持し、後からカタログが変わっても更新しない。
type CartLine struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// 明細小計
func (l CartLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(l.Quantity))
}

// Cartは1セッション分のカート（明細は追加順）。
type Cart struct {
	Lines          []CartLine      `json:"lines"`
	Total          decimal.Decimal `json:"total"`
	CheckoutStatus CheckoutStatus  `json:"checkoutStatus"`
}

// 明細から合計を毎回計算する
func SumLines(lines []CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}
	return total
}
