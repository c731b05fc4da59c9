package validator

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// 商品価格の上限（numeric(12,2)に収まる値）
var MaxPrice = decimal.RequireFromString("9999999999.99")

// ValidateProductName は前後の空白を落とした名前を返す。
func ValidateProductName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 255 {
		return "", ErrInvalidInput
	}
	return name, nil
}

// ValidatePrice は0以上・上限以下を確認し、小数2桁に丸める。
func ValidatePrice(price decimal.Decimal) (decimal.Decimal, error) {
	price = price.Round(2)
	if price.IsNegative() || price.GreaterThan(MaxPrice) {
		return decimal.Zero, ErrInvalidInput
	}
	return price, nil
}

// ParseStock は在庫数を読む。フォームからの文字列も受ける。
// 未指定や空文字は0。負数や整数でない値はErrInvalidInput。
func ParseStock(raw json.RawMessage) (int64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, nil
	}

	text := string(raw)
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return 0, ErrInvalidInput
		}
		text = strings.TrimSpace(text)
		if text == "" {
			return 0, nil
		}
	}

	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil || n < 0 {
		return 0, ErrInvalidInput
	}
	return n, nil
}
