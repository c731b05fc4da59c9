package validator

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// 1明細あたりの上限。これを超える入力は上限に丸める。
const MaxQuantity int64 = 1_000_000

var (
	// 入力が不正
	ErrInvalidInput = errors.New("invalid input")
)

// ClampQuantity はリクエストのquantityを正の整数にする。
// 数値・文字列どちらも受け付け、先頭の整数部分だけを読む（"3.7" -> 3, "5abc" -> 5）。
// 読めない値や1未満は1。
func ClampQuantity(raw json.RawMessage) int64 {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 1
	}

	var text string
	switch raw[0] {
	case '"':
		if err := json.Unmarshal(raw, &text); err != nil {
			return 1
		}
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return 1
		}
		if i, err := n.Int64(); err == nil {
			return clamp(i)
		}
		f, err := n.Float64()
		if err != nil || math.IsNaN(f) || f < 1 {
			return 1
		}
		if f >= float64(MaxQuantity) {
			return MaxQuantity
		}
		return clamp(int64(f))
	default:
		return 1
	}

	return clamp(leadingInt(text))
}

// ValidateProductID は空・長すぎ・制御文字を弾く。
func ValidateProductID(id string) error {
	id = strings.TrimSpace(id)
	if id == "" || len(id) > 64 {
		return ErrInvalidInput
	}
	for _, r := range id {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return ErrInvalidInput
		}
	}
	return nil
}

// ValidatePaymentMethod は空なら"credit"にする（画面のデフォルトと同じ）。
func ValidatePaymentMethod(method string) (string, error) {
	method = strings.ToLower(strings.TrimSpace(method))
	if method == "" {
		return "credit", nil
	}
	if len(method) > 32 {
		return "", ErrInvalidInput
	}
	return method, nil
}

func leadingInt(s string) int64 {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0
	}

	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		// 桁あふれ
		if s[0] == '-' {
			return 0
		}
		return MaxQuantity
	}
	return n
}

func clamp(n int64) int64 {
	if n < 1 {
		return 1
	}
	if n > MaxQuantity {
		return MaxQuantity
	}
	return n
}
