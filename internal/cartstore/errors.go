package cartstore

import "errors"

var (
	// 指定productIDの明細がない
	ErrLineNotFound = errors.New("cart line not found")
	// 明細ゼロでチェックアウトしようとした
	ErrEmptyCart = errors.New("cart is empty")
	// 別のチェックアウトがclearの権利を持っている
	ErrCheckoutInProgress = errors.New("checkout in progress")
	// 進行中のチェックアウトと一致しないスナップショット
	ErrUnknownSnapshot = errors.New("unknown checkout snapshot")
)
