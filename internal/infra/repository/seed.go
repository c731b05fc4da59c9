package repository

import (
	"cartapi/internal/domain/model"

	"github.com/shopspring/decimal"
)

// 開発用のデモ商品
func DemoProducts() []model.Product {
	return []model.Product{
		{ID: "1", Name: "Canvas Tote Bag", Description: "Heavy cotton tote", Price: decimal.RequireFromString("10.99"), Stock: 120, IsActive: true},
		{ID: "2", Name: "Ceramic Mug", Description: "350ml stoneware mug", Price: decimal.RequireFromString("21.98"), Stock: 80, IsActive: true},
		{ID: "3", Name: "Drip Coffee Beans", Description: "Medium roast, 200g", Price: decimal.RequireFromString("32.97"), Stock: 40, IsActive: true},
		{ID: "4", Name: "Linen Apron", Description: "One size", Price: decimal.RequireFromString("43.96"), Stock: 25, IsActive: true},
		{ID: "5", Name: "Pour-over Kettle", Description: "Gooseneck, 1L", Price: decimal.RequireFromString("54.95"), Stock: 10, IsActive: true},
		{ID: "6", Name: "Gift Card", Description: "Retired", Price: decimal.RequireFromString("25.00"), Stock: 0, IsActive: false},
	}
}
