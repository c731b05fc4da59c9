package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cartapi/internal/cartstore"
	"cartapi/internal/domain/model"
	"cartapi/internal/handler"
	infraRepo "cartapi/internal/infra/repository"
	"cartapi/internal/middleware"
	"cartapi/internal/server"
	"cartapi/internal/usecase"

	"github.com/golang-jwt/jwt/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const testJWTSecret = "test-secret"

type TestClient struct {
	BaseURL string
	HTTP    *http.Client
}

type testApp struct {
	Client   *TestClient
	Carts    *cartstore.Registry
	Products *infraRepo.ProductMemoryRepository
	Orders   *infraRepo.OrderMemoryRepository
}

// newTestApp はメモリrepoでルーター全体を立ち上げる。
func newTestApp(t *testing.T, paymentDelay time.Duration) *testApp {
	t.Helper()

	products := infraRepo.NewProductMemoryRepository([]model.Product{
		{ID: "p1", Name: "Mug", Price: decimal.RequireFromString("5.00"), Stock: 10, IsActive: true},
		{ID: "p2", Name: "Tote", Price: decimal.RequireFromString("3.50"), Stock: 10, IsActive: true},
		{ID: "p3", Name: "Retired", Price: decimal.RequireFromString("9.99"), Stock: 0, IsActive: false},
	})
	orders := infraRepo.NewOrderMemoryRepository()
	carts := cartstore.NewRegistry(time.Hour)
	payments := usecase.NewSimulatedPaymentProcessor(paymentDelay, []string{"credit", "paypal"}, decimal.NewFromInt(10000))

	log := zap.NewNop()
	productUC := usecase.NewProductUsecase(products, log)
	e := server.NewRouter(log, middleware.SessionOptions{JWTSecret: testJWTSecret}, server.Handlers{
		Products:      handler.NewProductHandler(productUC),
		AdminProducts: handler.NewAdminProductHandler(productUC),
		Cart:          handler.NewCartHandler(usecase.NewCartUsecase(carts, products, log)),
		Checkout:      handler.NewCheckoutHandler(usecase.NewCheckoutUsecase(carts, payments, orders, log)),
	})

	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar.New failed: %v", err)
	}

	return &testApp{
		Client: &TestClient{
			BaseURL: strings.TrimRight(srv.URL, "/"),
			HTTP: &http.Client{
				Jar:     jar,
				Timeout: 10 * time.Second,
			},
		},
		Carts:    carts,
		Products: products,
		Orders:   orders,
	}
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type CartLine struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

type CartResponse struct {
	Lines          []CartLine      `json:"lines"`
	Total          decimal.Decimal `json:"total"`
	CheckoutStatus string          `json:"checkoutStatus"`
}

type ProductResponse struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Stock    int64           `json:"stock"`
	IsActive bool            `json:"isActive"`
}

type TotalResponse struct {
	Total decimal.Decimal `json:"total"`
}

type OrderResponse struct {
	ID            string          `json:"id"`
	PaymentMethod string          `json:"paymentMethod"`
	PaymentRef    string          `json:"paymentRef"`
	Total         decimal.Decimal `json:"total"`
	Lines         []CartLine      `json:"lines"`
}

// bearer はtestJWTSecretで署名したAuthorizationヘッダを作る。roleが空ならroleなし。
func bearer(t *testing.T, sub string, role string) map[string]string {
	t.Helper()

	claims := jwt.MapClaims{
		"sub": sub,
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	if role != "" {
		claims["role"] = role
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	if err != nil {
		t.Fatalf("SignedString failed: %v", err)
	}
	return map[string]string{"Authorization": "Bearer " + signed}
}

// DoJSON はbodyをJSONにして送り、ステータスと生のbodyを返す。
func (c *TestClient) DoJSON(t *testing.T, ctx context.Context, method, path string, body any, headers map[string]string) (int, []byte) {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json.Marshal failed: %v", err)
		}
		r = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, r)
	if err != nil {
		t.Fatalf("http.NewRequest failed: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	res, err := c.HTTP.Do(req)
	if err != nil {
		t.Fatalf("http request failed: %v", err)
	}
	defer res.Body.Close()

	b, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatalf("read body failed: %v", err)
	}
	return res.StatusCode, b
}

// DoRaw は生の文字列bodyを送る（型の崩れた入力用）。
func (c *TestClient) DoRaw(t *testing.T, ctx context.Context, method, path, body string) (int, []byte) {
	t.Helper()

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, strings.NewReader(body))
	if err != nil {
		t.Fatalf("http.NewRequest failed: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.HTTP.Do(req)
	if err != nil {
		t.Fatalf("http request failed: %v", err)
	}
	defer res.Body.Close()

	b, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatalf("read body failed: %v", err)
	}
	return res.StatusCode, b
}

func mustDecode[T any](t *testing.T, body []byte) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(body, &v); err != nil {
		t.Fatalf("json.Unmarshal failed: %v body=%s", err, string(body))
	}
	return v
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
