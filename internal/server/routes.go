package server

import (
	"net/http"

	"cartapi/internal/handler"
	"cartapi/internal/middleware"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

type Handlers struct {
	Products      *handler.ProductHandler
	AdminProducts *handler.AdminProductHandler
	Cart          *handler.CartHandler
	Checkout      *handler.CheckoutHandler
}

// NewRouter はechoにミドルウェアと全ルートを登録して返す。
func NewRouter(log *zap.Logger, sess middleware.SessionOptions, h Handlers) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(log))

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	//カタログはセッション不要
	h.Products.RegisterRoutes(e)
	//商品の書き込みは管理者のみ
	h.AdminProducts.RegisterRoutes(e, middleware.AdminOnly(sess.JWTSecret))

	//カートと注文はセッション単位
	g := e.Group("", middleware.Session(sess))
	h.Cart.RegisterRoutes(g)
	h.Checkout.RegisterRoutes(g)

	return e
}
