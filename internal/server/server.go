package server

import (
	"app/internal/config"
	"app/internal/handler"
	"app/internal/middleware"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

// 全ハンドラをまとめて受け取る。
type Handlers struct {
	Cart       *handler.CartHandler
	Payment    *handler.PaymentHandler
	PayPal     *handler.PayPalHandler
	Auth       *handler.AuthHandler
	Chat       *handler.ChatHandler
	AdminOrder *handler.AdminOrderHandler
}

// echoを組み立ててルートを登録する。
func New(cfg config.Config, h Handlers) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomw.Recover())
	e.Use(echomw.Logger())

	//外から叩かれる入口（webhook・初回ログイン・問い合わせ）だけIP制限をかける
	rl := middleware.NewIPRateLimiter(rate.Limit(5), 10).Middleware()

	h.Cart.RegisterRoutes(e)
	h.Payment.RegisterRoutes(e, rl)
	h.PayPal.RegisterRoutes(e)
	h.Auth.RegisterRoutes(e, cfg, rl)
	h.Chat.RegisterRoutes(e, rl)
	h.AdminOrder.RegisterRoutes(e, cfg)

	return e
}

// サーバー起動。
func Start(e *echo.Echo, port string) error {
	return e.Start(":" + port)
}
