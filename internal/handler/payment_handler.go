package handler

import (
	"io"
	"net/http"

	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// webhook共有シークレットを運ぶヘッダ
const WebhookSecretHeader = "x-webhook-secret"

// 決済プロバイダからのwebhook入口。
type PaymentHandler struct {
	uc *usecase.SettlementUsecase
}

// DI
func NewPaymentHandler(uc *usecase.SettlementUsecase) *PaymentHandler {
	return &PaymentHandler{uc: uc}
}

func (h *PaymentHandler) RegisterRoutes(e *echo.Echo, rl echo.MiddlewareFunc) {
	g := e.Group("/payments")
	if rl != nil {
		g.Use(rl)
	}

	g.POST("/webhook", h.webhook)
}

// 生のボディをそのまま渡す。パースと正規化はusecase側。
func (h *PaymentHandler) webhook(c echo.Context) error {
	raw, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	secret := c.Request().Header.Get(WebhookSecretHeader)

	if err := h.uc.ProcessWebhook(c.Request().Context(), secret, raw); err != nil {
		return writeError(c, err)
	}

	//再配送でも同じ200を返す
	return c.JSON(http.StatusOK, SuccessResponse{Success: true})
}
