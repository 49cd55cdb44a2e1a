package handler

import (
	"net/http"

	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// PayPalフローのHTTP。
type PayPalHandler struct {
	uc *usecase.PayPalUsecase
}

// DI
func NewPayPalHandler(uc *usecase.PayPalUsecase) *PayPalHandler {
	return &PayPalHandler{uc: uc}
}

type CreatePayPalOrderRequest struct {
	SessionID        string `json:"session_id"`
	CustomerName     string `json:"customer_name"`
	CustomerEmail    string `json:"customer_email"`
	CustomerPhone    string `json:"customer_phone"`
	CustomerAddress  string `json:"customer_address"`
	SubscriptionType string `json:"subscription_type"`
}

type CapturePayPalOrderRequest struct {
	ProviderOrderID string `json:"provider_order_id"`
}

func (h *PayPalHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/paypal")

	g.POST("/create-order", h.createOrder)
	g.POST("/capture-order", h.capture)
	g.GET("/order/:orderId", h.getOrder)
}

// カートのチェックアウトとPayPal注文作成をまとめて行う。
func (h *PayPalHandler) createOrder(c echo.Context) error {
	var req CreatePayPalOrderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	key := sessionKeyOrBody(c, req.SessionID)
	out, err := h.uc.CreateOrderFromCart(c.Request().Context(), key, usecase.CheckoutInput{
		CustomerName:     req.CustomerName,
		CustomerEmail:    req.CustomerEmail,
		CustomerPhone:    req.CustomerPhone,
		CustomerAddress:  req.CustomerAddress,
		SubscriptionType: req.SubscriptionType,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, out)
}

func (h *PayPalHandler) capture(c echo.Context) error {
	var req CapturePayPalOrderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if req.ProviderOrderID == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "provider_order_id is required"})
	}

	out, err := h.uc.Capture(c.Request().Context(), req.ProviderOrderID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *PayPalHandler) getOrder(c echo.Context) error {
	providerOrderID := c.Param("orderId")
	if providerOrderID == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	out, err := h.uc.GetProviderOrder(c.Request().Context(), providerOrderID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}
