package handler

import (
	"net/http"
	"strconv"

	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /cartのHTTP
type CartHandler struct {
	uc *usecase.CartUsecase
}

// DI
func NewCartHandler(uc *usecase.CartUsecase) *CartHandler {
	return &CartHandler{uc: uc}
}

type AddCartItemRequest struct {
	SessionID string `json:"session_id"`
	ProductID int64  `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}

type UpdateCartItemRequest struct {
	SessionID string `json:"session_id"`
	Quantity  int64  `json:"quantity"`
}

type CheckoutRequest struct {
	SessionID        string `json:"session_id"`
	CustomerName     string `json:"customer_name"`
	CustomerEmail    string `json:"customer_email"`
	CustomerPhone    string `json:"customer_phone"`
	CustomerAddress  string `json:"customer_address"`
	PaymentProvider  string `json:"payment_provider"`
	SubscriptionType string `json:"subscription_type"`
}

// ゲスト購入前提なのでJWTは要らない。識別はセッションキー。
func (h *CartHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/cart")

	g.GET("", h.getCart)
	g.POST("/add", h.addItem)
	g.PUT("/item/:itemId", h.putItem)
	g.DELETE("/item/:itemId", h.deleteItem)
	g.POST("/checkout", h.checkout)
}

func (h *CartHandler) getCart(c echo.Context) error {
	out, err := h.uc.GetCart(c.Request().Context(), sessionKeyFromRequest(c))
	if err != nil {
		return writeError(c, err)
	}

	//新規発行されたキーをクライアントに返す
	c.Response().Header().Set(SessionKeyHeader, out.SessionKey)
	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) addItem(c echo.Context) error {
	var req AddCartItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	key := sessionKeyOrBody(c, req.SessionID)
	out, err := h.uc.AddToCart(c.Request().Context(), key, req.ProductID, req.Quantity)
	if err != nil {
		return writeError(c, err)
	}

	c.Response().Header().Set(SessionKeyHeader, out.SessionKey)
	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) putItem(c echo.Context) error {
	itemID, err := strconv.ParseInt(c.Param("itemId"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req UpdateCartItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	key := sessionKeyOrBody(c, req.SessionID)
	out, err := h.uc.UpdateItemQuantity(c.Request().Context(), key, itemID, req.Quantity)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) deleteItem(c echo.Context) error {
	itemID, err := strconv.ParseInt(c.Param("itemId"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	out, err := h.uc.RemoveItem(c.Request().Context(), sessionKeyFromRequest(c), itemID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) checkout(c echo.Context) error {
	var req CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	key := sessionKeyOrBody(c, req.SessionID)
	out, err := h.uc.Checkout(c.Request().Context(), key, usecase.CheckoutInput{
		CustomerName:     req.CustomerName,
		CustomerEmail:    req.CustomerEmail,
		CustomerPhone:    req.CustomerPhone,
		CustomerAddress:  req.CustomerAddress,
		PaymentProvider:  req.PaymentProvider,
		SubscriptionType: req.SubscriptionType,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, out)
}
