package handler

import (
	"net/http"

	"app/internal/config"
	"app/internal/middleware"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 初回ログイン（パスワード設定）のHTTP。
type AuthHandler struct {
	uc *usecase.FirstLoginUsecase
}

// DI
func NewAuthHandler(uc *usecase.FirstLoginUsecase) *AuthHandler {
	return &AuthHandler{uc: uc}
}

type FirstLoginRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

func (h *AuthHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, rl echo.MiddlewareFunc) {
	g := e.Group("/auth")
	if rl != nil {
		g.Use(rl)
	}

	g.GET("/first-login/validate", h.validate)
	g.POST("/first-login", h.complete)

	me := e.Group("/auth/me")
	me.Use(middleware.AuthJWT(cfg))
	me.GET("", h.me)
}

// フロントがパスワード設定画面を出す前のトークン確認。
func (h *AuthHandler) validate(c echo.Context) error {
	out, err := h.uc.Validate(c.Request().Context(), c.QueryParam("token"))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *AuthHandler) complete(c echo.Context) error {
	var req FirstLoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.Complete(c.Request().Context(), req.Token, req.Password)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *AuthHandler) me(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.Me(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}
