package handler

import (
	"net/http"

	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// チャット問い合わせのHTTP。
type ChatHandler struct {
	uc *usecase.ChatUsecase
}

// DI
func NewChatHandler(uc *usecase.ChatUsecase) *ChatHandler {
	return &ChatHandler{uc: uc}
}

type ChatLeadRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

func (h *ChatHandler) RegisterRoutes(e *echo.Echo, rl echo.MiddlewareFunc) {
	g := e.Group("/chat")
	if rl != nil {
		g.Use(rl)
	}

	g.POST("/lead", h.createLead)
}

func (h *ChatHandler) createLead(c echo.Context) error {
	var req ChatLeadRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.CreateLead(c.Request().Context(), usecase.ChatLeadInput{
		Name:    req.Name,
		Email:   req.Email,
		Message: req.Message,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, out)
}
