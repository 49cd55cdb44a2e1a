package handler

import (
	"net/http"
	"strings"

	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// ゲスト識別用のセッションキーを運ぶヘッダ
const SessionKeyHeader = "x-session-id"

type ErrorResponse struct {
	Error string `json:"error"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		return c.JSON(he.Status, ErrorResponse{Error: he.Message})
	}

	//500
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

//middleware.AuthJWT が c.Set("user_id", int64) した値を取り出す

func getUserIDFromContext(c echo.Context) (int64, bool) {
	v := c.Get("user_id")
	if v == nil {
		return 0, false
	}

	id, ok := v.(int64)
	if !ok {
		return 0, false
	}

	return id, true
}

// セッションキーはヘッダ優先、無ければクエリから。
func sessionKeyFromRequest(c echo.Context) string {
	if v := strings.TrimSpace(c.Request().Header.Get(SessionKeyHeader)); v != "" {
		return v
	}
	return strings.TrimSpace(c.QueryParam("session_id"))
}

// ヘッダ→クエリ→ボディの順で探す。
func sessionKeyOrBody(c echo.Context, bodyKey string) string {
	if v := sessionKeyFromRequest(c); v != "" {
		return v
	}
	return strings.TrimSpace(bodyKey)
}
