package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func callAdminGuard(t *testing.T, role interface{}) *httptest.ResponseRecorder {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/admin/orders/1/resend-confirmation", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if role != nil {
		c.Set(CtxUserRoleKey, role)
	}

	h := AdminRoleGuard()(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	_ = h(c)
	return rec
}

func TestAdminRoleGuard_AllowsAdmin(t *testing.T) {
	rec := callAdminGuard(t, "ADMIN")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminRoleGuard_RejectsUser(t *testing.T) {
	rec := callAdminGuard(t, "USER")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdminRoleGuard_MissingRole(t *testing.T) {
	rec := callAdminGuard(t, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
