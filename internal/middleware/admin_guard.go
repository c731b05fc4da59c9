package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

const CtxAdminSubjectKey = "admin_subject" // string

// AdminOnly はBearerトークンのroleがADMINのときだけ通す。
// secretが空なら管理APIは常に401。
func AdminOnly(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authz := c.Request().Header.Get("Authorization")
			if secret == "" || authz == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("UNAUTHORIZED"))
			}

			claims, err := claimsFromBearer(authz, secret)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, errorJSON("UNAUTHORIZED"))
			}
			sub, err := parseSubject(claims["sub"])
			if err != nil {
				return c.JSON(http.StatusUnauthorized, errorJSON("UNAUTHORIZED"))
			}

			//USERは拒否、ADMINだけ許可
			role, _ := claims["role"].(string)
			if role != "ADMIN" {
				return c.JSON(http.StatusForbidden, errorJSON("FORBIDDEN"))
			}

			c.Set(CtxAdminSubjectKey, sub)
			return next(c)
		}
	}
}

// AdminSubject はAdminOnlyが入れた管理者のsubを取り出す。
func AdminSubject(c echo.Context) (string, bool) {
	v, ok := c.Get(CtxAdminSubjectKey).(string)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}
