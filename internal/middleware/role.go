package middleware

import (
    "net/http"

    "github.com/labstack/echo/v4"
)

// Operator roles carried in the token's "role" claim.  ADMIN may do
// everything an OPERATOR can plus destructive layout changes.
const (
    RoleOperator = "OPERATOR"
    RoleAdmin    = "ADMIN"
)

// RequireRole rejects requests whose role (set by JWTAuth) is not one of the
// given roles with 403 Forbidden.
func RequireRole(roles ...string) echo.MiddlewareFunc {
    allowed := make(map[string]bool, len(roles))
    for _, r := range roles {
        allowed[r] = true
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            role, ok := c.Get(CtxRole).(string)
            if !ok || !allowed[role] {
                return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
            }
            return next(c)
        }
    }
}
