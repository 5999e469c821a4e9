package middleware

import "github.com/labstack/echo/v4"

// OperatorID returns the authenticated operator's subject, or "anon" before
// JWTAuth has run.
func OperatorID(c echo.Context) string {
    if s, ok := c.Get(CtxOperatorID).(string); ok && s != "" {
        return s
    }
    return "anon"
}
