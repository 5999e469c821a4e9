package middleware // middleware holds the echo middleware shared by the /v1 routes

import (
    "net/http" // HTTP status codes for responses
    "strings"  // prefix checking and trimming

    "github.com/golang-jwt/jwt/v5" // JWT parsing and validation
    "github.com/labstack/echo/v4"
)

// Context keys written by JWTAuth.
const (
    CtxOperatorID = "user_id"
    CtxRole       = "role"
)

// JWTAuth validates a Bearer HS256 token issued by the identity provider and
// stores the operator's subject and role in the request context.  Tokens are
// minted elsewhere; this service only verifies them.
func JWTAuth(secret string) echo.MiddlewareFunc {
    key := []byte(secret)
    parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            auth := c.Request().Header.Get("Authorization")
            if !strings.HasPrefix(auth, "Bearer ") {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
            }
            raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))

            claims := jwt.MapClaims{}
            tok, err := parser.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) { return key, nil })
            if err != nil || !tok.Valid {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
            }
            sub, _ := claims.GetSubject()
            if sub == "" {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
            }
            role, _ := claims["role"].(string)

            c.Set(CtxOperatorID, sub)
            c.Set(CtxRole, strings.ToUpper(role))
            return next(c)
        }
    }
}
