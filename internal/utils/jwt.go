package utils // package utils provides helpers for minting operator tokens

import (
    "errors"
    "strings"
    "time"

    "github.com/golang-jwt/jwt/v5"
)

// OperatorToken is a signed HS256 JWT along with its expiry.
type OperatorToken struct {
    Token string    `json:"token"`
    Exp   time.Time `json:"expires_at"`
}

// NewOperatorToken signs a token for subject with the given role.  Real
// deployments receive tokens from the campus identity provider; this is used
// by the token command for local setups and by tests.
func NewOperatorToken(secret, subject, role string, ttl time.Duration) (OperatorToken, error) {
    if secret == "" {
        return OperatorToken{}, errors.New("utils: empty signing secret")
    }
    if strings.TrimSpace(subject) == "" {
        return OperatorToken{}, errors.New("utils: empty subject")
    }
    now := time.Now().UTC()
    exp := now.Add(ttl)
    claims := jwt.MapClaims{
        "sub":  subject,
        "role": strings.ToUpper(role),
        "exp":  exp.Unix(),
        "iat":  now.Unix(),
    }
    signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
    if err != nil {
        return OperatorToken{}, err
    }
    return OperatorToken{Token: signed, Exp: exp}, nil
}
