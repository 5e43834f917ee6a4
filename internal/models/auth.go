package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims are the access-token claims accepted by the API. Tokens are
// issued by the institution's identity service; this API only verifies them.
type JWTClaims struct {
	UserID string `json:"uid"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}
