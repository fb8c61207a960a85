package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims is the access token payload issued by the platform's auth
// service. Only the fields this service reads are declared.
type JWTClaims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}
