package models

import "github.com/golang-jwt/jwt/v5"

// EditorRole distinguishes admin-panel privileges. Token issuance is
// handled by the external auth layer; the API only verifies claims.
type EditorRole string

const (
	RoleEditor EditorRole = "EDITOR"
	RoleAdmin  EditorRole = "ADMIN"
)

// EditorClaims is the JWT payload accepted on admin endpoints.
type EditorClaims struct {
	UserID string     `json:"user_id"`
	Role   EditorRole `json:"role"`
	Email  string     `json:"email"`
	jwt.RegisteredClaims
}
