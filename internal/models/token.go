package models

import "github.com/golang-jwt/jwt/v5"

// StudentClaims is the bearer token payload. Every stored resource is scoped to StudentID.
type StudentClaims struct {
	StudentID string `json:"student_id"`
	Name      string `json:"name,omitempty"`
	jwt.RegisteredClaims
}
