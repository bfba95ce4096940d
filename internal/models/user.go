package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// User is a dashboard operator account. DataKeyEncrypted is the operator's
// message data key wrapped with the master key.
type User struct {
	ID               int64     `db:"id"`
	Username         string    `db:"username"`
	PasswordHash     string    `db:"password_hash"`
	Role             string    `db:"role"` // "operator" or "admin"
	DataKeyEncrypted string    `db:"data_key_encrypted"`
	CreatedAt        time.Time `db:"created_at"`
}

// Claims defines the structure of the JWT claims.
type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}
