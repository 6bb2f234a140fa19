package models

type User struct {
	ID           int64  `json:"id" db:"id"`
	Email        string `json:"email" db:"email"`
	PasswordHash string `json:"-" db:"password"` // never serialized
	RoleID       int    `json:"role_id" db:"role_id"`
}

// Credentials is the signup/login body, accepted as a form or as JSON.
type Credentials struct {
	Email    string `form:"email" json:"email" binding:"required,email"`
	Password string `form:"password" json:"password" binding:"required"`
}

// Identity is the authenticated caller, built once by the auth middleware.
type Identity struct {
	Email  string
	RoleID int
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type MeResponse struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}
