package models

// LoginRequest is the body of POST /api/details/login.
type LoginRequest struct {
	Password string `json:"password" binding:"required"`
}
