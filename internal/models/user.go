package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a single account document in the users collection.
type User struct {
	ID           primitive.ObjectID `json:"id"            bson:"_id,omitempty"`
	Username     string             `json:"username"      bson:"username"`
	Email        string             `json:"email"         bson:"email"`
	PasswordHash string             `json:"-"             bson:"password_hash"` // never serialize
	APIKey       string             `json:"api_key"       bson:"api_key"`
	CreatedAt    time.Time          `json:"created_at"    bson:"created_at"`
	LastLogin    *time.Time         `json:"last_login"    bson:"last_login"`
}

// Identity is the resolved owner of a validated API key.
type Identity struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// RegisterRequest is the JSON body for POST /register.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the JSON body for POST /login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UpdateRequest is the JSON body for POST /account/update. Password is the
// current password; Email and NewPassword are the fields being changed.
type UpdateRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	Email       string `json:"email,omitempty"`
	NewPassword string `json:"new_password,omitempty"`
}

// DeleteRequest is the JSON body for POST /account/delete.
type DeleteRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
