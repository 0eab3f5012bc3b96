package models

// User represents the structure of the users table
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
	// Exclude password hash from JSON responses
	HashedPassword string `json:"-"`
}
