package models

// JSONMap is a type alias for JSONB columns
type JSONMap map[string]interface{}

// DefaultSettings returns the settings blob stored for newly registered users
func DefaultSettings() JSONMap {
	return JSONMap{
		"theme":  "system",
		"editor": "default",
	}
}

// User is an account owning documents and tags.
// Email and username are globally unique; username is stored lowercase.
type User struct {
	Base
	Email        string  `json:"email" db:"email"`
	Username     string  `json:"username" db:"username"`
	PasswordHash string  `json:"-" db:"password_hash"`
	IsActive     bool    `json:"is_active" db:"is_active"`
	Settings     JSONMap `json:"settings" db:"settings"`
}
