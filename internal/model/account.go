package model

// Account is a local login. PasswordHash is bcrypt and never serialised
// in API responses.
type Account struct {
	ID           string `json:"id,omitempty"`
	Email        string `json:"email" validate:"required,email"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	PasswordHash string `json:"password_hash" validate:"required"`
	CreatedAt    string `json:"created_at,omitempty"`
	UpdatedAt    string `json:"updated_at,omitempty"`
}
