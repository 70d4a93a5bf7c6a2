package model

import "time"

// Payload keys of a user record.
const (
	UserFieldName         = "name"
	UserFieldEmail        = "email"
	UserFieldRole         = "role"
	UserFieldPasswordHash = "passwordHash"
)

// User is the typed view of a record in the users collection.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	Status       Status    `json:"status"`
	PasswordHash string    `json:"-"`
	DateCreated  time.Time `json:"dateCreated"`
}

// UserRow is a user as listed for an acting role. Manageable drives whether
// the row's edit-status and delete actions are enabled.
type UserRow struct {
	User
	Manageable bool `json:"manageable"`
}

// UserFromRecord decodes a user out of its stored record. An unrecognised
// role is kept verbatim; the access gate treats it as having no permissions.
func UserFromRecord(r Record) User {
	return User{
		ID:           r.ID,
		Name:         r.String(UserFieldName),
		Email:        r.String(UserFieldEmail),
		Role:         Role(r.String(UserFieldRole)),
		Status:       r.Status,
		PasswordHash: r.String(UserFieldPasswordHash),
		DateCreated:  r.DateCreated,
	}
}

// Payload returns the non-reserved fields to persist for u.
func (u User) Payload() Payload {
	return Payload{
		UserFieldName:         u.Name,
		UserFieldEmail:        u.Email,
		UserFieldRole:         string(u.Role),
		UserFieldPasswordHash: u.PasswordHash,
	}
}

// IsActive reports whether the account may log in.
func (u User) IsActive() bool {
	return u.Status != StatusInactive
}

// CreateUserRequest is the payload for creating a user.
type CreateUserRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=255"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=6,max=128"`
	Role     Role   `json:"role" binding:"required,role"`
}

// UpdateUserStatusRequest is the payload for toggling a user's status.
type UpdateUserStatusRequest struct {
	Status Status `json:"status" binding:"required,oneof=active inactive"`
}

// LoginRequest is the payload for authentication.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=6,max=128"`
}

// LoginResponse is returned after a successful login.
type LoginResponse struct {
	Token      string `json:"token"`
	User       User   `json:"user"`
	Manageable []Role `json:"manageable"`
}
