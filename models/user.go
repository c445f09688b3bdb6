package models

// Role enum
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User is the authenticated account as returned by GET /auth/me
type User struct {
	ID     string `json:"_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Mobile string `json:"mobile,omitempty"`
	Bio    string `json:"bio,omitempty"`
	Role   Role   `json:"role"`
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// Registration is the payload for POST /auth/register
type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Mobile   string `json:"mobile"`
	Password string `json:"password"`
}

// ProfileUpdate is the payload for PUT /auth/me
type ProfileUpdate struct {
	Name   string `json:"name"`
	Mobile string `json:"mobile"`
	Bio    string `json:"bio"`
}

// PasswordChange is the payload for POST /auth/change-password
type PasswordChange struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}
