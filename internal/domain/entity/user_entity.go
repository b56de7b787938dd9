package entity

import (
	"time"
)

// Role is the authorization role stored on a user profile.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
	RoleGuest Role = "guest"
)

// UserStatus marks whether an account may sign in.
type UserStatus string

const (
	StatusActive UserStatus = "active"
	StatusBanned UserStatus = "banned"
)

// User is the profile document mirrored into the session snapshot.
// It never carries the password hash; see Credential.
type User struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	FirstName string     `json:"firstName"`
	LastName  string     `json:"lastName"`
	Username  string     `json:"username"`
	Phone     string     `json:"phone"`
	Address   string     `json:"address"`
	AvatarURL string     `json:"avatarUrl"`
	Role      Role       `json:"role"`
	Status    UserStatus `json:"status"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

func (u *User) IsAdmin() bool  { return u != nil && u.Role == RoleAdmin }
func (u *User) IsBanned() bool { return u != nil && u.Status == StatusBanned }

// FullName joins first and last name, skipping empty parts.
func (u *User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// Credential holds the login secret for a user, keyed by the same id.
type Credential struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"passwordHash"`
}

func ValidRole(r Role) bool {
	return r == RoleAdmin || r == RoleUser || r == RoleGuest
}

func ValidUserStatus(s UserStatus) bool {
	return s == StatusActive || s == StatusBanned
}
