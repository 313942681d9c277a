package user

import (
	"time"

	"mshop-be/internal/access"
)

type User struct {
	ID           uint        `json:"id"`
	Name         string      `json:"name"`
	Email        string      `json:"email"`
	PasswordHash string      `json:"-"`
	Role         access.Role `json:"role"`
	IsActive     bool        `json:"isActive"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

func (u *User) Actor() access.Actor {
	return access.Actor{UserID: u.ID, Role: u.Role}
}

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResult struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

type ListFilter struct {
	Role   *access.Role
	Limit  int
	Offset int
}

type ListQuery struct {
	Role  *access.Role
	Page  int
	Limit int
}
