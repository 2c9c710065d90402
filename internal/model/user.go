package model

import "time"

// Role enumerates the account roles known to the platform.
type Role string

const (
	RoleStudent Role = "STUDENT"
	RoleTeacher Role = "TEACHER"
	RoleAdmin   Role = "ADMIN"
)

// Privileged reports whether the role bypasses student-only restrictions
// such as the exam integrity gate and course-ownership checks.
func (r Role) Privileged() bool {
	return r == RoleTeacher || r == RoleAdmin
}

// User represents a platform account (student, teacher or admin).
type User struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// LoginRequest is the payload for user login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=72"`
}

// CreateUserRequest is the payload for creating a new user account.
type CreateUserRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=255"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=72"`
	Role     string `json:"role" binding:"required,oneof=STUDENT TEACHER ADMIN"`
}
