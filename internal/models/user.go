package models

import "time"

type UserRole string

const (
	RoleLearner UserRole = "Learner"
	RoleTeacher UserRole = "Teacher"
	RoleAdmin   UserRole = "Admin"
)

type User struct {
	ID    string   `json:"id" gorm:"primaryKey;size:64"`
	Name  string   `json:"name" gorm:"not null;size:100"`
	Email string   `json:"email" gorm:"uniqueIndex;size:255" validate:"omitempty,email"`
	Role  UserRole `json:"role" gorm:"not null;default:Learner" validate:"omitempty,user_role"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
