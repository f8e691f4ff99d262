package models

import "time"

const (
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

type User struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"`
	FullName     string    `gorm:"type:varchar(255);not null" json:"full_name"`
	Role         string    `gorm:"type:varchar(16);not null;default:student" json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

func (User) TableName() string { return "users" }
