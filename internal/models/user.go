package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
)

func (r Role) String() string {
	return string(r)
}

func IsValidRole(role string) bool {
	switch role {
	case "teacher", "student":
		return true
	default:
		return false
	}
}

type User struct {
	ID           string          `json:"id" db:"id"`
	Role         Role            `json:"role" db:"role"`
	Name         string          `json:"name" db:"name"`
	Login        string          `json:"login" db:"login"`
	PasswordHash string          `json:"-" db:"password_hash"`
	GroupID      *string         `json:"group_id,omitempty" db:"group_id"`
	TotalCoins   decimal.Decimal `json:"total_coins" db:"total_coins"`
	AvatarIcon   string          `json:"avatar_icon" db:"avatar_icon"`
	AvatarColor  string          `json:"avatar_color" db:"avatar_color"`
	AvatarURL    *string         `json:"avatar_url,omitempty" db:"avatar_url"`
	Bio          string          `json:"bio" db:"bio"`
	IsActive     bool            `json:"is_active" db:"is_active"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
}

type StudentWithGroup struct {
	User
	GroupName string `json:"group_name" db:"group_name"`
}
