package models

import (
	"time"
)

type RewardCategory string

const (
	RewardCategorySmall     RewardCategory = "kichik"
	RewardCategoryStudy     RewardCategory = "oqish"
	RewardCategoryPrivilege RewardCategory = "imtiyoz"
)

func IsValidRewardCategory(category string) bool {
	switch category {
	case "kichik", "oqish", "imtiyoz":
		return true
	default:
		return false
	}
}

type Reward struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	Price       int       `json:"price" db:"price"`
	Category    string    `json:"category" db:"category"`
	Icon        string    `json:"icon" db:"icon"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

type RewardForStudent struct {
	Reward
	CanAfford bool `json:"can_afford"`
}
