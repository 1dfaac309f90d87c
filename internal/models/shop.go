package models

import (
	"time"
)

// ShopSettings is a singleton record (id = 1). A missing row reads as a shop
// that was never opened, which callers cannot tell apart from "configured
// closed" -- both gate redemption the same way.
type ShopSettings struct {
	IsOpen    bool       `json:"is_open" db:"is_open"`
	OpenDate  *time.Time `json:"open_date,omitempty" db:"open_date"`
	CloseDate *time.Time `json:"close_date,omitempty" db:"close_date"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}
