package models

import "time"

// Customer is a buyer record. Phone is the natural lookup key in the
// public order flow: a repeat order with a known phone reuses the record
// and refreshes name/address instead of creating a duplicate.
type Customer struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	Email     *string   `gorm:"uniqueIndex" json:"email,omitempty"`
	FullName  string    `gorm:"not null" json:"full_name"`
	Phone     string    `gorm:"index" json:"phone"`
	Address   string    `json:"address"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
