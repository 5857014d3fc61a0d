package model

import "time"

// Location is a workshop site. Every ticket, case and invoice is scoped to
// exactly one location.
type Location struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:128;not null" json:"name"`
	Address   string    `gorm:"size:256" json:"address,omitempty"`
	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

// Customer is referenced, never owned, by tickets, cases and invoices.
type Customer struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	LocationID string    `gorm:"index;size:36;not null" json:"locationId"`
	Name       string    `gorm:"size:128;not null" json:"name"`
	Phone      string    `gorm:"size:32;not null" json:"phone"`
	Email      string    `gorm:"size:128" json:"email,omitempty"`
	Address    string    `gorm:"size:256" json:"address,omitempty"`
	CreatedAt  time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt  time.Time `gorm:"not null" json:"updatedAt"`
}
