package database

import "time"

// MasterUser is an administrative login for the overseer endpoints.
type MasterUser struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"unique;not null" json:"username"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Role         string    `gorm:"not null;default:'admin'" json:"role"`
	VolunteerID  *uint     `json:"volunteer_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
