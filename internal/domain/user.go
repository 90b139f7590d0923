package domain

import "time" // Timestamps

// User Model
type User struct {
	ID           uint        `gorm:"primaryKey" json:"id"`                       // Primary key
	Email        string      `gorm:"size:320;uniqueIndex;not null" json:"email"` // Unique login email
	Username     string      `gorm:"size:30;not null" json:"username"`           // Display name
	PasswordHash string      `gorm:"size:1024;not null" json:"-"`                // bcrypt hash, never serialized
	IsActive     bool        `gorm:"not null;default:true" json:"is_active"`     // Inactive users are rejected by middleware
	IsSuperuser  bool        `gorm:"not null;default:false" json:"is_superuser"` // Grants /admin routes
	IsVerified   bool        `gorm:"not null;default:false" json:"is_verified"`  // Email verified flag
	CreatedAt    time.Time   `json:"created_at"`                                 // Set by GORM on create
	UpdatedAt    time.Time   `json:"updated_at"`                                 // Set by GORM on update
	Wallets      []Wallet    `gorm:"constraint:OnDelete:CASCADE;" json:"-"`      // One-to-many relationship with Wallet
	Operations   []Operation `gorm:"constraint:OnDelete:CASCADE;" json:"-"`      // One-to-many relationship with Operation
}
