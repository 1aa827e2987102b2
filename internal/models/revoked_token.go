package models

import (
	"time"
)

// RevokedToken marks a signed-out JWT as unusable until it would have
// expired anyway.
type RevokedToken struct {
	JTI       string    `gorm:"primaryKey;size:36" json:"jti"`
	UserID    string    `gorm:"size:36;index" json:"userId"`
	ExpiresAt time.Time `gorm:"index" json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}
