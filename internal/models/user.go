package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Role enum
type Role string

const (
	RolePatient  Role = "patient"
	RoleDoctor   Role = "doctor"
	RoleHospital Role = "hospital"
)

// Roles lists every account role in resolver probe order.
var Roles = []Role{RolePatient, RoleDoctor, RoleHospital}

// ParseRole normalizes a role string. An empty string yields an empty Role,
// which callers treat as "role unknown".
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	switch r {
	case "", RolePatient, RoleDoctor, RoleHospital:
		return r, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
}

// NormalizeEmail lower-cases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Account is one stored identity. The set of implementations is closed:
// *Patient, *Doctor and *Hospital.
type Account interface {
	Base() *BaseAccount
	// RoleView returns the response shape for the account. It never carries
	// the password hash or device token.
	RoleView() any
	account()
}

// BaseAccount holds the attributes shared by every role.
type BaseAccount struct {
	BaseModel      `bson:",inline"`
	Name           string `gorm:"size:100;not null" json:"name" bson:"name"`
	Email          string `gorm:"uniqueIndex;size:255;not null" json:"email" bson:"email"`
	Password       string `gorm:"size:255;not null" json:"-" bson:"password"`
	Role           Role   `gorm:"size:20;not null" json:"role" bson:"role"`
	PhoneNumber    string `gorm:"size:20" json:"phoneNumber" bson:"phoneNumber"`
	Address        string `gorm:"size:255" json:"address,omitempty" bson:"address,omitempty"`
	ProfilePicture string `gorm:"size:512" json:"profilePicture,omitempty" bson:"profilePicture,omitempty"`
	FCMToken       string `gorm:"size:512" json:"-" bson:"fcmToken,omitempty"`
	IsActive       bool   `gorm:"default:true" json:"isActive" bson:"isActive"`
	IsVerified     bool   `gorm:"default:false" json:"isVerified" bson:"isVerified"`
}

// BaseView is the public projection of BaseAccount.
type BaseView struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Role           Role      `json:"role"`
	PhoneNumber    string    `json:"phoneNumber"`
	Address        string    `json:"address,omitempty"`
	ProfilePicture string    `json:"profilePicture,omitempty"`
	IsActive       bool      `json:"isActive"`
	IsVerified     bool      `json:"isVerified"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Base returns the shared attributes.
func (u *BaseAccount) Base() *BaseAccount { return u }

// SetPassword hashes a password and sets it on the account
func (u *BaseAccount) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword compares a password with the account's hashed password.
func (u *BaseAccount) CheckPassword(password string) (bool, error) {
	if u.Password == "" {
		return false, ErrNoSecretSet
	}
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("compare password: %w", err)
	}
	return true, nil
}

// BaseView projects the shared attributes, excluding sensitive data.
func (u *BaseAccount) BaseView() BaseView {
	return BaseView{
		ID:             u.ID,
		Name:           u.Name,
		Email:          u.Email,
		Role:           u.Role,
		PhoneNumber:    u.PhoneNumber,
		Address:        u.Address,
		ProfilePicture: u.ProfilePicture,
		IsActive:       u.IsActive,
		IsVerified:     u.IsVerified,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}
