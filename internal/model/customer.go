package model

import (
	"fmt"
	"math/rand"
	"regexp"
)

const (
	// LoyaltyPrefix is the fixed literal every member code starts with.
	LoyaltyPrefix = "GFT"
	// GuestCode marks a sale with no loyalty member attached.
	GuestCode = "GUEST"
	// WalkInOverride is the reserved cashier shortcut for "no loyalty",
	// accepted at checkout without format validation.
	WalkInOverride = "999"
	// ImplicitMemberName is the placeholder for members auto-created when a
	// well-formed but unknown code is entered at checkout.
	ImplicitMemberName = "New Member (Manual)"
)

var loyaltyCodePattern = regexp.MustCompile(`^` + LoyaltyPrefix + `\d{6}$`)

type Customer struct {
	BaseModel
	LoyaltyCode string `gorm:"type:varchar(20);uniqueIndex;not null" json:"loyalty_code" validate:"required"`
	Name        string `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Email       string `gorm:"type:varchar(255)" json:"email"`
	DOB         string `gorm:"type:varchar(10)" json:"dob,omitempty"` // YYYY-MM-DD, optional
	Points      int    `gorm:"default:0" json:"points" validate:"gte=0"`
}

// ValidLoyaltyCode reports whether s matches the member code format:
// the literal prefix followed by exactly 6 digits.
func ValidLoyaltyCode(s string) bool {
	return loyaltyCodePattern.MatchString(s)
}

// NewLoyaltyCode generates a fresh member code, e.g. "GFT100200".
// Uniqueness is enforced by the database index, not here.
func NewLoyaltyCode() string {
	return fmt.Sprintf("%s%06d", LoyaltyPrefix, 100000+rand.Intn(900000))
}
