package model

import (
	"fmt"
	"math/rand"
)

type Product struct {
	BaseModel
	Code     string  `gorm:"type:varchar(50);uniqueIndex;not null" json:"code" validate:"required"`
	Category string  `gorm:"type:varchar(50)" json:"category"`
	Name     string  `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Price    float64 `gorm:"not null;default:0" json:"price" validate:"gte=0"`
	Stock    int     `gorm:"default:0" json:"stock" validate:"gte=0"`
}

// Code prefixes per category. Anything else falls back to the store prefix.
var categoryPrefixes = map[string]string{
	"Rings":    "RNG",
	"Necklace": "NK",
	"Bracelet": "BL",
}

// NewProductCode generates a catalog code: category prefix + 6 random digits,
// e.g. "RNG839201".
func NewProductCode(category string) string {
	prefix, ok := categoryPrefixes[category]
	if !ok {
		prefix = "GFT"
	}
	return fmt.Sprintf("%s%06d", prefix, 100000+rand.Intn(900000))
}
