package model

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Sale is an immutable, append-only record of a committed checkout. It is
// never edited in place; the only deletions are the explicit reversal paths.
// Its ID doubles as the checkout idempotency token, so it may be supplied by
// the client.
type Sale struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	CustomerCode   string    `gorm:"type:varchar(20);not null;index" json:"customer_code"` // loyalty code or GUEST
	Items          string    `gorm:"type:text;not null" json:"items"`                      // compact CODE(QTY)|CODE(QTY) encoding
	PointsEarned   int       `gorm:"not null;default:0" json:"points_earned"`
	PointsRedeemed int       `gorm:"not null;default:0" json:"points_redeemed"`
	Total          float64   `gorm:"not null" json:"total"`
	Date           string    `gorm:"type:varchar(50);not null" json:"date"`       // display-formatted
	Timestamp      int64     `gorm:"not null;index" json:"timestamp"`             // epoch millis, used for sorting/filtering
	CreatedBy      string    `json:"created_by"`
	CreatedAt      time.Time `json:"created_at"`
}

// SaleLine is one purchased (product code, quantity) pair.
type SaleLine struct {
	Code string `json:"code"`
	Qty  int    `json:"qty"`
}

var saleLinePattern = regexp.MustCompile(`^(.+)\((\d+)\)$`)

// EncodeLines renders cart lines in the compact sale format,
// e.g. "RNG839201(2)|NK293841(1)". The format is part of the stored schema
// and must not change.
func EncodeLines(lines []SaleLine) string {
	parts := make([]string, len(lines))
	for i, l := range lines {
		parts[i] = fmt.Sprintf("%s(%d)", l.Code, l.Qty)
	}
	return strings.Join(parts, "|")
}

// DecodeLines parses the compact encoding back into lines. Malformed segments
// are skipped rather than failing the whole decode, matching how reversal has
// always treated historical records.
func DecodeLines(encoded string) []SaleLine {
	var lines []SaleLine
	for _, part := range strings.Split(encoded, "|") {
		m := saleLinePattern.FindStringSubmatch(part)
		if m == nil {
			continue
		}
		qty, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}
		lines = append(lines, SaleLine{Code: m[1], Qty: qty})
	}
	return lines
}
