// Package pricing derives a payable total from cart contents, a free-form
// discount input, and optional loyalty point redemption. It is pure: the same
// four inputs always produce the same Quote, and nothing here touches the
// database or the network.
package pricing

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
)

// ErrNegativeDiscount rejects inputs like "-50" or "-10%". A negative
// discount would raise the total instead of lowering it.
var ErrNegativeDiscount = errors.New("discount cannot be negative")

// Line is one cart entry: a product snapshot plus the requested quantity.
type Line struct {
	Code      string  `json:"code"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
	Qty       int     `json:"qty"`
}

// Quote is the full breakdown of a checkout computation.
type Quote struct {
	Subtotal       float64 `json:"subtotal"`
	Discount       float64 `json:"discount"`
	Intermediate   float64 `json:"intermediate"` // subtotal after discount, before points
	PointsRedeemed int     `json:"points_redeemed"`
	Total          float64 `json:"total"`
	PointsEarned   int     `json:"points_earned"`
}

// leadingNumber matches an optionally signed decimal at the start of the
// input, the same slice of the string JS parseFloat would consume.
var leadingNumber = regexp.MustCompile(`^-?(\d+(\.\d*)?|\.\d+)`)

// Subtotal sums unit price times quantity over all lines.
func Subtotal(lines []Line) float64 {
	var sum float64
	for _, l := range lines {
		sum += l.UnitPrice * float64(l.Qty)
	}
	return sum
}

// ParseDiscount interprets the cashier's free-form discount field against a
// subtotal. An input containing '%' is a percentage of the subtotal; anything
// else is a flat currency amount. In both cases only the leading numeric
// portion is read, and input with no leading number contributes zero -- the
// field has always failed silent, and receipts depend on that.
func ParseDiscount(input string, subtotal float64) (float64, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return 0, nil
	}
	num := leadingNumber.FindString(s)
	if num == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, nil
	}
	if v < 0 {
		return 0, ErrNegativeDiscount
	}
	if strings.Contains(s, "%") {
		return subtotal * v / 100, nil
	}
	return v, nil
}

// Compute runs the checkout arithmetic in order: subtotal, discount,
// intermediate total, point redemption (1 point per currency unit, capped by
// both the member's balance and the remaining payable amount), final total,
// and points earned (1 per 100 spent, floored).
//
// Redemption is additionally floored to the whole-unit part of the
// intermediate total so point balances stay integral; any sub-unit remainder
// is paid in cash.
func Compute(lines []Line, discountInput string, customerPoints int, usePoints bool) (Quote, error) {
	q := Quote{Subtotal: Subtotal(lines)}

	discount, err := ParseDiscount(discountInput, q.Subtotal)
	if err != nil {
		return Quote{}, err
	}
	q.Discount = discount

	q.Intermediate = q.Subtotal - q.Discount
	if q.Intermediate < 0 {
		q.Intermediate = 0
	}

	if usePoints {
		q.PointsRedeemed = min(customerPoints, int(q.Intermediate))
		if q.PointsRedeemed < 0 {
			q.PointsRedeemed = 0
		}
	}

	q.Total = q.Intermediate - float64(q.PointsRedeemed)
	if q.Total < 0 {
		q.Total = 0
	}

	q.PointsEarned = int(q.Total / 100)
	return q, nil
}
