package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go-giftshop-pos/internal/model"
	"go-giftshop-pos/internal/pricing"
	"go-giftshop-pos/internal/repository"
	"go-giftshop-pos/internal/ws"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrEmptyCart          = errors.New("cart is empty")
	ErrInvalidQuantity    = errors.New("quantity must be at least 1")
	ErrInvalidLoyaltyCode = errors.New("invalid loyalty code: use '" + model.LoyaltyPrefix + "' + 6 digits")
	ErrUnknownProduct     = errors.New("unknown product code")
	ErrInsufficientStock  = errors.New("insufficient stock remaining")
	ErrDuplicateSale      = errors.New("sale already recorded")
	ErrSaleNotFound       = errors.New("sale not found")
)

// CartLine is what the terminal sends: a product code and how many. Prices
// are always re-read from the catalog inside the commit transaction, never
// trusted from the client snapshot.
type CartLine struct {
	Code string `json:"code"`
	Qty  int    `json:"qty"`
}

// CheckoutRequest carries everything a sale commit needs. SaleID is the
// idempotency token: a retry with the same id is rejected instead of
// double-applying stock and point mutations. Leave it zero to have the
// server assign one.
type CheckoutRequest struct {
	SaleID       uuid.UUID  `json:"sale_id"`
	Lines        []CartLine `json:"lines"`
	CustomerCode string     `json:"customer_code"`
	Discount     string     `json:"discount"`
	UsePoints    bool       `json:"use_points"`
}

// Receipt summarizes a committed sale for the terminal.
type Receipt struct {
	SaleID         uuid.UUID      `json:"sale_id"`
	Guest          bool           `json:"guest"`
	CustomerCode   string         `json:"customer_code"`
	CustomerName   string         `json:"customer_name,omitempty"`
	Lines          []pricing.Line `json:"lines"`
	Subtotal       float64        `json:"subtotal"`
	Discount       float64        `json:"discount"`
	AmountPaid     float64        `json:"amount_paid"`
	PreviousPoints int            `json:"previous_points"`
	PointsEarned   int            `json:"points_earned"`
	PointsRedeemed int            `json:"points_redeemed"`
	TotalPoints    int            `json:"total_points"`
	Date           string         `json:"date"`
}

// Format renders the printable receipt text.
func (r *Receipt) Format(storeName string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "~ %s POS Receipt ~\n\n", storeName)
	if !r.Guest {
		b.WriteString("Loyalty Points:\n")
		fmt.Fprintf(&b, "Previous: %d\n", r.PreviousPoints)
		fmt.Fprintf(&b, "+ Earned: %d\n", r.PointsEarned)
		fmt.Fprintf(&b, "- Used:   %d\n", r.PointsRedeemed)
		b.WriteString("----------------\n")
		fmt.Fprintf(&b, "= Total:  %d\n\n", r.TotalPoints)
	}
	fmt.Fprintf(&b, "Total Paid: $%.2f\n\nThank you for choosing %s!", r.AmountPaid, storeName)
	return b.String()
}

type CheckoutService interface {
	ProcessSale(req *CheckoutRequest, userID, userName string) (*Receipt, error)
	ReverseSale(saleID uuid.UUID, restoreSideEffects bool, userID, userName string) error
}

type checkoutService struct {
	productRepo  repository.ProductRepository
	customerRepo repository.CustomerRepository
	saleRepo     repository.SaleRepository
	db           *gorm.DB
	wsHub        *ws.Hub
}

func NewCheckoutService(pRepo repository.ProductRepository, cRepo repository.CustomerRepository, sRepo repository.SaleRepository, db *gorm.DB, hub *ws.Hub) CheckoutService {
	return &checkoutService{
		productRepo:  pRepo,
		customerRepo: cRepo,
		saleRepo:     sRepo,
		db:           db,
		wsHub:        hub,
	}
}

// ProcessSale commits a checkout as one transaction: insert the sale record,
// decrement stock for every line, and adjust (or implicitly create) the
// member's point balance. Either everything lands or nothing does.
func (s *checkoutService) ProcessSale(req *CheckoutRequest, userID, userName string) (*Receipt, error) {
	if len(req.Lines) == 0 {
		return nil, ErrEmptyCart
	}
	for _, line := range req.Lines {
		if line.Qty < 1 {
			return nil, fmt.Errorf("%w (%s)", ErrInvalidQuantity, line.Code)
		}
	}

	// Collapse repeated codes into one line per product so the stock check
	// and the decrement both see the combined quantity.
	lines := make([]CartLine, 0, len(req.Lines))
	lineIdx := make(map[string]int, len(req.Lines))
	for _, line := range req.Lines {
		if i, ok := lineIdx[line.Code]; ok {
			lines[i].Qty += line.Qty
			continue
		}
		lineIdx[line.Code] = len(lines)
		lines = append(lines, line)
	}

	code := strings.ToUpper(strings.TrimSpace(req.CustomerCode))
	wantMember := code != "" && code != model.WalkInOverride

	var receipt *Receipt
	err := s.db.Transaction(func(tx *gorm.DB) error {
		// Resolve the member first: a malformed code must reject the sale
		// before anything is written.
		var customer *model.Customer
		if wantMember {
			var c model.Customer
			err := lockForUpdate(tx).First(&c, "loyalty_code = ?", code).Error
			switch {
			case err == nil:
				customer = &c
			case errors.Is(err, gorm.ErrRecordNotFound):
				if !model.ValidLoyaltyCode(code) {
					return ErrInvalidLoyaltyCode
				}
				// well-formed but unknown: member is created below
			default:
				return err
			}
		}

		// Lock and snapshot every product in the cart. Prices come from the
		// catalog here, not from the terminal.
		priceLines := make([]pricing.Line, 0, len(lines))
		products := make([]model.Product, 0, len(lines))
		for _, line := range lines {
			var p model.Product
			if err := lockForUpdate(tx).First(&p, "code = ?", line.Code).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: %s", ErrUnknownProduct, line.Code)
				}
				return err
			}
			if line.Qty > p.Stock {
				return fmt.Errorf("%w: only %d of %s in stock", ErrInsufficientStock, p.Stock, p.Code)
			}
			priceLines = append(priceLines, pricing.Line{Code: p.Code, Name: p.Name, UnitPrice: p.Price, Qty: line.Qty})
			products = append(products, p)
		}

		memberPoints := 0
		if customer != nil {
			memberPoints = customer.Points
		}
		quote, err := pricing.Compute(priceLines, req.Discount, memberPoints, req.UsePoints && customer != nil)
		if err != nil {
			return err
		}

		saleID := req.SaleID
		if saleID == uuid.Nil {
			saleID = uuid.New()
		}
		var existing model.Sale
		if err := tx.First(&existing, "id = ?", saleID).Error; err == nil {
			return ErrDuplicateSale
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		saleLines := make([]model.SaleLine, len(lines))
		for i, line := range lines {
			saleLines[i] = model.SaleLine{Code: line.Code, Qty: line.Qty}
		}

		now := time.Now()
		customerCode := model.GuestCode
		if wantMember {
			customerCode = code
		}
		sale := &model.Sale{
			ID:             saleID,
			CustomerCode:   customerCode,
			Items:          model.EncodeLines(saleLines),
			PointsEarned:   quote.PointsEarned,
			PointsRedeemed: quote.PointsRedeemed,
			Total:          quote.Total,
			Date:           now.Format("1/2/2006 3:04:05 PM"),
			Timestamp:      now.UnixMilli(),
			CreatedBy:      userID,
		}
		if err := s.saleRepo.Create(tx, sale); err != nil {
			return err
		}

		for i, p := range products {
			newStock := p.Stock - lines[i].Qty
			if newStock < 0 {
				newStock = 0
			}
			if err := s.productRepo.UpdateStock(tx, p.ID, newStock, userID); err != nil {
				return err
			}
		}

		receipt = &Receipt{
			SaleID:         saleID,
			Guest:          !wantMember,
			CustomerCode:   customerCode,
			Lines:          priceLines,
			Subtotal:       quote.Subtotal,
			Discount:       quote.Discount,
			AmountPaid:     quote.Total,
			PointsEarned:   quote.PointsEarned,
			PointsRedeemed: quote.PointsRedeemed,
			Date:           sale.Date,
		}

		switch {
		case customer != nil:
			newBalance := customer.Points - quote.PointsRedeemed + quote.PointsEarned
			if newBalance < 0 {
				newBalance = 0
			}
			if err := s.customerRepo.UpdatePoints(tx, customer.ID, newBalance, userID); err != nil {
				return err
			}
			receipt.CustomerName = customer.Name
			receipt.PreviousPoints = customer.Points
			receipt.TotalPoints = newBalance
		case wantMember:
			// Well-formed but unrecognized code: sign the member up on the
			// spot with the points this sale earned.
			member := &model.Customer{
				LoyaltyCode: code,
				Name:        model.ImplicitMemberName,
				Points:      quote.PointsEarned,
			}
			member.CreatedBy = userID
			member.UpdatedBy = userID
			if err := tx.Create(member).Error; err != nil {
				return err
			}
			receipt.CustomerName = member.Name
			receipt.TotalPoints = quote.PointsEarned
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.wsHub.Publish(ws.Event{
		Collection: "sales",
		Action:     "sale_recorded",
		Data:       receipt,
		Message:    fmt.Sprintf("%s recorded a sale of $%.2f", userName, receipt.AmountPaid),
	})

	return receipt, nil
}

// ReverseSale deletes a sales record. With restoreSideEffects it first puts
// back each line's stock and rewinds the member's point balance; without it,
// only the record goes -- the bookkeeping escape hatch, stock and points
// untouched.
func (s *checkoutService) ReverseSale(saleID uuid.UUID, restoreSideEffects bool, userID, userName string) error {
	var reversed model.Sale

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var sale model.Sale
		if err := tx.First(&sale, "id = ?", saleID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSaleNotFound
			}
			return err
		}

		if restoreSideEffects {
			// Products or members deleted since the sale are skipped; the
			// record itself still goes.
			for _, line := range model.DecodeLines(sale.Items) {
				var p model.Product
				if err := lockForUpdate(tx).First(&p, "code = ?", line.Code).Error; err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						continue
					}
					return err
				}
				if err := s.productRepo.UpdateStock(tx, p.ID, p.Stock+line.Qty, userID); err != nil {
					return err
				}
			}

			if sale.CustomerCode != model.GuestCode {
				var c model.Customer
				err := lockForUpdate(tx).First(&c, "loyalty_code = ?", sale.CustomerCode).Error
				switch {
				case err == nil:
					restored := c.Points - sale.PointsEarned + sale.PointsRedeemed
					if restored < 0 {
						restored = 0
					}
					if err := s.customerRepo.UpdatePoints(tx, c.ID, restored, userID); err != nil {
						return err
					}
				case !errors.Is(err, gorm.ErrRecordNotFound):
					return err
				}
			}
		}

		reversed = sale
		return s.saleRepo.Delete(tx, sale.ID)
	})
	if err != nil {
		return err
	}

	action := "sale_log_deleted"
	verb := "deleted the log for"
	if restoreSideEffects {
		action = "sale_reversed"
		verb = "reversed"
	}
	s.wsHub.Publish(ws.Event{
		Collection: "sales",
		Action:     action,
		Data:       reversed,
		Message:    fmt.Sprintf("%s %s sale %s", userName, verb, reversed.ID),
	})

	return nil
}
