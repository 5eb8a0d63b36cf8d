package service_test

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"go-giftshop-pos/internal/model"
	"go-giftshop-pos/internal/pricing"
	"go-giftshop-pos/internal/repository"
	"go-giftshop-pos/internal/service"
)

// memdb spins up an isolated in-memory database with the full schema.
func memdb(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// a single connection keeps every query on the same in-memory database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&model.Product{}, &model.Customer{}, &model.Sale{}, &model.User{}))
	return db
}

func checkoutFixture(t *testing.T) (service.CheckoutService, *gorm.DB) {
	t.Helper()
	db := memdb(t)

	require.NoError(t, db.Create(&model.Product{Code: "RNG1", Category: "Rings", Name: "Gold Band Ring", Price: 1000, Stock: 20}).Error)
	require.NoError(t, db.Create(&model.Product{Code: "GFT004", Category: "Other", Name: "Gift Box", Price: 300, Stock: 5}).Error)
	require.NoError(t, db.Create(&model.Customer{LoyaltyCode: "GFT100200", Name: "John Doe", Email: "john@example.com", Points: 500}).Error)

	svc := service.NewCheckoutService(
		repository.NewProductRepo(db),
		repository.NewCustomerRepo(db),
		repository.NewSaleRepo(db),
		db,
		nil, // no live terminals in tests
	)
	return svc, db
}

func productStock(t *testing.T, db *gorm.DB, code string) int {
	t.Helper()
	var p model.Product
	require.NoError(t, db.First(&p, "code = ?", code).Error)
	return p.Stock
}

func customerPoints(t *testing.T, db *gorm.DB, loyaltyCode string) int {
	t.Helper()
	var c model.Customer
	require.NoError(t, db.First(&c, "loyalty_code = ?", loyaltyCode).Error)
	return c.Points
}

func saleCount(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&model.Sale{}).Count(&n).Error)
	return n
}

func TestProcessSale_GuestWithPercentDiscount(t *testing.T) {
	svc, db := checkoutFixture(t)

	receipt, err := svc.ProcessSale(&service.CheckoutRequest{
		Lines:    []service.CartLine{{Code: "RNG1", Qty: 2}},
		Discount: "10%",
	}, "cashier-1", "Cashier")
	require.NoError(t, err)

	require.True(t, receipt.Guest)
	require.Equal(t, model.GuestCode, receipt.CustomerCode)
	require.Equal(t, 2000.0, receipt.Subtotal)
	require.Equal(t, 200.0, receipt.Discount)
	require.Equal(t, 1800.0, receipt.AmountPaid)
	require.Equal(t, 18, receipt.PointsEarned)

	require.Equal(t, 18, productStock(t, db, "RNG1"))

	var sale model.Sale
	require.NoError(t, db.First(&sale, "id = ?", receipt.SaleID).Error)
	require.Equal(t, "RNG1(2)", sale.Items)
	require.Equal(t, model.GuestCode, sale.CustomerCode)
	require.Equal(t, 1800.0, sale.Total)
	require.Equal(t, 18, sale.PointsEarned)
	require.Equal(t, 0, sale.PointsRedeemed)
	require.NotZero(t, sale.Timestamp)
}

func TestProcessSale_FlatDiscount(t *testing.T) {
	svc, _ := checkoutFixture(t)

	receipt, err := svc.ProcessSale(&service.CheckoutRequest{
		Lines:    []service.CartLine{{Code: "RNG1", Qty: 2}},
		Discount: "50",
	}, "cashier-1", "Cashier")
	require.NoError(t, err)
	require.Equal(t, 1950.0, receipt.AmountPaid)
	require.Equal(t, 19, receipt.PointsEarned)
}

func TestProcessSale_MemberRedeemsPoints(t *testing.T) {
	svc, db := checkoutFixture(t)

	// 500 points cover the whole 300: pay nothing, earn nothing
	receipt, err := svc.ProcessSale(&service.CheckoutRequest{
		Lines:        []service.CartLine{{Code: "GFT004", Qty: 1}},
		CustomerCode: "GFT100200",
		UsePoints:    true,
	}, "cashier-1", "Cashier")
	require.NoError(t, err)

	require.False(t, receipt.Guest)
	require.Equal(t, "John Doe", receipt.CustomerName)
	require.Equal(t, 500, receipt.PreviousPoints)
	require.Equal(t, 300, receipt.PointsRedeemed)
	require.Equal(t, 0.0, receipt.AmountPaid)
	require.Equal(t, 0, receipt.PointsEarned)
	require.Equal(t, 200, receipt.TotalPoints)

	require.Equal(t, 200, customerPoints(t, db, "GFT100200"))
	require.Equal(t, 4, productStock(t, db, "GFT004"))
}

func TestProcessSale_MemberEarnsPoints(t *testing.T) {
	svc, db := checkoutFixture(t)

	receipt, err := svc.ProcessSale(&service.CheckoutRequest{
		Lines:        []service.CartLine{{Code: "RNG1", Qty: 2}},
		CustomerCode: "GFT100200",
	}, "cashier-1", "Cashier")
	require.NoError(t, err)
	require.Equal(t, 20, receipt.PointsEarned)
	require.Equal(t, 520, receipt.TotalPoints)
	require.Equal(t, 520, customerPoints(t, db, "GFT100200"))
}

func TestProcessSale_ImplicitMemberSignup(t *testing.T) {
	svc, db := checkoutFixture(t)

	// well-formed but unknown code: member is created with the earned points
	receipt, err := svc.ProcessSale(&service.CheckoutRequest{
		Lines:        []service.CartLine{{Code: "RNG1", Qty: 2}},
		CustomerCode: "GFT777777",
	}, "cashier-1", "Cashier")
	require.NoError(t, err)
	require.Equal(t, 20, receipt.TotalPoints)

	var member model.Customer
	require.NoError(t, db.First(&member, "loyalty_code = ?", "GFT777777").Error)
	require.Equal(t, model.ImplicitMemberName, member.Name)
	require.Equal(t, 20, member.Points)
}

func TestProcessSale_WalkInOverrideIsGuest(t *testing.T) {
	svc, db := checkoutFixture(t)

	receipt, err := svc.ProcessSale(&service.CheckoutRequest{
		Lines:        []service.CartLine{{Code: "RNG1", Qty: 1}},
		CustomerCode: model.WalkInOverride,
	}, "cashier-1", "Cashier")
	require.NoError(t, err)
	require.True(t, receipt.Guest)
	require.Equal(t, model.GuestCode, receipt.CustomerCode)

	// the sentinel is normalized away; the record stores the guest marker
	var sale model.Sale
	require.NoError(t, db.First(&sale, "id = ?", receipt.SaleID).Error)
	require.Equal(t, model.GuestCode, sale.CustomerCode)

	var count int64
	require.NoError(t, db.Model(&model.Customer{}).Count(&count).Error)
	require.Equal(t, int64(1), count) // no member created
}

func TestProcessSale_MalformedLoyaltyCodeRejected(t *testing.T) {
	svc, db := checkoutFixture(t)

	_, err := svc.ProcessSale(&service.CheckoutRequest{
		Lines:        []service.CartLine{{Code: "RNG1", Qty: 2}},
		CustomerCode: "ABC123",
	}, "cashier-1", "Cashier")
	require.ErrorIs(t, err, service.ErrInvalidLoyaltyCode)

	// nothing written
	require.Equal(t, int64(0), saleCount(t, db))
	require.Equal(t, 20, productStock(t, db, "RNG1"))
}

func TestProcessSale_EmptyCartIsNoOp(t *testing.T) {
	svc, db := checkoutFixture(t)

	_, err := svc.ProcessSale(&service.CheckoutRequest{}, "cashier-1", "Cashier")
	require.ErrorIs(t, err, service.ErrEmptyCart)
	require.Equal(t, int64(0), saleCount(t, db))
}

func TestProcessSale_ZeroQuantityRejected(t *testing.T) {
	svc, _ := checkoutFixture(t)

	_, err := svc.ProcessSale(&service.CheckoutRequest{
		Lines: []service.CartLine{{Code: "RNG1", Qty: 0}},
	}, "cashier-1", "Cashier")
	require.ErrorIs(t, err, service.ErrInvalidQuantity)
}

func TestProcessSale_MergesRepeatedCartLines(t *testing.T) {
	svc, db := checkoutFixture(t)

	// the same product rung up twice decrements by the combined quantity
	receipt, err := svc.ProcessSale(&service.CheckoutRequest{
		Lines: []service.CartLine{{Code: "RNG1", Qty: 2}, {Code: "RNG1", Qty: 3}},
	}, "cashier-1", "Cashier")
	require.NoError(t, err)
	require.Equal(t, 5000.0, receipt.Subtotal)
	require.Equal(t, 15, productStock(t, db, "RNG1"))

	var sale model.Sale
	require.NoError(t, db.First(&sale, "id = ?", receipt.SaleID).Error)
	require.Equal(t, "RNG1(5)", sale.Items)

	// and a reversal puts back exactly what was sold
	require.NoError(t, svc.ReverseSale(receipt.SaleID, true, "admin-1", "Admin"))
	require.Equal(t, 20, productStock(t, db, "RNG1"))
}

func TestProcessSale_RepeatedLinesCheckedAgainstCombinedStock(t *testing.T) {
	svc, db := checkoutFixture(t)

	// two lines of 3 against stock 5: the combined quantity must fail
	_, err := svc.ProcessSale(&service.CheckoutRequest{
		Lines: []service.CartLine{{Code: "GFT004", Qty: 3}, {Code: "GFT004", Qty: 3}},
	}, "cashier-1", "Cashier")
	require.ErrorIs(t, err, service.ErrInsufficientStock)
	require.Equal(t, int64(0), saleCount(t, db))
	require.Equal(t, 5, productStock(t, db, "GFT004"))
}

func TestProcessSale_InsufficientStockRejected(t *testing.T) {
	svc, db := checkoutFixture(t)

	_, err := svc.ProcessSale(&service.CheckoutRequest{
		Lines: []service.CartLine{{Code: "GFT004", Qty: 6}}, // stock is 5
	}, "cashier-1", "Cashier")
	require.ErrorIs(t, err, service.ErrInsufficientStock)

	require.Equal(t, int64(0), saleCount(t, db))
	require.Equal(t, 5, productStock(t, db, "GFT004"))
}

func TestProcessSale_UnknownProductRejected(t *testing.T) {
	svc, db := checkoutFixture(t)

	_, err := svc.ProcessSale(&service.CheckoutRequest{
		Lines: []service.CartLine{{Code: "NOPE1", Qty: 1}},
	}, "cashier-1", "Cashier")
	require.ErrorIs(t, err, service.ErrUnknownProduct)
	require.Equal(t, int64(0), saleCount(t, db))
}

func TestProcessSale_NegativeDiscountRejected(t *testing.T) {
	svc, db := checkoutFixture(t)

	_, err := svc.ProcessSale(&service.CheckoutRequest{
		Lines:    []service.CartLine{{Code: "RNG1", Qty: 1}},
		Discount: "-50",
	}, "cashier-1", "Cashier")
	require.ErrorIs(t, err, pricing.ErrNegativeDiscount)

	require.Equal(t, int64(0), saleCount(t, db))
	require.Equal(t, 20, productStock(t, db, "RNG1"))
}

func TestProcessSale_DuplicateSaleIDCannotDoubleApply(t *testing.T) {
	svc, db := checkoutFixture(t)

	saleID := uuid.New()
	req := &service.CheckoutRequest{
		SaleID: saleID,
		Lines:  []service.CartLine{{Code: "RNG1", Qty: 2}},
	}

	_, err := svc.ProcessSale(req, "cashier-1", "Cashier")
	require.NoError(t, err)

	// retry with the same idempotency token
	_, err = svc.ProcessSale(req, "cashier-1", "Cashier")
	require.ErrorIs(t, err, service.ErrDuplicateSale)

	require.Equal(t, int64(1), saleCount(t, db))
	require.Equal(t, 18, productStock(t, db, "RNG1"))
}

func TestReverseSale_RestoresStockAndPoints(t *testing.T) {
	svc, db := checkoutFixture(t)

	receipt, err := svc.ProcessSale(&service.CheckoutRequest{
		Lines:        []service.CartLine{{Code: "RNG1", Qty: 2}, {Code: "GFT004", Qty: 1}},
		CustomerCode: "GFT100200",
		UsePoints:    true,
	}, "cashier-1", "Cashier")
	require.NoError(t, err)
	require.Equal(t, 18, productStock(t, db, "RNG1"))
	require.Equal(t, 4, productStock(t, db, "GFT004"))

	require.NoError(t, svc.ReverseSale(receipt.SaleID, true, "admin-1", "Admin"))

	require.Equal(t, 20, productStock(t, db, "RNG1"))
	require.Equal(t, 5, productStock(t, db, "GFT004"))
	require.Equal(t, 500, customerPoints(t, db, "GFT100200"))
	require.Equal(t, int64(0), saleCount(t, db))
}

func TestReverseSale_LogOnlyLeavesSideEffects(t *testing.T) {
	svc, db := checkoutFixture(t)

	receipt, err := svc.ProcessSale(&service.CheckoutRequest{
		Lines:        []service.CartLine{{Code: "RNG1", Qty: 2}},
		CustomerCode: "GFT100200",
	}, "cashier-1", "Cashier")
	require.NoError(t, err)

	require.NoError(t, svc.ReverseSale(receipt.SaleID, false, "admin-1", "Admin"))

	// the bookkeeping override: record gone, stock and points untouched
	require.Equal(t, int64(0), saleCount(t, db))
	require.Equal(t, 18, productStock(t, db, "RNG1"))
	require.Equal(t, 520, customerPoints(t, db, "GFT100200"))
}

func TestReverseSale_SkipsDeletedProduct(t *testing.T) {
	svc, db := checkoutFixture(t)

	receipt, err := svc.ProcessSale(&service.CheckoutRequest{
		Lines: []service.CartLine{{Code: "RNG1", Qty: 2}, {Code: "GFT004", Qty: 1}},
	}, "cashier-1", "Cashier")
	require.NoError(t, err)

	require.NoError(t, db.Delete(&model.Product{}, "code = ?", "GFT004").Error)

	require.NoError(t, svc.ReverseSale(receipt.SaleID, true, "admin-1", "Admin"))
	require.Equal(t, 20, productStock(t, db, "RNG1"))
	require.Equal(t, int64(0), saleCount(t, db))
}

func TestReverseSale_NotFound(t *testing.T) {
	svc, _ := checkoutFixture(t)
	err := svc.ReverseSale(uuid.New(), true, "admin-1", "Admin")
	require.ErrorIs(t, err, service.ErrSaleNotFound)
}

func TestReverseSale_PointRestoreClampsAtZero(t *testing.T) {
	svc, db := checkoutFixture(t)

	// Earn 20 points on the sale, then spend the balance down before the
	// reversal lands: the restore clamps at zero instead of going negative.
	receipt, err := svc.ProcessSale(&service.CheckoutRequest{
		Lines:        []service.CartLine{{Code: "RNG1", Qty: 2}},
		CustomerCode: "GFT100200",
	}, "cashier-1", "Cashier")
	require.NoError(t, err)

	require.NoError(t, db.Model(&model.Customer{}).
		Where("loyalty_code = ?", "GFT100200").
		Update("points", 5).Error)

	require.NoError(t, svc.ReverseSale(receipt.SaleID, true, "admin-1", "Admin"))
	require.Equal(t, 0, customerPoints(t, db, "GFT100200"))
}
