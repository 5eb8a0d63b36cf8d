package service_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"go-giftshop-pos/internal/model"
	"go-giftshop-pos/internal/repository"
	"go-giftshop-pos/internal/service"
)

func customerFixture(t *testing.T) (service.CustomerService, *gorm.DB) {
	t.Helper()
	db := memdb(t)
	svc := service.NewCustomerService(repository.NewCustomerRepo(db), nil)
	return svc, db
}

func TestRegisterCustomer(t *testing.T) {
	svc, db := customerFixture(t)

	customer, err := svc.Register(&service.RegisterCustomerRequest{
		Name:  "Jane Smith",
		Email: "jane@example.com",
		DOB:   "1990-04-12",
	}, "cashier-1", "Cashier")
	require.NoError(t, err)

	require.True(t, model.ValidLoyaltyCode(customer.LoyaltyCode))
	require.Equal(t, 0, customer.Points)

	var stored model.Customer
	require.NoError(t, db.First(&stored, "loyalty_code = ?", customer.LoyaltyCode).Error)
	require.Equal(t, "Jane Smith", stored.Name)
	require.Equal(t, "cashier-1", stored.CreatedBy)
}

func TestRegisterCustomer_RequiresNameAndEmail(t *testing.T) {
	svc, db := customerFixture(t)

	cases := []*service.RegisterCustomerRequest{
		{Email: "jane@example.com"},
		{Name: "Jane Smith"},
		{Name: "Jane Smith", Email: "not-an-email"},
	}
	for _, req := range cases {
		_, err := svc.Register(req, "cashier-1", "Cashier")
		require.ErrorIs(t, err, service.ErrMissingContact)
	}

	var n int64
	require.NoError(t, db.Model(&model.Customer{}).Count(&n).Error)
	require.Equal(t, int64(0), n)
}

func TestUpdateCustomer_LoyaltyCodeImmutable(t *testing.T) {
	svc, db := customerFixture(t)

	c := &model.Customer{LoyaltyCode: "GFT100200", Name: "John Doe", Email: "john@example.com", Points: 150}
	require.NoError(t, db.Create(c).Error)

	updated, err := svc.Update(c.ID, &service.UpdateCustomerRequest{
		Name:  "John A. Doe",
		Email: "john.doe@example.com",
	}, "cashier-1", "Cashier")
	require.NoError(t, err)
	require.Equal(t, "John A. Doe", updated.Name)
	require.Equal(t, "GFT100200", updated.LoyaltyCode)
	require.Equal(t, 150, updated.Points) // balance only moves through sales
}

func TestUpdateCustomer_NotFound(t *testing.T) {
	svc, _ := customerFixture(t)
	_, err := svc.Update(uuid.New(), &service.UpdateCustomerRequest{Name: "X", Email: "x@example.com"}, "cashier-1", "Cashier")
	require.ErrorIs(t, err, service.ErrCustomerNotFound)
}

func TestDeleteCustomer(t *testing.T) {
	svc, db := customerFixture(t)

	c := &model.Customer{LoyaltyCode: "GFT100200", Name: "John Doe", Email: "john@example.com"}
	require.NoError(t, db.Create(c).Error)

	require.NoError(t, svc.Delete(c.ID, "admin-1", "Admin"))
	require.ErrorIs(t, db.First(&model.Customer{}, "id = ?", c.ID).Error, gorm.ErrRecordNotFound)

	require.ErrorIs(t, svc.Delete(c.ID, "admin-1", "Admin"), service.ErrCustomerNotFound)
}

func TestFindByLoyaltyCode(t *testing.T) {
	svc, db := customerFixture(t)

	require.NoError(t, db.Create(&model.Customer{LoyaltyCode: "GFT100200", Name: "John Doe", Email: "john@example.com"}).Error)

	found, err := svc.FindByLoyaltyCode("GFT100200")
	require.NoError(t, err)
	require.Equal(t, "John Doe", found.Name)

	_, err = svc.FindByLoyaltyCode("GFT000000")
	require.ErrorIs(t, err, service.ErrCustomerNotFound)
}
