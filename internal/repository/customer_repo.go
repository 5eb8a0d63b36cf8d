package repository

import (
	"go-giftshop-pos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CustomerRepository interface {
	Create(customer *model.Customer) error
	FindAll() ([]model.Customer, error)
	FindByID(id uuid.UUID) (*model.Customer, error)
	FindByLoyaltyCode(code string) (*model.Customer, error)
	Update(customer *model.Customer) error
	UpdatePoints(tx *gorm.DB, id uuid.UUID, newPoints int, updatedBy string) error
	Delete(id uuid.UUID) error
}

type customerRepo struct {
	db *gorm.DB
}

func NewCustomerRepo(db *gorm.DB) CustomerRepository {
	return &customerRepo{db}
}

func (r *customerRepo) Create(customer *model.Customer) error {
	return r.db.Create(customer).Error
}

func (r *customerRepo) FindAll() ([]model.Customer, error) {
	var customers []model.Customer
	err := r.db.Order("name ASC").Find(&customers).Error
	return customers, err
}

func (r *customerRepo) FindByID(id uuid.UUID) (*model.Customer, error) {
	var customer model.Customer
	err := r.db.First(&customer, "id = ?", id).Error
	return &customer, err
}

func (r *customerRepo) FindByLoyaltyCode(code string) (*model.Customer, error) {
	var customer model.Customer
	err := r.db.First(&customer, "loyalty_code = ?", code).Error
	return &customer, err
}

func (r *customerRepo) Update(customer *model.Customer) error {
	return r.db.Save(customer).Error
}

// UpdatePoints takes the surrounding *gorm.DB (tx) so point adjustments join
// the caller's transaction.
func (r *customerRepo) UpdatePoints(tx *gorm.DB, id uuid.UUID, newPoints int, updatedBy string) error {
	return tx.Model(&model.Customer{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"points":     newPoints,
			"updated_by": updatedBy,
		}).Error
}

func (r *customerRepo) Delete(id uuid.UUID) error {
	return r.db.Delete(&model.Customer{}, "id = ?", id).Error
}
