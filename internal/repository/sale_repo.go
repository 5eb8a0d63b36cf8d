package repository

import (
	"go-giftshop-pos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SaleRepository interface {
	Create(tx *gorm.DB, sale *model.Sale) error
	FindAll() ([]model.Sale, error)
	FindByID(id uuid.UUID) (*model.Sale, error)
	FindSince(sinceMillis int64) ([]model.Sale, error)
	Delete(tx *gorm.DB, id uuid.UUID) error
	Summary(sinceMillis int64) (*SalesSummary, error)
}

// SalesSummary aggregates the dashboard's headline numbers over a period.
type SalesSummary struct {
	Revenue       float64 `json:"revenue"`
	Orders        int64   `json:"orders"`
	AvgOrderValue float64 `json:"avg_order_value"`
}

type saleRepo struct {
	db *gorm.DB
}

func NewSaleRepo(db *gorm.DB) SaleRepository {
	return &saleRepo{db}
}

// Create runs inside the caller's transaction: a sale row must never land
// without its stock and point mutations.
func (r *saleRepo) Create(tx *gorm.DB, sale *model.Sale) error {
	return tx.Create(sale).Error
}

func (r *saleRepo) FindAll() ([]model.Sale, error) {
	var sales []model.Sale
	err := r.db.Order("timestamp DESC").Find(&sales).Error
	return sales, err
}

func (r *saleRepo) FindByID(id uuid.UUID) (*model.Sale, error) {
	var sale model.Sale
	err := r.db.First(&sale, "id = ?", id).Error
	return &sale, err
}

func (r *saleRepo) FindSince(sinceMillis int64) ([]model.Sale, error) {
	var sales []model.Sale
	err := r.db.Where("timestamp >= ?", sinceMillis).Order("timestamp DESC").Find(&sales).Error
	return sales, err
}

func (r *saleRepo) Delete(tx *gorm.DB, id uuid.UUID) error {
	return tx.Delete(&model.Sale{}, "id = ?", id).Error
}

func (r *saleRepo) Summary(sinceMillis int64) (*SalesSummary, error) {
	var summary SalesSummary

	err := r.db.Model(&model.Sale{}).
		Where("timestamp >= ?", sinceMillis).
		Select("COALESCE(SUM(total), 0) as revenue, COUNT(*) as orders").
		Row().Scan(&summary.Revenue, &summary.Orders)
	if err != nil {
		return nil, err
	}

	if summary.Orders > 0 {
		summary.AvgOrderValue = summary.Revenue / float64(summary.Orders)
	}
	return &summary, nil
}
