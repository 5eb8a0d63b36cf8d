package service

import (
	"strings"
	"time"

	"go-giftshop-pos/internal/model"
	"go-giftshop-pos/internal/repository"
)

// Dashboard periods mirror the terminal's tabs.
const (
	PeriodToday = "today"
	PeriodWeek  = "week"
	PeriodMonth = "month"
	PeriodAll   = "all"
)

// Products with stock below this show the low-stock badge.
const lowStockThreshold = 5

type DashboardService interface {
	GetSalesSummary(period string) (*repository.SalesSummary, error)
	GetInventoryStats() (*repository.InventoryStats, error)
	ListSales(period, search string) ([]model.Sale, error)
}

type dashboardService struct {
	saleRepo    repository.SaleRepository
	productRepo repository.ProductRepository
}

func NewDashboardService(sRepo repository.SaleRepository, pRepo repository.ProductRepository) DashboardService {
	return &dashboardService{saleRepo: sRepo, productRepo: pRepo}
}

// periodStart maps a dashboard tab to the epoch-millis cutoff it covers.
// Unknown values fall back to "today".
func periodStart(period string, now time.Time) int64 {
	switch period {
	case PeriodAll:
		return 0
	case PeriodWeek:
		return now.AddDate(0, 0, -7).UnixMilli()
	case PeriodMonth:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).UnixMilli()
	default: // today
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).UnixMilli()
	}
}

func (s *dashboardService) GetSalesSummary(period string) (*repository.SalesSummary, error) {
	return s.saleRepo.Summary(periodStart(period, time.Now()))
}

func (s *dashboardService) GetInventoryStats() (*repository.InventoryStats, error) {
	return s.productRepo.Stats(lowStockThreshold)
}

// ListSales returns the period's sales newest first, optionally filtered by a
// free-text match on the sale id, customer code, or item codes.
func (s *dashboardService) ListSales(period, search string) ([]model.Sale, error) {
	sales, err := s.saleRepo.FindSince(periodStart(period, time.Now()))
	if err != nil {
		return nil, err
	}
	if search == "" {
		return sales, nil
	}

	needle := strings.ToLower(search)
	filtered := make([]model.Sale, 0, len(sales))
	for _, sale := range sales {
		if strings.Contains(strings.ToLower(sale.ID.String()), needle) ||
			strings.Contains(strings.ToLower(sale.CustomerCode), needle) ||
			strings.Contains(strings.ToLower(sale.Items), needle) {
			filtered = append(filtered, sale)
		}
	}
	return filtered, nil
}
