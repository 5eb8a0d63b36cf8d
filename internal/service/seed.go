package service

import (
	"errors"

	"go-giftshop-pos/internal/model"

	"gorm.io/gorm"
)

// Demo catalog and directory, matching the terminal's "cloud upload" fixture.
var demoProducts = []model.Product{
	{Code: "RNG839201", Category: "Rings", Name: "Gold Band Ring", Price: 1500, Stock: 20},
	{Code: "NK293841", Category: "Necklace", Name: "Silver Chain", Price: 2500, Stock: 10},
	{Code: "BL938271", Category: "Bracelet", Name: "Charm Bracelet", Price: 1200, Stock: 15},
	{Code: "GFT004", Category: "Other", Name: "Gift Box", Price: 800, Stock: 5},
}

var demoCustomers = []model.Customer{
	{LoyaltyCode: "GFT100200", Name: "John Doe", Email: "john@example.com", Points: 150},
}

// SeedDemoData loads the demo catalog and member directory. Existing codes
// are left alone, so reseeding never clobbers live stock or point balances.
func SeedDemoData(db *gorm.DB, userID string) error {
	for _, p := range demoProducts {
		var existing model.Product
		err := db.Where("code = ?", p.Code).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		p.CreatedBy = userID
		p.UpdatedBy = userID
		if err := db.Create(&p).Error; err != nil {
			return err
		}
	}
	for _, c := range demoCustomers {
		var existing model.Customer
		err := db.Where("loyalty_code = ?", c.LoyaltyCode).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		c.CreatedBy = userID
		c.UpdatedBy = userID
		if err := db.Create(&c).Error; err != nil {
			return err
		}
	}
	return nil
}
