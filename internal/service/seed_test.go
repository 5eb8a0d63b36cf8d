package service_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"go-giftshop-pos/internal/model"
	"go-giftshop-pos/internal/service"
)

func TestSeedDemoData_Idempotent(t *testing.T) {
	db := memdb(t)

	require.NoError(t, service.SeedDemoData(db, "admin-1"))

	var products, customers int64
	require.NoError(t, db.Model(&model.Product{}).Count(&products).Error)
	require.NoError(t, db.Model(&model.Customer{}).Count(&customers).Error)
	require.Equal(t, int64(4), products)
	require.Equal(t, int64(1), customers)

	// reseeding must not clobber live stock
	require.NoError(t, db.Model(&model.Product{}).
		Where("code = ?", "RNG839201").
		Update("stock", 2).Error)

	require.NoError(t, service.SeedDemoData(db, "admin-1"))

	require.NoError(t, db.Model(&model.Product{}).Count(&products).Error)
	require.Equal(t, int64(4), products)
	require.Equal(t, 2, productStock(t, db, "RNG839201"))
}
