package service

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"go-giftshop-pos/internal/model"
)

func TestLockForUpdateEmitsRowLock(t *testing.T) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=pos dbname=pos",
	}), &gorm.Config{DryRun: true, DisableAutomaticPing: true})
	require.NoError(t, err)

	locked := lockForUpdate(db).Find(&model.Product{}, "code = ?", "RNG1").Statement
	require.Contains(t, locked.SQL.String(), "FOR UPDATE")

	plain := db.Session(&gorm.Session{NewDB: true}).Find(&model.Product{}, "code = ?", "RNG1").Statement
	require.NotContains(t, plain.SQL.String(), "FOR UPDATE")
}
