package service_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"go-giftshop-pos/internal/model"
	"go-giftshop-pos/internal/repository"
	"go-giftshop-pos/internal/service"
	"go-giftshop-pos/pkg/jwt"
)

func authFixture(t *testing.T) (service.AuthService, *gorm.DB) {
	t.Helper()
	db := memdb(t)

	user := &model.User{
		Email:    "cashier@example.com",
		FullName: "Test Cashier",
		Role:     model.RoleCashier,
		IsActive: true,
	}
	require.NoError(t, user.SetPassword("letmein123"))
	require.NoError(t, db.Create(user).Error)

	return service.NewAuthService(repository.NewUserRepo(db)), db
}

func TestLogin(t *testing.T) {
	svc, db := authFixture(t)

	resp, err := svc.Login("cashier@example.com", "letmein123")
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)
	require.Equal(t, "cashier@example.com", resp.User.Email)
	require.Equal(t, model.RoleCashier, resp.User.Role)

	var stored model.User
	require.NoError(t, db.First(&stored, "email = ?", "cashier@example.com").Error)
	require.NotEmpty(t, stored.TokenVersion)
	require.NotNil(t, stored.LastLoginAt)
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, _ := authFixture(t)
	_, err := svc.Login("cashier@example.com", "wrong")
	require.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestLogin_UnknownEmail(t *testing.T) {
	svc, _ := authFixture(t)
	_, err := svc.Login("nobody@example.com", "letmein123")
	require.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestLogin_InactiveAccount(t *testing.T) {
	svc, db := authFixture(t)
	require.NoError(t, db.Model(&model.User{}).
		Where("email = ?", "cashier@example.com").
		Update("is_active", false).Error)

	_, err := svc.Login("cashier@example.com", "letmein123")
	require.ErrorIs(t, err, service.ErrUserInactive)
}

func TestLogin_NewSessionInvalidatesOldToken(t *testing.T) {
	svc, _ := authFixture(t)

	first, err := svc.Login("cashier@example.com", "letmein123")
	require.NoError(t, err)

	_, err = svc.ValidateToken(first.Token)
	require.NoError(t, err)

	// a second login rotates the token version
	_, err = svc.Login("cashier@example.com", "letmein123")
	require.NoError(t, err)

	_, err = svc.ValidateToken(first.Token)
	require.ErrorIs(t, err, jwt.ErrInvalidToken)
}

func TestValidateToken_Garbage(t *testing.T) {
	svc, _ := authFixture(t)
	_, err := svc.ValidateToken("not-a-token")
	require.ErrorIs(t, err, jwt.ErrInvalidToken)
}

func TestResetPassword(t *testing.T) {
	svc, _ := authFixture(t)

	require.NoError(t, svc.ResetPassword("cashier@example.com", "letmein123", "newpass456"))

	_, err := svc.Login("cashier@example.com", "letmein123")
	require.ErrorIs(t, err, service.ErrInvalidCredentials)

	_, err = svc.Login("cashier@example.com", "newpass456")
	require.NoError(t, err)
}

func TestResetPassword_WrongCurrent(t *testing.T) {
	svc, _ := authFixture(t)
	err := svc.ResetPassword("cashier@example.com", "nope", "newpass456")
	require.ErrorIs(t, err, service.ErrWrongPassword)
}
