package service_test

import (
	"context"
	"testing"

	"github.com/Sudarsan9786/nool-erp/internal/jobwork/entity"
	"github.com/Sudarsan9786/nool-erp/internal/jobwork/service"
	"github.com/Sudarsan9786/nool-erp/internal/jobwork/testutil"
	"github.com/Sudarsan9786/nool-erp/internal/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	env := testutil.SetupServices(t, testutil.TestDeps())
	ctx := context.Background()

	session, err := env.Services.Auth.Register(ctx, service.RegisterInput{
		Name: "First Admin", Email: " Admin@Nool.com", Password: "secret1", Role: entity.RoleAdmin,
	})
	require.NoError(t, err)
	assert.Equal(t, "admin@nool.com", session.User.Email)
	assert.NotEmpty(t, session.Token)
	assert.EqualValues(t, 86400, session.ExpiresIn)

	claims := &middleware.JWTClaims{}
	_, err = jwt.ParseWithClaims(session.Token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(testutil.JWTSecret), nil
	})
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, claims.UserID)
	assert.Equal(t, entity.RoleAdmin, claims.Role)
	assert.Equal(t, "nool-erp", claims.Issuer)

	_, err = env.Services.Auth.Register(ctx, service.RegisterInput{
		Name: "Second Admin", Email: "other@nool.com", Password: "secret1", Role: entity.RoleAdmin,
	})
	assert.ErrorIs(t, err, service.ErrForbidden)

	_, err = env.Services.Auth.Register(ctx, service.RegisterInput{
		Name: "Dup", Email: "admin@nool.com", Password: "secret1",
	})
	assert.ErrorIs(t, err, service.ErrConflict)

	sup, err := env.Services.Auth.Register(ctx, service.RegisterInput{
		Name: "Sup", Email: "sup@nool.com", Password: "secret1",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleSupervisor, sup.User.Role)

	logged, err := env.Services.Auth.Login(ctx, service.LoginInput{Email: "ADMIN@nool.com", Password: "secret1"})
	require.NoError(t, err)
	assert.NotNil(t, logged.User.LastLoginAt)

	_, err = env.Services.Auth.Login(ctx, service.LoginInput{Email: "admin@nool.com", Password: "wrong"})
	assert.ErrorIs(t, err, service.ErrUnauthorized)
	_, err = env.Services.Auth.Login(ctx, service.LoginInput{Email: "nobody@nool.com", Password: "secret1"})
	assert.ErrorIs(t, err, service.ErrUnauthorized)
	_, err = env.Services.Auth.Login(ctx, service.LoginInput{Email: "", Password: ""})
	assert.ErrorIs(t, err, service.ErrValidation)

	me, err := env.Services.Auth.Me(ctx, session.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "First Admin", me.Name)
}

func TestRegisterValidation(t *testing.T) {
	env := testutil.SetupServices(t, testutil.TestDeps())
	ctx := context.Background()

	tests := []struct {
		name string
		in   service.RegisterInput
		kind error
	}{
		{"missing fields", service.RegisterInput{Email: "a@b.com"}, service.ErrValidation},
		{"bad email", service.RegisterInput{Name: "Ann", Email: "nope", Password: "secret1"}, service.ErrValidation},
		{"short password", service.RegisterInput{Name: "Ann", Email: "a@b.com", Password: "123"}, service.ErrValidation},
		{"unknown role", service.RegisterInput{Name: "Ann", Email: "a@b.com", Password: "secret1", Role: "Owner"}, service.ErrValidation},
		{"vendor without vendor", service.RegisterInput{Name: "Ann", Email: "a@b.com", Password: "secret1", Role: entity.RoleVendor}, service.ErrValidation},
		{"vendor missing", service.RegisterInput{Name: "Ann", Email: "a@b.com", Password: "secret1", Role: entity.RoleVendor, VendorID: "missing"}, service.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.Services.Auth.Register(ctx, tt.in)
			assert.ErrorIs(t, err, tt.kind)
		})
	}
}

func TestLoginAccountState(t *testing.T) {
	env := testutil.SetupServices(t, testutil.TestDeps())
	ctx := context.Background()

	inactive := testutil.SeedUser(t, env.DB, "off@nool.com", "secret1", entity.RoleSupervisor, nil)
	require.NoError(t, env.DB.Model(&entity.User{}).Where("id = ?", inactive.ID).Update("is_active", false).Error)
	_, err := env.Services.Auth.Login(ctx, service.LoginInput{Email: "off@nool.com", Password: "secret1"})
	assert.ErrorIs(t, err, service.ErrUnauthorized)

	testutil.SeedUser(t, env.DB, "loose@nool.com", "secret1", entity.RoleVendor, nil)
	_, err = env.Services.Auth.Login(ctx, service.LoginInput{Email: "loose@nool.com", Password: "secret1"})
	assert.ErrorIs(t, err, service.ErrForbidden)

	vendor := testutil.SeedVendor(t, env.DB, "ABC Dyeing Works", "", entity.JobWorkDyeing)
	testutil.SeedUser(t, env.DB, "vendor@nool.com", "secret1", entity.RoleVendor, &vendor.ID)
	session, err := env.Services.Auth.Login(ctx, service.LoginInput{Email: "vendor@nool.com", Password: "secret1"})
	require.NoError(t, err)
	require.NotNil(t, session.User.Vendor)
	assert.Equal(t, vendor.Name, session.User.Vendor.Name)
}

func TestUserUpdateAndDelete(t *testing.T) {
	env := testutil.SetupServices(t, testutil.TestDeps())
	ctx := context.Background()
	admin := testutil.SeedUser(t, env.DB, "admin@nool.com", "secret1", entity.RoleAdmin, nil)
	user := testutil.SeedUser(t, env.DB, "sup@nool.com", "secret1", entity.RoleSupervisor, nil)
	vendor := testutil.SeedVendor(t, env.DB, "ABC Dyeing Works", "", entity.JobWorkDyeing)

	role := entity.RoleVendor
	_, err := env.Services.User.Update(ctx, user.ID, service.UpdateUserInput{Role: &role})
	assert.ErrorIs(t, err, service.ErrValidation)

	updated, err := env.Services.User.Update(ctx, user.ID, service.UpdateUserInput{Role: &role, VendorID: &vendor.ID})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleVendor, updated.Role)
	require.NotNil(t, updated.VendorID)
	assert.Equal(t, vendor.ID, *updated.VendorID)

	back := entity.RoleSupervisor
	off := false
	updated, err = env.Services.User.Update(ctx, user.ID, service.UpdateUserInput{Role: &back, IsActive: &off})
	require.NoError(t, err)
	assert.Nil(t, updated.VendorID)
	assert.False(t, updated.IsActive)

	users, total, err := env.Services.User.List(ctx, service.UserFilter{IsActive: &off})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, user.ID, users[0].ID)

	caller := service.Caller{UserID: admin.ID, Role: entity.RoleAdmin}
	assert.ErrorIs(t, env.Services.User.Delete(ctx, caller, admin.ID), service.ErrBusinessRule)
	require.NoError(t, env.Services.User.Delete(ctx, caller, user.ID))
	assert.ErrorIs(t, env.Services.User.Delete(ctx, caller, user.ID), service.ErrNotFound)
}

func TestSeedAll(t *testing.T) {
	env := testutil.SetupServices(t, testutil.TestDeps())
	ctx := context.Background()

	report, err := env.Services.Seed.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, 6, report.Vendors)
	assert.Equal(t, 8, report.Materials)
	assert.Equal(t, 3, report.Users)

	session, err := env.Services.Auth.Login(ctx, service.LoginInput{Email: "vendor@nool.com", Password: "vendor123"})
	require.NoError(t, err)
	require.NotNil(t, session.User.Vendor)
	assert.Equal(t, "ABC Dyeing Works", session.User.Vendor.Name)

	report, err = env.Services.Seed.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, service.SeedReport{}, report)
}
