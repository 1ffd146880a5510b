package service

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"go-admin-panel/internal/permission"
	"go-admin-panel/pkg/apierror"
)

func TestCatalogService_Lookups(t *testing.T) {
	t.Parallel()

	catalog := newTestCatalog(t)

	user, err := catalog.UserByID(2)
	require.NoError(t, err)
	require.Equal(t, "Buyer", user.Role)
	require.Equal(t, int64(2), user.RoleID)

	_, err = catalog.UserByID(404)
	require.Equal(t, 404, apierror.StatusOf(err))

	role, err := catalog.RoleByID(1)
	require.NoError(t, err)
	require.True(t, role.Allows(permission.PageChat, permission.ActionView))

	roles := catalog.ListRoles()
	require.Len(t, roles, 4)
	require.Equal(t, "Admin", roles[0].Name)

	users := catalog.ListUsers()
	require.Len(t, users, 4)
	require.Equal(t, int64(1), users[0].ID)
}

func TestCatalogService_RejectsRolesOutsideCatalogue(t *testing.T) {
	t.Parallel()

	bad := []permission.Role{{ID: 9, Name: "Bad", Permissions: []permission.Permission{
		{Page: permission.PageTransaction, Actions: permission.NewActionSet(permission.ActionDelete)},
	}}}

	_, err := NewCatalogService(permission.DefaultCatalogue(), bad, nil, nil, bcrypt.MinCost)
	require.ErrorIs(t, err, permission.ErrUnknownAction)
}

func TestCatalogService_Page(t *testing.T) {
	t.Parallel()

	catalog := newTestCatalog(t)

	items, meta, err := catalog.Page("products", 2, 2)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, 3, meta.Total)
	require.Equal(t, 2, meta.TotalPages)

	items, _, err = catalog.Page("products", 5, 2)
	require.NoError(t, err)
	require.Empty(t, items)

	_, _, err = catalog.Page("warehouses", 1, 10)
	require.Equal(t, 404, apierror.StatusOf(err))
}
