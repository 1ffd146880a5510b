package permission

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticSource struct {
	role Role
	ok   bool
}

func (s staticSource) CurrentRole() (Role, bool) {
	return s.role, s.ok
}

func roleWith(perms ...Permission) Role {
	return Role{ID: 1, Name: "test", Active: true, Permissions: perms}
}

func TestHasRequiredPermission_DeniesWithoutOperator(t *testing.T) {
	t.Parallel()

	var nilModel *Model
	models := []*Model{
		nilModel,
		NewModel(nil),
		NewModel(staticSource{role: roleWith(Permission{Page: PageAll}), ok: false}),
	}

	for _, m := range models {
		for _, page := range DefaultCatalogue().Pages() {
			for _, action := range DefaultCatalogue().Actions(page) {
				assert.False(t, m.HasRequiredPermission(page, action), "%s:%s", page, action)
			}
		}
	}
}

func TestHasRequiredPermission_ExactMatch(t *testing.T) {
	t.Parallel()

	m := NewModel(staticSource{ok: true, role: roleWith(
		Permission{Page: PagePurchaseOrder, Actions: NewActionSet(ActionView)},
		Permission{Page: PageRole, Actions: NewActionSet(ActionView, ActionEdit)},
	)})

	cases := []struct {
		name   string
		page   Page
		action Action
		want   bool
	}{
		{"granted view", PagePurchaseOrder, ActionView, true},
		{"missing create", PagePurchaseOrder, ActionCreate, false},
		{"second record", PageRole, ActionEdit, true},
		{"page not granted", PageUser, ActionView, false},
		{"case sensitive page", Page("purchaseorder"), ActionView, false},
		{"empty action defaults to view", PagePurchaseOrder, "", true},
		{"empty action on missing page", PageChat, "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, m.HasRequiredPermission(tc.page, tc.action))
		})
	}
}

func TestHasRequiredPermission_AllPageGrantsEverything(t *testing.T) {
	t.Parallel()

	m := NewModel(staticSource{ok: true, role: roleWith(
		Permission{Page: PageProduct, Actions: NewActionSet()},
		Permission{Page: PageAll, Actions: NewActionSet()},
	)})

	require.True(t, m.HasRequiredPermission(PageChat, ActionView))
	require.True(t, m.HasRequiredPermission(PageProduct, ActionDelete))
	require.True(t, m.HasRequiredPermission(PageUser, ActionJobsManagement))
}

func TestHasSomePermissionsForPage(t *testing.T) {
	t.Parallel()

	m := NewModel(staticSource{ok: true, role: roleWith(
		Permission{Page: PageProduct, Actions: NewActionSet(ActionEdit)},
	)})

	assert.True(t, m.HasSomePermissionsForPage(PageProduct, ActionDelete, ActionEdit))
	assert.False(t, m.HasSomePermissionsForPage(PageProduct, ActionDelete, ActionCreate))
	assert.False(t, m.HasSomePermissionsForPage(PageProduct))
	assert.False(t, m.HasSomePermissionsForPage(PageOrder, ActionEdit))
}

func TestRoleJSON_ActionsAreASet(t *testing.T) {
	t.Parallel()

	raw := `{"id":7,"name":"Buyer","active":true,"roleNumber":3,
		"permissions":[{"page":"PurchaseOrder","actions":["view","create","view"]}]}`

	var role Role
	require.NoError(t, json.Unmarshal([]byte(raw), &role))
	require.Len(t, role.Permissions, 1)
	assert.Equal(t, []Action{ActionCreate, ActionView}, role.Permissions[0].Actions.Sorted())
	assert.True(t, role.Allows(PagePurchaseOrder, ActionCreate))
	assert.Equal(t, 3, role.RoleNumber)
}

func TestCatalogue_ValidateRole(t *testing.T) {
	t.Parallel()

	c := DefaultCatalogue()

	t.Run("accepts catalogued grants", func(t *testing.T) {
		role := roleWith(
			Permission{Page: PageProduct, Actions: NewActionSet(ActionView, ActionStoreAccess)},
			Permission{Page: PageAll, Actions: NewActionSet("anything")},
		)
		require.NoError(t, c.ValidateRole(role))
	})

	t.Run("rejects unknown page", func(t *testing.T) {
		role := roleWith(Permission{Page: "Warehouse", Actions: NewActionSet(ActionView)})
		require.ErrorIs(t, c.ValidateRole(role), ErrUnknownPage)
	})

	t.Run("rejects unknown action", func(t *testing.T) {
		role := roleWith(Permission{Page: PageTransaction, Actions: NewActionSet(ActionDelete)})
		require.ErrorIs(t, c.ValidateRole(role), ErrUnknownAction)
	})

	t.Run("rejects duplicate page", func(t *testing.T) {
		role := roleWith(
			Permission{Page: PageUser, Actions: NewActionSet(ActionView)},
			Permission{Page: PageUser, Actions: NewActionSet(ActionEdit)},
		)
		require.ErrorIs(t, c.ValidateRole(role), ErrDuplicatePage)
	})
}

func TestCatalogue_ParseAndSelection(t *testing.T) {
	t.Parallel()

	c := DefaultCatalogue()

	page, err := c.ParsePage("PurchaseOrder")
	require.NoError(t, err)
	assert.Equal(t, PagePurchaseOrder, page)

	_, err = c.ParsePage("purchaseOrder")
	require.ErrorIs(t, err, ErrUnknownPage)

	_, err = c.ParseAction(PageReport, "jobs_management")
	require.NoError(t, err)
	_, err = c.ParseAction(PageReport, "delete")
	require.ErrorIs(t, err, ErrUnknownAction)

	assert.Equal(t, SelectionNone, c.Selection(PageRole, nil))
	assert.Equal(t, SelectionPartial, c.Selection(PageRole, NewActionSet(ActionView)))
	assert.Equal(t, SelectionAll, c.Selection(PageRole, NewActionSet(ActionView, ActionCreate, ActionEdit, ActionDelete)))
	assert.Equal(t, []Action{ActionCreate, ActionDelete, ActionEdit, ActionStoreAccess, ActionView}, c.Actions(PageProduct))
}
