package service

import "go-admin-panel/internal/permission"

func actions(a ...permission.Action) permission.ActionSet {
	return permission.NewActionSet(a...)
}

// SeedRoles are the roles of the development backend.
func SeedRoles() []permission.Role {
	return []permission.Role{
		{
			ID: 1, Name: "Admin", Active: true, RoleNumber: 1,
			Permissions: []permission.Permission{{Page: permission.PageAll, Actions: actions()}},
		},
		{
			ID: 2, Name: "Buyer", Active: true, RoleNumber: 2,
			Permissions: []permission.Permission{
				{Page: permission.PagePurchaseOrder, Actions: actions(permission.ActionView)},
			},
		},
		{
			ID: 3, Name: "Store Manager", Active: true, RoleNumber: 3,
			Permissions: []permission.Permission{
				{Page: permission.PageDashboard, Actions: actions(permission.ActionView)},
				{Page: permission.PageProduct, Actions: actions(permission.ActionView, permission.ActionCreate, permission.ActionEdit, permission.ActionDelete, permission.ActionStoreAccess)},
				{Page: permission.PageCategory, Actions: actions(permission.ActionView)},
				{Page: permission.PageOrder, Actions: actions(permission.ActionView, permission.ActionEdit)},
				{Page: permission.PageReport, Actions: actions(permission.ActionView)},
			},
		},
		{
			ID: 4, Name: "Support", Active: true, RoleNumber: 4,
			Permissions: []permission.Permission{
				{Page: permission.PageChat, Actions: actions(permission.ActionView, permission.ActionCreate)},
				{Page: permission.PageOrder, Actions: actions(permission.ActionView)},
				{Page: permission.PageUser, Actions: actions(permission.ActionView)},
			},
		},
	}
}

// SeedUsers are the development accounts. Passwords are for local use only.
func SeedUsers() []SeedUser {
	return []SeedUser{
		{ID: 1, Name: "Admin", Email: "admin@example.com", Password: "admin123", RoleID: 1},
		{ID: 2, Name: "Bo Buyer", Email: "buyer@example.com", Password: "buyer123", RoleID: 2},
		{ID: 3, Name: "Mia Manager", Email: "manager@example.com", Password: "manager123", RoleID: 3},
		{ID: 4, Name: "Sam Support", Email: "support@example.com", Password: "support123", RoleID: 4},
	}
}

// SeedResources are the collections behind the admin screens.
func SeedResources() []Resource {
	return []Resource{
		{Name: "dashboard", Page: permission.PageDashboard, Items: []map[string]any{
			{"metric": "orders_today", "value": 42},
			{"metric": "revenue_today", "value": 1830.5},
		}},
		{Name: "products", Page: permission.PageProduct, Items: []map[string]any{
			{"id": 1, "name": "Green Tea", "price": 4.5, "categoryId": 1},
			{"id": 2, "name": "Oolong", "price": 7.25, "categoryId": 1},
			{"id": 3, "name": "Teapot", "price": 29.0, "categoryId": 2},
		}},
		{Name: "categories", Page: permission.PageCategory, Items: []map[string]any{
			{"id": 1, "name": "Tea"},
			{"id": 2, "name": "Accessories"},
		}},
		{Name: "orders", Page: permission.PageOrder, Items: []map[string]any{
			{"id": 1001, "status": "paid", "total": 16.25},
			{"id": 1002, "status": "shipped", "total": 29.0},
		}},
		{Name: "purchase-orders", Page: permission.PagePurchaseOrder, Items: []map[string]any{
			{"id": 501, "supplier": "Leaf Co", "status": "open"},
		}},
		{Name: "transactions", Page: permission.PageTransaction, Items: []map[string]any{
			{"id": "tx-1", "orderId": 1001, "amount": 16.25},
		}},
		{Name: "reports", Page: permission.PageReport, Items: []map[string]any{
			{"id": "sales-weekly", "name": "Weekly sales"},
		}},
		{Name: "chats", Page: permission.PageChat, Items: []map[string]any{
			{"id": 1, "customer": "jo@example.com", "unread": 2},
		}},
	}
}
