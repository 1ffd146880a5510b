// Package permission holds the page/action grant model used to decide what
// the signed-in operator may see and do in the admin panel.
package permission

import (
	"encoding/json"
	"slices"
)

// Page identifies a screen or resource. Values are compared exactly,
// case included.
type Page string

// Action is a capability on a page.
type Action string

const (
	// PageAll grants every page regardless of the requested action.
	PageAll Page = "all"

	PageDashboard     Page = "Dashboard"
	PageProduct       Page = "Product"
	PageCategory      Page = "Category"
	PageOrder         Page = "Order"
	PagePurchaseOrder Page = "PurchaseOrder"
	PageTransaction   Page = "Transaction"
	PageReport        Page = "Report"
	PageChat          Page = "Chat"
	PageRole          Page = "role"
	PageUser          Page = "user"
)

const (
	ActionView           Action = "view"
	ActionCreate         Action = "create"
	ActionEdit           Action = "edit"
	ActionDelete         Action = "delete"
	ActionStoreAccess    Action = "store_access"
	ActionJobsManagement Action = "jobs_management"
)

// ActionSet is an unordered set of actions. It travels as a JSON array.
type ActionSet map[Action]struct{}

func NewActionSet(actions ...Action) ActionSet {
	set := make(ActionSet, len(actions))
	for _, a := range actions {
		set[a] = struct{}{}
	}
	return set
}

func (s ActionSet) Has(action Action) bool {
	_, ok := s[action]
	return ok
}

// Sorted returns the members in lexical order.
func (s ActionSet) Sorted() []Action {
	out := make([]Action, 0, len(s))
	for a := range s {
		out = append(out, a)
	}
	slices.Sort(out)
	return out
}

func (s ActionSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

func (s *ActionSet) UnmarshalJSON(data []byte) error {
	var raw []Action
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = NewActionSet(raw...)
	return nil
}

// Permission is one grant record of a role.
type Permission struct {
	Page    Page      `json:"page"`
	Actions ActionSet `json:"actions"`
}

// Role is a named bundle of permissions, unique by page.
type Role struct {
	ID          int64        `json:"id"`
	Name        string       `json:"name"`
	Active      bool         `json:"active"`
	RoleNumber  int          `json:"roleNumber"`
	Permissions []Permission `json:"permissions"`
}

// Allows reports whether the role grants action on page. A record for
// PageAll grants everything.
func (r Role) Allows(page Page, action Action) bool {
	var match *Permission
	for i := range r.Permissions {
		p := &r.Permissions[i]
		if p.Page == PageAll {
			return true
		}
		if p.Page == page && match == nil {
			match = p
		}
	}

	if match == nil {
		return false
	}
	return match.Actions.Has(action)
}

// Granted returns the actions the role holds on page, or nil.
func (r Role) Granted(page Page) ActionSet {
	for _, p := range r.Permissions {
		if p.Page == page {
			return p.Actions
		}
	}
	return nil
}
