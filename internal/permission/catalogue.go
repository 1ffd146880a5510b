package permission

import (
	"errors"
	"fmt"
	"slices"
)

var (
	ErrUnknownPage   = errors.New("unknown page")
	ErrUnknownAction = errors.New("unknown action")
	ErrDuplicatePage = errors.New("duplicate page in role")
)

// Selection is the state of a page's "select all" checkbox in the role editor.
type Selection string

const (
	SelectionNone    Selection = "none"
	SelectionPartial Selection = "partial"
	SelectionAll     Selection = "all"
)

// Catalogue lists every page and the full set of actions valid on it.
// It is read-only after construction.
type Catalogue struct {
	order []Page
	pages map[Page]ActionSet
}

type Entry struct {
	Page    Page
	Actions []Action
}

func NewCatalogue(entries ...Entry) *Catalogue {
	c := &Catalogue{pages: make(map[Page]ActionSet, len(entries))}
	for _, e := range entries {
		if _, exists := c.pages[e.Page]; !exists {
			c.order = append(c.order, e.Page)
		}
		c.pages[e.Page] = NewActionSet(e.Actions...)
	}
	return c
}

// DefaultCatalogue is the page-permission catalogue of the admin panel.
func DefaultCatalogue() *Catalogue {
	crud := []Action{ActionView, ActionCreate, ActionEdit, ActionDelete}
	return NewCatalogue(
		Entry{Page: PageDashboard, Actions: []Action{ActionView}},
		Entry{Page: PageProduct, Actions: slices.Concat(crud, []Action{ActionStoreAccess})},
		Entry{Page: PageCategory, Actions: crud},
		Entry{Page: PageOrder, Actions: slices.Concat(crud, []Action{ActionStoreAccess})},
		Entry{Page: PagePurchaseOrder, Actions: crud},
		Entry{Page: PageTransaction, Actions: []Action{ActionView}},
		Entry{Page: PageReport, Actions: []Action{ActionView, ActionJobsManagement}},
		Entry{Page: PageChat, Actions: []Action{ActionView, ActionCreate}},
		Entry{Page: PageRole, Actions: crud},
		Entry{Page: PageUser, Actions: crud},
	)
}

// Pages returns the catalogued pages in declaration order.
func (c *Catalogue) Pages() []Page {
	return append([]Page(nil), c.order...)
}

// Actions returns the valid actions for page, sorted.
func (c *Catalogue) Actions(page Page) []Action {
	return c.pages[page].Sorted()
}

func (c *Catalogue) ParsePage(raw string) (Page, error) {
	page := Page(raw)
	if page == PageAll {
		return page, nil
	}
	if _, ok := c.pages[page]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownPage, raw)
	}
	return page, nil
}

// ParseAction validates raw as an action of page.
func (c *Catalogue) ParseAction(page Page, raw string) (Action, error) {
	action := Action(raw)
	if err := c.Check(page, action); err != nil {
		return "", err
	}
	return action, nil
}

// Check validates a (page, action) pair against the catalogue.
func (c *Catalogue) Check(page Page, action Action) error {
	if page == PageAll {
		return nil
	}
	actions, ok := c.pages[page]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownPage, page)
	}
	if !actions.Has(action) {
		return fmt.Errorf("%w: %q on page %q", ErrUnknownAction, action, page)
	}
	return nil
}

// ValidateRole rejects roles that reference pages or actions outside the
// catalogue or carry more than one record for a page.
func (c *Catalogue) ValidateRole(role Role) error {
	seen := make(map[Page]struct{}, len(role.Permissions))
	for _, p := range role.Permissions {
		if _, dup := seen[p.Page]; dup {
			return fmt.Errorf("role %q: %w: %q", role.Name, ErrDuplicatePage, p.Page)
		}
		seen[p.Page] = struct{}{}

		if p.Page == PageAll {
			continue
		}
		for action := range p.Actions {
			if err := c.Check(p.Page, action); err != nil {
				return fmt.Errorf("role %q: %w", role.Name, err)
			}
		}
	}
	return nil
}

// Selection compares granted against everything the page offers.
func (c *Catalogue) Selection(page Page, granted ActionSet) Selection {
	all := c.pages[page]
	held := 0
	for action := range all {
		if granted.Has(action) {
			held++
		}
	}

	switch {
	case held == 0:
		return SelectionNone
	case held == len(all):
		return SelectionAll
	default:
		return SelectionPartial
	}
}
