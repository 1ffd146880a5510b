package service

import (
	"cmp"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"go-admin-panel/internal/model"
	"go-admin-panel/internal/permission"
	"go-admin-panel/pkg/apierror"
)

// Account is a backend user together with its password hash.
type Account struct {
	User         model.User
	PasswordHash string
}

// Resource is a collection the development backend serves, with the page
// whose view permission guards it.
type Resource struct {
	Name  string
	Page  permission.Page
	Items []map[string]any
}

// CatalogService is the data the development backend serves: accounts,
// roles and a handful of read-only collections.
type CatalogService struct {
	mu        sync.RWMutex
	accounts  map[int64]Account
	byEmail   map[string]int64
	roles     map[int64]permission.Role
	resources map[string]Resource
}

type SeedUser struct {
	ID       int64
	Name     string
	Email    string
	Password string
	RoleID   int64
}

// NewCatalogService hashes the seed users' passwords with cost and indexes
// everything. Every role must fit catalogue.
func NewCatalogService(catalogue *permission.Catalogue, roles []permission.Role, users []SeedUser, resources []Resource, cost int) (*CatalogService, error) {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}

	s := &CatalogService{
		accounts:  make(map[int64]Account, len(users)),
		byEmail:   make(map[string]int64, len(users)),
		roles:     make(map[int64]permission.Role, len(roles)),
		resources: make(map[string]Resource, len(resources)),
	}

	for _, role := range roles {
		if err := catalogue.ValidateRole(role); err != nil {
			return nil, err
		}
		s.roles[role.ID] = role
	}

	for _, u := range users {
		role, ok := s.roles[u.RoleID]
		if !ok {
			return nil, apierror.New("BAD_REQUEST", "seed user references unknown role", strconv.FormatInt(u.RoleID, 10), http.StatusBadRequest)
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), cost)
		if err != nil {
			return nil, err
		}

		email := strings.ToLower(strings.TrimSpace(u.Email))
		s.accounts[u.ID] = Account{
			User:         model.User{ID: u.ID, Name: u.Name, Email: email, Role: role.Name, RoleID: role.ID},
			PasswordHash: string(hash),
		}
		s.byEmail[email] = u.ID
	}

	for _, r := range resources {
		s.resources[r.Name] = r
	}

	return s, nil
}

func (s *CatalogService) AccountByEmail(email string) (Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return Account{}, model.ErrNotFound
	}
	return s.accounts[id], nil
}

func (s *CatalogService) UserByID(id int64) (model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.accounts[id]
	if !ok {
		return model.User{}, apierror.New("NOT_FOUND", "user not found", strconv.FormatInt(id, 10), http.StatusNotFound)
	}
	return account.User, nil
}

func (s *CatalogService) ListUsers() []model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]model.User, 0, len(s.accounts))
	for _, a := range s.accounts {
		users = append(users, a.User)
	}
	slices.SortFunc(users, func(a, b model.User) int { return cmp.Compare(a.ID, b.ID) })
	return users
}

func (s *CatalogService) RoleByID(id int64) (permission.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	role, ok := s.roles[id]
	if !ok {
		return permission.Role{}, apierror.New("NOT_FOUND", "role not found", strconv.FormatInt(id, 10), http.StatusNotFound)
	}
	return role, nil
}

func (s *CatalogService) ListRoles() []permission.Role {
	s.mu.RLock()
	defer s.mu.RUnlock()

	roles := make([]permission.Role, 0, len(s.roles))
	for _, r := range s.roles {
		roles = append(roles, r)
	}
	slices.SortFunc(roles, func(a, b permission.Role) int { return a.RoleNumber - b.RoleNumber })
	return roles
}

func (s *CatalogService) Resource(name string) (Resource, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.resources[name]
	return r, ok
}

// Resources returns every served collection, sorted by name.
func (s *CatalogService) Resources() []Resource {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Resource, 0, len(s.resources))
	for _, r := range s.resources {
		out = append(out, r)
	}
	slices.SortFunc(out, func(a, b Resource) int { return strings.Compare(a.Name, b.Name) })
	return out
}

// Page returns one page of a collection's items. page is 1-based.
func (s *CatalogService) Page(name string, page int, limit int) ([]map[string]any, model.Meta, error) {
	r, ok := s.Resource(name)
	if !ok {
		return nil, model.Meta{}, apierror.New("NOT_FOUND", "resource not found", name, http.StatusNotFound)
	}

	if limit <= 0 {
		limit = 20
	}
	if page <= 0 {
		page = 1
	}

	total := len(r.Items)
	start := min((page-1)*limit, total)
	end := min(start+limit, total)

	return r.Items[start:end], model.Meta{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: (total + limit - 1) / limit,
	}, nil
}
