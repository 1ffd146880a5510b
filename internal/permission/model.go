package permission

// RoleSource supplies the role of the currently resolved operator.
type RoleSource interface {
	CurrentRole() (Role, bool)
}

// Model answers permission questions for the current operator. It denies
// everything while no operator is resolved.
type Model struct {
	source RoleSource
}

func NewModel(source RoleSource) *Model {
	return &Model{source: source}
}

// HasRequiredPermission reports whether the operator may perform action on
// page. An empty action means ActionView.
func (m *Model) HasRequiredPermission(page Page, action Action) bool {
	if m == nil || m.source == nil {
		return false
	}

	role, ok := m.source.CurrentRole()
	if !ok {
		return false
	}

	if action == "" {
		action = ActionView
	}

	return role.Allows(page, action)
}

// HasSomePermissionsForPage reports whether at least one of actions is
// allowed on page.
func (m *Model) HasSomePermissionsForPage(page Page, actions ...Action) bool {
	for _, action := range actions {
		if m.HasRequiredPermission(page, action) {
			return true
		}
	}
	return false
}
