// Package access holds the static role permission table and the predicate
// that decides whether one role may manage another.
package access

import (
	"errors"
	"fmt"

	"github.com/stemsi/lms-admin-mock/internal/model"
)

var (
	// ErrPermissionDenied is returned by Authorize when the acting role may not
	// manage the target role.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrIncompleteTable is returned by NewGate when a role has no entry.
	ErrIncompleteTable = errors.New("permission table is missing a role")

	// ErrUnknownRole is returned by NewGate when the table names a role that is
	// not part of model.AllRoles.
	ErrUnknownRole = errors.New("permission table names an unknown role")
)

// Table maps an acting role to the roles it may manage.
type Table map[model.Role][]model.Role

// DefaultTable is the permission table shipped with the dashboard.
var DefaultTable = Table{
	model.RoleAdmin: {
		model.RoleAdmin,
		model.RoleSubAdmin,
		model.RoleInstructor,
		model.RoleParent,
		model.RoleStudent,
		model.RoleAffiliate,
	},
	model.RoleSubAdmin: {
		model.RoleInstructor,
		model.RoleParent,
		model.RoleStudent,
		model.RoleAffiliate,
	},
	model.RoleInstructor: {model.RoleStudent},
	model.RoleParent:     {},
	model.RoleStudent:    {},
	model.RoleAffiliate:  {},
}

// Gate answers "may acting manage target" over a fixed Table.
// It is immutable after construction and safe for concurrent use.
type Gate struct {
	sets  map[model.Role]map[model.Role]struct{}
	order map[model.Role][]model.Role
}

// NewGate validates that table has an entry for every role and references
// only known roles, then freezes a copy of it.
func NewGate(table Table) (*Gate, error) {
	g := &Gate{
		sets:  make(map[model.Role]map[model.Role]struct{}, len(model.AllRoles)),
		order: make(map[model.Role][]model.Role, len(model.AllRoles)),
	}

	for acting, targets := range table {
		if !acting.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrUnknownRole, acting)
		}
		set := make(map[model.Role]struct{}, len(targets))
		order := make([]model.Role, 0, len(targets))
		for _, t := range targets {
			if !t.Valid() {
				return nil, fmt.Errorf("%w: %q (managed by %q)", ErrUnknownRole, t, acting)
			}
			if _, dup := set[t]; dup {
				continue
			}
			set[t] = struct{}{}
			order = append(order, t)
		}
		g.sets[acting] = set
		g.order[acting] = order
	}

	for _, r := range model.AllRoles {
		if _, ok := g.sets[r]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrIncompleteTable, r)
		}
	}

	return g, nil
}

// Default returns a gate over DefaultTable.
func Default() *Gate {
	g, err := NewGate(DefaultTable)
	if err != nil {
		panic(fmt.Sprintf("access: default table invalid: %v", err))
	}
	return g
}

// CanManage reports whether acting may edit or delete a user holding target.
// A role with no entry has no permissions.
func (g *Gate) CanManage(acting, target model.Role) bool {
	set, ok := g.sets[acting]
	if !ok {
		return false
	}
	_, ok = set[target]
	return ok
}

// Authorize is CanManage as an error, for the enforcement point.
func (g *Gate) Authorize(acting, target model.Role) error {
	if g.CanManage(acting, target) {
		return nil
	}
	return fmt.Errorf("%w: %q cannot manage %q", ErrPermissionDenied, acting, target)
}

// AuthorizeAny fails when acting may manage no role at all. Callers run it
// before looking a target up, so such roles cannot learn which ids exist.
func (g *Gate) AuthorizeAny(acting model.Role) error {
	if len(g.order[acting]) > 0 {
		return nil
	}
	return fmt.Errorf("%w: %q manages no roles", ErrPermissionDenied, acting)
}

// Manageable returns the roles acting may manage.
func (g *Gate) Manageable(acting model.Role) []model.Role {
	order := g.order[acting]
	out := make([]model.Role, len(order))
	copy(out, order)
	return out
}

// Table returns a copy of the frozen table.
func (g *Gate) Table() Table {
	out := make(Table, len(g.order))
	for acting := range g.order {
		out[acting] = g.Manageable(acting)
	}
	return out
}
