package access

import (
	"errors"
	"testing"

	"github.com/stemsi/lms-admin-mock/internal/model"
)

func TestGate_CanManage_SelfEntriesMatchTable(t *testing.T) {
	g := Default()

	for _, r := range model.AllRoles {
		want := false
		for _, target := range DefaultTable[r] {
			if target == r {
				want = true
			}
		}
		if got := g.CanManage(r, r); got != want {
			t.Errorf("CanManage(%q, %q) = %v, want %v", r, r, got, want)
		}
	}

	if !g.CanManage(model.RoleAdmin, model.RoleAdmin) {
		t.Error("admin should manage admin")
	}
	if g.CanManage(model.RoleStudent, model.RoleStudent) {
		t.Error("student should not manage student")
	}
}

func TestGate_CanManage(t *testing.T) {
	g := Default()

	tests := []struct {
		name   string
		acting model.Role
		target model.Role
		want   bool
	}{
		{name: "admin manages sub admin", acting: model.RoleAdmin, target: model.RoleSubAdmin, want: true},
		{name: "sub admin manages student", acting: model.RoleSubAdmin, target: model.RoleStudent, want: true},
		{name: "sub admin cannot manage admin", acting: model.RoleSubAdmin, target: model.RoleAdmin},
		{name: "sub admin cannot manage sub admin", acting: model.RoleSubAdmin, target: model.RoleSubAdmin},
		{name: "instructor manages student", acting: model.RoleInstructor, target: model.RoleStudent, want: true},
		{name: "instructor cannot manage parent", acting: model.RoleInstructor, target: model.RoleParent},
		{name: "parent manages nobody", acting: model.RoleParent, target: model.RoleStudent},
		{name: "affiliate manages nobody", acting: model.RoleAffiliate, target: model.RoleAffiliate},
		{name: "unknown acting role", acting: model.Role("superuser"), target: model.RoleStudent},
		{name: "empty acting role", acting: "", target: model.RoleStudent},
		{name: "unknown target role", acting: model.RoleAdmin, target: model.Role("ghost")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.CanManage(tt.acting, tt.target); got != tt.want {
				t.Errorf("CanManage(%q, %q) = %v, want %v", tt.acting, tt.target, got, tt.want)
			}
		})
	}
}

func TestGate_UnknownActingRoleDeniesEverything(t *testing.T) {
	g := Default()
	unknown := model.Role("future_role")

	targets := make([]model.Role, 0, len(model.AllRoles)+1)
	targets = append(targets, model.AllRoles...)
	targets = append(targets, unknown)

	for _, target := range targets {
		if g.CanManage(unknown, target) {
			t.Errorf("CanManage(%q, %q) = true, want false", unknown, target)
		}
	}
}

func TestGate_Authorize(t *testing.T) {
	g := Default()

	if err := g.Authorize(model.RoleAdmin, model.RoleStudent); err != nil {
		t.Fatalf("Authorize(admin, student) error = %v", err)
	}
	err := g.Authorize(model.RoleStudent, model.RoleAdmin)
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("Authorize(student, admin) error = %v, want ErrPermissionDenied", err)
	}
}

func TestGate_AuthorizeAny(t *testing.T) {
	g := Default()

	for _, r := range append(append([]model.Role{}, model.AllRoles...), "janitor") {
		err := g.AuthorizeAny(r)
		if want := len(g.Manageable(r)) > 0; (err == nil) != want {
			t.Errorf("AuthorizeAny(%q) error = %v, want allowed %v", r, err, want)
		}
		if err != nil && !errors.Is(err, ErrPermissionDenied) {
			t.Errorf("AuthorizeAny(%q) error = %v, want ErrPermissionDenied", r, err)
		}
	}
}

func TestNewGate(t *testing.T) {
	complete := func() Table {
		tbl := Table{}
		for _, r := range model.AllRoles {
			tbl[r] = nil
		}
		return tbl
	}

	missing := complete()
	delete(missing, model.RoleAffiliate)

	unknownKey := complete()
	unknownKey[model.Role("root")] = nil

	unknownTarget := complete()
	unknownTarget[model.RoleAdmin] = []model.Role{"root"}

	tests := []struct {
		name    string
		table   Table
		wantErr error
	}{
		{name: "default", table: DefaultTable},
		{name: "all empty", table: complete()},
		{name: "missing role", table: missing, wantErr: ErrIncompleteTable},
		{name: "unknown acting role", table: unknownKey, wantErr: ErrUnknownRole},
		{name: "unknown target role", table: unknownTarget, wantErr: ErrUnknownRole},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGate(tt.table)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("NewGate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGate_IsolatedFromCallerTable(t *testing.T) {
	tbl := Table{}
	for _, r := range model.AllRoles {
		tbl[r] = nil
	}
	tbl[model.RoleParent] = []model.Role{model.RoleStudent}

	g, err := NewGate(tbl)
	if err != nil {
		t.Fatalf("NewGate() error = %v", err)
	}

	tbl[model.RoleParent][0] = model.RoleAdmin
	if g.CanManage(model.RoleParent, model.RoleAdmin) {
		t.Error("gate changed after caller mutated its table")
	}

	m := g.Manageable(model.RoleParent)
	m[0] = model.RoleAdmin
	if !g.CanManage(model.RoleParent, model.RoleStudent) || g.CanManage(model.RoleParent, model.RoleAdmin) {
		t.Error("gate changed after caller mutated Manageable result")
	}
}

func TestGate_Table(t *testing.T) {
	g := Default()
	tbl := g.Table()

	if len(tbl) != len(model.AllRoles) {
		t.Fatalf("Table() has %d roles, want %d", len(tbl), len(model.AllRoles))
	}
	for acting, targets := range tbl {
		for _, target := range targets {
			if !g.CanManage(acting, target) {
				t.Errorf("Table() lists %q -> %q but CanManage is false", acting, target)
			}
		}
	}
}
