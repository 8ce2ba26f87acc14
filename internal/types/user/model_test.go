package user

import "testing"

func TestRolePredicates(t *testing.T) {
	tests := []struct {
		role      Role
		canWrite  bool
		canManage bool
	}{
		{RoleOwner, true, true},
		{RoleManager, true, true},
		{RolePoseur, false, false},
		{RoleReadonly, false, false},
		{Role(""), false, false},
		{Role("ADMIN"), false, false},
	}
	for _, tt := range tests {
		if got := tt.role.CanWrite(); got != tt.canWrite {
			t.Errorf("Role(%q).CanWrite() = %v, want %v", tt.role, got, tt.canWrite)
		}
		if got := tt.role.CanManage(); got != tt.canManage {
			t.Errorf("Role(%q).CanManage() = %v, want %v", tt.role, got, tt.canManage)
		}
	}
}

func TestRoleValid(t *testing.T) {
	for _, r := range []Role{RoleOwner, RoleManager, RolePoseur, RoleReadonly} {
		if !r.Valid() {
			t.Errorf("Role(%q).Valid() = false", r)
		}
	}
	for _, r := range []Role{"", "owner", "ADMIN"} {
		if r.Valid() {
			t.Errorf("Role(%q).Valid() = true", r)
		}
	}
}
