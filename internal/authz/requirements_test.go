package authz

import "testing"

func TestRequirementFor(t *testing.T) {
	tests := []struct {
		operation string
		roles     []Role
		perms     []string
	}{
		{"ads.create", []Role{RoleUser, RoleAdmin}, nil},
		{"ads.approve", []Role{RoleAdmin}, []string{PermAdsApprove}},
		{"ads.reject", []Role{RoleAdmin}, []string{PermAdsReject}},
		{"ads.suspend", []Role{RoleAdmin}, []string{PermAdsEdit}},
		{"admin.permissions.assign", []Role{RoleSuperAdmin}, nil},
		{"admin.audit.list", []Role{RoleAdmin}, []string{PermAuditView}},
	}

	for _, tc := range tests {
		t.Run(tc.operation, func(t *testing.T) {
			req, ok := RequirementFor(tc.operation)
			if !ok {
				t.Fatalf("operation %q not declared", tc.operation)
			}
			if len(req.Roles) != len(tc.roles) {
				t.Fatalf("roles = %v, want %v", req.Roles, tc.roles)
			}
			for i, role := range tc.roles {
				if req.Roles[i] != role {
					t.Errorf("roles[%d] = %s, want %s", i, req.Roles[i], role)
				}
			}
			if len(req.Permissions) != len(tc.perms) {
				t.Fatalf("permissions = %v, want %v", req.Permissions, tc.perms)
			}
			for i, perm := range tc.perms {
				if req.Permissions[i] != perm {
					t.Errorf("permissions[%d] = %s, want %s", i, req.Permissions[i], perm)
				}
			}
		})
	}
}

func TestRequirementForUnknownOperation(t *testing.T) {
	if _, ok := RequirementFor("ads.teleport"); ok {
		t.Error("unknown operation reported as declared")
	}
}
