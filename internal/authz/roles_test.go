package authz

import (
	"errors"
	"testing"
)

func TestAuthorizeRole(t *testing.T) {
	tests := []struct {
		name     string
		subject  *Subject
		required []Role
		wantErr  error
	}{
		{"empty requirement allows anonymous", nil, nil, nil},
		{"empty requirement allows user", &Subject{ID: 1, Role: RoleUser}, nil, nil},
		{"anonymous denied", nil, []Role{RoleUser}, ErrInsufficientRole},
		{"matching role allowed", &Subject{ID: 1, Role: RoleUser}, []Role{RoleUser}, nil},
		{"one of several roles allowed", &Subject{ID: 1, Role: RoleAdmin}, []Role{RoleUser, RoleAdmin}, nil},
		{"user denied admin route", &Subject{ID: 1, Role: RoleUser}, []Role{RoleAdmin}, ErrInsufficientRole},
		{"admin denied super admin route", &Subject{ID: 1, Role: RoleAdmin}, []Role{RoleSuperAdmin}, ErrInsufficientRole},
		{"super admin bypasses user route", &Subject{ID: 1, Role: RoleSuperAdmin}, []Role{RoleUser}, nil},
		{"super admin bypasses admin route", &Subject{ID: 1, Role: RoleSuperAdmin}, []Role{RoleAdmin}, nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := AuthorizeRole(tc.subject, tc.required...)
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("AuthorizeRole() = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestSubjectRoleHelpers(t *testing.T) {
	var nilSubject *Subject
	if nilSubject.IsAdmin() {
		t.Error("nil subject reported as admin")
	}
	if nilSubject.IsSuperAdmin() {
		t.Error("nil subject reported as super admin")
	}

	if (&Subject{Role: RoleUser}).IsAdmin() {
		t.Error("USER reported as admin")
	}
	if !(&Subject{Role: RoleAdmin}).IsAdmin() {
		t.Error("ADMIN not reported as admin")
	}
	if !(&Subject{Role: RoleSuperAdmin}).IsAdmin() {
		t.Error("SUPER_ADMIN not reported as admin")
	}
	if !(&Subject{Role: RoleSuperAdmin}).IsSuperAdmin() {
		t.Error("SUPER_ADMIN not reported as super admin")
	}
}
