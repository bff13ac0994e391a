package authz

// Requirement declares what a named operation demands before the lifecycle
// layer is invoked. Roles are checked first, then permissions; both may be
// empty. Operations with ownership-dependent rules (update, delete) declare
// only what is statically known and leave the rest to the lifecycle guards.
type Requirement struct {
	Roles       []Role
	Permissions []string
}

var requirements = map[string]Requirement{
	"ads.create":    {Roles: []Role{RoleUser, RoleAdmin}},
	"ads.update":    {Roles: []Role{RoleUser, RoleAdmin}},
	"ads.delete":    {Roles: []Role{RoleUser, RoleAdmin}},
	"ads.approve":   {Roles: []Role{RoleAdmin}, Permissions: []string{PermAdsApprove}},
	"ads.reject":    {Roles: []Role{RoleAdmin}, Permissions: []string{PermAdsReject}},
	"ads.suspend":   {Roles: []Role{RoleAdmin}, Permissions: []string{PermAdsEdit}},
	"ads.unsuspend": {Roles: []Role{RoleAdmin}, Permissions: []string{PermAdsEdit}},
	"ads.pending":   {Roles: []Role{RoleAdmin}, Permissions: []string{PermAdsApprove}},

	"admin.permissions.list":   {Roles: []Role{RoleSuperAdmin}},
	"admin.permissions.grants": {Roles: []Role{RoleSuperAdmin}},
	"admin.permissions.assign": {Roles: []Role{RoleSuperAdmin}},
	"admin.permissions.revoke": {Roles: []Role{RoleSuperAdmin}},

	"admin.audit.list": {Roles: []Role{RoleAdmin}, Permissions: []string{PermAuditView}},

	"categories.write": {Roles: []Role{RoleSuperAdmin}},
	"cities.write":     {Roles: []Role{RoleSuperAdmin}},
}

// RequirementFor looks up the declared requirement for an operation name.
func RequirementFor(operation string) (Requirement, bool) {
	req, ok := requirements[operation]
	return req, ok
}
