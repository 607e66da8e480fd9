package rbac

// Simple default policy. Expand as needed.
var RolePermissions = map[string][]string{
	"student": {
		"exam:view",
		"exam:submit",
		"result:view-own",
		"eligibility:check",
		"payment:order",
	},
	"admin": {
		"*", // everything
	},
}
