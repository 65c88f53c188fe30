package auth

const (
	RoleViewer = "viewer"
	RoleEditor = "editor"
)

const (
	PermDatasetsRead  = "datasets.read"
	PermDatasetsWrite = "datasets.write"
	PermActionsWrite  = "actions.write"
	PermExport        = "datasets.export"
)

var DefaultPermissions = []string{
	PermDatasetsRead,
	PermDatasetsWrite,
	PermActionsWrite,
	PermExport,
}

var RolePermissions = map[string][]string{
	RoleViewer: {
		PermDatasetsRead,
		PermExport,
	},
	RoleEditor: {
		PermDatasetsRead,
		PermDatasetsWrite,
		PermActionsWrite,
		PermExport,
	},
}

func ValidRole(role string) bool {
	_, ok := RolePermissions[role]
	return ok
}

func HasPermission(role, permission string) bool {
	for _, perm := range RolePermissions[role] {
		if perm == permission {
			return true
		}
	}
	return false
}

// UserContext is the authenticated caller attached to a request.
type UserContext struct {
	Username string
	Role     string
}
