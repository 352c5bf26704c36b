package authz

import "github.com/gokulstevee/appsync-rbac-lambda/internal/models"

// AdminGroup is the group whose members may manage other users.
const AdminGroup = "admin"

// IsAdmin reports whether the caller's group claim lists AdminGroup.
// A nil identity, missing claims or a missing group list all yield false.
func IsAdmin(id *models.Identity) bool {
	return id.HasGroup(AdminGroup)
}
