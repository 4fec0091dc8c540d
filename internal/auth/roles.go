package auth

// permissions are strings like "upload:write", "upload:delete_own", "admin:*"
const (
	PermUploadWrite     = "upload:write"
	PermUploadDeleteOwn = "upload:delete_own"
	PermUploadDeleteAll = "upload:delete_all"
	PermAdminAll        = "admin:*"
)

var roleToPerms = map[string][]string{
	"user":      {PermUploadWrite, PermUploadDeleteOwn},
	"moderator": {PermUploadWrite, PermUploadDeleteOwn, PermUploadDeleteAll},
	"admin":     {PermUploadWrite, PermUploadDeleteAll, PermAdminAll},
}

func PermsForRoles(roles []string) map[string]struct{} {
	out := make(map[string]struct{}, 8)
	for _, r := range roles {
		if perms, ok := roleToPerms[r]; ok {
			for _, p := range perms {
				out[p] = struct{}{}
			}
		}
	}
	return out
}

// HasPerm reports whether roles grant perm, either directly or through admin:*.
func HasPerm(roles []string, perm string) bool {
	perms := PermsForRoles(roles)
	if _, ok := perms[PermAdminAll]; ok {
		return true
	}
	_, ok := perms[perm]
	return ok
}
