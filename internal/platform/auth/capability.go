package auth

// Capability is a discrete permission checked by admin routes.
type Capability string

const (
	CapContentWrite  Capability = "content.write"
	CapContentDelete Capability = "content.delete"
	CapMediaManage   Capability = "media.manage"
	CapContactRead   Capability = "contact.read"
	CapContentRead   Capability = "content.read"
)

var capabilityRoles = map[Capability][]string{
	CapContentRead:   {RoleAdmin, RoleEditor, RoleViewer},
	CapContentWrite:  {RoleAdmin, RoleEditor},
	CapContentDelete: {RoleAdmin, RoleEditor},
	CapMediaManage:   {RoleAdmin, RoleEditor},
	CapContactRead:   {RoleAdmin},
}

// HasCapability reports whether any of roles grants capability. Admins hold
// every defined capability; undefined capabilities are denied to everyone.
func HasCapability(roles []string, capability Capability) bool {
	allowed, ok := capabilityRoles[capability]
	if !ok {
		return false
	}
	for _, role := range roles {
		role = normaliseRole(role)
		if role == RoleAdmin {
			return true
		}
		for _, candidate := range allowed {
			if role == candidate {
				return true
			}
		}
	}
	return false
}
