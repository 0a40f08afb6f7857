package auth

import "github.com/iliyamo/property-auth/internal/model"

// Pure access decisions.  These functions never touch storage: looking up
// the resource (and its recorded owner) is the caller's job, done before
// asking for a verdict.

// RoleAllowed reports whether the principal's role is in the allowed set.
func RoleAllowed(p model.Principal, allowed ...model.Role) bool {
	for _, r := range allowed {
		if p.Role == r {
			return true
		}
	}
	return false
}

// OwnsLandlordResource decides whether the principal may act on a resource
// owned by the landlord with id ownerID.  A landlord owns exactly the
// resources recorded under their own id.  The switch is exhaustive over the
// role enum so an unrecognized role can never fall through to an allow.
func OwnsLandlordResource(p model.Principal, ownerID uint64) bool {
	switch p.Role {
	case model.RoleLandlord:
		return p.UserID == ownerID
	case model.RoleAgent, model.RoleTenant:
		// TODO: agents/tenants should be allowed onto resources they are
		// assigned to once assignment records exist; until then deny.
		return false
	default:
		return false
	}
}
