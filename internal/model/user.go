package model

import "time"

// Role is the closed set of account roles.  Roles arrive as strings on the
// wire (registration body, JWT claim) and are normalized through ParseRole
// so that an unknown string can never slip past the authorization checks.
type Role string

const (
	RoleLandlord Role = "LANDLORD" // owns properties, manages agents/tenants
	RoleAgent    Role = "AGENT"    // works under a landlord
	RoleTenant   Role = "TENANT"   // rents under a landlord
)

// ParseRole normalizes a raw role string into a Role.  The second return
// value is false for anything outside the known set.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleLandlord, RoleAgent, RoleTenant:
		return Role(s), true
	}
	return "", false
}

// User represents a row in the `users` table.  LandlordID is non-nil only
// for AGENT/TENANT accounts and references the LANDLORD that manages them.
//
// Fields:
//  ID           – primary key identifier of the user.
//  FirstName    – given name.
//  LastName     – family name.
//  Email        – unique email address (stored lowercase).
//  Phone        – optional international phone number (nullable).
//  PasswordHash – bcrypt hashed password; never serialized.
//  Role         – account role (LANDLORD, AGENT, TENANT).
//  IsActive     – whether the account may authenticate.
//  LandlordID   – managing landlord's user id (nullable).
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	FirstName    string    // users.first_name
	LastName     string    // users.last_name
	Email        string    // users.email
	Phone        *string   // users.phone (nullable)
	PasswordHash string    // users.password_hash
	Role         Role      // users.role
	IsActive     bool      // users.is_active
	LandlordID   *uint64   // users.landlord_id (nullable)
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// Principal is the authenticated identity attached to a request after the
// bearer token has been verified, checked against the blacklist and
// re-validated against live user state.  Authorization decisions operate on
// this value only, never on the raw token.
type Principal struct {
	UserID     uint64
	Role       Role
	LandlordID *uint64
}

// BlacklistedToken models an entry in the `blacklisted_tokens` table.  A row
// marks a specific, still-unexpired access token as revoked (logout).  The
// expiry always equals the token's own exp claim, so the table stays bounded:
// an entry never needs to outlive the token it revokes.
//
// Fields:
//  Token     – the literal token string (unique).
//  UserID    – owner of the token at revocation time.
//  ExpiresAt – the token's own expiry; rows past this are dead weight and
//              are pruned lazily on lookup.
type BlacklistedToken struct {
	Token     string    // blacklisted_tokens.token
	UserID    uint64    // blacklisted_tokens.user_id
	ExpiresAt time.Time // blacklisted_tokens.expires_at
}
