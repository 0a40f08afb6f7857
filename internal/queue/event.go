// Package queue defines message payloads exchanged over the message broker.
package queue

// UserRegisteredEvent is published when a new account has been created.  It
// carries enough for downstream consumers (welcome mail, tenant onboarding,
// analytics) without querying the primary database.
type UserRegisteredEvent struct {
	UserID       uint64  `json:"user_id"`
	Email        string  `json:"email"`
	Role         string  `json:"role"`
	LandlordID   *uint64 `json:"landlord_id,omitempty"`
	RegisteredAt string  `json:"registered_at"`
}

// UserLoggedInEvent is published on every successful login, feeding audit
// and last-seen tracking.
type UserLoggedInEvent struct {
	UserID     uint64 `json:"user_id"`
	Role       string `json:"role"`
	LoggedInAt string `json:"logged_in_at"`
}
