// Package models defines the client-side identity records: the session user,
// profile patches, per-account cached extras, and billing DTOs.
package models

import "strings"

// User is the authoritative in-memory identity record for the active visitor.
//
// Email, once set, is treated as immutable for the duration of a session;
// changing it is a distinct change-email operation that migrates cached data
// and forces re-authentication.
type User struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`

	// display
	Name string `json:"name,omitempty"`

	// profile fields
	FirstName    string `json:"firstName,omitempty"`
	LastName     string `json:"lastName,omitempty"`
	Phone        string `json:"phone,omitempty"`
	BusinessName string `json:"businessName,omitempty"`
	Address      string `json:"address,omitempty"`
	City         string `json:"city,omitempty"`
	State        string `json:"state,omitempty"`
	Zipcode      string `json:"zipcode,omitempty"`

	// avatar
	AvatarURL string `json:"avatarUrl,omitempty"`

	// billing
	PlanType  string `json:"planType,omitempty"`
	HasAccess *bool  `json:"hasAccess,omitempty"`
	IsOwner   bool   `json:"isOwner,omitempty"`
}

// Patch is a partial User. A nil field means "absent"; a pointer to the empty
// string is an explicit value that the merge engine may still drop for
// sensitive display fields.
type Patch struct {
	ID    *int64  `json:"id,omitempty"`
	Email *string `json:"email,omitempty"`

	Name         *string `json:"name,omitempty"`
	FirstName    *string `json:"firstName,omitempty"`
	LastName     *string `json:"lastName,omitempty"`
	Phone        *string `json:"phone,omitempty"`
	BusinessName *string `json:"businessName,omitempty"`
	Address      *string `json:"address,omitempty"`
	City         *string `json:"city,omitempty"`
	State        *string `json:"state,omitempty"`
	Zipcode      *string `json:"zipcode,omitempty"`
	AvatarURL    *string `json:"avatarUrl,omitempty"`

	PlanType  *string `json:"planType,omitempty"`
	HasAccess *bool   `json:"hasAccess,omitempty"`
	IsOwner   *bool   `json:"isOwner,omitempty"`
}

// String returns a pointer to s, for building Patch literals.
func String(s string) *string { return &s }

// Bool returns a pointer to b, for building Patch literals.
func Bool(b bool) *bool { return &b }

// IsLifetimePlan reports whether the plan marker denotes a lifetime free
// plan.
func IsLifetimePlan(plan string) bool {
	p := strings.ToLower(strings.TrimSpace(plan))
	switch p {
	case "lifetime", "lifetime_free", "free_forever", "owner":
		return true
	}
	return false
}
