// Package profile implements the pure merge engine for session users and
// cached profile extras.
//
// The one rule everything here enforces: an empty or missing value must never
// overwrite a known-good one. Sensitive display fields (name, first/last
// name, avatar URL) are sanitized out of a patch when blank, so a stale or
// partial payload merged late cannot silently wipe a user's avatar or name.
// Callers own persistence; nothing in this package touches storage.
package profile

import (
	"strings"

	"github.com/rycusapp/rycus-cli/internal/client/models"
)

// CleanString trims v and reports whether a usable value remains.
func CleanString(v string) (string, bool) {
	t := strings.TrimSpace(v)
	return t, t != ""
}

func cleanField(v **string) {
	if *v == nil {
		return
	}
	t, ok := CleanString(**v)
	if !ok {
		*v = nil
		return
	}
	*v = &t
}

// SanitizePatch returns a copy of p with blank sensitive display fields
// removed and surviving ones trimmed. All other fields pass through
// untouched, including explicit intentional clears encoded as pointers to
// the empty string.
func SanitizePatch(p models.Patch) models.Patch {
	cleanField(&p.Name)
	cleanField(&p.FirstName)
	cleanField(&p.LastName)
	cleanField(&p.AvatarURL)
	return p
}

// SanitizeExtra applies the same sensitive-field rule to a cached extras bag.
func SanitizeExtra(e models.ProfileExtra) models.ProfileExtra {
	cleanField(&e.Name)
	cleanField(&e.FirstName)
	cleanField(&e.LastName)
	cleanField(&e.AvatarURL)
	return e
}

// Merge combines base with a sanitized patch; the patch wins for every field
// it still carries after sanitization, the base survives for everything else.
func Merge(base models.User, p models.Patch) models.User {
	safe := SanitizePatch(p)
	out := base

	if safe.ID != nil {
		out.ID = *safe.ID
	}
	if safe.Email != nil {
		out.Email = *safe.Email
	}
	applyStr := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	applyStr(&out.Name, safe.Name)
	applyStr(&out.FirstName, safe.FirstName)
	applyStr(&out.LastName, safe.LastName)
	applyStr(&out.Phone, safe.Phone)
	applyStr(&out.BusinessName, safe.BusinessName)
	applyStr(&out.Address, safe.Address)
	applyStr(&out.City, safe.City)
	applyStr(&out.State, safe.State)
	applyStr(&out.Zipcode, safe.Zipcode)
	applyStr(&out.AvatarURL, safe.AvatarURL)
	applyStr(&out.PlanType, safe.PlanType)
	if safe.HasAccess != nil {
		v := *safe.HasAccess
		out.HasAccess = &v
	}
	if safe.IsOwner != nil {
		out.IsOwner = *safe.IsOwner
	}
	return out
}

// Underlay fills only the empty fields of base from the cached extras.
// Extras recovered from disk must never override non-empty session fields.
func Underlay(base models.User, extra models.ProfileExtra) models.User {
	safe := SanitizeExtra(extra)
	out := base

	fill := func(dst *string, v *string) {
		if *dst == "" && v != nil {
			*dst = *v
		}
	}
	fill(&out.Name, safe.Name)
	fill(&out.FirstName, safe.FirstName)
	fill(&out.LastName, safe.LastName)
	fill(&out.Phone, safe.Phone)
	fill(&out.BusinessName, safe.BusinessName)
	fill(&out.Address, safe.Address)
	fill(&out.City, safe.City)
	fill(&out.State, safe.State)
	fill(&out.Zipcode, safe.Zipcode)
	fill(&out.AvatarURL, safe.AvatarURL)
	return out
}

// MergeExtra overlays a sanitized patch of extras on top of prev; the patch
// wins for every field it still carries.
func MergeExtra(prev, patch models.ProfileExtra) models.ProfileExtra {
	safe := SanitizeExtra(patch)
	out := prev

	apply := func(dst **string, v *string) {
		if v != nil {
			*dst = v
		}
	}
	apply(&out.Name, safe.Name)
	apply(&out.FirstName, safe.FirstName)
	apply(&out.LastName, safe.LastName)
	apply(&out.Phone, safe.Phone)
	apply(&out.BusinessName, safe.BusinessName)
	apply(&out.Address, safe.Address)
	apply(&out.City, safe.City)
	apply(&out.State, safe.State)
	apply(&out.Zipcode, safe.Zipcode)
	apply(&out.AvatarURL, safe.AvatarURL)
	return out
}

// DisplayName derives a non-empty display name in priority order: explicit
// name, first+last joined by a single space, then the local part of the
// email. Returns "" only when none of those sources exist.
func DisplayName(u models.User) string {
	if name, ok := CleanString(u.Name); ok {
		return name
	}

	first, _ := CleanString(u.FirstName)
	last, _ := CleanString(u.LastName)
	if full := strings.TrimSpace(first + " " + last); full != "" {
		return full
	}

	if email, ok := CleanString(u.Email); ok {
		if at := strings.Index(email, "@"); at > 0 {
			return email[:at]
		}
		return email
	}
	return ""
}

// EnsureDisplayName returns u with Name filled from DisplayName when blank,
// so the UI never renders a blank name.
func EnsureDisplayName(u models.User) models.User {
	if _, ok := CleanString(u.Name); ok {
		return u
	}
	u.Name = DisplayName(u)
	return u
}
