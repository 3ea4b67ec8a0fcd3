package api

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rycusapp/rycus-cli/internal/client/models"
)

// tokenKeys is the fixed priority list probed for the bearer token in auth
// responses. First non-empty string wins.
var tokenKeys = []string{"token", "accessToken", "access_token", "jwt"}

// stringAt probes m for the first of the given keys holding a non-blank
// string.
func stringAt(m map[string]json.RawMessage, keys ...string) (string, bool) {
	for _, k := range keys {
		raw, ok := m[k]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			continue
		}
		if t := strings.TrimSpace(s); t != "" {
			return t, true
		}
	}
	return "", false
}

func boolAt(m map[string]json.RawMessage, keys ...string) (bool, bool) {
	for _, k := range keys {
		raw, ok := m[k]
		if !ok {
			continue
		}
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			continue
		}
		return b, true
	}
	return false, false
}

func int64At(m map[string]json.RawMessage, keys ...string) (int64, bool) {
	for _, k := range keys {
		raw, ok := m[k]
		if !ok {
			continue
		}
		var n int64
		if err := json.Unmarshal(raw, &n); err != nil {
			continue
		}
		return n, true
	}
	return 0, false
}

// decodeUserPatch converts a backend profile payload into a patch carrying
// only usable values. Both camelCase and snake_case spellings are accepted;
// blank strings are dropped here so a partial backend answer can never blank
// out locally known-good fields downstream.
func decodeUserPatch(data []byte) (models.Patch, error) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return models.Patch{}, fmt.Errorf("failed to decode user payload: %w", err)
	}
	return userPatchFromMap(m), nil
}

func userPatchFromMap(m map[string]json.RawMessage) models.Patch {
	var p models.Patch

	if v, ok := int64At(m, "id"); ok {
		p.ID = &v
	}
	setStr := func(dst **string, keys ...string) {
		if v, ok := stringAt(m, keys...); ok {
			*dst = &v
		}
	}
	setStr(&p.Email, "email")
	setStr(&p.Name, "fullName", "full_name", "name")
	setStr(&p.FirstName, "firstName", "first_name")
	setStr(&p.LastName, "lastName", "last_name")
	setStr(&p.Phone, "phone")
	setStr(&p.BusinessName, "businessName", "business_name")
	setStr(&p.Address, "address")
	setStr(&p.City, "city")
	setStr(&p.State, "state")
	setStr(&p.Zipcode, "zipcode", "zip_code", "zip")
	setStr(&p.AvatarURL, "avatarUrl", "avatar_url")
	setStr(&p.PlanType, "planType", "plan_type")
	if v, ok := boolAt(m, "hasAccess", "has_access"); ok {
		p.HasAccess = &v
	}
	if v, ok := boolAt(m, "isOwner", "is_owner"); ok {
		p.IsOwner = &v
	}
	return p
}

// decodeAuthResponse extracts the bearer token and optional embedded user
// from a login/register answer. The token is probed under a fixed priority
// list; none yielding a non-empty string is a hard failure.
func decodeAuthResponse(data []byte) (models.User, string, error) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return models.User{}, "", fmt.Errorf("failed to decode auth response: %w", err)
	}

	token, ok := stringAt(m, tokenKeys...)
	if !ok {
		return models.User{}, "", ErrNoToken
	}

	var user models.User
	if raw, have := m["user"]; have {
		var um map[string]json.RawMessage
		if err := json.Unmarshal(raw, &um); err == nil {
			user = userFromPatch(userPatchFromMap(um))
		}
	} else {
		// Some deployments inline the user fields beside the token.
		user = userFromPatch(userPatchFromMap(m))
	}

	return user, token, nil
}

func userFromPatch(p models.Patch) models.User {
	var u models.User
	if p.ID != nil {
		u.ID = *p.ID
	}
	get := func(v *string) string {
		if v == nil {
			return ""
		}
		return *v
	}
	u.Email = get(p.Email)
	u.Name = get(p.Name)
	u.FirstName = get(p.FirstName)
	u.LastName = get(p.LastName)
	u.Phone = get(p.Phone)
	u.BusinessName = get(p.BusinessName)
	u.Address = get(p.Address)
	u.City = get(p.City)
	u.State = get(p.State)
	u.Zipcode = get(p.Zipcode)
	u.AvatarURL = get(p.AvatarURL)
	u.PlanType = get(p.PlanType)
	u.HasAccess = p.HasAccess
	if p.IsOwner != nil {
		u.IsOwner = *p.IsOwner
	}
	return u
}

// decodeBillingStatus keeps hasAccess and active as tri-state so the gate can
// tell "explicit false" from "field absent".
func decodeBillingStatus(data []byte) (models.BillingStatus, error) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return models.BillingStatus{}, fmt.Errorf("failed to decode billing status: %w", err)
	}

	var st models.BillingStatus
	if v, ok := boolAt(m, "hasAccess", "has_access"); ok {
		st.HasAccess = &v
	}
	if v, ok := boolAt(m, "active"); ok {
		st.Active = &v
	}
	if v, ok := stringAt(m, "planType", "plan_type"); ok {
		st.PlanType = v
	}
	return st, nil
}

// backendMessage digs the human-readable error out of a 4xx body: a
// "message" or "error" field, or the raw body when it is a bare string.
func backendMessage(data []byte) string {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err == nil {
		if v, ok := stringAt(m, "message", "error"); ok {
			return v
		}
		return ""
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(string(data))
}
