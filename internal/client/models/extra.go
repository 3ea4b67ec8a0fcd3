package models

// ProfileExtra is the per-account bag of profile fields the backend may not
// yet know about, or that the user edited locally before a save round-trip
// succeeded. It is keyed strictly by lower-cased email in storage, never by
// session, so switching accounts on one device cannot leak fields across
// users. Billing and identity fields never belong here.
type ProfileExtra struct {
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
}

// IsZero reports whether no field is set.
func (e ProfileExtra) IsZero() bool {
	return e == ProfileExtra{}
}

// ExtraFromPatch keeps only the profile fields of p, dropping identity and
// billing fields that must never be cached per-account.
func ExtraFromPatch(p Patch) ProfileExtra {
	return ProfileExtra{
		Name:         p.Name,
		FirstName:    p.FirstName,
		LastName:     p.LastName,
		Phone:        p.Phone,
		BusinessName: p.BusinessName,
		Address:      p.Address,
		City:         p.City,
		State:        p.State,
		Zipcode:      p.Zipcode,
		AvatarURL:    p.AvatarURL,
	}
}

// ExtraFromUser snapshots the cacheable profile fields of u, skipping empty
// values so the cache never stores blanks.
func ExtraFromUser(u User) ProfileExtra {
	var e ProfileExtra
	set := func(dst **string, v string) {
		if v != "" {
			*dst = &v
		}
	}
	set(&e.Name, u.Name)
	set(&e.FirstName, u.FirstName)
	set(&e.LastName, u.LastName)
	set(&e.Phone, u.Phone)
	set(&e.BusinessName, u.BusinessName)
	set(&e.Address, u.Address)
	set(&e.City, u.City)
	set(&e.State, u.State)
	set(&e.Zipcode, u.Zipcode)
	set(&e.AvatarURL, u.AvatarURL)
	return e
}
