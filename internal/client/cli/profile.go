package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/rycusapp/rycus-cli/internal/client/models"
	"github.com/rycusapp/rycus-cli/internal/client/profile"
)

// Whoami prints the signed-in user's profile.
func (a *App) Whoami(ctx context.Context) error {
	u, err := a.currentUser()
	if err != nil {
		return err
	}

	fmt.Printf("%s <%s>\n", profile.DisplayName(*u), u.Email)
	rows := []struct{ label, value string }{
		{"Business", u.BusinessName},
		{"Phone", u.Phone},
		{"Address", u.Address},
		{"City", u.City},
		{"State", u.State},
		{"Zip", u.Zipcode},
		{"Avatar", u.AvatarURL},
		{"Plan", u.PlanType},
	}
	for _, r := range rows {
		if r.value != "" {
			fmt.Printf("  %-9s %s\n", r.label, r.value)
		}
	}
	if v, err := a.prefs.Visibility(ctx, u.Email); err == nil {
		fmt.Printf("  %-9s public %s, searchable %s\n", "Sharing", onOff(v.PublicProfile), onOff(v.Searchable))
	}
	return nil
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// ShowVisibility prints the sharing switches for the signed-in account.
func (a *App) ShowVisibility(ctx context.Context) error {
	u, err := a.currentUser()
	if err != nil {
		return err
	}

	v, err := a.prefs.Visibility(ctx, u.Email)
	if err != nil {
		return err
	}
	fmt.Printf("Public profile:     %s\n", onOff(v.PublicProfile))
	fmt.Printf("Searchable by name: %s\n", onOff(v.Searchable))
	return nil
}

// SetVisibility flips one sharing switch and saves the pair right away.
func (a *App) SetVisibility(ctx context.Context, setting string, enabled bool) error {
	u, err := a.currentUser()
	if err != nil {
		return err
	}

	v, err := a.prefs.Visibility(ctx, u.Email)
	if err != nil {
		return err
	}
	switch setting {
	case "public":
		v.PublicProfile = enabled
	case "search":
		v.Searchable = enabled
	default:
		return fmt.Errorf("unknown visibility setting %q", setting)
	}
	if err := a.prefs.SetVisibility(ctx, u.Email, v); err != nil {
		return err
	}
	fmt.Println("Visibility updated.")
	return nil
}

// EditProfile walks through the editable fields; an empty answer keeps the
// current value.
func (a *App) EditProfile(ctx context.Context) error {
	u, err := a.currentUser()
	if err != nil {
		return err
	}

	fields := []struct {
		label   string
		current string
		assign  func(*models.Patch, string)
	}{
		{"First name", u.FirstName, func(p *models.Patch, v string) { p.FirstName = &v }},
		{"Last name", u.LastName, func(p *models.Patch, v string) { p.LastName = &v }},
		{"Phone", u.Phone, func(p *models.Patch, v string) { p.Phone = &v }},
		{"Business name", u.BusinessName, func(p *models.Patch, v string) { p.BusinessName = &v }},
		{"Address", u.Address, func(p *models.Patch, v string) { p.Address = &v }},
		{"City", u.City, func(p *models.Patch, v string) { p.City = &v }},
		{"State", u.State, func(p *models.Patch, v string) { p.State = &v }},
		{"Zip code", u.Zipcode, func(p *models.Patch, v string) { p.Zipcode = &v }},
	}

	var patch models.Patch
	changed := false
	for _, f := range fields {
		v, ok, err := GetOptionalText(a.reader, f.label, f.current, os.Stdout)
		if err != nil {
			return err
		}
		if ok {
			f.assign(&patch, v)
			changed = true
		}
	}

	if !changed {
		fmt.Println("Nothing changed.")
		return nil
	}

	a.sessions.UpdateUser(ctx, patch)
	fmt.Println("Profile updated.")
	return nil
}

// SetAvatar updates the avatar URL, either from the command argument or via
// a prompt. A blank answer leaves the current avatar untouched.
func (a *App) SetAvatar(ctx context.Context, url string) error {
	if _, err := a.currentUser(); err != nil {
		return err
	}

	if url == "" {
		var err error
		url, err = getSimpleText(a.reader, "Enter avatar URL (empty to keep current)", os.Stdout)
		if err != nil {
			return err
		}
	}
	if url == "" {
		fmt.Println("Avatar unchanged.")
		return nil
	}

	a.sessions.UpdateAvatar(ctx, url)
	fmt.Println("Avatar updated.")
	return nil
}
