package services

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/rycusapp/rycus-cli/internal/client/repositories/kvstore"
)

// Preferences stores small per-install toggles in the same key-value
// store the session uses.
type Preferences struct {
	db *sql.DB
}

func NewPreferences(db *sql.DB) *Preferences {
	return &Preferences{db: db}
}

func (p *Preferences) repo() kvstore.Repository {
	return kvstore.NewSQLiteRepository(p.db)
}

// SoundEnabled reports whether the notification sound is on. A missing or
// unreadable key means on: sound is opt-out.
func (p *Preferences) SoundEnabled(ctx context.Context) bool {
	raw, err := p.repo().Get(ctx, SoundKey)
	if err != nil || raw == nil {
		return true
	}
	return string(raw) != "false"
}

func (p *Preferences) SetSoundEnabled(ctx context.Context, enabled bool) error {
	v := "true"
	if !enabled {
		v = "false"
	}
	return p.repo().Set(ctx, SoundKey, []byte(v))
}

// Visibility holds the per-account profile sharing switches. Both default
// to on; an account with no stored entry shares like a fresh one.
type Visibility struct {
	PublicProfile bool `json:"isPublicProfile"`
	Searchable    bool `json:"isSearchable"`
}

// DefaultVisibility returns the switches a fresh account starts with.
func DefaultVisibility() Visibility {
	return Visibility{PublicProfile: true, Searchable: true}
}

// Visibility returns the stored sharing switches for email. A missing entry
// yields the defaults; a corrupt one reads as the defaults rather than an
// error. Fields absent from the stored blob keep their default.
func (p *Preferences) Visibility(ctx context.Context, email string) (Visibility, error) {
	v := DefaultVisibility()

	raw, err := p.repo().Get(ctx, VisibilityKey(email))
	if err != nil {
		return v, err
	}
	if len(raw) == 0 {
		return v, nil
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return DefaultVisibility(), nil
	}
	return v, nil
}

func (p *Preferences) SetVisibility(ctx context.Context, email string, v Visibility) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return p.repo().Set(ctx, VisibilityKey(email), b)
}
