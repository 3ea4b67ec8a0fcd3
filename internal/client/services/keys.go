package services

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"

	"github.com/rycusapp/rycus-cli/internal/client/repositories/kvstore"
)

// Canonical storage keys. Exactly one key is authoritative per datum; the
// legacy aliases below are migrated (copied, then removed), never duplicated.
const (
	UserKey             = "rycus_user"
	TokenKey            = "rycus_token"
	ExtraKeyPrefix      = "rycus_profile_extra_"
	VisibilityKeyPrefix = "rycus_visibility_"
	SoundKey            = "rycus_sound_enabled"
	ClientIDKey         = "rycus_client_id"

	// Keys written by earlier builds.
	legacyTokenKey = "token"
	legacyExtraKey = "rycus_profile_extra"
)

// ExtraKey returns the per-account extras key. Extras are keyed strictly by
// lower-cased email so switching accounts on one device cannot leak fields
// across users; an empty email maps to a guest slot that is read but never
// persisted to.
func ExtraKey(email string) string {
	e := strings.ToLower(strings.TrimSpace(email))
	if e == "" {
		return ExtraKeyPrefix + "guest"
	}
	return ExtraKeyPrefix + e
}

// VisibilityKey returns the per-account visibility preferences key.
func VisibilityKey(email string) string {
	e := strings.ToLower(strings.TrimSpace(email))
	if e == "" {
		return VisibilityKeyPrefix + "guest"
	}
	return VisibilityKeyPrefix + e
}

// EnsureClientID returns the per-install client identifier, generating and
// persisting a new UUID on first run.
func EnsureClientID(ctx context.Context, db *sql.DB) (string, error) {
	r := kvstore.NewSQLiteRepository(db)

	raw, err := r.Get(ctx, ClientIDKey)
	if err != nil {
		return "", err
	}
	if id := strings.TrimSpace(string(raw)); id != "" {
		return id, nil
	}

	id := uuid.NewString()
	if err := r.Set(ctx, ClientIDKey, []byte(id)); err != nil {
		return "", err
	}
	return id, nil
}
