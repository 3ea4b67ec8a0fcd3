package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/rycusapp/rycus-cli/internal/client/api"
	"github.com/rycusapp/rycus-cli/internal/client/models"
	"github.com/rycusapp/rycus-cli/internal/client/profile"
	"github.com/rycusapp/rycus-cli/internal/client/repositories/kvstore"
	"github.com/rycusapp/rycus-cli/internal/dbx"
	"github.com/rycusapp/rycus-cli/internal/logging"
)

// rehydrateTimeout bounds the fire-and-forget backend refresh issued after
// login.
const rehydrateTimeout = 15 * time.Second

// SessionStore owns the in-memory {currentUser, token, initializing} state
// and orchestrates startup rehydration, login, logout, and local profile
// updates over the persistent key-value store.
//
// Failure semantics: every storage read degrades to "no data" rather than an
// error surfaced to callers, and every backend rehydration failure retains
// prior state. A locally good session is never replaced with an error state.
type SessionStore struct {
	api api.Client
	db  *sql.DB
	log logging.Logger

	mu           sync.RWMutex
	user         *models.User
	token        string
	initializing bool

	initOnce   sync.Once
	loginHooks []func()

	// wg tracks fire-and-forget rehydrations so tests can wait for them.
	wg sync.WaitGroup
}

func NewSessionStore(apiClient api.Client, db *sql.DB, log logging.Logger) *SessionStore {
	return &SessionStore{api: apiClient, db: db, log: log, initializing: true}
}

func (s *SessionStore) repo() kvstore.Repository {
	return kvstore.NewSQLiteRepository(s.db)
}

// OnLogin registers a hook fired after every successful Login. The
// entitlement gate uses it to reset its one-shot billing check.
func (s *SessionStore) OnLogin(fn func()) {
	s.loginHooks = append(s.loginHooks, fn)
}

// CurrentUser returns a copy of the signed-in user, or nil.
func (s *SessionStore) CurrentUser() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Token returns the bearer token, or "" when unauthenticated.
func (s *SessionStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Initializing reports whether Bootstrap has not finished yet. Route guards
// must treat the session as undecided while this is true.
func (s *SessionStore) Initializing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.initializing
}

func (s *SessionStore) finishInit() {
	s.initOnce.Do(func() {
		s.mu.Lock()
		s.initializing = false
		s.mu.Unlock()
	})
}

// cleanStored trims a stored value and drops the sentinel strings some
// earlier builds persisted verbatim.
func cleanStored(raw []byte) string {
	t := strings.TrimSpace(string(raw))
	if t == "" || t == "undefined" || t == "null" {
		return ""
	}
	return t
}

// parseUser decodes a stored session blob, treating corrupt or sentinel
// values as absent.
func parseUser(raw []byte) *models.User {
	t := cleanStored(raw)
	if t == "" {
		return nil
	}
	var u models.User
	if err := json.Unmarshal([]byte(t), &u); err != nil {
		return nil
	}
	return &u
}

// parseExtra decodes a stored extras bag. The second result reports whether
// a usable entry existed at all.
func parseExtra(raw []byte) (models.ProfileExtra, bool) {
	t := cleanStored(raw)
	if t == "" {
		return models.ProfileExtra{}, false
	}
	var e models.ProfileExtra
	if err := json.Unmarshal([]byte(t), &e); err != nil {
		return models.ProfileExtra{}, false
	}
	return e, true
}

func (s *SessionStore) readExtra(ctx context.Context, r kvstore.Repository, email string) models.ProfileExtra {
	raw, err := r.Get(ctx, ExtraKey(email))
	if err != nil {
		s.log.Warn(ctx, "failed to read profile extras", "error", err)
		return models.ProfileExtra{}
	}
	e, _ := parseExtra(raw)
	return e
}

// Bootstrap runs once at application start: migrates the token from its
// deprecated key, restores the session blob (tolerating corruption), merges
// cached extras under the recovered user, optimistically re-attaches the
// token, and then refreshes the profile from the backend best-effort.
// The initializing flag drops exactly once, whatever happens.
func (s *SessionStore) Bootstrap(ctx context.Context) {
	defer s.finishInit()

	r := s.repo()

	token := s.migrateToken(ctx, r)

	raw, err := r.Get(ctx, UserKey)
	if err != nil {
		s.log.Warn(ctx, "failed to read stored session", "error", err)
		raw = nil
	}
	user := parseUser(raw)
	if user == nil && len(raw) > 0 {
		// Corrupt slot: clear it rather than tripping on it every start.
		if err := r.Delete(ctx, UserKey); err != nil {
			s.log.Warn(ctx, "failed to clear corrupt session slot", "error", err)
		}
	}

	if user != nil {
		merged := profile.Underlay(*user, s.readExtra(ctx, r, user.Email))
		merged = profile.EnsureDisplayName(merged)

		s.mu.Lock()
		s.user = &merged
		s.mu.Unlock()

		s.persistUser(ctx, merged)
	}

	if token != "" {
		s.mu.Lock()
		s.token = token
		s.mu.Unlock()
		s.api.SetToken(token)
	} else {
		s.api.ClearToken()
	}

	if token != "" && user != nil && user.Email != "" {
		s.rehydrate(ctx, user.Email)
	}
}

// migrateToken reads the canonical token, copying it over from the
// deprecated key first when the canonical slot is empty. The copy is
// followed by a delete of the source, so rerunning is a no-op.
func (s *SessionStore) migrateToken(ctx context.Context, r kvstore.Repository) string {
	raw, err := r.Get(ctx, TokenKey)
	if err != nil {
		s.log.Warn(ctx, "failed to read stored token", "error", err)
		return ""
	}
	if token := cleanStored(raw); token != "" {
		return token
	}

	legacyRaw, err := r.Get(ctx, legacyTokenKey)
	if err != nil {
		s.log.Warn(ctx, "failed to read legacy token key", "error", err)
		return ""
	}
	legacy := cleanStored(legacyRaw)
	if legacy == "" {
		return ""
	}

	if err := r.Set(ctx, TokenKey, []byte(legacy)); err != nil {
		s.log.Warn(ctx, "failed to migrate legacy token", "error", err)
		return legacy
	}
	if err := r.Delete(ctx, legacyTokenKey); err != nil {
		s.log.Warn(ctx, "failed to remove legacy token key", "error", err)
	}
	return legacy
}

// Login installs a fresh session: migrates the legacy global extras cache
// into this account's namespaced entry (first-write-wins), merges cached
// extras under the incoming user, ensures a display name, persists user and
// token atomically, attaches the token, and fires a best-effort background
// rehydration.
func (s *SessionStore) Login(ctx context.Context, user models.User, token string) {
	r := s.repo()

	if user.Email != "" {
		s.migrateLegacyExtra(ctx, r, user.Email)
	}

	merged := profile.Underlay(user, s.readExtra(ctx, r, user.Email))
	merged = profile.EnsureDisplayName(merged)

	s.mu.Lock()
	s.user = &merged
	s.token = token
	s.mu.Unlock()

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		tr := kvstore.NewSQLiteRepository(tx)
		b, err := json.Marshal(merged)
		if err != nil {
			return err
		}
		if err := tr.Set(ctx, UserKey, b); err != nil {
			return err
		}
		return tr.Set(ctx, TokenKey, []byte(token))
	})
	if err != nil {
		s.log.Warn(ctx, "failed to persist session", "error", err)
	}

	s.api.SetToken(token)

	for _, hook := range s.loginHooks {
		hook()
	}

	if merged.Email != "" {
		email := merged.Email
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			rctx, cancel := context.WithTimeout(context.Background(), rehydrateTimeout)
			defer cancel()
			s.rehydrate(rctx, email)
		}()
	}
}

// migrateLegacyExtra moves the pre-namespacing global extras blob under this
// account's key, unless the account already has a namespaced entry
// (first-write-wins against migration). The legacy key is deleted either way.
func (s *SessionStore) migrateLegacyExtra(ctx context.Context, r kvstore.Repository, email string) {
	legacyRaw, err := r.Get(ctx, legacyExtraKey)
	if err != nil {
		s.log.Warn(ctx, "failed to read legacy extras", "error", err)
		return
	}
	legacy, ok := parseExtra(legacyRaw)
	if !ok {
		return
	}

	existingRaw, err := r.Get(ctx, ExtraKey(email))
	if err != nil {
		s.log.Warn(ctx, "failed to read namespaced extras", "error", err)
		return
	}
	if _, exists := parseExtra(existingRaw); !exists {
		b, err := json.Marshal(profile.SanitizeExtra(legacy))
		if err == nil {
			if err := r.Set(ctx, ExtraKey(email), b); err != nil {
				s.log.Warn(ctx, "failed to write migrated extras", "error", err)
				return
			}
		}
	}

	if err := r.Delete(ctx, legacyExtraKey); err != nil {
		s.log.Warn(ctx, "failed to remove legacy extras key", "error", err)
	}
}

// Logout clears the in-memory session and the canonical storage keys,
// including deprecated aliases, and detaches the token from the transport.
// Per-account extras caches survive so a later login by the same email
// recovers local-only fields.
func (s *SessionStore) Logout(ctx context.Context) {
	s.mu.Lock()
	s.user = nil
	s.token = ""
	s.mu.Unlock()

	r := s.repo()
	for _, key := range []string{UserKey, TokenKey, legacyTokenKey} {
		if err := r.Delete(ctx, key); err != nil {
			s.log.Warn(ctx, "failed to clear session key", "key", key, "error", err)
		}
	}

	s.api.ClearToken()
}

// UpdateUser merges a patch into the current user and persists both the
// merged user and the patch itself into the account's extras cache, so a
// future session restore recovers the edit even after backend data loss.
// No-op without a current user.
func (s *SessionStore) UpdateUser(ctx context.Context, patch models.Patch) {
	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		return
	}
	updated := profile.Merge(*s.user, patch)
	s.user = &updated
	s.mu.Unlock()

	s.persistUserWithExtra(ctx, updated, models.ExtraFromPatch(patch))
}

// UpdateAvatar sets a new avatar URL. Blank input is ignored so a stray
// empty value can never wipe a known-good avatar.
func (s *SessionStore) UpdateAvatar(ctx context.Context, avatarURL string) {
	cleaned, ok := profile.CleanString(avatarURL)
	if !ok {
		return
	}
	s.UpdateUser(ctx, models.Patch{AvatarURL: &cleaned})
}

// MoveExtrasToNewEmail relocates the old account's extras under the new
// email after a successful change-of-email flow. The new account's existing
// extras win on conflict; the old key is deleted so nothing is duplicated.
// Must be called before the forced logout/re-login, or the cached data is
// stranded under the old key.
func (s *SessionStore) MoveExtrasToNewEmail(ctx context.Context, oldEmail, newEmail string) {
	r := s.repo()

	oldRaw, err := r.Get(ctx, ExtraKey(oldEmail))
	if err != nil {
		s.log.Warn(ctx, "failed to read extras for old email", "error", err)
		return
	}
	old, ok := parseExtra(oldRaw)
	if !ok {
		return
	}

	newRaw, err := r.Get(ctx, ExtraKey(newEmail))
	if err != nil {
		s.log.Warn(ctx, "failed to read extras for new email", "error", err)
		return
	}
	existing, _ := parseExtra(newRaw)

	merged := profile.MergeExtra(old, existing)

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		tr := kvstore.NewSQLiteRepository(tx)
		b, err := json.Marshal(merged)
		if err != nil {
			return err
		}
		if err := tr.Set(ctx, ExtraKey(newEmail), b); err != nil {
			return err
		}
		return tr.Delete(ctx, ExtraKey(oldEmail))
	})
	if err != nil {
		s.log.Warn(ctx, "failed to move extras to new email", "error", err)
	}
}

// rehydrate refreshes the in-memory user from the backend's authoritative
// record. A failure keeps what we had; a result arriving after the session
// switched to a different account is dropped.
func (s *SessionStore) rehydrate(ctx context.Context, email string) {
	patch, err := s.api.CurrentUser(ctx, email)
	if err != nil {
		s.log.Warn(ctx, "profile rehydration failed, keeping local state", "email", email, "error", err)
		return
	}

	s.mu.Lock()
	if s.user == nil || !strings.EqualFold(s.user.Email, email) {
		s.mu.Unlock()
		return
	}
	updated := profile.Merge(*s.user, patch)
	updated = profile.EnsureDisplayName(updated)
	s.user = &updated
	s.mu.Unlock()

	s.persistUserWithExtra(ctx, updated, models.ExtraFromUser(updated))
}

// WaitRehydrated blocks until in-flight background rehydrations finish.
func (s *SessionStore) WaitRehydrated() {
	s.wg.Wait()
}

func (s *SessionStore) persistUser(ctx context.Context, u models.User) {
	r := s.repo()
	b, err := json.Marshal(u)
	if err != nil {
		s.log.Warn(ctx, "failed to encode session user", "error", err)
		return
	}
	if err := r.Set(ctx, UserKey, b); err != nil {
		s.log.Warn(ctx, "failed to persist session user", "error", err)
	}
}

// persistUserWithExtra writes the user blob and the account's extras update
// in one transaction, so a crash between the two cannot leave them split.
func (s *SessionStore) persistUserWithExtra(ctx context.Context, u models.User, extra models.ProfileExtra) {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		tr := kvstore.NewSQLiteRepository(tx)

		b, err := json.Marshal(u)
		if err != nil {
			return err
		}
		if err := tr.Set(ctx, UserKey, b); err != nil {
			return err
		}

		if u.Email == "" || extra.IsZero() {
			return nil
		}

		prevRaw, err := tr.Get(ctx, ExtraKey(u.Email))
		if err != nil {
			return err
		}
		prev, _ := parseExtra(prevRaw)
		merged := profile.MergeExtra(prev, extra)

		eb, err := json.Marshal(merged)
		if err != nil {
			return err
		}
		return tr.Set(ctx, ExtraKey(u.Email), eb)
	})
	if err != nil {
		s.log.Warn(ctx, "failed to persist profile update", "error", err)
	}
}
