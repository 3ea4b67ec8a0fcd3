package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rycusapp/rycus-cli/internal/common"
	"github.com/rycusapp/rycus-cli/internal/logging"
)

func newClient(t *testing.T, handler http.Handler) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewHTTPClient(srv.URL, 5*time.Second, "client-1", logging.NewDefault())
}

func TestLogin_Success(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/auth/login", r.URL.Path)
		require.Equal(t, "client-1", r.Header.Get(common.ClientIDHeaderName))
		w.Write([]byte(`{"token":"abc123","user":{"id":7,"email":"jane@acme.com"}}`))
	}))

	user, token, err := c.Login(context.Background(), "jane@acme.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "abc123", token)
	assert.EqualValues(t, 7, user.ID)
	assert.Equal(t, "jane@acme.com", user.Email)
}

func TestLogin_FillsEmailWhenBackendOmitsUser(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"token":"abc123"}`))
	}))

	user, _, err := c.Login(context.Background(), "jane@acme.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "jane@acme.com", user.Email)
}

func TestLogin_NoToken_Rejected(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"user":{"id":7,"email":"jane@acme.com"}}`))
	}))

	_, _, err := c.Login(context.Background(), "jane@acme.com", "pw")
	require.ErrorIs(t, err, ErrNoToken)
}

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "401", status: http.StatusUnauthorized, wantErr: ErrUnauthorized},
		{name: "500", status: http.StatusInternalServerError, wantErr: ErrUnavailable},
		{name: "400 with message", status: http.StatusBadRequest, body: `{"message":"no such account"}`, wantErr: ErrBackend},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			}))

			_, err := c.CurrentUser(context.Background(), "jane@acme.com")
			require.ErrorIs(t, err, tc.wantErr)
			if tc.body != "" {
				assert.Contains(t, err.Error(), "no such account")
			}
		})
	}
}

func TestTokenAttachedWhenSet(t *testing.T) {
	var gotAuth string
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get(common.AuthHeaderName)
		w.Write([]byte(`{}`))
	}))

	ctx := context.Background()

	_, err := c.CurrentUser(ctx, "jane@acme.com")
	require.NoError(t, err)
	assert.Empty(t, gotAuth, "no header before SetToken")

	c.SetToken("abc123")
	_, err = c.CurrentUser(ctx, "jane@acme.com")
	require.NoError(t, err)
	assert.Equal(t, "Bearer abc123", gotAuth)

	c.ClearToken()
	_, err = c.CurrentUser(ctx, "jane@acme.com")
	require.NoError(t, err)
	assert.Empty(t, gotAuth, "header detached after ClearToken")
}

func TestCurrentUser_QueryAndDecode(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/users/me", r.URL.Path)
		require.Equal(t, "jane@acme.com", r.URL.Query().Get("email"))
		w.Write([]byte(`{"full_name":"Jane Doe","avatar_url":"https://a/x.png"}`))
	}))

	p, err := c.CurrentUser(context.Background(), "jane@acme.com")
	require.NoError(t, err)
	require.NotNil(t, p.Name)
	assert.Equal(t, "Jane Doe", *p.Name)
	require.NotNil(t, p.AvatarURL)
	assert.Equal(t, "https://a/x.png", *p.AvatarURL)
}

func TestUnreadCount_BareNumberBody(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/messages/unread-count", r.URL.Path)
		require.Equal(t, "jane@acme.com", r.URL.Query().Get("userEmail"))
		w.Write([]byte(`4`))
	}))

	n, err := c.UnreadCount(context.Background(), "jane@acme.com")
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestPendingConnections_WrappedCount(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/connections/pending/count", r.URL.Path)
		w.Write([]byte(`{"count":2}`))
	}))

	n, err := c.PendingConnections(context.Background(), "jane@acme.com")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestCheckout_AlternateURLKey(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"checkoutUrl":"https://pay.example.com/s/1"}`))
	}))

	s, err := c.Checkout(context.Background(), "jane@acme.com", "/dashboard")
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example.com/s/1", s.URL)
}

func TestCheckout_MissingURL(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))

	_, err := c.Checkout(context.Background(), "jane@acme.com", "")
	require.ErrorIs(t, err, ErrBackend)
}

func TestTransportFailure_MapsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listening anymore

	c := NewHTTPClient(srv.URL, time.Second, "", logging.NewDefault())
	_, err := c.CurrentUser(context.Background(), "jane@acme.com")
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestChangeEmail_SurfacesBackendMessage(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/change-email", r.URL.Path)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"wrong password"}`))
	}))

	err := c.ChangeEmail(context.Background(), "old@x.com", "new@x.com", "pw")
	require.ErrorIs(t, err, ErrBackend)
	assert.Contains(t, err.Error(), "wrong password")
}
