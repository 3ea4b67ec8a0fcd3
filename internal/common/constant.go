package common

const (
	// AuthHeaderName is the HTTP header used to carry the bearer token
	// on outbound requests.
	AuthHeaderName = "Authorization"

	// BearerPrefix is prepended to the token value in AuthHeaderName.
	BearerPrefix = "Bearer "

	// ClientIDHeaderName carries the per-install client identifier so the
	// backend can correlate requests from the same device.
	ClientIDHeaderName = "X-Client-Id"
)
