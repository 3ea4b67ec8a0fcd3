package api

import "errors"

var (
	// ErrUnavailable covers transport failures and 5xx answers.
	ErrUnavailable = errors.New("server unavailable")

	// ErrUnauthorized maps HTTP 401; the caller should drop the session.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNoToken means an auth response yielded no usable token under any of
	// the probed keys.
	ErrNoToken = errors.New("auth response contains no token")

	// ErrBackend wraps a 4xx answer; the server's own message follows it.
	ErrBackend = errors.New("request rejected")
)
