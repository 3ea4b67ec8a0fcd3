// Package common defines shared constants and sentinel errors used across
// the Rycus client layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// ErrNoSession is returned by commands that need a signed-in user.
	ErrNoSession = errors.New("no active session")
)
