// Package cli implements the interactive terminal frontend: a small REPL
// dispatching to command handlers on App, which wires the session store,
// entitlement gate, and notification poller together.
package cli
