// Package api contains the Rycus backend client.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic contract (see the Client interface) for the
//     operations the session engine needs: Login/Register, CurrentUser,
//     ChangeEmail, BillingStatus/Checkout, and the two notification counters.
//  2. A concrete JSON/HTTP implementation (see HTTPClient) that attaches the
//     bearer token per request, probes auth responses for the token under a
//     fixed priority of keys, and decodes profile payloads tolerantly
//     (camelCase and snake_case spellings).
//
// # Error Handling
//
// Common conditions are exposed as sentinel errors that callers can match
// with errors.Is: ErrUnavailable (transport/5xx), ErrUnauthorized (401),
// ErrNoToken (auth response without a usable credential), and ErrBackend
// (4xx, wrapping the server's own message).
//
// Blank strings are filtered out of decoded profile patches at this boundary,
// so the merge engine only ever sees already-validated values.
package api
