// Package auth provides the authorization primitives shared by the
// casting agency API.
//
// This package implements:
//   - The ClaimSet produced by token verification
//   - Permission strings of the form <action>:<resource>
//   - The permission evaluator used by the authorization gate
//   - AuthError, the failure type for every gate stage
//
// A ClaimSet is an immutable value. It is handed to protected handlers
// as an explicit parameter and is never stored in a request context.
package auth
