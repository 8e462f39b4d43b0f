// Package observability builds the structured logger shared by the API,
// the repositories and the migration runner.
//
// Production deployments log JSON; development uses zap's console encoder.
// Request scoped fields (request_id, sub) are added by the callers.
package observability
