// Package orchestrator implements the single conversational entry point of
// the mesh. It owns the agent registry, classifies caller intent against an
// ordered keyword table, routes to one or more target agents, optionally
// fans out to fixed secondary agents for cross-cutting correlation, and
// synthesizes a unified response with a reasoning trace.
//
// Delegated agent calls are wrapped in a per-call timeout and a per-agent
// circuit breaker: a slow or repeatedly failing agent degrades the query to
// the generic synthesis branch instead of stalling it. The user-facing
// promise is "always answer something": an unroutable intent or a failed
// call still yields a well-formed response.
package orchestrator
