// Package core provides the foundational domain types and interfaces used by
// CrewMesh. It defines the core abstractions for:
//
//   - Agents (uniform units of work with an observable lifecycle)
//   - Messages (immutable inter-agent envelopes with correlation support)
//   - Payloads and Results (the uniform process contract)
//   - The error taxonomy shared by the bus, orchestrator and fan-out layers
//
// The package intentionally keeps implementation concerns (bus delivery,
// routing, concrete agents) out of scope, exposing small interfaces so the
// registry can hold handles behind a single capability contract rather than
// concrete types.
package core
