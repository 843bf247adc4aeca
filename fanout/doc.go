// Package fanout tracks live external observers and pushes coordination and
// telemetry snapshots to them, individually, by broadcast or by topic. The
// Manager is a pure transport fan-out layer: it has no knowledge of message
// content and is driven externally, normally by the SnapshotPublisher's
// periodic loop.
//
// Delivery is best-effort and self-healing: a connection whose send fails is
// pruned, and the failure is never surfaced to other connections.
package fanout
