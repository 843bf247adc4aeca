// Package bus contains the in-memory publish/subscribe fabric agents use to
// address each other asynchronously. Delivery is best-effort and
// process-local: no persistence, no cross-process distribution.
//
// Beyond plain publish, the bus offers a correlation-based request/response
// helper (RequestResponse) that suspends the caller until a matching
// response is published or a timeout elapses. Pending correlation slots are
// always removed on both paths.
package bus
