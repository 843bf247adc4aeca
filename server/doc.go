// Package server wires the coordination core to its external interfaces:
// the conversational query endpoint, the status endpoint and the streaming
// websocket channel. It is deliberately thin glue; routing, synthesis and
// fan-out live in their own packages.
package server
