// Package broker defines the publish-only message-broker boundary used by
// skills to deliver device-control payloads.
//
// The pipeline never subscribes, never reconfigures the connection, and never
// waits on the broker beyond the publish call itself; connection lifecycle
// (keepalive, reconnect) is owned by the implementation.
package broker

import "context"

// Publisher delivers one payload to the broker topic configured at
// construction time. The payload is sent verbatim with no envelope.
//
// Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, payload string) error
}
