package push

import (
	"context"
	"errors"

	"rag-chat-be/pkg/wire"
)

// Sender delivers wire payloads to the live connection of a session.
//
// Delivery targets the handle attached at send time, so a session that
// reconnects mid-stream receives later payloads on the new connection.
type Sender interface {
	Send(ctx context.Context, sessionID string, payload wire.Payload) error
}

var (
	// ErrNoActiveConnection means the session exists but has no attached
	// connection. The caller decides whether that fails the operation.
	ErrNoActiveConnection = errors.New("session has no active connection")

	// ErrStaleConnection means the attached handle no longer maps to a
	// live connection anywhere. The handle has been cleared.
	ErrStaleConnection = errors.New("connection handle is stale")

	// ErrTransientSend means delivery failed in a way that is not known
	// to be permanent (slow consumer, write failure).
	ErrTransientSend = errors.New("transient send failure")
)
