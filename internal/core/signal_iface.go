package core

import "github.com/dkeye/Meet/internal/domain"

// Frame is one encoded outbound message.
type Frame []byte

// SignalConnection abstracts for a system messaging transport
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}

// Endpoint is a SignalConnection bound to a gateway-issued connection id.
// The relay addresses participants only through endpoints.
type Endpoint interface {
	SignalConnection
	ID() domain.ConnectionID
}

// PublishResult reports delivery stats/backpressure to the relay.
type PublishResult struct {
	SendTo  int
	Dropped []Endpoint
}
