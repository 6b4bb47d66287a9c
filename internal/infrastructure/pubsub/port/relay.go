package port

import "context"

// Envelope carries one room emission between api nodes.
// Origin is the publishing node id so a node can skip its own echoes.
type Envelope struct {
	Origin  string `json:"origin"`
	Room    string `json:"room"`
	Payload []byte `json:"payload"`
}

// Relay fans room emissions out to every api node.
type Relay interface {
	Publish(ctx context.Context, env Envelope) error
	// Subscribe delivers envelopes to fn until ctx is canceled or the relay is closed.
	Subscribe(ctx context.Context, fn func(Envelope)) error
	Close() error
}
