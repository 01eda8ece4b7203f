package arena

import (
	"context"

	"github.com/tlau/rpsduel/internal/protocol"
)

// Transport is one client's full-duplex text-frame stream, already parsed
// at the boundary. Implementations must close the Frames channel when the
// connection closes so receive loops observe the teardown.
type Transport interface {
	// Frames yields decoded client frames in arrival order. The channel
	// closes when the connection does.
	Frames() <-chan protocol.ClientFrame

	// Send writes a frame to the client. An error means the connection
	// is unusable.
	Send(frame protocol.ServerFrame) error

	// Ping round-trips a transport-level liveness probe.
	Ping(ctx context.Context) error

	// Close tears the connection down. Safe to call more than once.
	Close() error
}
