// Package delivery holds the entry points that drive the usecases: the API
// server, the outbox relay and the event worker.
package delivery

import "context"

// Delivery is a long-running entry point started by the fx application.
type Delivery interface {
	Serve(ctx context.Context) error
}
