// Package ports defines interfaces (contracts) between layers.
// These interfaces enable dependency injection and testability.
// Implementations live in adapters/.
package ports

import (
	"context"

	"github.com/artpar/fieldmap/domain/diag"
	"github.com/artpar/fieldmap/domain/payload"
)

// -----------------------------------------------------------------------------
// Infrastructure Ports
// -----------------------------------------------------------------------------

// IDGenerator generates unique identifiers.
type IDGenerator interface {
	New() string
}

// -----------------------------------------------------------------------------
// External Service Ports
// -----------------------------------------------------------------------------

// Transport delivers an outbound request built from an extraction and
// returns the upstream's response.
type Transport interface {
	// Do sends the request. Transport-level failures (connection,
	// timeout) are errors; HTTP error statuses are responses.
	Do(ctx context.Context, req payload.Request) (payload.Response, error)
}

// -----------------------------------------------------------------------------
// Observability Ports
// -----------------------------------------------------------------------------

// Observer receives engine activity, for metrics.
type Observer interface {
	// ObserveExtraction records one completed extraction.
	ObserveExtraction(container string, fields int, diags diag.List)

	// ObserveRequest records one upstream round trip.
	ObserveRequest(method string, status int, seconds float64)
}
