package ports

import (
	"context"

	"github.com/bft-labs/headtrack/internal/domain"
)

// PoseSender delivers frame batches. Implementations do not retry; the agent
// backs off and resends the same batch on error.
type PoseSender interface {
	Send(ctx context.Context, batch *domain.Batch, metadata SendMetadata) error
}

// SendMetadata describes the sending agent.
type SendMetadata struct {
	// Device is the sampled device index.
	Device int

	// Driver is the SDK driver name (e.g. "sim", "libovr").
	Driver string

	// Hostname is the agent's hostname
	Hostname string

	// OSArch is the operating system and architecture (e.g., "linux/amd64")
	OSArch string

	// AuthKey is the API authentication key
	AuthKey string

	// ServiceURL is the base URL of the ingestion service
	ServiceURL string
}
