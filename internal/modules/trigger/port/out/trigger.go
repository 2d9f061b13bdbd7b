package out

import (
	"context"

	"activitylog/internal/modules/trigger/domain"
)

type ManifestStore interface {
	Load(ctx context.Context) ([]domain.Manifest, error)
}

// Host starts listener processes. The returned Listener owns the process
// until Close.
type Host interface {
	Launch(ctx context.Context, manifest domain.Manifest) (Listener, error)
}

type Listener interface {
	Metadata(ctx context.Context) (domain.Metadata, error)
	Configure(ctx context.Context, settings map[string]string) error
	Poll(ctx context.Context) ([]domain.Event, error)
	Close()
}

// Dispatcher applies listener events to the tracker.
type Dispatcher interface {
	Dispatch(ctx context.Context, event domain.Event) error
}
