// internal/domain/observation/repository.go
package observation

import "context"

// Reader is the read contract the menu and chat flows depend on.
type Reader interface {
	// Latest returns the freshest observation for the zone display name.
	Latest(ctx context.Context, zoneName string) (*Observation, error)
}

// Writer is used only by the periodic refresh job.
type Writer interface {
	Save(ctx context.Context, obs *Observation) error
}

// Repository combines both sides of the store.
type Repository interface {
	Reader
	Writer
}
