package scheme

import "context"

// Store provides read access to the scheme catalog. Implementations return
// sentinel.ErrNotFound for unknown ids. Seed/Upsert exists for catalog
// bootstrap and tests; the application core never writes schemes.
type Store interface {
	Get(ctx context.Context, id string) (*Scheme, error)
	List(ctx context.Context) ([]*Scheme, error)
	Upsert(ctx context.Context, scheme *Scheme) error
}
