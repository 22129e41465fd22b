package application

import (
	"context"

	"github.com/google/uuid"
)

// Store persists application aggregates. Update is a compare-and-swap: the
// expected version is the aggregate's version as it was loaded, and
// implementations return sentinel.ErrConflict when another writer committed
// in between. Implementations return sentinel.ErrNotFound for unknown IDs.
type Store interface {
	Create(ctx context.Context, app *Application) error
	Get(ctx context.Context, id uuid.UUID) (*Application, error)
	ListByApplicant(ctx context.Context, applicantID uuid.UUID) ([]*Application, error)
	List(ctx context.Context) ([]*Application, error)
	Update(ctx context.Context, app *Application, expectedVersion int) error
}
