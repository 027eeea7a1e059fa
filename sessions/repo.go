package sessions

import "context"

// Repo is the keyed session store. One identifier maps to at most one
// record; concurrent writes to the same identifier may race with
// last-write-wins, but implementations must never corrupt a record.
type Repo interface {
	Get(ctx context.Context, id string) (Session, error)
	Upsert(ctx context.Context, id string, session Session) error

	// Regenerate moves the record stored under id to a freshly issued
	// identifier and returns it. The old identifier is invalid the moment
	// this returns — required after every login to defeat session fixation.
	Regenerate(ctx context.Context, id string) (string, error)

	// Delete destroys the record entirely. Deleting an unknown identifier is
	// not an error.
	Delete(ctx context.Context, id string) error
}
