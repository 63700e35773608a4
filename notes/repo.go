package notes

import (
	"context"

	"github.com/jrsteele09/go-notes-server/pagination"
)

// Repo stores notes. Lookups return apperrors.ErrNoteNotFound when nothing matches.
type Repo interface {
	Upsert(ctx context.Context, note *Note) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*Note, error)

	// Store pages over the notes of userID, or over every note when userID is empty.
	Store(ctx context.Context, userID string) pagination.Store[*Note]

	// Comments pages over the notes left by visitors.
	Comments(ctx context.Context) pagination.Store[*Note]
}
