package users

import (
	"context"

	"github.com/jrsteele09/go-notes-server/pagination"
)

// UserRepo stores users. Lookups return apperrors.ErrUserNotFound when nothing matches.
type UserRepo interface {
	Upsert(ctx context.Context, user *User) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	ExistsUsername(ctx context.Context, username string) (bool, error)

	// Store returns the active users as a pagination source
	Store(ctx context.Context) pagination.Store[*User]
}
