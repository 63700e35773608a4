package fakeuserrepo

import (
	"context"
	"sync"

	apperrors "github.com/jrsteele09/go-notes-server/internal/errors"
	"github.com/jrsteele09/go-notes-server/internal/utils"
	"github.com/jrsteele09/go-notes-server/pagination"
	"github.com/jrsteele09/go-notes-server/users"
)

var _ users.UserRepo = (*FakeUserRepo)(nil)

type FakeUserRepo struct {
	users       map[string]*users.User
	usernameIDs map[string]string // username to user id
	lock        sync.RWMutex
}

func NewFakeUserRepo() *FakeUserRepo {
	return &FakeUserRepo{
		users:       make(map[string]*users.User),
		usernameIDs: make(map[string]string),
	}
}

func (ur *FakeUserRepo) Upsert(_ context.Context, user *users.User) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	if user.ID == "" {
		user.ID = utils.UniqueID(22)
	}
	if id, ok := ur.usernameIDs[user.Username]; ok && id != user.ID {
		return apperrors.ErrUserExists
	}
	if old, ok := ur.users[user.ID]; ok && old.Username != user.Username {
		delete(ur.usernameIDs, old.Username)
	}
	ur.users[user.ID] = user.Clone()
	ur.usernameIDs[user.Username] = user.ID
	return nil
}

func (ur *FakeUserRepo) Delete(_ context.Context, id string) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	user, ok := ur.users[id]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	delete(ur.usernameIDs, user.Username)
	delete(ur.users, id)
	return nil
}

func (ur *FakeUserRepo) GetByID(_ context.Context, id string) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	user, ok := ur.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return user.Clone(), nil
}

func (ur *FakeUserRepo) GetByUsername(ctx context.Context, username string) (*users.User, error) {
	ur.lock.RLock()
	id, ok := ur.usernameIDs[username]
	ur.lock.RUnlock()

	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return ur.GetByID(ctx, id)
}

func (ur *FakeUserRepo) ExistsUsername(_ context.Context, username string) (bool, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	_, ok := ur.usernameIDs[username]
	return ok, nil
}

func (ur *FakeUserRepo) Store(_ context.Context) pagination.Store[*users.User] {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	snapshot := make([]*users.User, 0, len(ur.users))
	for _, user := range ur.users {
		if user.Active {
			snapshot = append(snapshot, user.Clone())
		}
	}
	return pagination.NewSliceStore(snapshot)
}
