package fakenoterepo

import (
	"context"
	"sync"

	apperrors "github.com/jrsteele09/go-notes-server/internal/errors"
	"github.com/jrsteele09/go-notes-server/notes"
	"github.com/jrsteele09/go-notes-server/pagination"
)

var _ notes.Repo = (*FakeNoteRepo)(nil)

type FakeNoteRepo struct {
	notes map[string]*notes.Note
	lock  sync.RWMutex
}

func NewFakeNoteRepo() *FakeNoteRepo {
	return &FakeNoteRepo{notes: make(map[string]*notes.Note)}
}

func (nr *FakeNoteRepo) Upsert(_ context.Context, note *notes.Note) error {
	nr.lock.Lock()
	defer nr.lock.Unlock()

	nr.notes[note.ID] = note.Clone()
	return nil
}

func (nr *FakeNoteRepo) Delete(_ context.Context, id string) error {
	nr.lock.Lock()
	defer nr.lock.Unlock()

	if _, ok := nr.notes[id]; !ok {
		return apperrors.ErrNoteNotFound
	}
	delete(nr.notes, id)
	return nil
}

func (nr *FakeNoteRepo) GetByID(_ context.Context, id string) (*notes.Note, error) {
	nr.lock.RLock()
	defer nr.lock.RUnlock()

	note, ok := nr.notes[id]
	if !ok {
		return nil, apperrors.ErrNoteNotFound
	}
	return note.Clone(), nil
}

func (nr *FakeNoteRepo) Store(_ context.Context, userID string) pagination.Store[*notes.Note] {
	return nr.snapshot(func(note *notes.Note) bool {
		return userID == "" || note.UserID == userID
	})
}

func (nr *FakeNoteRepo) Comments(_ context.Context) pagination.Store[*notes.Note] {
	return nr.snapshot(func(note *notes.Note) bool {
		return note.Comment
	})
}

func (nr *FakeNoteRepo) snapshot(keep func(note *notes.Note) bool) pagination.Store[*notes.Note] {
	nr.lock.RLock()
	defer nr.lock.RUnlock()

	snapshot := make([]*notes.Note, 0, len(nr.notes))
	for _, note := range nr.notes {
		if keep(note) {
			snapshot = append(snapshot, note.Clone())
		}
	}
	return pagination.NewSliceStore(snapshot)
}
