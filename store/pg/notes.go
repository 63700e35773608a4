package pg

import (
	"context"
	"database/sql"

	apperrors "github.com/jrsteele09/go-notes-server/internal/errors"
	"github.com/jrsteele09/go-notes-server/notes"
	"github.com/jrsteele09/go-notes-server/pagination"
	"github.com/pkg/errors"
)

var _ notes.Repo = (*NoteRepo)(nil)

const noteColumns = "id, user_id, content, comment, created, modified"

var noteOrders = map[string]orderColumn{
	"id":       {name: "id"},
	"created":  {name: "created", cast: "::timestamptz"},
	"modified": {name: "modified", cast: "::timestamptz"},
}

type NoteRepo struct {
	db *sql.DB
}

func NewNoteRepo(db *sql.DB) *NoteRepo {
	return &NoteRepo{db: db}
}

func (r *NoteRepo) Upsert(ctx context.Context, note *notes.Note) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO notes (`+noteColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			user_id = EXCLUDED.user_id, content = EXCLUDED.content,
			comment = EXCLUDED.comment, modified = EXCLUDED.modified`,
		note.ID, note.UserID, note.Content, note.Comment, note.Created, note.Modified,
	)
	if pgCode(err) == foreignKeyViolation {
		return errors.Wrapf(apperrors.ErrUserNotFound, "NoteRepo.Upsert %s", note.ID)
	}
	if err != nil {
		return errors.Wrapf(err, "NoteRepo.Upsert %s", note.ID)
	}
	return nil
}

func (r *NoteRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM notes WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "NoteRepo.Delete")
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return apperrors.ErrNoteNotFound
	}
	return nil
}

func (r *NoteRepo) GetByID(ctx context.Context, id string) (*notes.Note, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+noteColumns+` FROM notes WHERE id = $1`, id)
	note, err := scanNote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrNoteNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "NoteRepo.GetByID")
	}
	return note, nil
}

func (r *NoteRepo) Store(_ context.Context, userID string) pagination.Store[*notes.Note] {
	return r.store(func(q *windowQuery) {
		if userID != "" {
			q.filter("user_id = $%d", userID)
		}
	})
}

func (r *NoteRepo) Comments(_ context.Context) pagination.Store[*notes.Note] {
	return r.store(func(q *windowQuery) {
		q.filter("comment")
	})
}

func (r *NoteRepo) store(filter func(q *windowQuery)) pagination.Store[*notes.Note] {
	return &tableStore[*notes.Note]{
		db: r.db,
		newQuery: func() *windowQuery {
			q := &windowQuery{table: "notes", columns: noteColumns, orders: noteOrders}
			filter(q)
			return q
		},
		scan: scanNote,
	}
}

func scanNote(row scanner) (*notes.Note, error) {
	var n notes.Note
	if err := row.Scan(&n.ID, &n.UserID, &n.Content, &n.Comment, &n.Created, &n.Modified); err != nil {
		return nil, err
	}
	return &n, nil
}
