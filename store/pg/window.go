package pg

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jrsteele09/go-notes-server/pagination"
	"github.com/pkg/errors"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// orderColumn is a column a window may be ordered by. Cursor values are
// strings, cast turns them back into the column type.
type orderColumn struct {
	name string
	cast string
}

// windowQuery builds the SELECT behind one page of a table.
type windowQuery struct {
	table   string
	columns string
	orders  map[string]orderColumn
	where   []string
	args    []any
}

func (q *windowQuery) filter(cond string, args ...any) {
	placeholders := make([]any, len(args))
	for i, arg := range args {
		q.args = append(q.args, arg)
		placeholders[i] = len(q.args)
	}
	q.where = append(q.where, fmt.Sprintf(cond, placeholders...))
}

func (q *windowQuery) whereClause() string {
	if len(q.where) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(q.where, " AND ")
}

func (q *windowQuery) countSQL() (string, []any) {
	return "SELECT count(*) FROM " + q.table + q.whereClause(), q.args
}

// windowSQL selects the rows of w. Windows read from the end are selected
// in reverse order and must be reversed by the caller.
func (q *windowQuery) windowSQL(w pagination.Window) (string, []any) {
	col, ok := q.orders[w.Field]
	if !ok {
		col = q.orders["id"]
	}
	after, before := ">", "<"
	if w.Desc {
		after, before = "<", ">"
	}
	if w.After != nil {
		q.filter(col.name+" "+after+" $%d"+col.cast, *w.After)
	}
	if w.Before != nil {
		q.filter(col.name+" "+before+" $%d"+col.cast, *w.Before)
	}

	direction := "ASC"
	if w.Desc != w.FromEnd {
		direction = "DESC"
	}
	query := fmt.Sprintf("SELECT %s FROM %s%s ORDER BY %s %s", q.columns, q.table, q.whereClause(), col.name, direction)
	if !w.FromEnd && w.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", w.Offset)
	}
	query += fmt.Sprintf(" LIMIT %d", w.Limit)
	return query, q.args
}

type scanner interface {
	Scan(dest ...any) error
}

// tableStore pages over the rows of a windowQuery. newQuery must return a
// fresh query on every call.
type tableStore[T any] struct {
	db       *sql.DB
	newQuery func() *windowQuery
	scan     func(row scanner) (T, error)
}

func (s *tableStore[T]) Window(ctx context.Context, w pagination.Window) ([]T, error) {
	query, args := s.newQuery().windowSQL(w)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "tableStore.Window query")
	}
	defer rows.Close()

	items := make([]T, 0, w.Limit)
	for rows.Next() {
		item, err := s.scan(rows)
		if err != nil {
			return nil, errors.Wrap(err, "tableStore.Window scan")
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "tableStore.Window rows")
	}
	if w.FromEnd {
		slices.Reverse(items)
	}
	return items, nil
}

func (s *tableStore[T]) Count(ctx context.Context) (int, error) {
	query, args := s.newQuery().countSQL()
	var count int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, errors.Wrap(err, "tableStore.Count")
	}
	return count, nil
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
