package pg

import (
	"context"
	"database/sql"
	"strings"
	"time"

	apperrors "github.com/jrsteele09/go-notes-server/internal/errors"
	"github.com/jrsteele09/go-notes-server/internal/utils"
	"github.com/jrsteele09/go-notes-server/pagination"
	"github.com/jrsteele09/go-notes-server/users"
	"github.com/pkg/errors"
)

var _ users.UserRepo = (*UserRepo)(nil)

const userColumns = "id, username, password, email, phone, first_name, middle_name, last_name, birthday, avatar, renewed, " +
	"is_active, is_staff, is_superuser, permissions, tfa_secret, tfa_last_code, last_login, date_joined"

var userOrders = map[string]orderColumn{
	"id":          {name: "id"},
	"username":    {name: "username"},
	"date_joined": {name: "date_joined", cast: "::timestamptz"},
}

type UserRepo struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) Upsert(ctx context.Context, user *users.User) error {
	if user.ID == "" {
		user.ID = utils.UniqueID(22)
	}
	_, err := r.db.ExecContext(ctx, `INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		ON CONFLICT (id) DO UPDATE SET
			username = EXCLUDED.username, password = EXCLUDED.password, email = EXCLUDED.email,
			phone = EXCLUDED.phone, first_name = EXCLUDED.first_name, middle_name = EXCLUDED.middle_name,
			last_name = EXCLUDED.last_name, birthday = EXCLUDED.birthday, avatar = EXCLUDED.avatar,
			renewed = EXCLUDED.renewed, is_active = EXCLUDED.is_active, is_staff = EXCLUDED.is_staff,
			is_superuser = EXCLUDED.is_superuser, permissions = EXCLUDED.permissions,
			tfa_secret = EXCLUDED.tfa_secret, tfa_last_code = EXCLUDED.tfa_last_code,
			last_login = EXCLUDED.last_login`,
		user.ID, user.Username, user.PasswordHash, user.Email, user.Phone, user.FirstName, user.MiddleName,
		user.LastName, nullTime(user.Birthday), user.Avatar, user.Renewed, user.Active, user.Staff, user.Superuser,
		strings.Join(user.Permissions, " "), user.TFASecret, user.TFALastCode, nullTime(user.LastLogin), user.DateJoined,
	)
	if pgCode(err) == uniqueViolation {
		return apperrors.ErrUserExists
	}
	if err != nil {
		return errors.Wrapf(err, "UserRepo.Upsert %s", user.Username)
	}
	return nil
}

func (r *UserRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "UserRepo.Delete")
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (*users.User, error) {
	return r.get(ctx, "id", id)
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*users.User, error) {
	return r.get(ctx, "username", username)
}

func (r *UserRepo) get(ctx context.Context, column, value string) (*users.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE `+column+` = $1`, value)
	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrUserNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "UserRepo.get %s", column)
	}
	return user, nil
}

func (r *UserRepo) ExistsUsername(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`, username).Scan(&exists)
	if err != nil {
		return false, errors.Wrap(err, "UserRepo.ExistsUsername")
	}
	return exists, nil
}

func (r *UserRepo) Store(_ context.Context) pagination.Store[*users.User] {
	return &tableStore[*users.User]{
		db: r.db,
		newQuery: func() *windowQuery {
			q := &windowQuery{table: "users", columns: userColumns, orders: userOrders}
			q.filter("is_active")
			return q
		},
		scan: scanUser,
	}
}

func scanUser(row scanner) (*users.User, error) {
	var (
		u                   users.User
		birthday, lastLogin sql.NullTime
		permissions         string
	)
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Email, &u.Phone, &u.FirstName, &u.MiddleName,
		&u.LastName, &birthday, &u.Avatar, &u.Renewed, &u.Active, &u.Staff, &u.Superuser, &permissions,
		&u.TFASecret, &u.TFALastCode, &lastLogin, &u.DateJoined)
	if err != nil {
		return nil, err
	}
	u.Permissions = strings.Fields(permissions)
	u.Birthday = timePtr(birthday)
	u.LastLogin = timePtr(lastLogin)
	return &u, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	return &t.Time
}
