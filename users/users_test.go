package users_test

import (
	"context"
	"strings"
	"testing"
	"time"

	apperrors "github.com/jrsteele09/go-notes-server/internal/errors"
	"github.com/jrsteele09/go-notes-server/pagination"
	"github.com/jrsteele09/go-notes-server/users"
	fakeuserrepo "github.com/jrsteele09/go-notes-server/users/repofake"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func TestValidateUsername(t *testing.T) {
	require.True(t, users.ValidateUsername("user.name-1_@x"))
	require.False(t, users.ValidateUsername(""))
	require.False(t, users.ValidateUsername("with space"))
	require.False(t, users.ValidateUsername(strings.Repeat("a", 201)))
}

func TestUser_Password(t *testing.T) {
	u := users.New("user", testNow)
	require.True(t, u.Active)
	require.Len(t, u.ID, 22)
	require.False(t, u.CheckPassword(""))

	require.NoError(t, u.SetPassword("p455w0rd", false, testNow.Add(time.Hour)))
	require.True(t, u.CheckPassword("p455w0rd"))
	require.False(t, u.CheckPassword("wrong"))
	require.Equal(t, testNow.Unix(), u.Rnd())

	require.NoError(t, u.SetPassword("n3w", true, testNow.Add(time.Hour)))
	require.Equal(t, testNow.Add(time.Hour).Unix(), u.Rnd())
}

func TestUser_HasPerm(t *testing.T) {
	u := users.New("staff", testNow)
	u.Permissions = []string{users.PermViewUser}
	require.True(t, u.HasPerm(users.PermViewUser))
	require.False(t, u.HasPerm(users.PermDeleteUser))

	u.Superuser = true
	require.True(t, u.HasPerm(users.PermDeleteUser))

	u.Active = false
	require.False(t, u.HasPerm(users.PermViewUser))
}

func TestUser_TFA(t *testing.T) {
	u := users.New("user", testNow)
	require.False(t, u.TFAActive())

	secret, err := u.EnableTFA()
	require.NoError(t, err)
	require.Len(t, secret, 32)
	require.True(t, u.TFAActive())

	code, err := u.TFACode(testNow)
	require.NoError(t, err)
	require.True(t, u.CheckTFACode(code, testNow))
	require.False(t, u.CheckTFACode(code, testNow), "codes cannot be replayed")

	qr, err := u.TFAQRCode()
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(qr, "data:image/png;base64,"))
	require.Contains(t, u.ProvisioningURI(), "issuer=App")

	u.DisableTFA()
	require.False(t, u.TFAActive())
	require.False(t, u.CheckTFACode(code, testNow))
}

func TestFakeUserRepo(t *testing.T) {
	ctx := context.Background()
	repo := fakeuserrepo.NewFakeUserRepo()

	alice := users.New("alice", testNow)
	require.NoError(t, repo.Upsert(ctx, alice))

	got, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, alice.ID, got.ID)

	got.FirstName = "changed"
	stored, err := repo.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	require.Empty(t, stored.FirstName)

	clash := users.New("alice", testNow)
	require.ErrorIs(t, repo.Upsert(ctx, clash), apperrors.ErrUserExists)

	exists, err := repo.ExistsUsername(ctx, "alice")
	require.NoError(t, err)
	require.True(t, exists)

	inactive := users.New("ghost", testNow)
	inactive.Active = false
	require.NoError(t, repo.Upsert(ctx, inactive))

	count, err := repo.Store(ctx).Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, count)

	page, err := repo.Store(ctx).Window(ctx, pagination.Window{Field: "username", Limit: 10})
	require.NoError(t, err)
	require.Len(t, page, 1)

	require.NoError(t, repo.Delete(ctx, alice.ID))
	_, err = repo.GetByUsername(ctx, "alice")
	require.ErrorIs(t, err, apperrors.ErrUserNotFound)
	require.ErrorIs(t, repo.Delete(ctx, alice.ID), apperrors.ErrUserNotFound)
}
