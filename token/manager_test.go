package token_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	apperrors "github.com/jrsteele09/go-notes-server/internal/errors"
	"github.com/jrsteele09/go-notes-server/token"
	"github.com/stretchr/testify/require"
)

const (
	secretStr   = "1234"
	testSubject = "user-1"
)

type testFixture struct {
	now     time.Time
	codec   *token.Codec
	manager *token.Manager
}

func (f *testFixture) clock() time.Time {
	return f.now
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	f := &testFixture{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	f.codec = token.NewCodec(token.NewHMACSigner(secretStr), token.WithCodecNowFunc(f.clock))
	f.manager = token.New(f.codec,
		token.WithNowFunc(f.clock),
		token.WithKind(token.Access, "auth", time.Hour),
		token.WithKind(token.Signup, "signup", time.Hour),
	)
	return f
}

func TestCodec_RoundTrip(t *testing.T) {
	f := setupTestFixture(t)

	raw, err := f.manager.Issue(token.Access, testSubject, 1700000000)
	require.NoError(t, err)

	claims, err := f.manager.Decode(raw)
	require.NoError(t, err)
	require.Equal(t, testSubject, claims.Subject)
	require.Equal(t, "auth", claims.Type)
	require.NotNil(t, claims.Renewed)
	require.Equal(t, int64(1700000000), *claims.Renewed)
	require.Equal(t, f.now.Unix(), claims.IssuedAt.Unix())
	require.Equal(t, f.now.Add(time.Hour).Unix(), claims.ExpiresAt.Unix())
	require.True(t, f.manager.Is(claims, token.Access))
	require.False(t, f.manager.Is(claims, token.Refresh))
}

func TestCodec_Expired(t *testing.T) {
	f := setupTestFixture(t)

	raw, err := f.manager.Issue(token.Access, testSubject, 1)
	require.NoError(t, err)

	f.now = f.now.Add(59 * time.Minute)
	_, err = f.manager.Decode(raw)
	require.NoError(t, err)

	f.now = f.now.Add(2 * time.Minute)
	_, err = f.manager.Decode(raw)
	require.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestCodec_WrongSecret(t *testing.T) {
	f := setupTestFixture(t)

	other := token.New(token.NewCodec(token.NewHMACSigner("other-secret")))
	raw, err := other.Issue(token.Access, testSubject, 1)
	require.NoError(t, err)

	_, err = f.manager.Decode(raw)
	require.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestCodec_RetiredSecret(t *testing.T) {
	f := setupTestFixture(t)

	raw, err := f.manager.Issue(token.Access, testSubject, 1)
	require.NoError(t, err)

	rotated := token.New(token.NewCodec(token.NewHMACSigner("new-secret", secretStr), token.WithCodecNowFunc(f.clock)),
		token.WithNowFunc(f.clock),
		token.WithKind(token.Access, "auth", time.Hour),
	)
	claims, err := rotated.Decode(raw)
	require.NoError(t, err)
	require.Equal(t, testSubject, claims.Subject)

	f.now = f.now.Add(2 * time.Hour)
	_, err = rotated.Decode(raw)
	require.ErrorIs(t, err, apperrors.ErrInvalidToken)
	require.ErrorContains(t, err, "expired")

	fresh, err := rotated.Issue(token.Access, testSubject, 1)
	require.NoError(t, err)
	_, err = f.manager.Decode(fresh)
	require.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestCodec_Malformed(t *testing.T) {
	f := setupTestFixture(t)

	for _, raw := range []string{"", "abc", "a.b.c"} {
		_, err := f.manager.Decode(raw)
		require.ErrorIs(t, err, apperrors.ErrInvalidToken, raw)
	}
}

func TestCodec_RejectsNoneAlgorithm(t *testing.T) {
	f := setupTestFixture(t)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": testSubject,
		"typ": "auth",
		"exp": f.now.Add(time.Hour).Unix(),
	})
	raw, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = f.manager.Decode(raw)
	require.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestManager_IssueSignup(t *testing.T) {
	f := setupTestFixture(t)

	raw, err := f.manager.IssueSignup("newuser", "new@example.com", "+123")
	require.NoError(t, err)

	claims, err := f.manager.Decode(raw)
	require.NoError(t, err)
	require.Equal(t, "newuser", claims.Subject)
	require.Equal(t, "signup", claims.Type)
	require.Equal(t, "new@example.com", claims.Email)
	require.Equal(t, "+123", claims.Phone)
	require.Nil(t, claims.Renewed)
	require.True(t, f.manager.Is(claims, token.Signup))
}

func TestManager_IssueRejectsSignupKind(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.manager.Issue(token.Signup, testSubject, 1)
	require.ErrorIs(t, err, apperrors.ErrUnsupported)
}

func TestManager_KindsAreDistinct(t *testing.T) {
	f := setupTestFixture(t)

	raw, err := f.manager.Issue(token.PasswordReset, testSubject, 1)
	require.NoError(t, err)

	claims, err := f.manager.Decode(raw)
	require.NoError(t, err)
	require.Equal(t, "passwd", claims.Type)
	require.True(t, f.manager.Is(claims, token.PasswordReset))
	require.False(t, f.manager.Is(claims, token.Access))
}
