package accounts_test

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/jrsteele09/go-notes-server/accounts"
	"github.com/jrsteele09/go-notes-server/auth"
	apperrors "github.com/jrsteele09/go-notes-server/internal/errors"
	"github.com/jrsteele09/go-notes-server/internal/utils"
	"github.com/jrsteele09/go-notes-server/locks"
	fakenoterepo "github.com/jrsteele09/go-notes-server/notes/repofake"
	"github.com/jrsteele09/go-notes-server/social"
	"github.com/jrsteele09/go-notes-server/token"
	"github.com/jrsteele09/go-notes-server/users"
	fakeuserrepo "github.com/jrsteele09/go-notes-server/users/repofake"
	"github.com/stretchr/testify/require"
)

const password = "p455w0rd"

type fakeMailer struct {
	signupTokens []string
	passwdTokens []string
}

func (m *fakeMailer) SendSignupMail(_ context.Context, code, _ string) error {
	m.signupTokens = append(m.signupTokens, code)
	return nil
}

func (m *fakeMailer) SendPasswordResetMail(_ context.Context, token, _, _ string) error {
	m.passwdTokens = append(m.passwdTokens, token)
	return nil
}

type testFixture struct {
	now     time.Time
	users   *fakeuserrepo.FakeUserRepo
	notes   *fakenoterepo.FakeNoteRepo
	tokens  *token.Manager
	limiter *locks.Limiter
	mailer  *fakeMailer
	svc     *accounts.Service
	user    *users.User
}

func (f *testFixture) clock() time.Time {
	return f.now
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	f := &testFixture{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC), mailer: &fakeMailer{}}
	f.users = fakeuserrepo.NewFakeUserRepo()
	f.notes = fakenoterepo.NewFakeNoteRepo()
	f.tokens = token.New(token.NewCodec(token.NewHMACSigner("secret"), token.WithCodecNowFunc(f.clock)), token.WithNowFunc(f.clock))
	f.limiter = locks.NewLimiter(locks.NewMemoryCache(locks.WithMemoryNowFunc(f.clock)))

	registry := social.NewRegistry()
	registry.Register("dummy", social.Dummy{})

	authn := auth.NewAuthenticator(f.tokens, f.users)
	f.svc = accounts.NewService(f.users, f.notes, f.tokens, authn, f.limiter,
		accounts.WithNowFunc(f.clock),
		accounts.WithMailer(f.mailer),
		accounts.WithSocialRegistry(registry),
		accounts.WithFileStore(accounts.NewDiskStore(t.TempDir(), "http://files.test/media")),
	)

	f.user = f.createUser(t, "user")
	return f
}

func (f *testFixture) createUser(t *testing.T, username string) *users.User {
	t.Helper()

	user := users.New(username, f.now)
	require.NoError(t, user.SetPassword(password, false, f.now))
	require.NoError(t, f.users.Upsert(context.Background(), user))
	return user
}

// anon builds an invocation without credentials.
func (f *testFixture) anon() *auth.Invocation {
	return &auth.Invocation{Request: auth.NewRequest("", "10.0.0.1")}
}

func (f *testFixture) bearer(raw string) *auth.Invocation {
	return &auth.Invocation{Request: auth.NewRequest("Bearer "+raw, "10.0.0.1")}
}

func (f *testFixture) as(t *testing.T, user *users.User) *auth.Invocation {
	t.Helper()

	fresh, err := f.users.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	raw, err := f.tokens.Issue(token.Access, fresh.ID, fresh.Rnd())
	require.NoError(t, err)
	return f.bearer(raw)
}

func requireFieldError(t *testing.T, err error, field, message string) {
	t.Helper()

	fieldErrors, ok := apperrors.FieldErrors(err)
	require.True(t, ok, "unexpected error %v", err)
	require.Contains(t, fieldErrors, apperrors.FieldError{Field: field, Message: message})
}

func TestSignin_IssuesAccessToken(t *testing.T) {
	f := setupTestFixture(t)

	result, err := f.svc.Signin(context.Background(), f.anon(), accounts.SigninInput{Username: "user", Password: password})
	require.NoError(t, err)
	require.Equal(t, f.user.ID, result.User.ID)

	claims, err := f.tokens.Decode(result.Token)
	require.NoError(t, err)
	require.Equal(t, "auth", claims.Type)
	require.Equal(t, f.user.ID, claims.Subject)

	refresh, err := f.tokens.Decode(result.RefreshToken)
	require.NoError(t, err)
	require.Equal(t, "auth_refresh", refresh.Type)

	stored, err := f.users.GetByID(context.Background(), f.user.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.LastLogin)
}

func TestSignin_Validation(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	_, err := f.svc.Signin(ctx, f.anon(), accounts.SigninInput{})
	requireFieldError(t, err, "username", accounts.MsgRequired)
	requireFieldError(t, err, "password", accounts.MsgRequired)

	_, err = f.svc.Signin(ctx, f.anon(), accounts.SigninInput{Username: "nobody", Password: password})
	requireFieldError(t, err, "username", accounts.MsgUserNotFound)

	_, err = f.svc.Signin(ctx, f.anon(), accounts.SigninInput{Username: "user", Password: "wrong"})
	requireFieldError(t, err, "password", accounts.MsgWrongPassword)
	require.Equal(t, http.StatusBadRequest, apperrors.StatusCode(err))
}

func TestSignin_Inactive(t *testing.T) {
	f := setupTestFixture(t)
	inactive := f.createUser(t, "inactive")
	inactive.Active = false
	require.NoError(t, f.users.Upsert(context.Background(), inactive))

	_, err := f.svc.Signin(context.Background(), f.anon(), accounts.SigninInput{Username: "inactive", Password: password})
	requireFieldError(t, err, "username", accounts.MsgUserInactive)
}

func TestSignin_ThrottledAfterThreeCalls(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	in := accounts.SigninInput{Username: "user", Password: "wrong"}

	for i := 0; i < 3; i++ {
		_, err := f.svc.Signin(ctx, f.anon(), in)
		requireFieldError(t, err, "password", accounts.MsgWrongPassword)
	}
	_, err := f.svc.Signin(ctx, f.anon(), accounts.SigninInput{Username: "user", Password: password})
	var throttled *locks.ThrottledError
	require.ErrorAs(t, err, &throttled)
	require.Contains(t, err.Error(), "3 calls every 600 seconds")
	requireFieldError(t, err, "throttle", `"Signin" throttled to 3 calls every 600 seconds.`)

	// another address has its own window
	other := &auth.Invocation{Request: auth.NewRequest("", "10.0.0.2")}
	_, err = f.svc.Signin(ctx, other, accounts.SigninInput{Username: "user", Password: password})
	require.NoError(t, err)

	f.now = f.now.Add(601 * time.Second)
	_, err = f.svc.Signin(ctx, f.anon(), accounts.SigninInput{Username: "user", Password: password})
	require.NoError(t, err)
}

func TestSignin_TFARequired(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	enabled, err := f.svc.EnableTFA(ctx, f.as(t, f.user), password)
	require.NoError(t, err)
	require.NotEmpty(t, enabled.Secret)
	require.True(t, strings.HasPrefix(enabled.QRCode, "data:image/png;base64,"))

	_, err = f.svc.Signin(ctx, f.anon(), accounts.SigninInput{Username: "user", Password: password})
	requireFieldError(t, err, "tfa_code", accounts.MsgRequired)

	code, err := enabled.User.TFACode(f.now)
	require.NoError(t, err)
	_, err = f.svc.Signin(ctx, f.anon(), accounts.SigninInput{Username: "user", Password: password, TFACode: code})
	require.NoError(t, err)

	// an accepted code cannot be replayed
	_, err = f.svc.Signin(ctx, f.anon(), accounts.SigninInput{Username: "user", Password: password, TFACode: code})
	requireFieldError(t, err, "tfa_code", accounts.MsgWrongTFACode)
}

func TestEnableDisableTFA(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	_, err := f.svc.EnableTFA(ctx, f.anon(), password)
	require.Equal(t, http.StatusUnauthorized, apperrors.StatusCode(err))

	_, err = f.svc.EnableTFA(ctx, f.as(t, f.user), "wrong")
	requireFieldError(t, err, "password", accounts.MsgWrongPassword)

	_, err = f.svc.DisableTFA(ctx, f.as(t, f.user), password, "123456")
	requireFieldError(t, err, "tfa_secret", accounts.MsgTFANotEnabled)

	enabled, err := f.svc.EnableTFA(ctx, f.as(t, f.user), password)
	require.NoError(t, err)
	_, err = f.svc.EnableTFA(ctx, f.as(t, f.user), password)
	requireFieldError(t, err, "tfa_secret", accounts.MsgTFAEnabled)

	_, err = f.svc.DisableTFA(ctx, f.as(t, f.user), password, "")
	requireFieldError(t, err, "tfa_code", accounts.MsgRequired)

	code, err := enabled.User.TFACode(f.now)
	require.NoError(t, err)
	disabled, err := f.svc.DisableTFA(ctx, f.as(t, f.user), password, code)
	require.NoError(t, err)
	require.False(t, disabled.User.TFAActive())
}

func TestRefreshToken(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	signedIn, err := f.svc.Signin(ctx, f.anon(), accounts.SigninInput{Username: "user", Password: password})
	require.NoError(t, err)

	_, err = f.svc.RefreshToken(ctx, f.bearer(signedIn.Token))
	var authErr *auth.AuthError
	require.ErrorAs(t, err, &authErr)
	require.Equal(t, `The token type should be "auth_refresh".`, authErr.Message)

	refreshed, err := f.svc.RefreshToken(ctx, f.bearer(signedIn.RefreshToken))
	require.NoError(t, err)
	require.Empty(t, refreshed.RefreshToken)

	me, err := f.svc.Me(ctx, f.bearer(refreshed.Token))
	require.NoError(t, err)
	require.Equal(t, "user", me.Username)
}

func TestChangePassword_RevokesTokens(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	old := f.as(t, f.user)

	_, err := f.svc.ChangePassword(ctx, f.as(t, f.user), accounts.ChangePasswordInput{Current: "wrong", Password: "n3w"})
	requireFieldError(t, err, "current", accounts.MsgWrongPassword)

	_, err = f.svc.ChangePassword(ctx, f.as(t, f.user), accounts.ChangePasswordInput{Current: password, Password: password})
	requireFieldError(t, err, "password", accounts.MsgSamePassword)

	f.now = f.now.Add(time.Minute)
	_, err = f.svc.ChangePassword(ctx, f.as(t, f.user), accounts.ChangePasswordInput{Current: password, Password: "n3w"})
	require.NoError(t, err)

	_, err = f.svc.Me(ctx, &auth.Invocation{Request: auth.NewRequest(old.Request.Header, "10.0.0.1")})
	var authErr *auth.AuthError
	require.ErrorAs(t, err, &authErr)
	require.Equal(t, "The token has been revoked.", authErr.Message)

	_, err = f.svc.Signin(ctx, f.anon(), accounts.SigninInput{Username: "user", Password: "n3w"})
	require.NoError(t, err)
}

func TestChangePassword_KeepKeys(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	old := f.as(t, f.user)

	f.now = f.now.Add(time.Minute)
	_, err := f.svc.ChangePassword(ctx, f.as(t, f.user), accounts.ChangePasswordInput{Current: password, Password: "n3w", ExpireKeys: utils.Ptr(false)})
	require.NoError(t, err)

	_, err = f.svc.Me(ctx, &auth.Invocation{Request: auth.NewRequest(old.Request.Header, "10.0.0.1")})
	require.NoError(t, err)
}

func TestSignupFlow(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	available, err := f.svc.CheckUser(ctx, f.anon(), "user")
	require.NoError(t, err)
	require.False(t, available)
	available, err = f.svc.CheckUser(ctx, f.anon(), "newbie")
	require.NoError(t, err)
	require.True(t, available)
	_, err = f.svc.CheckUser(ctx, f.anon(), "bad name")
	requireFieldError(t, err, "username", accounts.MsgInvalidUsername)

	err = f.svc.SendSignupToken(ctx, f.anon(), accounts.SignupTokenInput{Username: "user", Email: "nope"})
	requireFieldError(t, err, "username", accounts.MsgUsernameInUse)
	requireFieldError(t, err, "email", accounts.MsgInvalidEmail)

	// the rejected call used up the window of this address
	err = f.svc.SendSignupToken(ctx, f.anon(), accounts.SignupTokenInput{Username: "newbie", Email: "new@mail.com"})
	var throttled *locks.ThrottledError
	require.ErrorAs(t, err, &throttled)

	f.now = f.now.Add(301 * time.Second)
	require.NoError(t, f.svc.SendSignupToken(ctx, f.anon(), accounts.SignupTokenInput{Username: "newbie", Email: "new@mail.com", Phone: "555"}))
	require.Len(t, f.mailer.signupTokens, 1)
	signupToken := f.mailer.signupTokens[0]

	require.NoError(t, f.svc.CheckSignupToken(ctx, f.bearer(signupToken)))
	require.Error(t, f.svc.CheckSignupToken(ctx, f.anon()))

	user, err := f.svc.Signup(ctx, f.bearer(signupToken), accounts.SignupInput{
		Password: password,
		Profile:  accounts.ProfileInput{FirstName: utils.Ptr("New")},
	})
	require.NoError(t, err)
	require.Equal(t, "newbie", user.Username)
	require.Equal(t, "new@mail.com", user.Email)
	require.Equal(t, "555", user.Phone)
	require.Equal(t, "New", user.FirstName)

	_, err = f.svc.Signup(ctx, f.bearer(signupToken), accounts.SignupInput{Password: password})
	requireFieldError(t, err, "token", accounts.MsgInvalidToken)

	_, err = f.svc.Signin(ctx, f.anon(), accounts.SigninInput{Username: "newbie", Password: password})
	require.NoError(t, err)
}

func TestPasswordResetFlow(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	old := f.as(t, f.user)

	err := f.svc.SendPasswordToken(ctx, f.anon(), "nobody")
	requireFieldError(t, err, "username", accounts.MsgUserNotFound)

	f.now = f.now.Add(301 * time.Second)
	require.NoError(t, f.svc.SendPasswordToken(ctx, f.anon(), "user"))
	require.Len(t, f.mailer.passwdTokens, 1)
	passwdToken := f.mailer.passwdTokens[0]

	require.NoError(t, f.svc.CheckPasswordToken(ctx, f.bearer(passwdToken)))
	require.Error(t, f.svc.CheckPasswordToken(ctx, old))

	f.now = f.now.Add(time.Minute)
	_, err = f.svc.ResetPassword(ctx, f.bearer(passwdToken), "r3set")
	require.NoError(t, err)

	// the reset token is spent along with every other token
	_, err = f.svc.ResetPassword(ctx, f.bearer(passwdToken), "again")
	require.Equal(t, http.StatusUnauthorized, apperrors.StatusCode(err))
	_, err = f.svc.Me(ctx, &auth.Invocation{Request: auth.NewRequest(old.Request.Header, "10.0.0.1")})
	require.Equal(t, http.StatusUnauthorized, apperrors.StatusCode(err))
}

func TestSocialSignin(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	_, err := f.svc.SocialSignin(ctx, f.anon(), accounts.SocialSigninInput{Social: "twitter", Token: "abc"})
	requireFieldError(t, err, "social", accounts.MsgSocialNotImplemented)

	result, err := f.svc.SocialSignin(ctx, f.anon(), accounts.SocialSigninInput{Social: "dummy", Token: "abc"})
	require.NoError(t, err)
	require.Equal(t, "dummy.900150983cd24fb0d6963f7d28e17f72", result.User.Username)
	require.False(t, result.User.CheckPassword(""))

	again, err := f.svc.SocialSignin(ctx, f.anon(), accounts.SocialSigninInput{Social: "dummy", Token: "abc"})
	require.NoError(t, err)
	require.Equal(t, result.User.ID, again.User.ID)
}

func TestUpdateMeAndAvatar(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	user, err := f.svc.UpdateMe(ctx, f.as(t, f.user), accounts.ProfileInput{LastName: utils.Ptr("Doe")})
	require.NoError(t, err)
	require.Equal(t, "Doe", user.LastName)

	_, err = f.svc.UpdateMe(ctx, f.as(t, f.user), accounts.ProfileInput{FirstName: utils.Ptr(strings.Repeat("a", 151))})
	requireFieldError(t, err, "first_name", "Ensure this field has no more than 150 characters.")

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 1, 1))))
	user, err = f.svc.ChangeAvatar(ctx, f.as(t, f.user), &buf)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(user.Avatar, "http://files.test/media/avatars/"+f.user.ID+"/"))
	require.True(t, strings.HasSuffix(user.Avatar, ".png"))

	_, err = f.svc.ChangeAvatar(ctx, f.as(t, f.user), strings.NewReader("not an image"))
	require.Error(t, err)
	fieldErrors, ok := apperrors.FieldErrors(err)
	require.True(t, ok)
	require.Equal(t, "avatar", fieldErrors[0].Field)

	_, err = f.svc.ChangeAvatar(ctx, f.as(t, f.user), bytes.NewReader(make([]byte, accounts.MaxAvatarSize+1)))
	requireFieldError(t, err, "avatar", "File too large. Size should not exceed 1 MB.")
}

func TestNotes_OwnerOnly(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	other := f.createUser(t, "other")

	_, err := f.svc.CreateNote(ctx, f.as(t, f.user), "")
	requireFieldError(t, err, "content", accounts.MsgRequired)
	_, err = f.svc.CreateNote(ctx, f.as(t, f.user), strings.Repeat("a", 501))
	requireFieldError(t, err, "content", "Ensure this field has no more than 500 characters.")

	note, err := f.svc.CreateNote(ctx, f.as(t, f.user), "hello")
	require.NoError(t, err)
	require.Equal(t, f.user.ID, note.UserID)

	_, err = f.svc.Note(ctx, f.as(t, other), note.ID)
	requireFieldError(t, err, "perm", accounts.MsgPermissionDenied)
	_, err = f.svc.UpdateNote(ctx, f.as(t, other), note.ID, utils.Ptr("mine now"))
	requireFieldError(t, err, "perm", accounts.MsgPermissionDenied)
	err = f.svc.DeleteNote(ctx, f.as(t, other), note.ID)
	requireFieldError(t, err, "perm", accounts.MsgPermissionDenied)

	f.now = f.now.Add(time.Minute)
	updated, err := f.svc.UpdateNote(ctx, f.as(t, f.user), note.ID, utils.Ptr("changed"))
	require.NoError(t, err)
	require.Equal(t, "changed", updated.Content)
	require.Equal(t, f.now, updated.Modified)

	store, err := f.svc.Notes(ctx, f.as(t, f.user))
	require.NoError(t, err)
	count, err := store.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, count)

	require.NoError(t, f.svc.DeleteNote(ctx, f.as(t, f.user), note.ID))
	_, err = f.svc.Note(ctx, f.as(t, f.user), note.ID)
	require.ErrorIs(t, err, apperrors.ErrNoteNotFound)
	require.Equal(t, http.StatusNotFound, apperrors.StatusCode(err))
}

func TestUpdateNote_LockedPerNote(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	note, err := f.svc.CreateNote(ctx, f.as(t, f.user), "hello")
	require.NoError(t, err)

	err = f.limiter.WithLock(ctx, "UpdateNote", note.ID, 0, false, func() error {
		_, err := f.svc.UpdateNote(ctx, f.as(t, f.user), note.ID, utils.Ptr("changed"))
		return err
	})
	var locked *locks.LockedError
	require.ErrorAs(t, err, &locked)
	require.Equal(t, `"UpdateNote" locked for 300 seconds.`, locked.Error())

	_, err = f.svc.UpdateNote(ctx, f.as(t, f.user), note.ID, utils.Ptr("changed"))
	require.NoError(t, err)
}

func TestComments(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateComment(ctx, f.anon(), accounts.CommentInput{
		Content: utils.Ptr("hi"),
		User:    &accounts.PersonInput{Email: utils.Ptr("bad")},
	})
	requireFieldError(t, err, "user.email", accounts.MsgInvalidEmail)

	comment, err := f.svc.CreateComment(ctx, f.anon(), accounts.CommentInput{
		Content: utils.Ptr("hi"),
		User:    &accounts.PersonInput{Email: utils.Ptr("v@mail.com"), FirstName: utils.Ptr("Vi")},
	})
	require.NoError(t, err)
	require.False(t, comment.Author.Active)
	require.True(t, strings.HasPrefix(comment.Author.Username, "user."))
	require.Equal(t, "Vi", comment.Author.FirstName)

	// private notes are not comments
	_, err = f.svc.CreateNote(ctx, f.as(t, f.user), "private")
	require.NoError(t, err)
	count, err := f.svc.Comments(ctx).Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, count)

	updated, err := f.svc.UpdateComment(ctx, f.anon(), comment.ID, accounts.CommentInput{
		Content: utils.Ptr("edited"),
		User:    &accounts.PersonInput{LastName: utils.Ptr("Vo")},
	})
	require.NoError(t, err)
	require.Equal(t, "edited", updated.Content)
	require.Equal(t, "Vo", updated.Author.LastName)
	require.Equal(t, "Vi", updated.Author.FirstName)

	require.NoError(t, f.svc.DeleteComment(ctx, f.anon(), comment.ID))
	_, err = f.users.GetByID(ctx, comment.Author.ID)
	require.ErrorIs(t, err, apperrors.ErrUserNotFound)
	_, err = f.svc.Comment(ctx, comment.ID)
	require.ErrorIs(t, err, apperrors.ErrNoteNotFound)
}

func TestAdmin_Guards(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	_, err := f.svc.Users(ctx, f.as(t, f.user))
	var permErr *auth.PermissionError
	require.ErrorAs(t, err, &permErr)
	require.Equal(t, http.StatusForbidden, apperrors.StatusCode(err))
	requireFieldError(t, err, "perm", "Staff permission is required to perform this action.")

	staff := f.createUser(t, "staff")
	staff.Staff = true
	require.NoError(t, f.users.Upsert(ctx, staff))
	_, err = f.svc.Users(ctx, f.as(t, staff))
	requireFieldError(t, err, "perm", `"accounts.view_user" permission is required to perform this action.`)

	staff.Permissions = []string{users.PermViewUser, users.PermAddUser, users.PermChangeUser, users.PermDeleteUser}
	require.NoError(t, f.users.Upsert(ctx, staff))
	store, err := f.svc.Users(ctx, f.as(t, staff))
	require.NoError(t, err)
	count, err := store.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, count)

	created, err := f.svc.CreateUser(ctx, f.as(t, staff), accounts.CreateUserInput{Username: "made", Password: password})
	require.NoError(t, err)
	_, err = f.svc.CreateUser(ctx, f.as(t, staff), accounts.CreateUserInput{Username: "made", Password: password})
	requireFieldError(t, err, "username", accounts.MsgUserExists)

	updated, err := f.svc.UpdateUser(ctx, f.as(t, staff), created.ID, accounts.ProfileInput{FirstName: utils.Ptr("Made")})
	require.NoError(t, err)
	require.Equal(t, "Made", updated.FirstName)

	require.NoError(t, f.svc.DeleteUser(ctx, f.as(t, staff), created.ID))
	_, err = f.svc.User(ctx, f.as(t, staff), created.ID)
	require.ErrorIs(t, err, apperrors.ErrUserNotFound)

	_, err = f.svc.UserNotes(ctx, f.as(t, staff), f.user.ID)
	requireFieldError(t, err, "perm", `"accounts.view_note" permission is required to perform this action.`)
}
