package server_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/jrsteele09/go-notes-server/accounts"
	"github.com/jrsteele09/go-notes-server/auth"
	"github.com/jrsteele09/go-notes-server/common"
	"github.com/jrsteele09/go-notes-server/fruits"
	"github.com/jrsteele09/go-notes-server/internal/config"
	"github.com/jrsteele09/go-notes-server/internal/metrics"
	"github.com/jrsteele09/go-notes-server/locks"
	fakenoterepo "github.com/jrsteele09/go-notes-server/notes/repofake"
	"github.com/jrsteele09/go-notes-server/server"
	"github.com/jrsteele09/go-notes-server/token"
	"github.com/jrsteele09/go-notes-server/users"
	fakeuserrepo "github.com/jrsteele09/go-notes-server/users/repofake"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

const password = "p455w0rd"

type testFixture struct {
	now    time.Time
	users  *fakeuserrepo.FakeUserRepo
	tokens *token.Manager
	server *server.Server
	user   *users.User
}

type socketFrame struct {
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data"`
	Error  *struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	} `json:"error"`
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	f := &testFixture{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	clock := func() time.Time { return f.now }

	f.users = fakeuserrepo.NewFakeUserRepo()
	f.tokens = token.New(token.NewCodec(token.NewHMACSigner("secret"), token.WithCodecNowFunc(clock)), token.WithNowFunc(clock))
	limiter := locks.NewLimiter(locks.NewMemoryCache(locks.WithMemoryNowFunc(clock)))
	authn := auth.NewAuthenticator(f.tokens, f.users)
	registry := prometheus.NewRegistry()

	f.server = server.New(config.New(), server.Services{
		Users:    f.users,
		Accounts: accounts.NewService(f.users, fakenoterepo.NewFakeNoteRepo(), f.tokens, authn, limiter, accounts.WithNowFunc(clock)),
		Common:   common.NewService(limiter, fruits.NewCatalog(), clock),
		Authn:    authn,
	}, server.WithMetrics(metrics.NewCollector(registry), registry))

	f.user = users.New("user", f.now)
	require.NoError(t, f.user.SetPassword(password, false, f.now))
	require.NoError(t, f.users.Upsert(context.Background(), f.user))
	return f
}

func (f *testFixture) do(t *testing.T, method, path, body string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)
	return rec
}

func (f *testFixture) accessToken(t *testing.T) string {
	t.Helper()

	raw, err := f.tokens.Issue(token.Access, f.user.ID, f.user.Rnd())
	require.NoError(t, err)
	return raw
}

func (f *testFixture) bearer(t *testing.T) http.Header {
	t.Helper()
	return http.Header{"Authorization": {"Bearer " + f.accessToken(t)}}
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func dial(t *testing.T, srv *httptest.Server, path string) *websocket.Conn {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+path, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.CloseNow() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) socketFrame {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var f socketFrame
	require.NoError(t, wsjson.Read(ctx, conn, &f))
	return f
}

func writeFrame(t *testing.T, conn *websocket.Conn, v any) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, wsjson.Write(ctx, conn, v))
}

func TestSignin_IssuesAccessToken(t *testing.T) {
	f := setupTestFixture(t)

	rec := f.do(t, http.MethodPost, "/pi/v1/signin", `{"username": "user", "password": "p455w0rd"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	result := decode[accounts.SigninResult](t, rec)
	claims, err := f.tokens.Decode(result.Token)
	require.NoError(t, err)
	require.True(t, f.tokens.Is(claims, token.Access))
	require.Equal(t, f.user.ID, claims.Subject)
	require.NotEmpty(t, result.RefreshToken)

	rec = f.do(t, http.MethodGet, "/pi/v2/me", "", http.Header{"Authorization": {"Bearer " + result.Token}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, "user", decode[map[string]any](t, rec)["username"])
}

func TestSignin_Throttled(t *testing.T) {
	f := setupTestFixture(t)

	for range 3 {
		rec := f.do(t, http.MethodPost, "/pi/v1/signin", `{"username": "user", "password": "wrong"}`, nil)
		require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	}

	rec := f.do(t, http.MethodPost, "/pi/v1/signin", `{"username": "user", "password": "p455w0rd"}`, nil)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	body := decode[map[string][]string](t, rec)
	require.Equal(t, []string{`"Signin" throttled to 3 calls every 600 seconds.`}, body["throttle"])
}

func TestSignin_TFACodeRequired(t *testing.T) {
	f := setupTestFixture(t)

	rec := f.do(t, http.MethodPost, "/pi/v1/me/enable-tfa", `{"password": "p455w0rd"}`, f.bearer(t))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NotEmpty(t, decode[accounts.TFAResult](t, rec).Secret)

	rec = f.do(t, http.MethodPost, "/pi/v1/signin", `{"username": "user", "password": "p455w0rd"}`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, map[string][]string{"tfa_code": {accounts.MsgRequired}}, decode[map[string][]string](t, rec))

	rec = f.do(t, http.MethodPost, "/pi/v1/signin", `{"username": "user", "password": "nope"}`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, map[string][]string{"password": {accounts.MsgWrongPassword}}, decode[map[string][]string](t, rec))
}

func TestMe_Unauthenticated(t *testing.T) {
	f := setupTestFixture(t)

	rec := f.do(t, http.MethodGet, "/pi/v1/me", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, map[string][]string{"auth": {"The token was not provided."}}, decode[map[string][]string](t, rec))
}

func TestFruits_Paginates(t *testing.T) {
	f := setupTestFixture(t)

	rec := f.do(t, http.MethodGet, "/pi/v1/fruits?first=10", "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	type fruitList struct {
		TotalCount int `json:"total_count"`
		PageInfo   struct {
			EndCursor   *string `json:"end_cursor"`
			HasNextPage bool    `json:"has_next_page"`
		} `json:"page_info"`
		Results []fruits.Fruit `json:"results"`
	}
	page := decode[fruitList](t, rec)
	require.Len(t, page.Results, 10)
	require.Equal(t, 1000, page.TotalCount)
	require.True(t, page.PageInfo.HasNextPage)
	require.NotNil(t, page.PageInfo.EndCursor)

	rec = f.do(t, http.MethodGet, "/pi/v1/fruits?limit=5&after="+url.QueryEscape(*page.PageInfo.EndCursor), "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	next := decode[fruitList](t, rec)
	require.Len(t, next.Results, 5)
	require.Equal(t, "Orange 10", page.Results[9].Name)
	require.Equal(t, "Orange 11", next.Results[0].Name)
	require.Equal(t, 1000, next.TotalCount)

	rec = f.do(t, http.MethodGet, "/pi/v1/fruits?first=x", "", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, map[string][]string{"first": {"A valid integer is required."}}, decode[map[string][]string](t, rec))
}

func TestNotes_OwnerOnly(t *testing.T) {
	f := setupTestFixture(t)

	rec := f.do(t, http.MethodPost, "/pi/v1/me/notes", `{"content": "first note"}`, f.bearer(t))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	noteID := decode[map[string]any](t, rec)["id"].(string)

	rec = f.do(t, http.MethodGet, "/pi/v1/me/notes", "", f.bearer(t))
	require.Equal(t, http.StatusOK, rec.Code)
	require.EqualValues(t, 1, decode[map[string]any](t, rec)["total_count"])

	other := users.New("other", f.now)
	require.NoError(t, f.users.Upsert(context.Background(), other))
	raw, err := f.tokens.Issue(token.Access, other.ID, other.Rnd())
	require.NoError(t, err)

	rec = f.do(t, http.MethodGet, "/pi/v1/me/notes/"+noteID, "", http.Header{"Authorization": {"Bearer " + raw}})
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, map[string][]string{"perm": {accounts.MsgPermissionDenied}}, decode[map[string][]string](t, rec))

	rec = f.do(t, http.MethodDelete, "/pi/v1/me/notes/"+noteID, "", f.bearer(t))
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(t, http.MethodGet, "/pi/v1/me/notes/"+noteID, "", f.bearer(t))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUsers_StaffOnly(t *testing.T) {
	f := setupTestFixture(t)

	rec := f.do(t, http.MethodGet, "/pi/v1/users", "", f.bearer(t))
	require.Equal(t, http.StatusForbidden, rec.Code)

	f.user.Staff = true
	f.user.Permissions = []string{users.PermViewUser}
	require.NoError(t, f.users.Upsert(context.Background(), f.user))

	rec = f.do(t, http.MethodGet, "/pi/v1/users", "", f.bearer(t))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.EqualValues(t, 1, decode[map[string]any](t, rec)["total_count"])
}

func TestCheckUser(t *testing.T) {
	f := setupTestFixture(t)

	rec := f.do(t, http.MethodPost, "/pi/v1/signup/check-user", `{"username": "free"}`, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(t, http.MethodPost, "/pi/v1/signup/check-user", `{"username": "user"}`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, map[string][]string{"username": {accounts.MsgUsernameInUse}}, decode[map[string][]string](t, rec))

	rec = f.do(t, http.MethodPost, "/pi/v1/signup/check-user", `{"username": `, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, map[string][]string{"non_field_errors": {"JSON parse error."}}, decode[map[string][]string](t, rec))
}

func TestCors_Preflight(t *testing.T) {
	f := setupTestFixture(t)

	rec := f.do(t, http.MethodOptions, "/pi/v1/signin", "", http.Header{
		"Origin":                        {"https://app.example.com"},
		"Access-Control-Request-Method": {"POST"},
	})
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	require.Empty(t, rec.Header().Get("Access-Control-Allow-Credentials"))
	require.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "PATCH")
	require.Equal(t, "86400", rec.Header().Get("Access-Control-Max-Age"))
}

func TestCors_ListedOrigin(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.example.com, https://admin.example.com")
	f := setupTestFixture(t)

	rec := f.do(t, http.MethodGet, "/pi/v1/localtime", "", http.Header{"Origin": {"https://admin.example.com"}})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "https://admin.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))

	rec = f.do(t, http.MethodGet, "/pi/v1/localtime", "", http.Header{"Origin": {"https://evil.example.com"}})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestNotesSocket_RejectsMissingToken(t *testing.T) {
	f := setupTestFixture(t)
	srv := httptest.NewServer(f.server)
	defer srv.Close()

	conn := dial(t, srv, "/ws/v1/notes/")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, _, err := conn.Read(ctx)
	require.Equal(t, auth.CloseUnauthorized, websocket.CloseStatus(err))
}

func TestNotesSocket_CreatesNote(t *testing.T) {
	f := setupTestFixture(t)
	srv := httptest.NewServer(f.server)
	defer srv.Close()

	conn := dial(t, srv, "/ws/v1/notes/?auth="+f.accessToken(t))

	writeFrame(t, conn, map[string]any{"action": "create", "data": map[string]string{"content": "from a socket"}})
	reply := readFrame(t, conn)
	require.Equal(t, "create", reply.Action)
	require.Nil(t, reply.Error)
	var note map[string]any
	require.NoError(t, json.Unmarshal(reply.Data, &note))
	require.Equal(t, "from a socket", note["content"])
	require.Equal(t, f.user.ID, note["user"])

	writeFrame(t, conn, map[string]any{"action": "create", "data": map[string]string{}})
	reply = readFrame(t, conn)
	require.NotNil(t, reply.Error)
	require.Equal(t, "content", reply.Error.Field)

	writeFrame(t, conn, map[string]any{"action": "delete"})
	reply = readFrame(t, conn)
	require.NotNil(t, reply.Error)
	require.Equal(t, "action", reply.Error.Field)
}

func TestEchoSocket(t *testing.T) {
	f := setupTestFixture(t)
	srv := httptest.NewServer(f.server)
	defer srv.Close()

	conn := dial(t, srv, "/ws/v1/echo/?auth=broken")
	writeFrame(t, conn, map[string]any{"data": map[string]int{"n": 1}})
	reply := readFrame(t, conn)
	require.Equal(t, "echo", reply.Action)
	require.JSONEq(t, `{"n": 1}`, string(reply.Data))
}

func TestRoomSocket_Broadcasts(t *testing.T) {
	f := setupTestFixture(t)
	srv := httptest.NewServer(f.server)
	defer srv.Close()

	listener := dial(t, srv, "/ws/v1/rooms/lobby/")
	writeFrame(t, listener, map[string]any{"data": map[string]string{"message": "ping"}})
	own := readFrame(t, listener)
	require.JSONEq(t, `{"user": "anonymous", "message": "ping"}`, string(own.Data))

	sender := dial(t, srv, "/ws/v1/rooms/lobby/?auth="+f.accessToken(t))
	writeFrame(t, sender, map[string]any{"data": map[string]string{"message": "hello"}})
	require.JSONEq(t, `{"user": "user", "message": "hello"}`, string(readFrame(t, sender).Data))

	received := readFrame(t, listener)
	require.Equal(t, "message", received.Action)
	require.JSONEq(t, `{"user": "user", "message": "hello"}`, string(received.Data))
}
