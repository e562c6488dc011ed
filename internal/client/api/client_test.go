package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/fe/internal/client/config"
	"github.com/dmitrijs2005/fe/internal/cryptox"
	"github.com/dmitrijs2005/fe/internal/dbx"
	"github.com/dmitrijs2005/fe/internal/logging"
	"github.com/dmitrijs2005/fe/internal/protocol"
	"github.com/dmitrijs2005/fe/internal/server/auth"
	sc "github.com/dmitrijs2005/fe/internal/server/config"
	"github.com/dmitrijs2005/fe/internal/server/httpserver"
	"github.com/dmitrijs2005/fe/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/fe/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const serverKey = "api-test-key"

// startServer runs the real HTTP API on a temp SQLite database with
// alice and bob registered.
func startServer(t *testing.T) *httptest.Server {
	t.Helper()

	db, err := dbx.Open(dbx.DialectSQLite, filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rm := repomanager.NewSQLRepositoryManager(dbx.DialectSQLite)
	require.NoError(t, rm.RunMigrations(context.Background(), db))

	cfg := &sc.Config{}
	cfg.LoadDefaults()
	cfg.RateLimit = 0

	sealer, err := cryptox.NewSealer([]byte(serverKey))
	require.NoError(t, err)

	us := services.NewUserService(db, rm, sealer)
	ms := services.NewMessageService(db, rm, cfg, logging.Nop{}, nil, nil)
	az := auth.NewAuthorizer(us, nil, logging.Nop{})

	for _, u := range []string{"alice", "bob"} {
		_, err := us.Register(context.Background(), u, u+"-secret", false)
		require.NoError(t, err)
	}

	h := httpserver.NewServer("", logging.Nop{}, ms, us, az, httpserver.Options{
		MaxBodyBytes: cfg.MaxBodyBytes,
		AdminSecret:  []byte(serverKey),
	}).Handler()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func clientFor(srv *httptest.Server, user string) *Client {
	return NewWithHTTPClient(srv.URL, srv.Client(), user, user+"-secret")
}

func TestNew_FromConfig(t *testing.T) {
	cfg := &config.Config{ServerIP: "127.0.0.1", ServerPort: 26834, SenderName: "alice", AuthToken: "x", RequestTimeout: time.Second}
	c := New(cfg)
	assert.Equal(t, "http://127.0.0.1:26834", c.baseURL)
	assert.Equal(t, time.Second, c.http.Timeout)
	assert.Equal(t, "alice", c.sender)
}

func TestPing(t *testing.T) {
	srv := startServer(t)
	text, err := clientFor(srv, "alice").Ping(context.Background())
	require.NoError(t, err)
	assert.Equal(t, httpserver.HealthText, text)
}

func TestSendFetchRead(t *testing.T) {
	srv := startServer(t)
	ctx := context.Background()
	alice, bob := clientFor(srv, "alice"), clientFor(srv, "bob")

	list, err := bob.Fetch(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	id, err := alice.SendMessage(ctx, "bob", "a fairly long text message that exceeds the key prefix")
	require.NoError(t, err)
	assert.Positive(t, id)

	fid, err := alice.SendFile(ctx, "bob", "notes.txt", "", []byte("file body"))
	require.NoError(t, err)
	assert.Greater(t, fid, id)

	list, err = bob.Fetch(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.True(t, list[0].IsText())
	assert.Equal(t, "notes.txt", list[1].PayloadName)
	assert.Equal(t, "text/plain", list[1].PayloadType)

	m, err := bob.Read(ctx, fid)
	require.NoError(t, err)
	assert.Equal(t, []byte("file body"), m.Content)
}

func TestWrongSecret(t *testing.T) {
	srv := startServer(t)
	c := NewWithHTTPClient(srv.URL, srv.Client(), "alice", "wrong")

	_, err := c.Fetch(context.Background())
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, StatusOf(err))
}

func TestReadMissing(t *testing.T) {
	srv := startServer(t)
	_, err := clientFor(srv, "alice").Read(context.Background(), 999)
	assert.Equal(t, http.StatusNotFound, StatusOf(err))
}

func TestSendToUnknownReceiver(t *testing.T) {
	srv := startServer(t)
	_, err := clientFor(srv, "alice").SendMessage(context.Background(), "ghost", "hi")
	assert.Equal(t, http.StatusNotFound, StatusOf(err))
}

func TestSendWithoutSenderFailsLocally(t *testing.T) {
	srv := startServer(t)
	c := NewWithHTTPClient(srv.URL, srv.Client(), "", "x")
	_, err := c.SendMessage(context.Background(), "bob", "hi")
	assert.ErrorIs(t, err, protocol.ErrMissingField)
}

func TestRegister(t *testing.T) {
	srv := startServer(t)
	ctx := context.Background()
	c := clientFor(srv, "alice")

	token, err := auth.GenerateAdminToken("ops", []byte(serverKey), time.Minute)
	require.NoError(t, err)

	require.NoError(t, c.Register(ctx, token, protocol.RegisterRequest{Username: "carol", Secret: "carol-secret"}))
	assert.Equal(t, http.StatusConflict, StatusOf(c.Register(ctx, token, protocol.RegisterRequest{Username: "carol", Secret: "x"})))
	assert.Equal(t, http.StatusUnauthorized, StatusOf(c.Register(ctx, "bad", protocol.RegisterRequest{Username: "dave", Secret: "x"})))

	list, err := clientFor(srv, "carol").Fetch(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestFetch_UnexpectedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"hello":"world"}`)
	}))
	defer srv.Close()

	_, err := NewWithHTTPClient(srv.URL, srv.Client(), "alice", "x").Fetch(context.Background())
	assert.ErrorContains(t, err, "unexpected fetch response")
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, 0, StatusOf(nil))
	assert.Equal(t, 0, StatusOf(io.EOF))
	assert.Equal(t, 429, StatusOf(&StatusError{Status: 429}))
}
