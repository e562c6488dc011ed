package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/fe/internal/client/api"
	"github.com/dmitrijs2005/fe/internal/client/config"
	"github.com/dmitrijs2005/fe/internal/cryptox"
	"github.com/dmitrijs2005/fe/internal/dbx"
	"github.com/dmitrijs2005/fe/internal/logging"
	"github.com/dmitrijs2005/fe/internal/models"
	"github.com/dmitrijs2005/fe/internal/protocol"
	"github.com/dmitrijs2005/fe/internal/server/auth"
	sc "github.com/dmitrijs2005/fe/internal/server/config"
	"github.com/dmitrijs2005/fe/internal/server/httpserver"
	"github.com/dmitrijs2005/fe/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/fe/internal/server/services"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const serverKey = "cli-test-key"

func startServer(t *testing.T) *httptest.Server {
	t.Helper()

	db, err := dbx.Open(dbx.DialectSQLite, filepath.Join(t.TempDir(), "srv.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rm := repomanager.NewSQLRepositoryManager(dbx.DialectSQLite)
	require.NoError(t, rm.RunMigrations(context.Background(), db))

	cfg := &sc.Config{}
	cfg.LoadDefaults()

	sealer, err := cryptox.NewSealer([]byte(serverKey))
	require.NoError(t, err)

	us := services.NewUserService(db, rm, sealer)
	ms := services.NewMessageService(db, rm, cfg, logging.Nop{}, nil, nil)
	az := auth.NewAuthorizer(us, nil, logging.Nop{})

	for _, u := range []string{"alice", "bob", "carol"} {
		_, err := us.Register(context.Background(), u, u+"-secret", false)
		require.NoError(t, err)
	}

	srv := httptest.NewServer(httpserver.NewServer("", logging.Nop{}, ms, us, az, httpserver.Options{
		MaxBodyBytes: cfg.MaxBodyBytes,
		AdminSecret:  []byte(serverKey),
	}).Handler())
	t.Cleanup(srv.Close)
	return srv
}

type testApp struct {
	*App
	out, errOut *bytes.Buffer
}

func newTestApp(t *testing.T, srv *httptest.Server, user, stdin string) *testApp {
	t.Helper()
	dir := t.TempDir()

	cfg := &config.Config{}
	cfg.LoadDefaults(dir)
	cfg.SenderName = user
	cfg.AuthToken = user + "-secret"

	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	a := &App{
		config:     cfg,
		configPath: filepath.Join(dir, "config.json"),
		reader:     rdr(stdin),
		out:        out,
		errOut:     errOut,
	}
	if srv != nil {
		a.api = api.NewWithHTTPClient(srv.URL, srv.Client(), user, cfg.AuthToken)
	}
	return &testApp{App: a, out: out, errOut: errOut}
}

func TestRun_Usage(t *testing.T) {
	a := newTestApp(t, nil, "alice", "")

	assert.ErrorIs(t, a.Run(context.Background(), nil), ErrUsage)
	assert.Contains(t, a.out.String(), "usage: fe")

	assert.ErrorIs(t, a.Run(context.Background(), []string{"frobnicate"}), ErrUsage)
	assert.Contains(t, a.errOut.String(), "Unknown command: frobnicate")

	assert.ErrorIs(t, a.Run(context.Background(), []string{"read"}), ErrUsage)
	assert.ErrorIs(t, a.Run(context.Background(), []string{"send"}), ErrUsage)
}

func TestRun_HelpAndVersion(t *testing.T) {
	a := newTestApp(t, nil, "alice", "")
	require.NoError(t, a.Run(context.Background(), []string{"help"}))
	require.NoError(t, a.Run(context.Background(), []string{"version"}))
	assert.Contains(t, a.out.String(), "Build version:")
}

func TestInit_WritesConfig(t *testing.T) {
	stubTerminal(t, false, "", nil)
	a := newTestApp(t, nil, "", "10.1.1.1\n9000\ndave\ndave-secret\n")

	require.NoError(t, a.Run(context.Background(), []string{"init"}))
	assert.Contains(t, a.out.String(), "Initialized config at")

	loaded, err := config.LoadConfig(a.configPath)
	require.NoError(t, err)
	assert.Equal(t, "10.1.1.1", loaded.ServerIP)
	assert.Equal(t, 9000, loaded.ServerPort)
	assert.Equal(t, "dave", loaded.SenderName)
	assert.Equal(t, "dave-secret", loaded.AuthToken)

	fi, err := os.Stat(loaded.StoragePath)
	require.NoError(t, err)
	assert.True(t, fi.IsDir())
}

func TestInit_DefaultsAndKeepSecret(t *testing.T) {
	stubTerminal(t, true, "", nil)
	a := newTestApp(t, nil, "alice", "\n\n\n")

	require.NoError(t, a.Run(context.Background(), []string{"init"}))

	loaded, err := config.LoadConfig(a.configPath)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", loaded.ServerIP)
	assert.Equal(t, 26834, loaded.ServerPort)
	assert.Equal(t, "alice", loaded.SenderName)
	assert.Equal(t, "alice-secret", loaded.AuthToken)
}

func TestInit_InvalidPort(t *testing.T) {
	stubTerminal(t, false, "", nil)
	a := newTestApp(t, nil, "", "\nnot-a-port\n")
	assert.ErrorIs(t, a.Run(context.Background(), []string{"init"}), ErrUsage)
}

func TestPing(t *testing.T) {
	srv := startServer(t)
	a := newTestApp(t, srv, "alice", "")
	require.NoError(t, a.Run(context.Background(), []string{"ping"}))
	assert.Equal(t, "Server health: "+httpserver.HealthText+"\n", a.out.String())
}

func TestSendFetchInboxRead(t *testing.T) {
	srv := startServer(t)
	ctx := context.Background()

	alice := newTestApp(t, srv, "alice", "")
	require.NoError(t, alice.Run(ctx, []string{"send", "bob, carol", "hello there"}))
	assert.Contains(t, alice.out.String(), "Sent message to bob (id 1)")
	assert.Contains(t, alice.out.String(), "Sent message to carol (id 2)")

	bob := newTestApp(t, srv, "bob", "")
	require.NoError(t, bob.Run(ctx, []string{"fetch"}))
	assert.Contains(t, bob.out.String(), "hello there")
	assert.NotContains(t, bob.out.String(), "carol")

	bob.out.Reset()
	require.NoError(t, bob.Run(ctx, []string{"inbox"}))
	assert.Contains(t, bob.out.String(), "Last fetched")
	assert.Contains(t, bob.out.String(), "hello there")

	bob.out.Reset()
	require.NoError(t, bob.Run(ctx, []string{"read", "1"}))
	assert.Contains(t, bob.out.String(), "#1 from alice to bob")
	assert.Contains(t, bob.out.String(), "hello there")
}

func TestSendFileThenReadSavesIt(t *testing.T) {
	srv := startServer(t)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "photo.bin")
	content := []byte{0, 1, 2, 3, 0xff}
	require.NoError(t, os.WriteFile(path, content, 0o600))

	alice := newTestApp(t, srv, "alice", "")
	require.NoError(t, alice.Run(ctx, []string{"send", "bob", path}))
	assert.Contains(t, alice.out.String(), "Sent file 'photo.bin' to bob")

	bob := newTestApp(t, srv, "bob", "")
	require.NoError(t, bob.Run(ctx, []string{"read", "1"}))
	assert.Contains(t, bob.out.String(), "saved to")

	saved, err := os.ReadFile(filepath.Join(bob.config.StoragePath, "photo.bin"))
	require.NoError(t, err)
	assert.Equal(t, content, saved)
}

func TestSendEmptyFile(t *testing.T) {
	srv := startServer(t)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "empty.txt")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	alice := newTestApp(t, srv, "alice", "")
	require.NoError(t, alice.Run(ctx, []string{"send", "bob", path}))
	assert.Contains(t, alice.out.String(), "Sent file 'empty.txt' to bob")

	bob := newTestApp(t, srv, "bob", "")
	require.NoError(t, bob.Run(ctx, []string{"read", "1"}))
	assert.Contains(t, bob.out.String(), "0 bytes")

	saved, err := os.ReadFile(filepath.Join(bob.config.StoragePath, "empty.txt"))
	require.NoError(t, err)
	assert.Empty(t, saved)
}

func TestSend_PartialFailure(t *testing.T) {
	srv := startServer(t)
	alice := newTestApp(t, srv, "alice", "")

	err := alice.Run(context.Background(), []string{"send", "ghost,bob", "hi"})
	require.Error(t, err)
	assert.Equal(t, 404, api.StatusOf(err))
	assert.Contains(t, alice.errOut.String(), "Failed to send message to ghost")
	assert.Contains(t, alice.out.String(), "Sent message to bob")
}

func TestSend_ReadsStdin(t *testing.T) {
	srv := startServer(t)
	alice := newTestApp(t, srv, "alice", "line one\nline two\n\n")

	require.NoError(t, alice.Run(context.Background(), []string{"send", "bob"}))

	bob := newTestApp(t, srv, "bob", "")
	require.NoError(t, bob.Run(context.Background(), []string{"read", "1"}))
	assert.Contains(t, bob.out.String(), "line one\nline two")
}

func TestRead_Errors(t *testing.T) {
	srv := startServer(t)
	a := newTestApp(t, srv, "alice", "")

	assert.ErrorIs(t, a.Run(context.Background(), []string{"read", "abc"}), ErrUsage)

	err := a.Run(context.Background(), []string{"read", "999"})
	assert.Equal(t, 404, api.StatusOf(err))
}

func TestFetch_WrongSecret(t *testing.T) {
	srv := startServer(t)
	a := newTestApp(t, srv, "alice", "")
	a.api = api.NewWithHTTPClient(srv.URL, srv.Client(), "alice", "wrong")

	err := a.Run(context.Background(), []string{"fetch"})
	assert.Equal(t, 403, api.StatusOf(err))
}

func TestRegister(t *testing.T) {
	srv := startServer(t)
	ctx := context.Background()
	token, err := auth.GenerateAdminToken("ops", []byte(serverKey), time.Minute)
	require.NoError(t, err)

	a := newTestApp(t, srv, "alice", "")
	require.NoError(t, a.Run(ctx, []string{"register", "dave", "-token", token, "-secret", "dave-secret", "-op"}))
	assert.Contains(t, a.out.String(), "Registered dave")

	dave := newTestApp(t, srv, "dave", "")
	require.NoError(t, dave.Run(ctx, []string{"fetch"}))
	assert.Contains(t, dave.out.String(), "No messages.")

	assert.ErrorIs(t, a.Run(ctx, []string{"register", "erin"}), ErrUsage)
	assert.Equal(t, 409, api.StatusOf(a.Run(ctx, []string{"register", "-token", token, "dave", "-secret", "x"})))
}

func TestRegister_PromptsForSecret(t *testing.T) {
	stubTerminal(t, false, "", nil)
	srv := startServer(t)
	token, err := auth.GenerateAdminToken("ops", []byte(serverKey), time.Minute)
	require.NoError(t, err)

	a := newTestApp(t, srv, "alice", "erin-secret\n")
	require.NoError(t, a.Run(context.Background(), []string{"register", "erin", "-token", token}))

	erin := newTestApp(t, srv, "erin", "")
	require.NoError(t, erin.Run(context.Background(), []string{"fetch"}))
}

type fakeNats struct {
	subject string
	deliver []byte
	drained bool
}

func (f *fakeNats) Subscribe(subject string, cb nats.MsgHandler) (*nats.Subscription, error) {
	f.subject = subject
	cb(&nats.Msg{Subject: subject, Data: f.deliver})
	return nil, nil
}

func (f *fakeNats) Drain() error {
	f.drained = true
	return nil
}

func TestWatch(t *testing.T) {
	n, err := json.Marshal(protocol.Notification{ID: 7, SenderID: "alice", ReceiverID: "bob", Timestamp: 1, FileName: "a.png", FileType: "image/png"})
	require.NoError(t, err)
	fake := &fakeNats{deliver: n}

	orig := natsConnect
	t.Cleanup(func() { natsConnect = orig })
	var gotURL string
	natsConnect = func(url string, opts ...nats.Option) (natsConn, error) {
		gotURL = url
		return fake, nil
	}

	a := newTestApp(t, nil, "bob", "")
	a.config.NATSURL = "nats://127.0.0.1:4222"

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, a.Run(ctx, []string{"watch"}))

	assert.Equal(t, "nats://127.0.0.1:4222", gotURL)
	assert.Equal(t, "fe.messages.bob", fake.subject)
	assert.True(t, fake.drained)
	assert.Contains(t, a.out.String(), "New file a.png (image/png) #7 from alice")
}

func TestWatch_Misconfigured(t *testing.T) {
	a := newTestApp(t, nil, "bob", "")
	assert.ErrorIs(t, a.Run(context.Background(), []string{"watch"}), ErrUsage)

	orig := natsConnect
	t.Cleanup(func() { natsConnect = orig })
	natsConnect = func(string, ...nats.Option) (natsConn, error) { return nil, errors.New("no servers") }

	a.config.NATSURL = "nats://127.0.0.1:4222"
	assert.ErrorContains(t, a.Run(context.Background(), []string{"watch"}), "no servers")
}

func TestPreview(t *testing.T) {
	long := strings.Repeat("word ", 20)
	m := newTextMessage(long)
	assert.True(t, strings.HasSuffix(preview(m), "..."))

	m.Content = nil
	assert.Equal(t, "(use read)", preview(m))
}

func newTextMessage(text string) models.Message {
	return models.Message{ID: 1, Sender: "a", Receiver: "b", PayloadName: "Message", PayloadType: "FETXT", Content: []byte(text)}
}
