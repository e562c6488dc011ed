package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/fe/internal/logging"
	"github.com/dmitrijs2005/fe/internal/protocol"
	"github.com/dmitrijs2005/fe/internal/server/auth"
	"github.com/dmitrijs2005/fe/internal/server/config"
	"github.com/dmitrijs2005/fe/internal/server/httpserver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	c := &config.Config{}
	c.LoadDefaults()
	c.EndpointAddrHTTP = "127.0.0.1:0"
	c.EndpointAddrGRPC = "127.0.0.1:0"
	c.DatabaseDriver = "sqlite"
	c.DatabaseDSN = filepath.Join(t.TempDir(), "app.db")
	c.SecretKey = "app-test-key"
	c.RateLimit = 0
	return c
}

func TestNewApp_UnsupportedDriver(t *testing.T) {
	c := testConfig(t)
	c.DatabaseDriver = "oracle"

	_, err := NewApp(context.Background(), c, logging.Nop{})
	assert.Error(t, err)
}

func TestApp_EndToEnd(t *testing.T) {
	c := testConfig(t)
	app, err := NewApp(context.Background(), c, logging.Nop{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	h := app.http.Handler()
	token, err := auth.GenerateAdminToken("ops", []byte(c.SecretKey), time.Minute)
	require.NoError(t, err)

	call := func(method, path string, body any, header map[string]string) *httptest.ResponseRecorder {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		req := httptest.NewRequest(method, path, bytes.NewReader(raw))
		for k, v := range header {
			req.Header.Set(k, v)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		return rec
	}

	for _, u := range []string{"alice", "bob"} {
		rec := call(http.MethodPost, "/register",
			protocol.RegisterRequest{Username: u, Secret: u + "-pw"},
			map[string]string{"Authorization": "Bearer " + token})
		assert.Contains(t, rec.Body.String(), httpserver.MsgUserRegistered)
	}

	send := &protocol.SendMessageRequest{
		Credentials: protocol.Credentials{SenderID: "alice"},
		ReceiverID:  "bob",
		MessageText: "hello bob",
	}
	require.NoError(t, protocol.SignRequest(send, "alice-pw"))
	rec := call(http.MethodPost, "/send_message", send, nil)
	assert.Contains(t, rec.Body.String(), httpserver.MsgMessageSent)

	fetch := &protocol.FetchRequest{Credentials: protocol.Credentials{SenderID: "bob"}}
	require.NoError(t, protocol.SignRequest(fetch, "bob-pw"))
	rec = call(http.MethodGet, "/fetch", fetch, nil)

	var list []protocol.MessageRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "hello bob", string(protocol.DecodeMessage(list[0]).Content))
}

func TestApp_RunStopsOnCancel(t *testing.T) {
	app, err := NewApp(context.Background(), testConfig(t), logging.Nop{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	select {
	case err := <-done:
		t.Fatalf("app exited too early: %v", err)
	case <-time.After(200 * time.Millisecond):
	}

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop after context cancel")
	}
}

func TestApp_RunFailsOnBadAddress(t *testing.T) {
	c := testConfig(t)
	c.EndpointAddrHTTP = "127.0.0.1:99999"

	app, err := NewApp(context.Background(), c, logging.Nop{})
	require.NoError(t, err)

	errCh := make(chan error, 1)
	go func() { errCh <- app.Run(context.Background()) }()

	select {
	case err := <-errCh:
		assert.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not report the listen error")
	}
}
