package services

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/fe/internal/cryptox"
	"github.com/dmitrijs2005/fe/internal/dbx"
	"github.com/dmitrijs2005/fe/internal/logging"
	"github.com/dmitrijs2005/fe/internal/server/config"
	"github.com/dmitrijs2005/fe/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	db       *sql.DB
	users    *UserService
	messages *MessageService
	cfg      *config.Config
}

func newFixture(t *testing.T, tweak func(*config.Config)) *fixture {
	t.Helper()

	db, err := dbx.Open(dbx.DialectSQLite, filepath.Join(t.TempDir(), "svc.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rm := repomanager.NewSQLRepositoryManager(dbx.DialectSQLite)
	require.NoError(t, rm.RunMigrations(context.Background(), db))

	sealer, err := cryptox.NewSealer([]byte("test-server-key"))
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.LoadDefaults()
	if tweak != nil {
		tweak(cfg)
	}

	return &fixture{
		db:       db,
		users:    NewUserService(db, rm, sealer),
		messages: NewMessageService(db, rm, cfg, logging.Nop{}, nil, nil),
		cfg:      cfg,
	}
}

func (f *fixture) register(t *testing.T, names ...string) {
	t.Helper()
	for _, n := range names {
		_, err := f.users.Register(context.Background(), n, n+"-secret", false)
		require.NoError(t, err)
	}
}
