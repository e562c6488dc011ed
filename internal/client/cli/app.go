// Package cli implements the fe command-line client.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/fe/internal/buildinfo"
	"github.com/dmitrijs2005/fe/internal/client/api"
	"github.com/dmitrijs2005/fe/internal/client/cache"
	"github.com/dmitrijs2005/fe/internal/client/config"
)

// GlobalFlags are consumed by config loading and stripped before commands
// see their arguments.
var GlobalFlags = []string{"-c", "-config", "-a", "-port", "-as", "-timeout"}

const usage = `usage: fe [-c config] [-a host] [-port n] [-as sender] [-timeout s] <command> [args]

commands:
  init                          write the config file
  ping                          check the server is up
  fetch                         list messages you sent or received
  read <id>                     show a message; files are saved to storage_path
  send <r1,r2,..> [text|path]   send text or a file; no text reads stdin
  inbox                         list cached messages without contacting the server
  watch                         print new-message notifications (needs nats_url)
  register <user> -token T [-secret S] [-op]   create a user (admin)
  version                       print build information
`

type App struct {
	config     *config.Config
	configPath string
	api        *api.Client
	reader     *bufio.Reader
	out        io.Writer
	errOut     io.Writer
}

// NewApp builds an App over cfg, which was loaded from configPath.
func NewApp(cfg *config.Config, configPath string) *App {
	return &App{
		config:     cfg,
		configPath: configPath,
		api:        api.New(cfg),
		reader:     bufio.NewReader(os.Stdin),
		out:        os.Stdout,
		errOut:     os.Stderr,
	}
}

// ErrUsage reports a malformed command line.
var ErrUsage = errors.New("invalid usage")

func (a *App) usageError(format string, args ...any) error {
	fmt.Fprintf(a.errOut, format+"\n", args...)
	return ErrUsage
}

// Run executes one command. args excludes the program name and global
// flags.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(a.out, usage)
		return ErrUsage
	}

	cmd, args := args[0], args[1:]

	switch cmd {
	case "help", "-h", "--help":
		fmt.Fprint(a.out, usage)
		return nil
	case "version":
		buildinfo.Print(a.out, "fe")
		return nil
	case "init":
		return a.initConfig()
	case "ping":
		return a.ping(ctx)
	case "fetch":
		return a.withCache(ctx, func(c *cache.Cache) error { return a.fetch(ctx, c) })
	case "read":
		if len(args) != 1 {
			return a.usageError("Usage: read <id>")
		}
		return a.withCache(ctx, func(c *cache.Cache) error { return a.read(ctx, c, args[0]) })
	case "send":
		if len(args) < 1 || len(args) > 2 {
			return a.usageError("Usage: send <recipient1,recipient2> [text|path]")
		}
		return a.send(ctx, args)
	case "inbox":
		return a.withCache(ctx, func(c *cache.Cache) error { return a.inbox(ctx, c) })
	case "watch":
		return a.watch(ctx)
	case "register":
		return a.register(ctx, args)
	default:
		return a.usageError("Unknown command: %s", cmd)
	}
}

func (a *App) withCache(ctx context.Context, fn func(c *cache.Cache) error) error {
	c, err := cache.Open(ctx, a.config.CachePath)
	if err != nil {
		return err
	}
	defer c.Close()
	return fn(c)
}
