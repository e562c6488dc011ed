package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/fe/internal/client/cli"
	"github.com/dmitrijs2005/fe/internal/client/config"
	"github.com/dmitrijs2005/fe/internal/flagx"
)

func main() {

	path, err := config.Path()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	cfg, err := config.LoadConfig(path)
	_, rest := flagx.SplitArgs(os.Args[1:], cli.GlobalFlags, nil)

	if err != nil && !skipsConfig(rest) {
		if errors.Is(err, config.ErrNotInitialized) {
			fmt.Fprintf(os.Stderr, "no config at %s, run 'fe init' first\n", path)
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.NewApp(cfg, path).Run(ctx, rest); err != nil {
		if !errors.Is(err, cli.ErrUsage) {
			fmt.Fprintln(os.Stderr, err)
		}
		stop()
		os.Exit(1)
	}
}

func skipsConfig(args []string) bool {
	if len(args) == 0 {
		return true
	}
	switch args[0] {
	case "init", "help", "-h", "--help", "version":
		return true
	}
	return false
}
