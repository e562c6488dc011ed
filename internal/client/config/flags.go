package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/fe/internal/flagx"
)

// parseFlags overrides config values for a single invocation.
//
//	-a string     server address
//	-port int     server port
//	-as string    sender name
//	-timeout int  request timeout, seconds
func parseFlags(cfg *Config) {
	args, _ := flagx.SplitArgs(os.Args[1:], []string{"-a", "-port", "-as", "-timeout"}, nil)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerIP, "a", cfg.ServerIP, "server address")
	fs.IntVar(&cfg.ServerPort, "port", cfg.ServerPort, "server port")
	fs.StringVar(&cfg.SenderName, "as", cfg.SenderName, "sender name")
	timeout := fs.Int("timeout", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
}
