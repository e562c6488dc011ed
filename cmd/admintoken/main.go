// Command admintoken mints a bearer token for POST /register, signed with
// the server secret key (-s, -c or FE_CONFIG, as for the server).
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/dmitrijs2005/fe/internal/flagx"
	"github.com/dmitrijs2005/fe/internal/server/auth"
	"github.com/dmitrijs2005/fe/internal/server/config"
)

func main() {
	cfg := config.LoadConfig()

	args, _ := flagx.SplitArgs(os.Args[1:], []string{"-sub"}, nil)
	fs := flag.NewFlagSet("admintoken", flag.ExitOnError)
	subject := fs.String("sub", "admin", "token subject, recorded in server logs")
	_ = fs.Parse(args)

	token, err := auth.GenerateAdminToken(*subject, []byte(cfg.SecretKey), cfg.AdminTokenValidityDuration)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	fmt.Println(token)
}
