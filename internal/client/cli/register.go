package cli

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/dmitrijs2005/fe/internal/common"
	"github.com/dmitrijs2005/fe/internal/flagx"
	"github.com/dmitrijs2005/fe/internal/protocol"
)

// register creates a user: register <username> -token T [-secret S] [-op].
func (a *App) register(ctx context.Context, args []string) error {
	flags, rest := flagx.SplitArgs(args, []string{"-token", "-secret", "-op"}, []string{"-op"})

	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	token := fs.String("token", "", "admin token")
	secret := fs.String("secret", "", "shared secret of the new user")
	privileged := fs.Bool("op", false, "mark the user privileged")
	if err := fs.Parse(flags); err != nil {
		return a.usageError("Usage: register <username> -token T [-secret S] [-op]: %v", err)
	}

	if len(rest) != 1 || *token == "" {
		return a.usageError("Usage: register <username> -token T [-secret S] [-op]")
	}
	username := rest[0]

	if *secret == "" {
		b, err := GetSecret(a.reader, "Shared secret for "+username, a.out)
		if err != nil {
			return err
		}
		*secret = string(b)
		common.WipeByteArray(b)
	}

	err := a.api.Register(ctx, *token, protocol.RegisterRequest{
		Username:     username,
		Secret:       *secret,
		IsPrivileged: *privileged,
	})
	if err != nil {
		return fmt.Errorf("register failed: %w", err)
	}

	fmt.Fprintf(a.out, "Registered %s\n", username)
	return nil
}
