package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/fe/internal/client/cache"
	"github.com/dmitrijs2005/fe/internal/common"
	"github.com/dmitrijs2005/fe/internal/filex"
	"github.com/dmitrijs2005/fe/internal/models"
)

func (a *App) initConfig() error {
	cfg := *a.config
	var err error

	if cfg.ServerIP, err = GetSimpleText(a.reader, "Server address", cfg.ServerIP, a.out); err != nil {
		return err
	}

	port, err := GetSimpleText(a.reader, "Server port", strconv.Itoa(cfg.ServerPort), a.out)
	if err != nil {
		return err
	}
	if cfg.ServerPort, err = strconv.Atoi(port); err != nil || cfg.ServerPort <= 0 || cfg.ServerPort > 65535 {
		return a.usageError("invalid port %q", port)
	}

	if cfg.SenderName, err = GetSimpleText(a.reader, "Your user name", cfg.SenderName, a.out); err != nil {
		return err
	}

	secret, err := GetSecret(a.reader, "Shared secret (empty keeps the current one)", a.out)
	if err != nil {
		return err
	}
	if len(secret) > 0 {
		cfg.AuthToken = string(secret)
	}
	common.WipeByteArray(secret)

	if err := cfg.Save(a.configPath); err != nil {
		return err
	}
	if _, err := filex.EnsureDir(cfg.StoragePath); err != nil {
		return err
	}

	*a.config = cfg
	fmt.Fprintf(a.out, "Initialized config at %s\n", a.configPath)
	return nil
}

func (a *App) ping(ctx context.Context) error {
	text, err := a.api.Ping(ctx)
	if err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}
	fmt.Fprintf(a.out, "Server health: %s\n", text)
	return nil
}

func (a *App) fetch(ctx context.Context, c *cache.Cache) error {
	list, err := a.api.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("fetch failed: %w", err)
	}

	if err := c.Store(ctx, list); err != nil {
		return err
	}
	if err := c.SetMeta(ctx, cache.KeyLastFetch, []byte(strconv.FormatInt(time.Now().Unix(), 10))); err != nil {
		return err
	}

	printList(a.out, list)
	return nil
}

func (a *App) inbox(ctx context.Context, c *cache.Cache) error {
	list, err := c.List(ctx)
	if err != nil {
		return err
	}

	if v, _ := c.GetMeta(ctx, cache.KeyLastFetch); v != nil {
		if ts, err := strconv.ParseInt(string(v), 10, 64); err == nil {
			fmt.Fprintf(a.out, "Last fetched %s\n", time.Unix(ts, 0).Format(time.DateTime))
		}
	}

	printList(a.out, list)
	return nil
}

func (a *App) read(ctx context.Context, c *cache.Cache, arg string) error {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id < 0 {
		return a.usageError("message id must be a non-negative integer, got %q", arg)
	}

	m, err := a.api.Read(ctx, id)
	if err != nil {
		return fmt.Errorf("read failed: %w", err)
	}
	if err := c.Store(ctx, []models.Message{*m}); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "#%d from %s to %s at %s\n", m.ID, m.Sender, m.Receiver, formatTime(m.Timestamp))

	if m.IsText() {
		fmt.Fprintln(a.out, string(m.Content))
		return nil
	}

	path, err := filex.WriteUnique(a.config.StoragePath, m.PayloadName, m.Content)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "File %s (%s, %d bytes) saved to %s\n", m.PayloadName, m.PayloadType, len(m.Content), path)
	return nil
}

func (a *App) send(ctx context.Context, args []string) error {
	var recipients []string
	for _, r := range strings.Split(args[0], ",") {
		if r = strings.TrimSpace(r); r != "" {
			recipients = append(recipients, r)
		}
	}
	if len(recipients) == 0 {
		return a.usageError("no recipients given")
	}

	var message string
	if len(args) == 2 {
		message = args[1]
	} else {
		text, err := GetMultiline(a.reader, "Message", a.out)
		if err != nil {
			return err
		}
		message = text
	}
	if message == "" {
		return a.usageError("empty message")
	}

	deliver, what, err := a.deliveryFor(message)
	if err != nil {
		return err
	}

	var errs []error
	for _, r := range recipients {
		id, err := deliver(ctx, r)
		if err != nil {
			fmt.Fprintf(a.errOut, "Failed to send %s to %s: %v\n", what, r, err)
			errs = append(errs, fmt.Errorf("%s: %w", r, err))
			continue
		}
		fmt.Fprintf(a.out, "Sent %s to %s (id %d)\n", what, r, id)
	}
	return errors.Join(errs...)
}

// deliveryFor sends message as a file when it names a regular file and as
// text otherwise.
func (a *App) deliveryFor(message string) (func(context.Context, string) (int64, error), string, error) {
	fi, err := os.Stat(message)
	if err != nil || !fi.Mode().IsRegular() {
		return func(ctx context.Context, r string) (int64, error) {
			return a.api.SendMessage(ctx, r, message)
		}, "message", nil
	}

	content, err := os.ReadFile(message)
	if err != nil {
		return nil, "", err
	}
	name := filex.SafeName(fi.Name())
	return func(ctx context.Context, r string) (int64, error) {
		return a.api.SendFile(ctx, r, name, "", content)
	}, fmt.Sprintf("file '%s'", name), nil
}

func printList(w io.Writer, list []models.Message) {
	if len(list) == 0 {
		fmt.Fprintln(w, "No messages.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTIME\tFROM\tTO\tCONTENT")
	for _, m := range list {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", m.ID, formatTime(m.Timestamp), m.Sender, m.Receiver, preview(m))
	}
	_ = tw.Flush()
}

func preview(m models.Message) string {
	if !m.IsText() {
		return fmt.Sprintf("[%s: %s]", m.PayloadType, m.PayloadName)
	}
	if m.Content == nil {
		return "(use read)"
	}
	s := strings.Join(strings.Fields(string(m.Content)), " ")
	if r := []rune(s); len(r) > 40 {
		s = string(r[:40]) + "..."
	}
	return s
}

func formatTime(ts int64) string {
	return time.Unix(ts, 0).Format(time.DateTime)
}
