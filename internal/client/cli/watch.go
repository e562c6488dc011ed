package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/fe/internal/common"
	"github.com/dmitrijs2005/fe/internal/protocol"
	"github.com/nats-io/nats.go"
)

type natsConn interface {
	Subscribe(subject string, cb nats.MsgHandler) (*nats.Subscription, error)
	Drain() error
}

var natsConnect = func(url string, opts ...nats.Option) (natsConn, error) {
	return nats.Connect(url, opts...)
}

// watch prints a line for every message addressed to the sender until ctx
// ends.
func (a *App) watch(ctx context.Context) error {
	if a.config.NATSURL == "" {
		return a.usageError("watch needs nats_url in the config")
	}
	if a.config.SenderName == "" {
		return a.usageError("watch needs sender_name in the config")
	}

	nc, err := natsConnect(a.config.NATSURL,
		nats.Name("fe-client-"+a.config.SenderName),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return fmt.Errorf("connect nats: %w", err)
	}
	defer nc.Drain()

	subject := protocol.NotificationSubject(protocol.DefaultSubjectPrefix, a.config.SenderName)
	_, err = nc.Subscribe(subject, func(msg *nats.Msg) {
		var n protocol.Notification
		if err := json.Unmarshal(msg.Data, &n); err != nil {
			fmt.Fprintf(a.errOut, "bad notification: %v\n", err)
			return
		}
		what := "message"
		if n.FileType != common.TextPayloadType {
			what = fmt.Sprintf("file %s (%s)", n.FileName, n.FileType)
		}
		fmt.Fprintf(a.out, "New %s #%d from %s at %s\n", what, n.ID, n.SenderID, formatTime(n.Timestamp))
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", subject, err)
	}

	fmt.Fprintf(a.out, "Watching %s, Ctrl+C to stop\n", subject)
	<-ctx.Done()
	return nil
}
