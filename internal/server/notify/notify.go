// Package notify publishes a NATS event for every stored message so
// receivers can watch their inbox instead of polling /fetch.
package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dmitrijs2005/fe/internal/logging"
	"github.com/dmitrijs2005/fe/internal/models"
	"github.com/dmitrijs2005/fe/internal/protocol"
	"github.com/nats-io/nats.go"
)

type conn interface {
	Publish(subject string, data []byte) error
	Drain() error
}

var connect = func(url string, opts ...nats.Option) (conn, error) {
	return nats.Connect(url, opts...)
}

// Publisher sends protocol.Notification events. The zero value and a nil
// *Publisher are valid and publish nothing.
type Publisher struct {
	conn   conn
	prefix string
	logger logging.Logger
}

// New connects to url. An empty url disables publishing.
func New(url, prefix string, l logging.Logger) (*Publisher, error) {
	logger := l.With("module", "notify")
	if url == "" {
		logger.Info(context.Background(), "NATS notifications disabled")
		return &Publisher{logger: logger}, nil
	}

	nc, err := connect(url,
		nats.Name("fe-server"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, err
	}

	logger.Info(context.Background(), "Connected to NATS", "url", url)
	return &Publisher{conn: nc, prefix: prefix, logger: logger}, nil
}

// Enabled reports whether events are actually sent.
func (p *Publisher) Enabled() bool {
	return p != nil && p.conn != nil
}

// MessageStored publishes m to the receiver's subject. Failures are logged.
func (p *Publisher) MessageStored(ctx context.Context, m models.Message) {
	if !p.Enabled() {
		return
	}

	data, err := json.Marshal(protocol.NewNotification(m))
	if err != nil {
		p.logger.Error(ctx, "encode notification", "error", err, "id", m.ID)
		return
	}

	subject := protocol.NotificationSubject(p.prefix, m.Receiver)
	if err := p.conn.Publish(subject, data); err != nil {
		p.logger.Warn(ctx, "publish notification", "error", err, "subject", subject, "id", m.ID)
		return
	}

	p.logger.Debug(ctx, "notification published", "subject", subject, "id", m.ID)
}

// Close flushes pending events and closes the connection.
func (p *Publisher) Close() error {
	if !p.Enabled() {
		return nil
	}
	return p.conn.Drain()
}
