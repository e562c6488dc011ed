// Package api is the Fe HTTP client. Every authenticated call is signed
// with the configured sender name and shared secret.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/fe/internal/client/config"
	"github.com/dmitrijs2005/fe/internal/common"
	"github.com/dmitrijs2005/fe/internal/models"
	"github.com/dmitrijs2005/fe/internal/netx"
	"github.com/dmitrijs2005/fe/internal/protocol"
)

// StatusError is a non-200 status payload returned by the server.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server replied %d: %s", e.Status, e.Message)
}

// StatusOf returns the payload status carried by err, or 0.
func StatusOf(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status
	}
	return 0
}

type Client struct {
	baseURL string
	http    *http.Client
	sender  string
	secret  string
}

func New(cfg *config.Config) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL(), "/"),
		http:    &http.Client{Timeout: cfg.RequestTimeout},
		sender:  cfg.SenderName,
		secret:  cfg.AuthToken,
	}
}

// NewWithHTTPClient points the client at baseURL using hc.
func NewWithHTTPClient(baseURL string, hc *http.Client, sender, secret string) *Client {
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: hc, sender: sender, secret: secret}
}

// Ping returns the health text.
func (c *Client) Ping(ctx context.Context) (string, error) {
	b, err := netx.Do(ctx, c.http, http.MethodGet, c.baseURL+"/healthcheck", nil, nil)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Fetch lists every message the sender sent or received.
func (c *Client) Fetch(ctx context.Context) ([]models.Message, error) {
	req := &protocol.FetchRequest{}
	b, err := c.call(ctx, http.MethodGet, req)
	if err != nil {
		return nil, err
	}

	if firstByte(b) != '[' {
		if err := statusError(b); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("unexpected fetch response: %.64s", b)
	}

	var recs []protocol.MessageRecord
	if err := json.Unmarshal(b, &recs); err != nil {
		return nil, fmt.Errorf("decode fetch response: %w", err)
	}

	out := make([]models.Message, 0, len(recs))
	for _, r := range recs {
		out = append(out, protocol.DecodeMessage(r))
	}
	return out, nil
}

// Read returns one message by id.
func (c *Client) Read(ctx context.Context, id int64) (*models.Message, error) {
	req := &protocol.ReadRequest{MessageID: protocol.FlexString(strconv.FormatInt(id, 10))}
	b, err := c.call(ctx, http.MethodGet, req)
	if err != nil {
		return nil, err
	}

	if err := statusError(b); err != nil {
		return nil, err
	}

	var rec protocol.MessageRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil, fmt.Errorf("decode read response: %w", err)
	}
	m := protocol.DecodeMessage(rec)
	return &m, nil
}

// SendMessage sends text to receiver and returns the new message id.
func (c *Client) SendMessage(ctx context.Context, receiver, text string) (int64, error) {
	req := &protocol.SendMessageRequest{ReceiverID: receiver, MessageText: text}
	return c.send(ctx, req)
}

// SendFile sends content as fileName. An empty fileType lets the server
// guess it.
func (c *Client) SendFile(ctx context.Context, receiver, fileName, fileType string, content []byte) (int64, error) {
	if fileType == "" {
		fileType = common.UnknownValue
	}
	req := &protocol.SendFileRequest{
		ReceiverID:  receiver,
		FileName:    fileName,
		FileType:    fileType,
		FileContent: protocol.EncodePayload(content),
	}
	return c.send(ctx, req)
}

// Register creates a user with an admin token.
func (c *Client) Register(ctx context.Context, adminToken string, r protocol.RegisterRequest) error {
	h := http.Header{}
	h.Set("Authorization", "Bearer "+adminToken)

	b, err := netx.Do(ctx, c.http, http.MethodPost, c.baseURL+"/register", r, h)
	if err != nil {
		return err
	}
	return statusError(b)
}

func (c *Client) send(ctx context.Context, req protocol.Request) (int64, error) {
	b, err := c.call(ctx, http.MethodPost, req)
	if err != nil {
		return 0, err
	}
	if err := statusError(b); err != nil {
		return 0, err
	}

	var st protocol.Status
	if err := json.Unmarshal(b, &st); err != nil {
		return 0, fmt.Errorf("decode status: %w", err)
	}
	return st.ID, nil
}

// call fills credentials, signs req and posts it to its endpoint.
func (c *Client) call(ctx context.Context, method string, req protocol.Request) ([]byte, error) {
	req.Auth().SenderID = c.sender
	req.Normalize()
	if err := protocol.SignRequest(req, c.secret); err != nil {
		return nil, err
	}
	return netx.Do(ctx, c.http, method, c.baseURL+req.Endpoint().Path(), req, nil)
}

// statusError returns a *StatusError when b is a status payload other
// than 200, nil otherwise.
func statusError(b []byte) error {
	if firstByte(b) != '{' {
		return nil
	}
	var probe struct {
		Status  *int   `json:"status"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(b, &probe); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if probe.Status == nil || *probe.Status == http.StatusOK {
		return nil
	}
	return &StatusError{Status: *probe.Status, Message: probe.Message}
}

func firstByte(b []byte) byte {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return 0
	}
	return b[0]
}
