package protocol

import (
	"bytes"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/fe/internal/common"
)

// Request is implemented by every authenticated request body.
type Request interface {
	Endpoint() Endpoint
	// Auth exposes the identity claim and signature for reading and signing.
	Auth() *Credentials
	// Normalize replaces absent fields with sentinels.
	Normalize()
	// FillFromQuery copies fields that are still empty from URL query values.
	FillFromQuery(q url.Values)
}

// Credentials is carried by every authenticated request.
type Credentials struct {
	Signature string `json:"signature"`
	SenderID  string `json:"sender_id"`
}

func (c *Credentials) Auth() *Credentials { return c }

func (c *Credentials) normalize() {
	c.Signature = orSentinel(c.Signature, common.UnknownValue)
	c.SenderID = orSentinel(c.SenderID, common.UnknownValue)
}

func (c *Credentials) fillFromQuery(q url.Values) {
	fillFromQuery(&c.Signature, q, "signature")
	fillFromQuery(&c.SenderID, q, "sender_id")
}

type FetchRequest struct {
	Credentials
}

func (r *FetchRequest) Endpoint() Endpoint         { return EndpointFetch }
func (r *FetchRequest) Normalize()                 { r.normalize() }
func (r *FetchRequest) FillFromQuery(q url.Values) { r.fillFromQuery(q) }

type ReadRequest struct {
	Credentials
	MessageID FlexString `json:"message_id"`
}

func (r *ReadRequest) Endpoint() Endpoint { return EndpointRead }

func (r *ReadRequest) Normalize() {
	r.normalize()
	r.MessageID = FlexString(orSentinel(strings.TrimSpace(string(r.MessageID)), common.UnknownMessageID))
}

func (r *ReadRequest) FillFromQuery(q url.Values) {
	r.fillFromQuery(q)
	id := string(r.MessageID)
	if common.IsMissingMessageID(strings.TrimSpace(id)) {
		id = ""
	}
	fillFromQuery(&id, q, "message_id")
	r.MessageID = FlexString(id)
}

// ID parses the message id. ok is false for sentinels and non-integers.
func (r *ReadRequest) ID() (id int64, ok bool) {
	id, err := strconv.ParseInt(string(r.MessageID), 10, 64)
	if err != nil || id < 0 {
		return 0, false
	}
	return id, true
}

type SendMessageRequest struct {
	Credentials
	ReceiverID  string `json:"receiver_id"`
	MessageText string `json:"message_text"`
}

func (r *SendMessageRequest) Endpoint() Endpoint { return EndpointSendMessage }

func (r *SendMessageRequest) Normalize() {
	r.normalize()
	r.ReceiverID = orSentinel(r.ReceiverID, common.UnknownValue)
	r.MessageText = orSentinel(r.MessageText, common.UnknownValue)
}

func (r *SendMessageRequest) FillFromQuery(q url.Values) {
	r.fillFromQuery(q)
	fillFromQuery(&r.ReceiverID, q, "receiver_id")
}

type SendFileRequest struct {
	Credentials
	ReceiverID  string `json:"receiver_id"`
	FileName    string `json:"file_name"`
	FileType    string `json:"file_type"`
	FileContent string `json:"file_content"`
}

func (r *SendFileRequest) Endpoint() Endpoint { return EndpointSendFile }

func (r *SendFileRequest) Normalize() {
	r.normalize()
	r.ReceiverID = orSentinel(r.ReceiverID, common.UnknownValue)
	r.FileName = orSentinel(r.FileName, common.UnknownValue)
	r.FileType = orSentinel(r.FileType, common.UnknownValue)
}

func (r *SendFileRequest) FillFromQuery(q url.Values) {
	r.fillFromQuery(q)
	fillFromQuery(&r.ReceiverID, q, "receiver_id")
	fillFromQuery(&r.FileName, q, "file_name")
	fillFromQuery(&r.FileType, q, "file_type")
}

// Decode builds a request of type T from a JSON body. A body that fails to
// parse leaves every field empty; the parse error is returned for logging
// only. When query is non-nil it fills fields the body left empty. The
// result is always normalized.
func Decode[T any, P interface {
	*T
	Request
}](body []byte, query url.Values) (P, error) {
	var v T
	var decodeErr error
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &v); err != nil {
			var zero T
			v = zero
			decodeErr = err
		}
	}
	p := P(&v)
	if query != nil {
		p.FillFromQuery(query)
	}
	p.Normalize()
	return p, decodeErr
}

// FlexString accepts a JSON string or number and keeps its text form.
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}

func (f FlexString) String() string { return string(f) }

func orSentinel(v, sentinel string) string {
	if v == "" {
		return sentinel
	}
	return v
}

func fillFromQuery(dst *string, q url.Values, key string) {
	if *dst != "" && !common.IsSentinel(*dst) {
		return
	}
	if v := q.Get(key); v != "" {
		*dst = v
	}
}

// RegisterRequest is the body of POST /register. It is authorized by an
// admin bearer token rather than a signature.
type RegisterRequest struct {
	Username     string `json:"username"`
	Secret       string `json:"secret"`
	IsPrivileged bool   `json:"is_privileged"`
}
