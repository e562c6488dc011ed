package models

import "github.com/dmitrijs2005/fe/internal/common"

// Message is one sender to receiver payload. ID and Timestamp are assigned
// by the server on insert. Content may be nil in bulk listings.
type Message struct {
	ID          int64
	Sender      string
	Receiver    string
	Timestamp   int64
	PayloadName string
	PayloadType string
	Content     []byte
	Deleted     bool
}

// IsText reports whether the message carries a plain text body.
func (m *Message) IsText() bool {
	return m.PayloadType == common.TextPayloadType
}

// HasParticipant reports whether username sent or received m.
func (m *Message) HasParticipant(username string) bool {
	return m.Sender == username || m.Receiver == username
}
