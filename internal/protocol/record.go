package protocol

import (
	"encoding/base64"

	"github.com/dmitrijs2005/fe/internal/models"
)

// MessageRecord is a message as it travels on the wire.
type MessageRecord struct {
	ID            int64   `json:"id"`
	SenderID      string  `json:"sender_id"`
	ReceiverID    string  `json:"receiver_id"`
	Timestamp     int64   `json:"timestamp"`
	FileName      string  `json:"file_name"`
	FileType      string  `json:"file_type"`
	FileContents  *string `json:"file_contents"`
	QueueDeletion bool    `json:"queue_deletion"`
}

// Status is the body of every non-listing response.
type Status struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	ID      int64  `json:"id,omitempty"`
}

// EncodePayload renders binary content for the wire.
func EncodePayload(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

// DecodePayload reverses EncodePayload. Text that is not valid base64 is
// returned as its raw bytes.
func DecodePayload(s string) []byte {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return []byte(s)
	}
	return b
}

func EncodeMessage(m models.Message) MessageRecord {
	rec := MessageRecord{
		ID:            m.ID,
		SenderID:      m.Sender,
		ReceiverID:    m.Receiver,
		Timestamp:     m.Timestamp,
		FileName:      m.PayloadName,
		FileType:      m.PayloadType,
		QueueDeletion: m.Deleted,
	}
	if m.Content != nil {
		s := EncodePayload(m.Content)
		rec.FileContents = &s
	}
	return rec
}

func DecodeMessage(rec MessageRecord) models.Message {
	m := models.Message{
		ID:          rec.ID,
		Sender:      rec.SenderID,
		Receiver:    rec.ReceiverID,
		Timestamp:   rec.Timestamp,
		PayloadName: rec.FileName,
		PayloadType: rec.FileType,
		Deleted:     rec.QueueDeletion,
	}
	if rec.FileContents != nil {
		m.Content = DecodePayload(*rec.FileContents)
	}
	return m
}

func EncodeMessages(ms []models.Message) []MessageRecord {
	out := make([]MessageRecord, 0, len(ms))
	for _, m := range ms {
		out = append(out, EncodeMessage(m))
	}
	return out
}
