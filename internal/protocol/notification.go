package protocol

import (
	"strings"

	"github.com/dmitrijs2005/fe/internal/models"
)

// DefaultSubjectPrefix is the NATS subject prefix notifications go under.
const DefaultSubjectPrefix = "fe.messages"

// Notification announces a stored message without its content.
type Notification struct {
	ID         int64  `json:"id"`
	SenderID   string `json:"sender_id"`
	ReceiverID string `json:"receiver_id"`
	Timestamp  int64  `json:"timestamp"`
	FileName   string `json:"file_name"`
	FileType   string `json:"file_type"`
}

func NewNotification(m models.Message) Notification {
	return Notification{
		ID:         m.ID,
		SenderID:   m.Sender,
		ReceiverID: m.Receiver,
		Timestamp:  m.Timestamp,
		FileName:   m.PayloadName,
		FileType:   m.PayloadType,
	}
}

var subjectToken = strings.NewReplacer(".", "_", "*", "_", ">", "_")

// NotificationSubject is the subject a receiver's notifications are
// published on. Characters NATS treats as token syntax are replaced.
func NotificationSubject(prefix, receiver string) string {
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	return prefix + "." + subjectToken.Replace(receiver)
}
