package common

// Sentinels substituted for request fields the caller did not send. A
// sentinel in an authenticated field is treated as missing credentials.
const (
	UnknownValue     = "unknown"
	UnknownMessageID = "-1"
)

// Payload tags for plain text messages.
const (
	TextPayloadName = "Message"
	TextPayloadType = "FETXT"
)

// DefaultFileType is used when neither the client nor the file name tells
// what a file is.
const DefaultFileType = "application/octet-stream"

// DefaultServerPort is the port the reference clients expect.
const DefaultServerPort = 26834

// IsSentinel reports whether v is empty or the "unknown" placeholder.
func IsSentinel(v string) bool {
	return v == "" || v == UnknownValue
}

// IsMissingMessageID reports whether a message_id field carries no id. "-1"
// is a placeholder only in this field.
func IsMissingMessageID(v string) bool {
	return IsSentinel(v) || v == UnknownMessageID
}
