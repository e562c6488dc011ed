// Package models defines the entities Fe persists: users and the messages
// they exchange.
package models

import "time"

// User is a registered participant. Secret is the plaintext shared secret;
// it is sealed before it reaches the database.
type User struct {
	Username     string
	Secret       string
	IsPrivileged bool
	CreatedAt    time.Time
}
