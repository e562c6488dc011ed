package users

import (
	"context"
)

// Row is a user as stored: the secret is sealed.
type Row struct {
	Username     string
	SealedSecret []byte
	IsPrivileged bool
	CreatedAt    int64
}

type Repository interface {
	Create(ctx context.Context, row *Row) error
	GetByUsername(ctx context.Context, username string) (*Row, error)
	Exists(ctx context.Context, username string) (bool, error)
}
