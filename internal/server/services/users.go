// Package services contains server-side business logic. This file implements
// UserService, the user directory: registration and identity lookup.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/dmitrijs2005/fe/internal/common"
	"github.com/dmitrijs2005/fe/internal/cryptox"
	"github.com/dmitrijs2005/fe/internal/models"
	"github.com/dmitrijs2005/fe/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/fe/internal/server/repositories/users"
)

const maxUsernameLength = 64

// UserService maps usernames to shared secrets. Secrets are sealed with
// the server key before they are stored.
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	sealer      *cryptox.Sealer
	now         func() time.Time
}

// NewUserService constructs a UserService.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, sealer *cryptox.Sealer) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		sealer:      sealer,
		now:         time.Now,
	}
}

// Register creates a user. An existing username yields
// common.ErrorAlreadyExists and is never overwritten.
func (s *UserService) Register(ctx context.Context, username, secret string, isPrivileged bool) (*models.User, error) {
	if err := ValidateUsername(username); err != nil {
		return nil, err
	}
	if common.IsSentinel(secret) {
		return nil, fmt.Errorf("%w: secret is required", common.ErrorValidation)
	}

	sealed, err := s.sealer.Seal([]byte(secret), []byte(username))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}

	created := s.now().UTC()
	row := &users.Row{
		Username:     username,
		SealedSecret: sealed,
		IsPrivileged: isPrivileged,
		CreatedAt:    created.Unix(),
	}

	if err := s.repomanager.Users(s.db).Create(ctx, row); err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", common.ErrorStorage, err)
	}

	return &models.User{
		Username:     username,
		Secret:       secret,
		IsPrivileged: isPrivileged,
		CreatedAt:    time.Unix(row.CreatedAt, 0).UTC(),
	}, nil
}

// Lookup resolves username and opens its secret. A missing user yields
// common.ErrorNotFound.
func (s *UserService) Lookup(ctx context.Context, username string) (*models.User, error) {
	row, err := s.repomanager.Users(s.db).GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", common.ErrorStorage, err)
	}

	secret, err := s.sealer.Open(row.SealedSecret, []byte(row.Username))
	if err != nil {
		return nil, fmt.Errorf("%w: open secret: %w", common.ErrorInternal, err)
	}

	return &models.User{
		Username:     row.Username,
		Secret:       string(secret),
		IsPrivileged: row.IsPrivileged,
		CreatedAt:    time.Unix(row.CreatedAt, 0).UTC(),
	}, nil
}

// ValidateUsername accepts 1 to 64 printable characters without spaces or
// commas. Sentinels are rejected. Commas separate recipients on the client.
func ValidateUsername(username string) error {
	if common.IsSentinel(username) {
		return fmt.Errorf("%w: username is required", common.ErrorValidation)
	}
	if utf8.RuneCountInString(username) > maxUsernameLength {
		return fmt.Errorf("%w: username longer than %d characters", common.ErrorValidation, maxUsernameLength)
	}
	if strings.IndexFunc(username, func(r rune) bool { return unicode.IsSpace(r) || !unicode.IsPrint(r) }) >= 0 {
		return fmt.Errorf("%w: username contains whitespace or control characters", common.ErrorValidation)
	}
	if strings.Contains(username, ",") {
		return fmt.Errorf("%w: username contains a comma", common.ErrorValidation)
	}
	return nil
}
