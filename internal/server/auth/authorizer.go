package auth

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/fe/internal/common"
	"github.com/dmitrijs2005/fe/internal/logging"
	"github.com/dmitrijs2005/fe/internal/models"
	"github.com/dmitrijs2005/fe/internal/protocol"
	"github.com/dmitrijs2005/fe/internal/signature"
)

// Directory resolves a claimed identity.
type Directory interface {
	Lookup(ctx context.Context, username string) (*models.User, error)
}

// Authorizer checks the signature of every message API request.
type Authorizer struct {
	dir     Directory
	limiter *Limiter
	log     logging.Logger

	dummySecret string
}

// NewAuthorizer builds an Authorizer. limiter may be nil.
func NewAuthorizer(dir Directory, limiter *Limiter, log logging.Logger) *Authorizer {
	dummy, err := common.MakeRandHexString(32)
	if err != nil {
		dummy = "fe-dummy-secret"
	}
	return &Authorizer{
		dir:         dir,
		limiter:     limiter,
		log:         log.With("module", "authorizer"),
		dummySecret: dummy,
	}
}

// Authorize returns the verified identity of req.
//
// Missing or sentinel credentials and unknown users yield
// common.ErrorUnauthenticated, a signature that does not verify yields
// common.ErrorForbidden, and an exhausted per-user budget yields
// common.ErrorRateLimited. Authorize never mutates state.
func (a *Authorizer) Authorize(ctx context.Context, req protocol.Request) (string, error) {
	creds := req.Auth()
	identity, candidate := creds.SenderID, creds.Signature

	key, keyErr := protocol.OperationKey(req)
	if common.IsSentinel(identity) || keyErr != nil || common.IsSentinel(candidate) {
		a.log.Debug(ctx, "missing credentials", "endpoint", req.Endpoint(), "identity", identity)
		return "", common.ErrorUnauthenticated
	}

	user, err := a.dir.Lookup(ctx, identity)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// Unknown users cost one HMAC, like a bad signature.
			_ = signature.Verify(identity, key, a.dummySecret, candidate)
			a.log.Info(ctx, "unknown identity", "endpoint", req.Endpoint(), "identity", identity)
			return "", common.ErrorUnauthenticated
		}
		return "", err
	}

	if !a.limiter.Allow(identity) {
		return "", common.ErrorRateLimited
	}

	if !signature.Verify(identity, key, user.Secret, candidate) {
		a.log.Info(ctx, "signature mismatch", "endpoint", req.Endpoint(), "identity", identity)
		return "", common.ErrorForbidden
	}

	return user.Username, nil
}
