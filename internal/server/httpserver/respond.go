package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/fe/internal/common"
	"github.com/dmitrijs2005/fe/internal/protocol"
)

// Status payload texts. The 403 text is what deployed clients match on.
const (
	MsgSignatureMismatch = "signature dosen't match..."
	MsgMessageNotFound   = "message not found"
	MsgReceiverNotFound  = "receiver not found"
	MsgUserExists        = "user already exists"
	MsgRateLimited       = "too many requests"
	MsgInvalidToken      = "invalid admin token"
	MsgInternal          = "internal server error"
	MsgBodyTooLarge      = "request body too large"
	MsgMessageSent       = "message sent"
	MsgFileSent          = "file sent"
	MsgUserRegistered    = "user registered"
)

func writeJSON(w http.ResponseWriter, httpStatus int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	_ = json.NewEncoder(w).Encode(v)
}

func writeStatus(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, http.StatusOK, protocol.Status{Status: status, Message: msg})
}

// statusFor maps a service error onto the payload status and text.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, common.ErrorUnauthenticated), errors.Is(err, common.ErrorForbidden):
		return http.StatusForbidden, MsgSignatureMismatch
	case errors.Is(err, common.ErrorReceiverNotFound):
		return http.StatusNotFound, MsgReceiverNotFound
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, MsgMessageNotFound
	case errors.Is(err, common.ErrorValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, common.ErrorAlreadyExists):
		return http.StatusConflict, MsgUserExists
	case errors.Is(err, common.ErrorRateLimited):
		return http.StatusTooManyRequests, MsgRateLimited
	case errors.Is(err, common.ErrInvalidToken):
		return http.StatusUnauthorized, MsgInvalidToken
	default:
		return http.StatusInternalServerError, MsgInternal
	}
}

func (s *Server) writeError(ctx context.Context, w http.ResponseWriter, err error) {
	status, msg := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error(ctx, "request failed", "error", err, "request_id", requestIDFrom(ctx))
	}
	writeStatus(w, status, msg)
}

func (s *Server) wrapFallback(status int, msg string) http.Handler {
	return s.requestID(s.accessLog(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, status, msg)
	})))
}
