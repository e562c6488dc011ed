package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/fe/internal/common"
	"github.com/dmitrijs2005/fe/internal/protocol"
	"github.com/dmitrijs2005/fe/internal/server/auth"
)

func (s *Server) healthcheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, HealthText)
}

// decode reads the body once into a typed request. GET requests may carry
// credentials in the query string instead.
func decode[T any, P interface {
	*T
	protocol.Request
}](s *Server, w http.ResponseWriter, r *http.Request) (P, bool) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeStatus(w, http.StatusBadRequest, MsgBodyTooLarge)
			var zero P
			return zero, false
		}
		s.writeError(r.Context(), w, err)
		var zero P
		return zero, false
	}

	var query url.Values
	if r.Method == http.MethodGet {
		query = r.URL.Query()
	}

	req, err := protocol.Decode[T, P](body, query)
	if err != nil {
		s.logger.Debug(r.Context(), "malformed request body", "error", err, "request_id", requestIDFrom(r.Context()))
	}
	return req, true
}

func (s *Server) authorize(ctx context.Context, w http.ResponseWriter, req protocol.Request) (string, bool) {
	identity, err := s.authorizer.Authorize(ctx, req)
	if err != nil {
		s.writeError(ctx, w, err)
		return "", false
	}
	return identity, true
}

func (s *Server) fetch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := decode[protocol.FetchRequest](s, w, r)
	if !ok {
		return
	}
	identity, ok := s.authorize(ctx, w, req)
	if !ok {
		return
	}

	list, err := s.messages.Fetch(ctx, identity)
	if err != nil {
		s.writeError(ctx, w, err)
		return
	}

	writeJSON(w, http.StatusOK, protocol.EncodeMessages(list))
}

func (s *Server) read(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := decode[protocol.ReadRequest](s, w, r)
	if !ok {
		return
	}
	identity, ok := s.authorize(ctx, w, req)
	if !ok {
		return
	}

	id, valid := req.ID()
	if !valid {
		s.writeError(ctx, w, fmt.Errorf("%w: message_id must be a non-negative integer", common.ErrorValidation))
		return
	}

	m, err := s.messages.Read(ctx, identity, id)
	if err != nil {
		s.writeError(ctx, w, err)
		return
	}

	writeJSON(w, http.StatusOK, protocol.EncodeMessage(*m))
}

func (s *Server) sendMessage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := decode[protocol.SendMessageRequest](s, w, r)
	if !ok {
		return
	}
	identity, ok := s.authorize(ctx, w, req)
	if !ok {
		return
	}

	id, err := s.messages.SendText(ctx, identity, req.ReceiverID, req.MessageText)
	if err != nil {
		s.writeError(ctx, w, err)
		return
	}

	writeJSON(w, http.StatusOK, protocol.Status{Status: http.StatusOK, Message: MsgMessageSent, ID: id})
}

func (s *Server) sendFile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := decode[protocol.SendFileRequest](s, w, r)
	if !ok {
		return
	}
	identity, ok := s.authorize(ctx, w, req)
	if !ok {
		return
	}

	content := protocol.DecodePayload(req.FileContent)
	id, err := s.messages.SendFile(ctx, identity, req.ReceiverID, req.FileName, req.FileType, content)
	if err != nil {
		s.writeError(ctx, w, err)
		return
	}

	writeJSON(w, http.StatusOK, protocol.Status{Status: http.StatusOK, Message: MsgFileSent, ID: id})
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	token, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !found || strings.TrimSpace(token) == "" {
		s.writeError(ctx, w, common.ErrInvalidToken)
		return
	}
	admin, err := auth.ParseAdminToken(strings.TrimSpace(token), s.opts.AdminSecret)
	if err != nil {
		s.logger.Info(ctx, "rejected admin token", "error", err, "request_id", requestIDFrom(ctx))
		s.writeError(ctx, w, common.ErrInvalidToken)
		return
	}

	var req protocol.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(ctx, w, fmt.Errorf("%w: malformed body", common.ErrorValidation))
		return
	}

	u, err := s.registrar.Register(ctx, req.Username, req.Secret, req.IsPrivileged)
	if err != nil {
		s.writeError(ctx, w, err)
		return
	}

	s.logger.Info(ctx, "user registered", "username", u.Username, "privileged", u.IsPrivileged, "by", admin)
	writeStatus(w, http.StatusOK, MsgUserRegistered)
}
