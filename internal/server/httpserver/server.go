// Package httpserver exposes the Fe message API over HTTP.
//
// Every protocol response is HTTP 200 with a JSON body; failures carry
// their code in the body as {"status": N, "message": "..."} so clients
// branch on the payload rather than on transport errors.
package httpserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/fe/internal/logging"
	"github.com/dmitrijs2005/fe/internal/models"
	"github.com/dmitrijs2005/fe/internal/protocol"
	"github.com/gorilla/mux"
)

// HealthText is the body of GET /healthcheck.
const HealthText = "Fe is alive, healthy and running"

const shutdownTimeout = 10 * time.Second

// MessageStore is the subset of the message service the API calls.
type MessageStore interface {
	SendText(ctx context.Context, sender, receiver, text string) (int64, error)
	SendFile(ctx context.Context, sender, receiver, fileName, fileType string, content []byte) (int64, error)
	Fetch(ctx context.Context, username string) ([]models.Message, error)
	Read(ctx context.Context, caller string, id int64) (*models.Message, error)
}

// Registrar creates users.
type Registrar interface {
	Register(ctx context.Context, username, secret string, isPrivileged bool) (*models.User, error)
}

// RequestAuthorizer verifies request signatures.
type RequestAuthorizer interface {
	Authorize(ctx context.Context, req protocol.Request) (string, error)
}

// Options tune request handling.
type Options struct {
	MaxBodyBytes int64
	// AdminSecret verifies admin tokens for POST /register.
	AdminSecret []byte
}

type Server struct {
	address    string
	logger     logging.Logger
	messages   MessageStore
	registrar  Registrar
	authorizer RequestAuthorizer
	opts       Options
	router     *mux.Router
}

func NewServer(address string, l logging.Logger, ms MessageStore, reg Registrar, az RequestAuthorizer, opts Options) *Server {
	s := &Server{
		address:    address,
		logger:     l.With("module", "http_server"),
		messages:   ms,
		registrar:  reg,
		authorizer: az,
		opts:       opts,
	}
	s.router = s.routes()
	return s
}

// Handler returns the fully wired router.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()

	r.Use(s.requestID, s.accessLog, s.recoverer, s.limitBody)

	r.HandleFunc("/healthcheck", s.healthcheck).Methods(http.MethodGet)
	r.HandleFunc(protocol.EndpointFetch.Path(), s.fetch).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc(protocol.EndpointRead.Path(), s.read).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc(protocol.EndpointSendMessage.Path(), s.sendMessage).Methods(http.MethodPost)
	r.HandleFunc(protocol.EndpointSendFile.Path(), s.sendFile).Methods(http.MethodPost)
	r.HandleFunc("/register", s.register).Methods(http.MethodPost)

	r.NotFoundHandler = s.wrapFallback(http.StatusNotFound, "endpoint not found")
	r.MethodNotAllowedHandler = s.wrapFallback(http.StatusMethodNotAllowed, "method not allowed")

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		MaxHeaderBytes:    1 << 20,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(context.Background(), "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(context.Background(), "HTTP shutdown error", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
