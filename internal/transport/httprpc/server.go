// Package httprpc serves registered procedures over HTTP and calls them from
// the other side.
//
//	POST /rpc/{procedure}   body: payload, response: result (text/plain)
//	GET  /metrics           prometheus exposition
//	GET  /healthz           "ok"
package httprpc

import (
	"context"
	"crypto/subtle"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"vtodo/internal/logging"
	"vtodo/internal/metrics"
	"vtodo/internal/transport"
)

// MaxBodyBytes bounds a request payload.
const MaxBodyBytes = 1 << 20

// Config configures a Server.
type Config struct {
	Addr string
	// Tokens are accepted bearer tokens. No tokens means no auth.
	Tokens         []string
	RateLimitRPS   float64
	RateLimitBurst int
}

// Server exposes an Invoker over HTTP.
type Server struct {
	inv     transport.Invoker
	addr    string
	tokens  [][]byte
	limiter *rateLimiter
	log     *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
	mux     *http.ServeMux
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.log = logging.Named(l, "httprpc") }
}

// WithMetrics serves m on /metrics and counts rate-limited calls.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// NewServer builds a server calling procedures on inv.
func NewServer(inv transport.Invoker, cfg Config, opts ...Option) *Server {
	s := &Server{
		inv:     inv,
		addr:    cfg.Addr,
		limiter: newRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
		log:     logging.Discard(),
		now:     time.Now,
		mux:     http.NewServeMux(),
	}
	for _, t := range cfg.Tokens {
		if t = strings.TrimSpace(t); t != "" {
			s.tokens = append(s.tokens, []byte(t))
		}
	}
	for _, opt := range opts {
		opt(s)
	}

	s.mux.HandleFunc("POST /rpc/{procedure}", s.handleCall)
	s.mux.Handle("GET /metrics", s.metrics.Handler())
	s.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		io.WriteString(w, "ok\n")
	})
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.mux }

// ListenAndServe serves on the configured address until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	s.log.Info("listening", "addr", ln.Addr().String())

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleCall(w http.ResponseWriter, r *http.Request) {
	reqID := r.Header.Get("X-Request-ID")
	if reqID == "" {
		reqID = uuid.NewString()
	}
	w.Header().Set("X-Request-ID", reqID)
	procedure := r.PathValue("procedure")
	log := s.log.With("request_id", reqID, "procedure", procedure)

	token, ok := s.authorize(r)
	if !ok {
		log.Warn("rejected call", "reason", "unauthorized")
		w.Header().Set("WWW-Authenticate", `Bearer realm="vtodo"`)
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	if !s.limiter.allow(callerKey(r, token), s.now()) {
		s.metrics.IncRateLimited()
		log.Warn("rejected call", "reason", "rate limited")
		http.Error(w, "rate limited", http.StatusTooManyRequests)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "payload too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "cannot read body", http.StatusBadRequest)
		return
	}

	result, err := s.inv.Invoke(r.Context(), procedure, string(body))
	switch {
	case errors.Is(err, transport.ErrUnknownProcedure):
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	case err != nil:
		log.Error("procedure failed", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, result)
}

// authorize returns the presented token and whether it is accepted.
func (s *Server) authorize(r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	token, hasBearer := strings.CutPrefix(auth, "Bearer ")
	token = strings.TrimSpace(token)
	if len(s.tokens) == 0 {
		if !hasBearer {
			token = ""
		}
		return token, true
	}
	if !hasBearer || token == "" {
		return "", false
	}
	for _, want := range s.tokens {
		if subtle.ConstantTimeCompare([]byte(token), want) == 1 {
			return token, true
		}
	}
	return "", false
}
