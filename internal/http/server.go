package http

import (
	"context"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"budget/internal/core"
	applog "budget/internal/log"
	"budget/internal/middleware/security"
	"budget/internal/middleware/trace"
)

// Accounts is the account surface the API needs.
type Accounts interface {
	Authenticate(ctx context.Context, username, plaintext string) (int64, bool, error)
	GetUsername(ctx context.Context, userID int64) (string, error)
	ChangePassword(ctx context.Context, userID int64, plaintext string) error
	CreateUser(ctx context.Context, username, plaintext string) (bool, error)
}

// Transactions is the transaction surface the API needs.
type Transactions interface {
	AddTransaction(ctx context.Context, userID int64, date core.Date, category string, amount decimal.Decimal) (core.Transaction, error)
	FetchTransactions(ctx context.Context, userID int64) ([]core.Transaction, error)
	DeleteTransaction(ctx context.Context, userID, txID int64) (bool, error)
	Summary(ctx context.Context, userID int64) (core.Summary, error)
}

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server is the budget JSON API.
type Server struct {
	http.Server

	accounts     Accounts
	transactions Transactions
	store        Pinger
	tracer       *trace.Middleware
	started      time.Time
}

// NewServer configures routes and middleware, returning a ready-to-run http.Server.
// store may be nil, in which case /readyz only reports liveness.
func NewServer(addr string, accounts Accounts, transactions Transactions, store Pinger, logger *applog.Logger) *Server {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}

	s := &Server{
		accounts:     accounts,
		transactions: transactions,
		store:        store,
		tracer:       trace.NewMiddleware(extractClientIP),
		started:      time.Now(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("POST /api/login", s.handleLogin)
	mux.HandleFunc("POST /api/users", s.handleCreateUser)
	mux.HandleFunc("GET /api/users/{userID}", s.handleGetUser)
	mux.HandleFunc("PUT /api/users/{userID}/password", s.handleChangePassword)

	mux.HandleFunc("GET /api/users/{userID}/transactions", s.handleListTransactions)
	mux.HandleFunc("POST /api/users/{userID}/transactions", s.handleCreateTransaction)
	mux.HandleFunc("DELETE /api/users/{userID}/transactions/{txID}", s.handleDeleteTransaction)
	mux.HandleFunc("GET /api/users/{userID}/summary", s.handleSummary)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	requestID := func(r *http.Request) string { return trace.GetRequestID(r.Context()) }

	// Wrapped inside out; trace runs first so the request log carries its id.
	var handler http.Handler = mux
	handler = headers.Middleware(handler)
	handler = applog.Middleware(logger, requestID)(handler)
	handler = s.tracer.Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}
	return s
}

// Metrics exposes request counters collected by the trace middleware.
func (s *Server) Metrics() trace.Metrics {
	return s.tracer.GetMetrics()
}
