// Package http exposes the ledger over a JSON API.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"wallet/internal/auth"
	"wallet/internal/cache"
	"wallet/internal/ledger"
	"wallet/internal/log"
	"wallet/internal/middleware"
	"wallet/internal/report"
)

const (
	dashboardCacheSize = 128
	readHeaderTimeout  = 5 * time.Second
	shutdownGrace      = 10 * time.Second
)

type Server struct {
	httpServer *http.Server
	ledger     *ledger.Service
	reporter   *report.Reporter
	auth       *auth.Service
	dashCache  *cache.LRUCache[dashboardPayload]
	cacheMgr   *cache.Manager
	trace      *middleware.Trace
	logger     *log.Logger
}

// Options carries the server's collaborators and tuning knobs.
type Options struct {
	Port              string
	Ledger            *ledger.Service
	Reporter          *report.Reporter
	Auth              *auth.Service
	Logger            *log.Logger
	DashboardCacheTTL time.Duration
}

func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}

	ttl := opts.DashboardCacheTTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}

	s := &Server{
		ledger:    opts.Ledger,
		reporter:  opts.Reporter,
		auth:      opts.Auth,
		dashCache: cache.NewLRUCache[dashboardPayload](dashboardCacheSize, ttl),
		cacheMgr:  cache.NewManager(logger),
		trace:     middleware.NewTrace(),
		logger:    logger.WithComponent(log.ComponentHTTP),
	}
	s.cacheMgr.Register(s.dashCache)
	s.cacheMgr.StartCleanup(ttl)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("POST /api/auth/signup", s.handleSignUp)
	mux.HandleFunc("POST /api/auth/login", s.handleLogIn)
	mux.HandleFunc("POST /api/auth/logout", s.handleLogOut)
	mux.HandleFunc("GET /api/auth/me", s.handleMe)

	mux.HandleFunc("GET /api/accounts", s.handleListAccounts)
	mux.HandleFunc("POST /api/accounts", s.handleAddAccount)
	mux.HandleFunc("DELETE /api/accounts/{id}", s.handleDeleteAccount)

	mux.HandleFunc("GET /api/transactions", s.handleListTransactions)
	mux.HandleFunc("POST /api/transactions", s.handleAddTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)

	mux.HandleFunc("GET /api/categories", s.handleListCategories)
	mux.HandleFunc("POST /api/categories", s.handleAddCategory)
	mux.HandleFunc("DELETE /api/categories/{id}", s.handleDeleteCategory)
	mux.HandleFunc("POST /api/categories/{id}/subcategories", s.handleAddSubCategory)
	mux.HandleFunc("DELETE /api/categories/{id}/subcategories/{index}", s.handleDeleteSubCategory)

	mux.HandleFunc("GET /api/budgets", s.handleListBudgets)
	mux.HandleFunc("POST /api/budgets", s.handleAddBudget)
	mux.HandleFunc("DELETE /api/budgets/{id}", s.handleDeleteBudget)

	mux.HandleFunc("GET /api/dashboard", s.handleDashboard)
	mux.HandleFunc("GET /api/reports/summary", s.handleReportSummary)
	mux.HandleFunc("GET /api/reports/export", s.handleReportExport)

	var handler http.Handler = mux
	handler = log.Middleware(logger)(handler)
	handler = middleware.SecurityHeaders(middleware.DefaultHeadersConfig())(handler)
	handler = s.trace.Middleware(handler)

	s.httpServer = &http.Server{
		Addr:              ":" + opts.Port,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Handler exposes the middleware chain, for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) ListenAndServe() error {
	s.logger.Info("HTTP server listening", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.cacheMgr.Stop()
	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownGrace)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "ok")
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "ready")
}

// invalidateDashboards drops every cached dashboard view for a user.
// Called after each mutation.
func (s *Server) invalidateDashboards(userID string) {
	s.dashCache.DeletePrefix(userID + ":")
}
