// Package http exposes the JSON REST API: account and session endpoints,
// transaction/category/budget/subscription CRUD, and the prediction, tip,
// and health insights.
package http

import (
	"context"
	"net/http"
	"sync"

	"smartspend/internal/auth"
	"smartspend/internal/log"
	"smartspend/internal/services"
)

// Services bundles everything the handlers call into.
type Services struct {
	Accounts      *services.AccountService
	Transactions  *services.TransactionService
	Categories    *services.CategoryService
	Budgets       *services.BudgetService
	Subscriptions *services.SubscriptionService
	Insights      *services.InsightsService
}

type Server struct {
	http.Server

	svc        Services
	tokens     *auth.TokenIssuer
	structured *log.StructuredLogger

	rateLimiter  *rateLimiter
	metrics      *securityMetrics
	shutdownOnce sync.Once
}

// NewServer configures all routes and returns a ready-to-run server.
func NewServer(addr string, svc Services, tokens *auth.TokenIssuer, logger *log.Logger, rateLimitPerMinute int) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		svc:         svc,
		tokens:      tokens,
		structured:  log.NewStructuredLogger(logger),
		rateLimiter: newRateLimiter(rateLimitPerMinute),
		metrics:     &securityMetrics{},
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("POST /api/auth/register", s.public(s.handleRegister))
	mux.HandleFunc("POST /api/auth/login", s.public(s.handleLogin))
	mux.HandleFunc("GET /api/auth/me", s.protected(s.handleMe))
	mux.HandleFunc("PUT /api/auth/settings", s.protected(s.handleUpdateSettings))
	mux.HandleFunc("POST /api/auth/change-password", s.protected(s.handleChangePassword))

	mux.HandleFunc("GET /api/users/profile", s.protected(s.handleMe))
	mux.HandleFunc("PUT /api/users/profile", s.protected(s.handleUpdateProfile))

	mux.HandleFunc("GET /api/transactions", s.protected(s.handleListTransactions))
	mux.HandleFunc("GET /api/transactions/summary", s.protected(s.handleTransactionSummary))
	mux.HandleFunc("GET /api/transactions/{id}", s.protected(s.handleGetTransaction))
	mux.HandleFunc("POST /api/transactions", s.protected(s.handleCreateTransaction))
	mux.HandleFunc("PUT /api/transactions/{id}", s.protected(s.handleUpdateTransaction))
	mux.HandleFunc("DELETE /api/transactions/{id}", s.protected(s.handleDeleteTransaction))

	mux.HandleFunc("GET /api/categories", s.protected(s.handleListCategories))
	mux.HandleFunc("GET /api/categories/{id}", s.protected(s.handleGetCategory))
	mux.HandleFunc("POST /api/categories", s.protected(s.handleCreateCategory))
	mux.HandleFunc("PUT /api/categories/{id}", s.protected(s.handleUpdateCategory))
	mux.HandleFunc("DELETE /api/categories/{id}", s.protected(s.handleDeleteCategory))

	mux.HandleFunc("GET /api/budgets", s.protected(s.handleListBudgets))
	mux.HandleFunc("GET /api/budgets/alerts", s.protected(s.handleBudgetAlerts))
	mux.HandleFunc("POST /api/budgets", s.protected(s.handleCreateBudget))
	mux.HandleFunc("PUT /api/budgets/{id}", s.protected(s.handleUpdateBudget))
	mux.HandleFunc("DELETE /api/budgets/{id}", s.protected(s.handleDeleteBudget))

	mux.HandleFunc("GET /api/subscriptions", s.protected(s.handleListSubscriptions))
	mux.HandleFunc("GET /api/subscriptions/summary", s.protected(s.handleSubscriptionSummary))
	mux.HandleFunc("GET /api/subscriptions/{id}", s.protected(s.handleGetSubscription))
	mux.HandleFunc("POST /api/subscriptions", s.protected(s.handleCreateSubscription))
	mux.HandleFunc("PUT /api/subscriptions/{id}", s.protected(s.handleUpdateSubscription))
	mux.HandleFunc("PUT /api/subscriptions/{id}/toggle", s.protected(s.handleToggleSubscription))
	mux.HandleFunc("DELETE /api/subscriptions/{id}", s.protected(s.handleDeleteSubscription))

	mux.HandleFunc("GET /api/predictions/monthly", s.protected(s.handleMonthlyPrediction))
	mux.HandleFunc("GET /api/predictions/category", s.protected(s.handleCategoryPredictions))
	mux.HandleFunc("GET /api/predictions/trends", s.protected(s.handleTrends))

	mux.HandleFunc("GET /api/tips", s.protected(s.handleTips))
	mux.HandleFunc("GET /api/tips/savings-goal", s.protected(s.handleSavingsGoal))
	mux.HandleFunc("GET /api/insights/health", s.protected(s.handleHealthReport))

	return s
}

// Shutdown stops the rate limiter cleanup goroutine and the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
