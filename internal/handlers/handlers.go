package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/samirahpartel/kirtbank/docs"
	"github.com/samirahpartel/kirtbank/internal/config"
	authhandlers "github.com/samirahpartel/kirtbank/internal/handlers/auth"
	balancehandlers "github.com/samirahpartel/kirtbank/internal/handlers/balance"
	investmenthandlers "github.com/samirahpartel/kirtbank/internal/handlers/investments"
	transactionhandlers "github.com/samirahpartel/kirtbank/internal/handlers/transactions"
	"github.com/samirahpartel/kirtbank/internal/idempotency"
	"github.com/samirahpartel/kirtbank/internal/observability"
	"github.com/samirahpartel/kirtbank/internal/service"
	"github.com/samirahpartel/kirtbank/pkg/auth"
)

type AuthHandler interface {
	Register(w http.ResponseWriter, r *http.Request)
	Login(w http.ResponseWriter, r *http.Request)
}

type BalanceHandler interface {
	GetBalance(w http.ResponseWriter, r *http.Request)
	SetBalances(w http.ResponseWriter, r *http.Request)
}

type TransactionHandler interface {
	SubmitDeposit(w http.ResponseWriter, r *http.Request)
	GetHistory(w http.ResponseWriter, r *http.Request)
	GetReviewQueue(w http.ResponseWriter, r *http.Request)
	Resolve(w http.ResponseWriter, r *http.Request)
	GetUserHistory(w http.ResponseWriter, r *http.Request)
	Backfill(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
}

type InvestmentHandler interface {
	GetPlans(w http.ResponseWriter, r *http.Request)
	Open(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
}

type Handlers struct {
	AuthHandler        AuthHandler
	BalanceHandler     BalanceHandler
	TransactionHandler TransactionHandler
	InvestmentHandler  InvestmentHandler

	idempotencyStore *idempotency.Store
}

func New(cfg *config.Config, s *service.Services, idempotencyStore *idempotency.Store) *Handlers {
	return &Handlers{
		AuthHandler:        authhandlers.New(s.AuthService),
		BalanceHandler:     balancehandlers.New(s.AccountService),
		TransactionHandler: transactionhandlers.New(s.DepositService, cfg.Methods()),
		InvestmentHandler:  investmenthandlers.New(s.InvestService),
		idempotencyStore:   idempotencyStore,
	}
}

func (h *Handlers) InitRoutes(r chi.Router) chi.Router {
	r.Use(
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		metricsMiddleware,
	)
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("doc.json"),
	))
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/user", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(httprate.LimitByIP(10, time.Minute))
			r.Post("/register", h.AuthHandler.Register)
			r.Post("/login", h.AuthHandler.Login)
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.AuthMiddleware)
			r.Get("/balance", h.BalanceHandler.GetBalance)

			r.Group(func(r chi.Router) {
				r.Use(auth.AdminMiddleware)
				r.Put("/{id}/balances", h.BalanceHandler.SetBalances)
			})
		})
	})

	r.Route("/api/transactions", func(r chi.Router) {
		r.Use(auth.AuthMiddleware)

		r.Get("/", h.TransactionHandler.GetHistory)
		r.With(idempotency.Middleware(h.idempotencyStore)).
			Post("/deposit", h.TransactionHandler.SubmitDeposit)

		r.Group(func(r chi.Router) {
			r.Use(auth.AdminMiddleware)
			r.Get("/admin", h.TransactionHandler.GetReviewQueue)
			r.Put("/admin/{id}", h.TransactionHandler.Resolve)
			r.Get("/user/{id}", h.TransactionHandler.GetUserHistory)
			r.Post("/user/{id}", h.TransactionHandler.Backfill)
			r.Delete("/{id}", h.TransactionHandler.Delete)
		})
	})

	r.Route("/api/investments", func(r chi.Router) {
		r.Get("/plans", h.InvestmentHandler.GetPlans)

		r.Group(func(r chi.Router) {
			r.Use(auth.AuthMiddleware)
			r.Get("/", h.InvestmentHandler.List)
			r.Post("/", h.InvestmentHandler.Open)
		})
	})

	return r
}

func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		routePattern := chi.RouteContext(r.Context()).RoutePattern()
		if routePattern == "" {
			routePattern = r.URL.Path
		}
		observability.ObserveHTTP(r.Method, routePattern, ww.Status(), time.Since(start))
	})
}
