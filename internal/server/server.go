//go:generate mockgen -source ./server.go -destination=./mocks/server.go -package=mock_server
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/zerowastelink/platform/internal/storage"
)

// Service is the donation operations surface the HTTP layer needs.
type Service interface {
	CreateDonation(ctx context.Context, d storage.Donation) (*storage.Donation, error)
	GetDonation(ctx context.Context, id string) (*storage.Donation, error)
	ListDonations(ctx context.Context, filter storage.ListFilter) ([]storage.Donation, error)
	UserDonations(ctx context.Context, userID string, lastN int, activeOnly bool) ([]storage.Donation, error)
	History(ctx context.Context, donationID string) ([]storage.HistoryEntry, error)
	UpdateStatus(ctx context.Context, donationID string, to storage.Status) error
	UpdateQuantity(ctx context.Context, id string, quantity storage.Quantity, foodType storage.FoodType) (*storage.Donation, error)
	Accept(ctx context.Context, donationID, ngoID string) error
	AssignVolunteer(ctx context.Context, donationID, ngoID, volunteerID string) error
	Match(ctx context.Context, donationID string) (*storage.MatchResult, error)
	ImpactReport(ctx context.Context, userID, period string) (*storage.ImpactReport, error)
}

type UserRepo interface {
	ValidateUser(ctx context.Context, email, password string) (bool, error)
}

type Server struct {
	service      Service
	userRepo     UserRepo
	server       *http.Server
	AuditManager *AuditManager
	logger       *zap.Logger
}

func New(service Service, userRepo UserRepo, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		service:      service,
		userRepo:     userRepo,
		AuditManager: NewAuditManager(2, 5, 500*time.Millisecond, logger),
		logger:       logger,
	}
}

func (s *Server) Run(ctx context.Context, port string) error {
	router := s.setupRoutes()

	s.server = &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	s.AuditManager.Start(ctx)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("server shutdown failed", zap.Error(err))
		}
	}()

	s.logger.Info("server starting", zap.String("port", port))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down server")

	if err := s.server.Shutdown(ctx); err != nil {
		return err
	}

	s.AuditManager.Shutdown(ctx)
	s.logger.Info("server shutdown complete")
	return nil
}

func (s *Server) setupRoutes() http.Handler {
	router := mux.NewRouter()

	// scraped without credentials
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := router.NewRoute().Subrouter()
	api.Use(s.auditLogMiddleware, s.basicAuthMiddleware)

	api.HandleFunc("/donations", s.handleCreateDonation).Methods(http.MethodPost)
	api.HandleFunc("/donations", s.handleListDonations).Methods(http.MethodGet)
	api.HandleFunc("/donations/{id}", s.handleGetDonation).Methods(http.MethodGet)
	api.HandleFunc("/donations/{id}/status", s.handleUpdateStatus).Methods(http.MethodPatch)
	api.HandleFunc("/donations/{id}/quantity", s.handleUpdateQuantity).Methods(http.MethodPatch)
	api.HandleFunc("/donations/{id}/accept", s.handleAccept).Methods(http.MethodPost)
	api.HandleFunc("/donations/{id}/assign-volunteer", s.handleAssignVolunteer).Methods(http.MethodPost)
	api.HandleFunc("/donations/{id}/matches", s.handleMatches).Methods(http.MethodGet)
	api.HandleFunc("/donations/{id}/history", s.handleHistory).Methods(http.MethodGet)
	api.HandleFunc("/users/{userID}/donations", s.handleUserDonations).Methods(http.MethodGet)
	api.HandleFunc("/users/{userID}/impact-report", s.handleImpactReport).Methods(http.MethodGet)

	return router
}

func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		email, password, ok := r.BasicAuth()
		if !ok {
			w.Header().Set("WWW-Authenticate", `Basic realm="Restricted"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		valid, err := s.userRepo.ValidateUser(r.Context(), email, password)
		if err != nil || !valid {
			w.Header().Set("WWW-Authenticate", `Basic realm="Restricted"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}
