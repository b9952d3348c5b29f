package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"database/sql"

	"github.com/ekomarov/planfact/internal/config"
	"github.com/ekomarov/planfact/internal/engine"
	"github.com/ekomarov/planfact/internal/handler"
	"github.com/ekomarov/planfact/internal/integrations/cbr"
	"github.com/ekomarov/planfact/internal/middleware"
	"github.com/ekomarov/planfact/internal/repository"
	"github.com/ekomarov/planfact/internal/scheduler"
	"github.com/ekomarov/planfact/internal/service"
	"github.com/ekomarov/planfact/internal/utils/email"
	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logLevel, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	// Initialize database
	db, err := sql.Open("postgres", cfg.DBConn)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}

	// Initialize layers
	repo := repository.NewRepository(db)
	eng := engine.New(repo, logger, cfg.HorizonMonths)
	cbrClient := cbr.NewClient(cfg, logger)
	mailer := email.NewSender(cfg, logger)
	svc := service.NewService(repo, eng, logger, cfg, cbrClient, mailer)
	h := handler.NewHandler(svc, logger)

	// Daily maintenance: overdue penalties, horizon advance, reminders
	sched, err := scheduler.New(svc, logger)
	if err != nil {
		logger.Fatalf("Failed to create scheduler: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// Setup router
	r := mux.NewRouter()
	// Public routes
	r.HandleFunc("/register", h.Register).Methods("POST")
	r.HandleFunc("/login", h.Login).Methods("POST")
	// CBR key rate endpoint
	r.HandleFunc("/key-rate", func(w http.ResponseWriter, r *http.Request) {
		rate, err := cbrClient.GetKeyRate()
		if err != nil {
			http.Error(w, fmt.Sprintf("Failed to get key rate: %v", err), http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(map[string]float64{"key_rate": rate})
	}).Methods("GET")

	// Protected routes
	authRouter := r.PathPrefix("/").Subrouter()
	authRouter.Use(middleware.AuthMiddleware(cfg))
	authRouter.HandleFunc("/planned", h.CreatePlanned).Methods("POST")
	authRouter.HandleFunc("/planned", h.ListPlanned).Methods("GET")
	authRouter.HandleFunc("/planned/{id}", h.DeactivatePlanned).Methods("DELETE")
	authRouter.HandleFunc("/planned/materialize", h.Materialize).Methods("POST")
	authRouter.HandleFunc("/occurrences/pending", h.ListPendingOccurrences).Methods("GET")
	authRouter.HandleFunc("/occurrences/{id}/execute", h.ExecuteOccurrence).Methods("POST")
	authRouter.HandleFunc("/occurrences/{id}/skip", h.SkipOccurrence).Methods("POST")
	authRouter.HandleFunc("/forecast", h.Forecast).Methods("GET")
	authRouter.HandleFunc("/forecast/daily", h.ForecastRange).Methods("GET")
	authRouter.HandleFunc("/cash-gaps", h.CashGaps).Methods("GET")
	authRouter.HandleFunc("/plan-fact", h.PlanFact).Methods("GET")
	authRouter.HandleFunc("/loans", h.CreateLoan).Methods("POST")
	authRouter.HandleFunc("/loans/{id}/schedule", h.LoanSchedule).Methods("GET")
	authRouter.HandleFunc("/loans/payments/{id}/pay", h.PayLoanPayment).Methods("POST")
	authRouter.HandleFunc("/deferred", h.CreateDeferredPayment).Methods("POST")
	authRouter.HandleFunc("/deferred", h.ListDeferredPayments).Methods("GET")
	authRouter.HandleFunc("/deferred/{id}/settle", h.SettleDeferredPayment).Methods("POST")

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	logger.Infof("Starting server on %s", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("Server failed: %v", err)
	}
}
