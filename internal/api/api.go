package api

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/susu3304/splitbot/internal/billsplit"
	"github.com/susu3304/splitbot/internal/config"
)

type API struct {
	router *mux.Router
	svc    *billsplit.Service
	config *config.Config
	server *http.Server
}

func New(cfg *config.Config, svc *billsplit.Service) *API {
	api := &API{
		router: mux.NewRouter(),
		svc:    svc,
		config: cfg,
	}

	api.setupRoutes()
	api.server = &http.Server{Addr: cfg.WebBind, Handler: api.Handler()}
	return api
}

func (a *API) setupRoutes() {
	a.router.HandleFunc("/healthz", a.handleHealth).Methods("GET")

	// Stateless settlement
	a.router.HandleFunc("/api/settle", a.handleSettle).Methods("POST")

	// Form sessions
	a.router.HandleFunc("/api/sessions/{id}", a.handleGetSession).Methods("GET")
	a.router.HandleFunc("/api/sessions/{id}", a.handleResetSession).Methods("DELETE")
	a.router.HandleFunc("/api/sessions/{id}/bill", a.handleSetBill).Methods("PUT")
	a.router.HandleFunc("/api/sessions/{id}/participants", a.handleAddParticipant).Methods("POST")
	a.router.HandleFunc("/api/sessions/{id}/calculate", a.handleCalculate).Methods("POST")

	// History
	a.router.HandleFunc("/api/sessions/{id}/history", a.handleHistory).Methods("GET")
	a.router.HandleFunc("/api/settlements/{settlement_id:[0-9]+}", a.handleGetSettlement).Methods("GET")
}

// Handler returns the router wrapped with CORS handling.
func (a *API) Handler() http.Handler {
	origins := a.config.CORSAllowedOrigins
	corsOptions := cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		// Credentials cannot be combined with a wildcard origin
		AllowCredentials: !(len(origins) == 1 && origins[0] == "*"),
	}
	return cors.New(corsOptions).Handler(a.router)
}

// Start blocks serving HTTP until Shutdown is called.
func (a *API) Start() error {
	log.Printf("API server listening on http://%s", a.config.WebBind)
	if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (a *API) Shutdown(ctx context.Context) error {
	return a.server.Shutdown(ctx)
}
