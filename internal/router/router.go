package router

import (
	"encoding/json"
	"net/http"

	"github.com/pizza-nz/print-routing-service/internal/api/handler"
	"github.com/pizza-nz/print-routing-service/internal/middleware"
	"github.com/pizza-nz/print-routing-service/internal/service"
	"github.com/pizza-nz/print-routing-service/internal/websockets"
)

// Handlers groups the API handlers that the router wires up
type Handlers struct {
	Printer    *handler.PrinterHandler
	Assignment *handler.AssignmentHandler
	Order      *handler.OrderHandler
	Discovery  *handler.DiscoveryHandler
	Sync       *handler.SyncHandler
	Stats      *handler.StatsHandler
}

// Router handles HTTP routing
type Router struct {
	mux      *http.ServeMux
	handlers Handlers
	auth     *service.AuthService
	hub      *websockets.Hub
}

// New creates a new router
func New(handlers Handlers, auth *service.AuthService, hub *websockets.Hub) *Router {
	r := &Router{
		mux:      http.NewServeMux(),
		handlers: handlers,
		auth:     auth,
		hub:      hub,
	}

	// Set up routes
	r.setupRoutes()

	return r
}

// ServeHTTP implements the http.Handler interface
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// setupRoutes sets up the routes for the router
func (r *Router) setupRoutes() {
	// Public routes
	r.mux.Handle("/api/auth/login", http.HandlerFunc(r.handleLogin))
	r.mux.Handle("/ws", handler.NewWebSocketHandler(r.hub))

	// Protected routes
	apiHandler := http.NewServeMux()
	apiHandler.Handle("/printers", http.HandlerFunc(r.handlers.Printer.HandlePrinters))
	apiHandler.Handle("/printers/", http.HandlerFunc(r.handlers.Printer.HandlePrinters))
	apiHandler.Handle("/assignments", http.HandlerFunc(r.handlers.Assignment.HandleAssignments))
	apiHandler.Handle("/assignments/", http.HandlerFunc(r.handlers.Assignment.HandleAssignments))
	apiHandler.Handle("/orders/print", http.HandlerFunc(r.handlers.Order.HandleOrders))
	apiHandler.Handle("/discovery/scan", http.HandlerFunc(r.handlers.Discovery.HandleScan))
	apiHandler.Handle("/sync/", http.HandlerFunc(r.handlers.Sync.HandleSync))
	apiHandler.Handle("/statistics", http.HandlerFunc(r.handlers.Stats.HandleStatistics))

	// Apply middleware to protected routes
	apiChain := middleware.Logger(
		middleware.Auth(r.auth)(
			apiHandler,
		),
	)

	r.mux.Handle("/api/", http.StripPrefix("/api", apiChain))
}

// handleLogin handles operator login
func (r *Router) handleLogin(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var loginReq struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	// Decode the request body
	if err := json.NewDecoder(req.Body).Decode(&loginReq); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	// Attempt to login
	token, err := r.auth.Login(loginReq.Username, loginReq.Password)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	// Return the token
	response := struct {
		Token string `json:"token"`
	}{
		Token: token,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}
