// File: internal/handlers/router.go
package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iyunix/go-agentdesk/internal/middleware"
	"github.com/iyunix/go-agentdesk/internal/ratelimit"
)

// RouterDeps collects what the HTTP surface is built from.
type RouterDeps struct {
	Auth          *AuthHandler
	Conversations *ConversationHandler
	Trash         *TrashHandler
	Chat          *ChatHandler
	Tokens        middleware.TokenValidator
	LoginLimiter  *ratelimit.MemoryRateLimiter
	Logger        Logger
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func NewRouter(d RouterDeps) *mux.Router {
	r := mux.NewRouter()
	r.Use(corsMiddleware)
	r.Use(middleware.RequestID)
	// Recovery sits inside logging so a panicking request is still logged and counted.
	r.Use(middleware.LoggingMiddleware(d.Logger))
	r.Use(middleware.RecoverPanic(d.Logger))

	// --- Public Routes ---
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	r.HandleFunc("/api/log", LogFrontendEvent).Methods("POST")
	r.HandleFunc("/api/auth/register", d.Auth.Register).Methods("POST")
	r.HandleFunc("/api/auth/logout", d.Auth.Logout).Methods("GET")

	login := http.Handler(http.HandlerFunc(d.Auth.Login))
	if d.LoginLimiter != nil {
		login = middleware.RateLimitMiddleware(d.LoginLimiter, "login", d.Logger)(
			middleware.AuthSuccessMiddleware(d.LoginLimiter, "login", d.Logger)(login))
	}
	r.Handle("/api/auth/login", login).Methods("POST")

	// --- Protected Routes ---
	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.NewJWTMiddleware(d.Tokens, d.Logger))

	api.HandleFunc("/conversations", d.Conversations.List).Methods("GET")
	api.HandleFunc("/conversations", d.Conversations.Create).Methods("POST")
	api.HandleFunc("/conversations/active", d.Conversations.GetActive).Methods("GET")
	api.HandleFunc("/conversations/active", d.Conversations.SetActive).Methods("PUT")
	api.HandleFunc("/conversations/{id}", d.Conversations.Get).Methods("GET")
	api.HandleFunc("/conversations/{id}", d.Conversations.Delete).Methods("DELETE")
	api.HandleFunc("/conversations/{id}/title", d.Conversations.Rename).Methods("PUT")
	api.HandleFunc("/conversations/{id}/matches", d.Conversations.Matches).Methods("GET")

	api.HandleFunc("/trash", d.Trash.List).Methods("GET")
	api.HandleFunc("/trash", d.Trash.Clear).Methods("DELETE")
	api.HandleFunc("/trash/{id}/restore", d.Trash.Restore).Methods("POST")
	api.HandleFunc("/trash/{id}", d.Trash.Delete).Methods("DELETE")

	api.HandleFunc("/chat/messages", d.Chat.SendMessage).Methods("POST")
	api.HandleFunc("/chat/state", d.Chat.State).Methods("GET")
	api.HandleFunc("/highlight", Highlight).Methods("POST")

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, "Not Found", http.StatusNotFound)
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	})
	return r
}
