// Package router wires the HTTP handlers into the route table.
package router

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/nikhilsahni7/SurveyDesk/auth"
	"github.com/nikhilsahni7/SurveyDesk/config"
	"github.com/nikhilsahni7/SurveyDesk/handlers"
	"github.com/rs/cors"
)

func New(cfg config.Config) http.Handler {
	r := mux.NewRouter()
	Routes(r)

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})
	return c.Handler(r)
}

// Routes registers every endpoint on r.
func Routes(r *mux.Router) {
	protected := auth.AuthMiddleware

	// Auth routes
	r.HandleFunc("/auth/google/login", handlers.GoogleLoginHandler).Methods("GET")
	r.HandleFunc("/auth/google/callback", handlers.GoogleCallbackHandler).Methods("GET")

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/register", handlers.RegisterHandler).Methods("POST")
	api.HandleFunc("/login", handlers.LoginHandler).Methods("POST")
	api.HandleFunc("/logout", protected(handlers.LogoutHandler)).Methods("POST")
	api.HandleFunc("/user", protected(handlers.GetCurrentUser)).Methods("GET")

	// Public survey routes
	api.HandleFunc("/question-types", handlers.ListQuestionTypes).Methods("GET")
	api.HandleFunc("/surveys/{id}/public", handlers.GetPublicSurvey).Methods("GET")
	api.HandleFunc("/surveys/{id}/questions/public", handlers.ListPublicQuestions).Methods("GET")
	api.HandleFunc("/surveys/{id}/responses", handlers.SubmitResponse).Methods("POST")
	r.HandleFunc("/s/{linkID}", handlers.AccessSurveyByLink).Methods("GET")

	// Protected routes
	api.HandleFunc("/surveys", protected(handlers.CreateSurvey)).Methods("POST")
	api.HandleFunc("/surveys", protected(handlers.ListSurveys)).Methods("GET")
	api.HandleFunc("/surveys/{id}", protected(handlers.GetSurvey)).Methods("GET")
	api.HandleFunc("/surveys/{id}", protected(handlers.UpdateSurvey)).Methods("PUT")
	api.HandleFunc("/surveys/{id}", protected(handlers.DeleteSurvey)).Methods("DELETE")

	api.HandleFunc("/surveys/{id}/questions", protected(handlers.ListQuestions)).Methods("GET")
	api.HandleFunc("/surveys/{id}/questions", protected(handlers.CreateQuestion)).Methods("POST")
	api.HandleFunc("/surveys/{id}/questions/reorder", protected(handlers.ReorderQuestions)).Methods("POST")
	api.HandleFunc("/questions/{id}", protected(handlers.GetQuestion)).Methods("GET")
	api.HandleFunc("/questions/{id}", protected(handlers.UpdateQuestion)).Methods("PUT")
	api.HandleFunc("/questions/{id}", protected(handlers.DeleteQuestion)).Methods("DELETE")

	api.HandleFunc("/surveys/{id}/responses", protected(handlers.ListResponses)).Methods("GET")
	api.HandleFunc("/surveys/{id}/analytics", protected(handlers.GetSurveyAnalytics)).Methods("GET")
	api.HandleFunc("/surveys/{id}/export", protected(handlers.ExportSurveyData)).Methods("GET")

	api.HandleFunc("/webhooks", protected(handlers.CreateWebhook)).Methods("POST")
	api.HandleFunc("/webhooks", protected(handlers.ListWebhooks)).Methods("GET")
	api.HandleFunc("/webhooks/{id}", protected(handlers.UpdateWebhook)).Methods("PUT")
	api.HandleFunc("/webhooks/{id}", protected(handlers.DeleteWebhook)).Methods("DELETE")
}
