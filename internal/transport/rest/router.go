package rest

import (
	"aspireedge/internal/config"
	"aspireedge/internal/service"
	"aspireedge/internal/transport/rest/handler"
	"aspireedge/internal/transport/rest/middleware"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService     *service.AuthService
	QuizService     *service.QuizService
	QuestionService *service.QuestionService
	CORS            config.CORSSettings
	Logger          *zap.Logger
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(c.AuthService, c.Logger)
	quizHandler := handler.NewQuizHandler(c.QuizService, c.Logger)
	questionHandler := handler.NewQuestionHandler(c.QuestionService, c.Logger)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)

	r.Use(middleware.TraceID)
	r.Use(middleware.RequestLogger(c.Logger))
	r.Use(corsMiddleware(c.CORS))

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Legacy path and request field names, the response uses the same envelope as v1
	r.HandleFunc("/get_next_question", quizHandler.NextQuestion).Methods("POST", "OPTIONS")

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")
	v1.HandleFunc("/quizzes/next", quizHandler.NextQuestion).Methods("POST", "OPTIONS")
	v1.HandleFunc("/quizzes/{quizId}/next", quizHandler.NextQuestion).Methods("POST", "OPTIONS")
	v1.HandleFunc("/quizzes/{quizId}", quizHandler.Get).Methods("GET", "OPTIONS")

	// Admin routes
	adminRoutes := v1.NewRoute().Subrouter()
	adminRoutes.Use(authMW.RequireAdmin)

	adminRoutes.HandleFunc("/quizzes/{quizId}", quizHandler.Upsert).Methods("PUT", "OPTIONS")
	adminRoutes.HandleFunc("/questions", questionHandler.Create).Methods("POST", "OPTIONS")
	adminRoutes.HandleFunc("/questions", questionHandler.List).Methods("GET", "OPTIONS")
	adminRoutes.HandleFunc("/questions/{questionId}", questionHandler.Get).Methods("GET", "OPTIONS")
	adminRoutes.HandleFunc("/questions/{questionId}", questionHandler.Update).Methods("PUT", "OPTIONS")
	adminRoutes.HandleFunc("/questions/{questionId}", questionHandler.Delete).Methods("DELETE", "OPTIONS")

	return r
}

func corsMiddleware(cors config.CORSSettings) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", cors.AllowedOrigins)
			w.Header().Set("Access-Control-Allow-Methods", cors.AllowedMethods)
			w.Header().Set("Access-Control-Allow-Headers", cors.AllowedHeaders)

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
