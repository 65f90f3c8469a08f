package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/todolite/todolite/internal/middleware"
)

// NewRouter wires the route table. The OTP routes require a bearer token to
// be present; the to-do list additionally resolves the caller's identity in
// its handler.
func NewRouter(
	userHandlers *UserHandlers,
	todoHandlers *ToDoHandlers,
	authMiddleware *middleware.AuthMiddleware,
	logger *logrus.Logger,
) *mux.Router {
	router := mux.NewRouter()

	router.Use(middleware.CORSMiddleware)
	router.Use(middleware.LoggingMiddleware(logger))

	router.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		respondWithJSON(w, http.StatusOK, map[string]string{"ping": "pong"})
	}).Methods("GET")

	users := router.PathPrefix("/users").Subrouter()
	users.HandleFunc("/sign-up", userHandlers.SignUp).Methods("POST", "OPTIONS")
	users.HandleFunc("/log-in", userHandlers.LogIn).Methods("POST", "OPTIONS")

	verification := users.PathPrefix("/email").Subrouter()
	verification.Use(authMiddleware.RequireAuth)
	verification.HandleFunc("/otp", userHandlers.CreateOTP).Methods("POST", "OPTIONS")
	verification.HandleFunc("/otp/verify", userHandlers.VerifyOTP).Methods("POST", "OPTIONS")

	router.Handle("/todos", authMiddleware.RequireAuth(http.HandlerFunc(todoHandlers.List))).Methods("GET")
	router.HandleFunc("/todos", todoHandlers.Create).Methods("POST", "OPTIONS")
	router.HandleFunc("/todos/{todo_id:[0-9]+}", todoHandlers.Get).Methods("GET")
	router.HandleFunc("/todos/{todo_id:[0-9]+}", todoHandlers.Update).Methods("PATCH", "OPTIONS")
	router.HandleFunc("/todos/{todo_id:[0-9]+}", todoHandlers.Delete).Methods("DELETE", "OPTIONS")

	return router
}
