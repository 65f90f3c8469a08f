package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/todolite/todolite/internal/apperr"
	"github.com/todolite/todolite/internal/middleware"
	"github.com/todolite/todolite/internal/models"
	"github.com/todolite/todolite/internal/service"
)

type ToDoHandlers struct {
	todos      ToDoStore
	users      UserStore
	jwtService *service.JWTService
	logger     *logrus.Logger
}

func NewToDoHandlers(todos ToDoStore, users UserStore, jwtService *service.JWTService, logger *logrus.Logger) *ToDoHandlers {
	return &ToDoHandlers{
		todos:      todos,
		users:      users,
		jwtService: jwtService,
		logger:     logger,
	}
}

type CreateToDoRequest struct {
	Contents string `json:"contents"`
	IsDone   bool   `json:"is_done"`
}

type UpdateToDoRequest struct {
	IsDone *bool `json:"is_done"`
}

type ToDoResponse struct {
	ID       int64  `json:"id"`
	Contents string `json:"contents"`
	IsDone   bool   `json:"is_done"`
}

type ToDoListResponse struct {
	ToDos []ToDoResponse `json:"todos"`
}

func toDoView(todo *models.ToDo) ToDoResponse {
	return ToDoResponse{
		ID:       todo.ID,
		Contents: todo.Contents,
		IsDone:   todo.IsDone,
	}
}

// List returns the caller's to-dos in insertion order, reversed when
// ?order=DESC.
func (h *ToDoHandlers) List(w http.ResponseWriter, r *http.Request) {
	token, ok := middleware.AccessToken(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing access token")
		return
	}

	username, err := h.jwtService.VerifyToken(token)
	if err != nil {
		respondWithError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or expired token")
		return
	}

	user, err := h.users.GetByUsername(r.Context(), username)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
			return
		}
		h.logger.WithError(err).Error("Failed to look up user")
		respondWithError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list to-dos")
		return
	}

	todos, err := h.todos.ListByUserID(r.Context(), user.ID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list to-dos")
		respondWithError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list to-dos")
		return
	}

	views := make([]ToDoResponse, 0, len(todos))
	if r.URL.Query().Get("order") == "DESC" {
		for i := len(todos) - 1; i >= 0; i-- {
			views = append(views, toDoView(&todos[i]))
		}
	} else {
		for i := range todos {
			views = append(views, toDoView(&todos[i]))
		}
	}

	respondWithJSON(w, http.StatusOK, ToDoListResponse{ToDos: views})
}

func (h *ToDoHandlers) Get(w http.ResponseWriter, r *http.Request) {
	id, err := todoID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid to-do id")
		return
	}

	todo, err := h.todos.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "TODO_NOT_FOUND", "ToDo not found")
			return
		}
		h.logger.WithError(err).Error("Failed to get to-do")
		respondWithError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to get to-do")
		return
	}

	respondWithJSON(w, http.StatusOK, toDoView(todo))
}

func (h *ToDoHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateToDoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	if req.Contents == "" {
		respondWithError(w, http.StatusBadRequest, "INVALID_REQUEST", "Contents is required")
		return
	}

	todo := &models.ToDo{
		Contents: req.Contents,
		IsDone:   req.IsDone,
	}

	if err := h.todos.Create(r.Context(), todo); err != nil {
		h.logger.WithError(err).Error("Failed to create to-do")
		respondWithError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create to-do")
		return
	}

	respondWithJSON(w, http.StatusCreated, toDoView(todo))
}

func (h *ToDoHandlers) Update(w http.ResponseWriter, r *http.Request) {
	id, err := todoID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid to-do id")
		return
	}

	var req UpdateToDoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.IsDone == nil {
		respondWithError(w, http.StatusBadRequest, "INVALID_REQUEST", "is_done is required")
		return
	}

	todo, err := h.todos.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "TODO_NOT_FOUND", "ToDo not found")
			return
		}
		h.logger.WithError(err).Error("Failed to get to-do")
		respondWithError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update to-do")
		return
	}

	todo.IsDone = *req.IsDone
	if err := h.todos.Update(r.Context(), todo); err != nil {
		h.logger.WithError(err).Error("Failed to update to-do")
		respondWithError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update to-do")
		return
	}

	respondWithJSON(w, http.StatusOK, toDoView(todo))
}

func (h *ToDoHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := todoID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid to-do id")
		return
	}

	if _, err := h.todos.GetByID(r.Context(), id); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "TODO_NOT_FOUND", "ToDo not found")
			return
		}
		h.logger.WithError(err).Error("Failed to get to-do")
		respondWithError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete to-do")
		return
	}

	if err := h.todos.Delete(r.Context(), id); err != nil {
		h.logger.WithError(err).Error("Failed to delete to-do")
		respondWithError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete to-do")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func todoID(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["todo_id"], 10, 64)
}
