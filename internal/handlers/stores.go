package handlers

import (
	"context"

	"github.com/todolite/todolite/internal/models"
)

// UserStore is the slice of the persistence layer the account flow needs.
// Implementations report apperr.ErrNotFound for unknown usernames and
// apperr.ErrConflict for duplicates.
type UserStore interface {
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	UpdateEmail(ctx context.Context, username, email string) error
}

// ToDoStore is the persistence capability set for to-do items. Unknown ids
// report apperr.ErrNotFound.
type ToDoStore interface {
	Create(ctx context.Context, todo *models.ToDo) error
	GetByID(ctx context.Context, id int64) (*models.ToDo, error)
	ListByUserID(ctx context.Context, userID int64) ([]models.ToDo, error)
	Update(ctx context.Context, todo *models.ToDo) error
	Delete(ctx context.Context, id int64) error
}
