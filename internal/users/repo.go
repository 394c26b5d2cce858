package users

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("user not found")
	// ErrOwnerNotFound is returned when a resume references a user that does not exist.
	ErrOwnerNotFound = errors.New("owner not found")
	ErrEmailTaken    = errors.New("email already registered")
)

type Repo interface {
	Create(ctx context.Context, user User) error
	GetByID(ctx context.Context, userID string) (User, error)
}
