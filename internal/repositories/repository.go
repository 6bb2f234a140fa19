package repositories

import (
	"context"

	"leadcrm/internal/models"
)

// UserRepository is the credential store. GetByEmail returns
// apperr.ErrNotFound for unknown emails and Create returns
// apperr.ErrConflict when the email is taken.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
}

// LeadFilter selects leads for List. An empty OwnerEmail means every owner.
type LeadFilter struct {
	OwnerEmail string
	Status     string
	Search     string
	Limit      int
}

// LeadRepository stores leads. ownerEmail scopes GetByID, Update and Delete
// the same way LeadFilter.OwnerEmail scopes List; a miss under the scope
// is apperr.ErrNotFound whether or not the id exists.
type LeadRepository interface {
	List(ctx context.Context, f LeadFilter) ([]*models.Lead, error)
	GetByID(ctx context.Context, id int64, ownerEmail string) (*models.Lead, error)
	Create(ctx context.Context, lead *models.Lead) error
	Update(ctx context.Context, lead *models.Lead, ownerEmail string) error
	Delete(ctx context.Context, id int64, ownerEmail string) error
}
