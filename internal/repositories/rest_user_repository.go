package repositories

import (
	"context"
	"errors"
	"fmt"

	"leadcrm/internal/apperr"
	"leadcrm/internal/authz"
	"leadcrm/internal/models"
	"leadcrm/internal/supabase"
)

// userRow mirrors the remote users table; the hash column is "password".
type userRow struct {
	ID       int64  `json:"id,omitempty"`
	Email    string `json:"email"`
	Password string `json:"password"`
	RoleID   *int   `json:"role_id,omitempty"`
}

func (r userRow) toModel() *models.User {
	u := &models.User{ID: r.ID, Email: r.Email, PasswordHash: r.Password, RoleID: authz.DefaultRole}
	if r.RoleID != nil {
		u.RoleID = *r.RoleID
	}
	return u
}

type restUserRepository struct {
	client *supabase.Client
	table  string
}

func NewRestUserRepository(client *supabase.Client, table string) UserRepository {
	return &restUserRepository{client: client, table: table}
}

func (r *restUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var rows []userRow
	err := r.client.From(r.table).
		Select("*").
		Eq("email", email).
		Limit(1).
		Get(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("select user: %w", err)
	}
	if len(rows) == 0 {
		return nil, apperr.ErrNotFound
	}
	return rows[0].toModel(), nil
}

func (r *restUserRepository) Create(ctx context.Context, user *models.User) error {
	in := userRow{Email: user.Email, Password: user.PasswordHash}
	// tables without a role_id column only ever hold default-role users
	if user.RoleID != authz.DefaultRole {
		role := user.RoleID
		in.RoleID = &role
	}

	var rows []userRow
	if err := r.client.From(r.table).Insert(ctx, in, &rows); err != nil {
		var apiErr *supabase.APIError
		if errors.As(err, &apiErr) && apiErr.IsUniqueViolation() {
			return apperr.ErrConflict
		}
		return fmt.Errorf("insert user: %w", err)
	}
	if len(rows) == 0 {
		return fmt.Errorf("insert user: store returned no rows")
	}
	user.ID = rows[0].ID
	return nil
}
