package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"leadcrm/internal/apperr"
	"leadcrm/internal/models"
)

type sqlUserRepository struct {
	db    *sqlx.DB
	table string
}

func NewSQLUserRepository(db *sqlx.DB, table string) UserRepository {
	return &sqlUserRepository{db: db, table: pq.QuoteIdentifier(table)}
}

func (r *sqlUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	q := fmt.Sprintf(`SELECT id, email, password, role_id FROM %s WHERE email = $1 LIMIT 1`, r.table)
	u := &models.User{}
	if err := r.db.GetContext(ctx, u, q, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("select user: %w", err)
	}
	return u, nil
}

func (r *sqlUserRepository) Create(ctx context.Context, user *models.User) error {
	q := fmt.Sprintf(`INSERT INTO %s (email, password, role_id) VALUES ($1, $2, $3) RETURNING id`, r.table)
	if err := r.db.QueryRowxContext(ctx, q, user.Email, user.PasswordHash, user.RoleID).Scan(&user.ID); err != nil {
		if isUniqueViolation(err) {
			return apperr.ErrConflict
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}
