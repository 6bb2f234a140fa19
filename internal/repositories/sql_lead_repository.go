package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"leadcrm/internal/apperr"
	"leadcrm/internal/models"
)

const leadColumns = `id, first_name, last_name, company, email, phone, source, status, notes, created, owner_email`

type sqlLeadRepository struct {
	db    *sqlx.DB
	table string
}

func NewSQLLeadRepository(db *sqlx.DB, table string) LeadRepository {
	return &sqlLeadRepository{db: db, table: pq.QuoteIdentifier(table)}
}

// buildLeadListQuery renders List's statement; search terms are matched
// literally, LIKE wildcards in them are escaped.
func buildLeadListQuery(table string, f LeadFilter) (string, []any) {
	var (
		sb   strings.Builder
		args []any
	)
	sb.WriteString("SELECT " + leadColumns + " FROM " + table + " WHERE 1=1")
	if f.OwnerEmail != "" {
		args = append(args, f.OwnerEmail)
		fmt.Fprintf(&sb, " AND owner_email = $%d", len(args))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		fmt.Fprintf(&sb, " AND status = $%d", len(args))
	}
	if f.Search != "" {
		args = append(args, "%"+escapeLikePattern(f.Search)+"%")
		n := len(args)
		fmt.Fprintf(&sb, " AND (first_name ILIKE $%d OR last_name ILIKE $%d OR email ILIKE $%d)", n, n, n)
	}
	args = append(args, f.Limit)
	fmt.Fprintf(&sb, " ORDER BY id ASC LIMIT $%d", len(args))
	return sb.String(), args
}

func escapeLikePattern(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (r *sqlLeadRepository) List(ctx context.Context, f LeadFilter) ([]*models.Lead, error) {
	q, args := buildLeadListQuery(r.table, f)
	leads := []*models.Lead{}
	if err := r.db.SelectContext(ctx, &leads, q, args...); err != nil {
		return nil, fmt.Errorf("select leads: %w", err)
	}
	return leads, nil
}

func (r *sqlLeadRepository) GetByID(ctx context.Context, id int64, ownerEmail string) (*models.Lead, error) {
	q := `SELECT ` + leadColumns + ` FROM ` + r.table + ` WHERE id = $1 AND ($2 = '' OR owner_email = $2)`
	lead := &models.Lead{}
	if err := r.db.GetContext(ctx, lead, q, id, ownerEmail); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("select lead %d: %w", id, err)
	}
	return lead, nil
}

func (r *sqlLeadRepository) Create(ctx context.Context, lead *models.Lead) error {
	q := `
		INSERT INTO ` + r.table + ` (first_name, last_name, company, email, phone, source, status, notes, created, owner_email)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, COALESCE($9::date, CURRENT_DATE), $10)
		RETURNING ` + leadColumns
	row := r.db.QueryRowxContext(ctx, q,
		lead.FirstName, lead.LastName, lead.Company, lead.Email, lead.Phone,
		lead.Source, lead.Status, lead.Notes, lead.Created, lead.OwnerEmail,
	)
	if err := row.StructScan(lead); err != nil {
		return fmt.Errorf("insert lead: %w", err)
	}
	return nil
}

func (r *sqlLeadRepository) Update(ctx context.Context, lead *models.Lead, ownerEmail string) error {
	q := `
		UPDATE ` + r.table + `
		SET first_name=$1, last_name=$2, company=$3, email=$4, phone=$5,
			source=$6, status=$7, notes=$8, created=COALESCE($9::date, created)
		WHERE id=$10 AND ($11 = '' OR owner_email = $11)
		RETURNING ` + leadColumns
	row := r.db.QueryRowxContext(ctx, q,
		lead.FirstName, lead.LastName, lead.Company, lead.Email, lead.Phone,
		lead.Source, lead.Status, lead.Notes, lead.Created, lead.ID, ownerEmail,
	)
	if err := row.StructScan(lead); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.ErrNotFound
		}
		return fmt.Errorf("update lead %d: %w", lead.ID, err)
	}
	return nil
}

func (r *sqlLeadRepository) Delete(ctx context.Context, id int64, ownerEmail string) error {
	q := `DELETE FROM ` + r.table + ` WHERE id = $1 AND ($2 = '' OR owner_email = $2)`
	res, err := r.db.ExecContext(ctx, q, id, ownerEmail)
	if err != nil {
		return fmt.Errorf("delete lead %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete lead %d: %w", id, err)
	}
	if n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}
