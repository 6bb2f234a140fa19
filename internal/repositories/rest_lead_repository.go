package repositories

import (
	"context"
	"fmt"

	"leadcrm/internal/apperr"
	"leadcrm/internal/models"
	"leadcrm/internal/supabase"
)

// leadWrite is the body sent on insert and update. created is omitted when
// unset so an update keeps the stored date.
type leadWrite struct {
	FirstName  string       `json:"first_name"`
	LastName   string       `json:"last_name"`
	Company    *string      `json:"company"`
	Email      string       `json:"email"`
	Phone      *string      `json:"phone"`
	Source     *string      `json:"source"`
	Status     string       `json:"status"`
	Notes      *string      `json:"notes"`
	Created    *models.Date `json:"created,omitempty"`
	OwnerEmail string       `json:"owner_email,omitempty"`
}

func newLeadWrite(l *models.Lead) leadWrite {
	return leadWrite{
		FirstName: l.FirstName,
		LastName:  l.LastName,
		Company:   l.Company,
		Email:     l.Email,
		Phone:     l.Phone,
		Source:    l.Source,
		Status:    l.Status,
		Notes:     l.Notes,
		Created:   l.Created,
	}
}

var searchColumns = []string{"first_name", "last_name", "email"}

type restLeadRepository struct {
	client *supabase.Client
	table  string
}

func NewRestLeadRepository(client *supabase.Client, table string) LeadRepository {
	return &restLeadRepository{client: client, table: table}
}

func (r *restLeadRepository) List(ctx context.Context, f LeadFilter) ([]*models.Lead, error) {
	q := r.client.From(r.table).Select("*")
	if f.OwnerEmail != "" {
		q.Eq("owner_email", f.OwnerEmail)
	}
	if f.Status != "" {
		q.Eq("status", f.Status)
	}
	if f.Search != "" {
		filters := make([]string, 0, len(searchColumns))
		for _, col := range searchColumns {
			filters = append(filters, supabase.ILike(col, f.Search))
		}
		q.Or(filters...)
	}
	q.Order("id", true).Limit(f.Limit)

	leads := []*models.Lead{}
	if err := q.Get(ctx, &leads); err != nil {
		return nil, fmt.Errorf("select leads: %w", err)
	}
	return leads, nil
}

func (r *restLeadRepository) GetByID(ctx context.Context, id int64, ownerEmail string) (*models.Lead, error) {
	q := r.client.From(r.table).Select("*").Eq("id", id)
	if ownerEmail != "" {
		q.Eq("owner_email", ownerEmail)
	}
	var rows []*models.Lead
	if err := q.Limit(1).Get(ctx, &rows); err != nil {
		return nil, fmt.Errorf("select lead %d: %w", id, err)
	}
	if len(rows) == 0 {
		return nil, apperr.ErrNotFound
	}
	return rows[0], nil
}

func (r *restLeadRepository) Create(ctx context.Context, lead *models.Lead) error {
	body := newLeadWrite(lead)
	body.OwnerEmail = lead.OwnerEmail

	var rows []*models.Lead
	if err := r.client.From(r.table).Insert(ctx, body, &rows); err != nil {
		return fmt.Errorf("insert lead: %w", err)
	}
	if len(rows) == 0 {
		return fmt.Errorf("insert lead: store returned no rows")
	}
	*lead = *rows[0]
	return nil
}

func (r *restLeadRepository) Update(ctx context.Context, lead *models.Lead, ownerEmail string) error {
	q := r.client.From(r.table).Eq("id", lead.ID)
	if ownerEmail != "" {
		q.Eq("owner_email", ownerEmail)
	}
	var rows []*models.Lead
	if err := q.Update(ctx, newLeadWrite(lead), &rows); err != nil {
		return fmt.Errorf("update lead %d: %w", lead.ID, err)
	}
	if len(rows) == 0 {
		return apperr.ErrNotFound
	}
	*lead = *rows[0]
	return nil
}

func (r *restLeadRepository) Delete(ctx context.Context, id int64, ownerEmail string) error {
	q := r.client.From(r.table).Eq("id", id)
	if ownerEmail != "" {
		q.Eq("owner_email", ownerEmail)
	}
	var rows []struct {
		ID int64 `json:"id"`
	}
	if err := q.Delete(ctx, &rows); err != nil {
		return fmt.Errorf("delete lead %d: %w", id, err)
	}
	if len(rows) == 0 {
		return apperr.ErrNotFound
	}
	return nil
}
