package models

import "strings"

type Lead struct {
	ID         int64   `json:"id" db:"id"`
	FirstName  string  `json:"first_name" db:"first_name"`
	LastName   string  `json:"last_name" db:"last_name"`
	Company    *string `json:"company" db:"company"`
	Email      string  `json:"email" db:"email"`
	Phone      *string `json:"phone" db:"phone"`
	Source     *string `json:"source" db:"source"`
	Status     string  `json:"status" db:"status"`
	Notes      *string `json:"notes" db:"notes"`
	Created    *Date   `json:"created" db:"created"`
	OwnerEmail string  `json:"owner_email" db:"owner_email"`
}

// LeadInput is the client-writable part of a lead. id and owner_email are
// not bindable.
type LeadInput struct {
	FirstName string  `json:"first_name" binding:"required"`
	LastName  string  `json:"last_name" binding:"required"`
	Company   *string `json:"company"`
	Email     string  `json:"email" binding:"required,email"`
	Phone     *string `json:"phone"`
	Source    *string `json:"source"`
	Status    string  `json:"status" binding:"required"`
	Notes     *string `json:"notes"`
	Created   *Date   `json:"created"`
}

// Apply copies every mutable field onto l. A nil Created keeps l.Created.
func (in *LeadInput) Apply(l *Lead) {
	l.FirstName = strings.TrimSpace(in.FirstName)
	l.LastName = strings.TrimSpace(in.LastName)
	l.Company = in.Company
	l.Email = strings.TrimSpace(in.Email)
	l.Phone = in.Phone
	l.Source = in.Source
	l.Status = strings.TrimSpace(in.Status)
	l.Notes = in.Notes
	if in.Created != nil {
		c := *in.Created
		l.Created = &c
	}
}

// LeadQuery holds the list/export query string.
type LeadQuery struct {
	Status string `form:"status"`
	Search string `form:"search"`
	Limit  int    `form:"limit,default=100" binding:"min=1,max=1000"`
}
