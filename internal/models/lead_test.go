package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLeadInputApply(t *testing.T) {
	created := Date{Year: 2025, Month: 1, Day: 1}
	company := "Acme"
	existing := &Lead{ID: 7, OwnerEmail: "a@x.com", Created: &created, Company: &company}

	in := &LeadInput{FirstName: " John ", LastName: "Doe", Email: "j@x.com", Status: "new"}
	in.Apply(existing)

	assert.Equal(t, int64(7), existing.ID)
	assert.Equal(t, "a@x.com", existing.OwnerEmail)
	assert.Equal(t, "John", existing.FirstName)
	assert.Nil(t, existing.Company)
	assert.Equal(t, "2025-01-01", existing.Created.String())

	next := Date{Year: 2025, Month: 2, Day: 3}
	in.Created = &next
	in.Apply(existing)
	assert.Equal(t, "2025-02-03", existing.Created.String())
}
