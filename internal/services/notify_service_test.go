package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"leadcrm/internal/models"
)

func TestLeadCreatedTextEscapes(t *testing.T) {
	company := "R&D <Labs>"
	lead := &models.Lead{ID: 5, FirstName: "John", LastName: "Doe", Email: "j@x.com",
		Status: "new", OwnerEmail: "a@x.com", Company: &company}

	text := leadCreatedText(lead)
	assert.Contains(t, text, "<b>New lead #5</b>")
	assert.Contains(t, text, "John Doe &lt;j@x.com&gt;")
	assert.Contains(t, text, "Company: R&amp;D &lt;Labs&gt;")
	assert.NotContains(t, text, "Source:")
	assert.Contains(t, text, "Owner: a@x.com")
}

func TestWelcomeMessageHeaders(t *testing.T) {
	m := welcomeMessage("crm@example.com", "a@x.com")
	assert.Equal(t, []string{"crm@example.com"}, m.GetHeader("From"))
	assert.Equal(t, []string{"a@x.com"}, m.GetHeader("To"))
	assert.Equal(t, []string{"Welcome to the CRM"}, m.GetHeader("Subject"))
}
