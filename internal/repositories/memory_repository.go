package repositories

import (
	"context"
	"strings"
	"sync"

	"leadcrm/internal/apperr"
	"leadcrm/internal/models"
)

// MemoryStore is a process-local backend for development and tests. It
// follows the same scoping and error contract as the remote backends.
type MemoryStore struct {
	mu         sync.RWMutex
	users      map[string]*models.User
	leads      []*models.Lead
	nextUserID int64
	nextLeadID int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: map[string]*models.User{}}
}

func (m *MemoryStore) Users() UserRepository { return memoryUsers{m} }

func (m *MemoryStore) Leads() LeadRepository { return memoryLeads{m} }

type memoryUsers struct{ m *MemoryStore }

func (r memoryUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	u, ok := r.m.users[email]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r memoryUsers) Create(_ context.Context, user *models.User) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.users[user.Email]; ok {
		return apperr.ErrConflict
	}
	r.m.nextUserID++
	user.ID = r.m.nextUserID
	cp := *user
	r.m.users[user.Email] = &cp
	return nil
}

type memoryLeads struct{ m *MemoryStore }

func visible(l *models.Lead, ownerEmail string) bool {
	return ownerEmail == "" || l.OwnerEmail == ownerEmail
}

func matchesSearch(l *models.Lead, search string) bool {
	needle := strings.ToLower(search)
	for _, field := range []string{l.FirstName, l.LastName, l.Email} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

func copyLead(l *models.Lead) *models.Lead {
	cp := *l
	return &cp
}

func (r memoryLeads) List(_ context.Context, f LeadFilter) ([]*models.Lead, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	out := []*models.Lead{}
	for _, l := range r.m.leads {
		if f.Limit > 0 && len(out) >= f.Limit {
			break
		}
		if !visible(l, f.OwnerEmail) {
			continue
		}
		if f.Status != "" && l.Status != f.Status {
			continue
		}
		if f.Search != "" && !matchesSearch(l, f.Search) {
			continue
		}
		out = append(out, copyLead(l))
	}
	return out, nil
}

func (r memoryLeads) find(id int64, ownerEmail string) int {
	for i, l := range r.m.leads {
		if l.ID == id && visible(l, ownerEmail) {
			return i
		}
	}
	return -1
}

func (r memoryLeads) GetByID(_ context.Context, id int64, ownerEmail string) (*models.Lead, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	i := r.find(id, ownerEmail)
	if i < 0 {
		return nil, apperr.ErrNotFound
	}
	return copyLead(r.m.leads[i]), nil
}

func (r memoryLeads) Create(_ context.Context, lead *models.Lead) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.nextLeadID++
	lead.ID = r.m.nextLeadID
	r.m.leads = append(r.m.leads, copyLead(lead))
	return nil
}

func (r memoryLeads) Update(_ context.Context, lead *models.Lead, ownerEmail string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	i := r.find(lead.ID, ownerEmail)
	if i < 0 {
		return apperr.ErrNotFound
	}
	stored := r.m.leads[i]
	lead.OwnerEmail = stored.OwnerEmail
	if lead.Created == nil {
		lead.Created = stored.Created
	}
	r.m.leads[i] = copyLead(lead)
	return nil
}

func (r memoryLeads) Delete(_ context.Context, id int64, ownerEmail string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	i := r.find(id, ownerEmail)
	if i < 0 {
		return apperr.ErrNotFound
	}
	r.m.leads = append(r.m.leads[:i], r.m.leads[i+1:]...)
	return nil
}
