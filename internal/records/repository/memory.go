package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/recordbook/recordbook/internal/records"
)

// MemoryStore keeps records in maps. It backs local runs and unit tests.
type MemoryStore struct {
	mu          sync.RWMutex
	notes       map[int64]records.Note
	contacts    map[int64]records.Contact
	lastNote    int64
	lastContact int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		notes:    make(map[int64]records.Note),
		contacts: make(map[int64]records.Contact),
	}
}

func (m *MemoryStore) CreateNote(_ context.Context, n *records.Note) (*records.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastNote++
	stored := *n
	stored.ID = m.lastNote
	m.notes[stored.ID] = stored
	return &stored, nil
}

func (m *MemoryStore) GetNote(_ context.Context, id int64) (*records.Note, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n, ok := m.notes[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &n, nil
}

func (m *MemoryStore) ListNotes(_ context.Context, offset, limit int) ([]records.Note, error) {
	m.mu.RLock()
	out := make([]records.Note, 0, len(m.notes))
	for _, n := range m.notes {
		out = append(out, n)
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return page(out, offset, limit), nil
}

func (m *MemoryStore) DeleteNote(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.notes[id]; !ok {
		return ErrNotFound
	}
	delete(m.notes, id)
	return nil
}

func (m *MemoryStore) CreateContact(_ context.Context, c *records.Contact) (*records.Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastContact++
	stored := cloneContact(*c)
	stored.ID = m.lastContact
	m.contacts[stored.ID] = stored
	out := cloneContact(stored)
	return &out, nil
}

func (m *MemoryStore) GetContact(_ context.Context, id int64) (*records.Contact, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.contacts[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := cloneContact(c)
	return &out, nil
}

func (m *MemoryStore) ListContacts(_ context.Context, offset, limit int) ([]records.Contact, error) {
	m.mu.RLock()
	out := make([]records.Contact, 0, len(m.contacts))
	for _, c := range m.contacts {
		out = append(out, cloneContact(c))
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return page(out, offset, limit), nil
}

func (m *MemoryStore) UpdateContact(_ context.Context, id int64, p records.ContactPatch) (*records.Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.contacts[id]
	if !ok {
		return nil, ErrNotFound
	}
	p.Apply(&c)
	m.contacts[id] = c
	out := cloneContact(c)
	return &out, nil
}

func (m *MemoryStore) DeleteContact(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.contacts[id]; !ok {
		return ErrNotFound
	}
	delete(m.contacts, id)
	return nil
}

func (m *MemoryStore) FindContacts(ctx context.Context, field records.ContactField, value string) ([]records.Contact, error) {
	if !field.Valid() {
		return nil, ErrUnknownField
	}
	return FilterContacts(ctx, m, func(c records.Contact) bool {
		switch field {
		case records.FieldName:
			return c.Name == value
		case records.FieldLastname:
			return c.Lastname == value
		default:
			return c.Email == value
		}
	})
}

func (m *MemoryStore) Ping(context.Context) error  { return nil }
func (m *MemoryStore) Close(context.Context) error { return nil }

// cloneContact detaches the description pointer so callers cannot mutate
// stored state.
func cloneContact(c records.Contact) records.Contact {
	if c.Description != nil {
		d := *c.Description
		c.Description = &d
	}
	return c
}
