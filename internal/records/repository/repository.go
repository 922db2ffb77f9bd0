// Package repository persists notes and contacts. All backends satisfy the
// same Store contract: ids are assigned by the store, lists are ordered by
// id, and a missing id is reported as ErrNotFound.
package repository

import (
	"context"
	"errors"

	"github.com/recordbook/recordbook/internal/records"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrUnknownField is returned when a search names a column outside the
	// searchable whitelist.
	ErrUnknownField = errors.New("unknown search field")
)

type NoteRepository interface {
	CreateNote(ctx context.Context, n *records.Note) (*records.Note, error)
	GetNote(ctx context.Context, id int64) (*records.Note, error)
	// ListNotes returns notes ordered by id. limit 0 means no limit.
	ListNotes(ctx context.Context, offset, limit int) ([]records.Note, error)
	DeleteNote(ctx context.Context, id int64) error
}

type ContactRepository interface {
	CreateContact(ctx context.Context, c *records.Contact) (*records.Contact, error)
	GetContact(ctx context.Context, id int64) (*records.Contact, error)
	ListContacts(ctx context.Context, offset, limit int) ([]records.Contact, error)
	// UpdateContact merges p into the stored contact and returns the result.
	UpdateContact(ctx context.Context, id int64, p records.ContactPatch) (*records.Contact, error)
	DeleteContact(ctx context.Context, id int64) error
	// FindContacts returns contacts whose field equals value exactly.
	FindContacts(ctx context.Context, field records.ContactField, value string) ([]records.Contact, error)
}

// Store is a complete record store backend.
type Store interface {
	NoteRepository
	ContactRepository
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// FilterContacts scans every contact and keeps the ones pred accepts.
func FilterContacts(ctx context.Context, r ContactRepository, pred func(records.Contact) bool) ([]records.Contact, error) {
	all, err := r.ListContacts(ctx, 0, 0)
	if err != nil {
		return nil, err
	}
	out := make([]records.Contact, 0, len(all))
	for _, c := range all {
		if pred(c) {
			out = append(out, c)
		}
	}
	return out, nil
}

// page applies offset/limit to an already ordered slice.
func page[T any](in []T, offset, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(in) {
		return []T{}
	}
	in = in[offset:]
	if limit > 0 && limit < len(in) {
		in = in[:limit]
	}
	return in
}
