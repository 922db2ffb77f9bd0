// Package service holds the record use cases between the HTTP handlers and
// the store: merge updates, search priority, birthday lookup and note paging.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/recordbook/recordbook/internal/apperr"
	"github.com/recordbook/recordbook/internal/records"
	"github.com/recordbook/recordbook/internal/records/repository"
	"github.com/recordbook/recordbook/internal/validation"
	"github.com/recordbook/recordbook/pkg/logger"
	"github.com/recordbook/recordbook/pkg/metrics"
)

// Options bounds the note routes and the birthday window.
type Options struct {
	NotesMinLimit      int
	NotesMaxLimit      int
	NotesMaxID         int64
	BirthdayWindowDays int
	// Now defaults to time.Now.
	Now func() time.Time
}

func DefaultOptions() Options {
	return Options{NotesMinLimit: 10, NotesMaxLimit: 100, NotesMaxID: 10, BirthdayWindowDays: 6}
}

type Service struct {
	store repository.Store
	opts  Options
}

func New(store repository.Store, opts Options) *Service {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{store: store, opts: opts}
}

func observe(kind, op string, err error) {
	switch {
	case err == nil:
		metrics.ObserveStore(kind, op, "ok")
	case errors.Is(err, repository.ErrNotFound):
		metrics.ObserveStore(kind, op, "not_found")
	default:
		metrics.ObserveStore(kind, op, "error")
	}
}

// storeErr maps repository errors onto the apperr taxonomy.
func storeErr(err error, what string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.WrapNotFound(err, what+" not found")
	}
	logger.L().Error().Err(err).Str("record", what).Msg("store call failed")
	return apperr.WrapInternal(err, "store failure")
}

func validID(id int64) error {
	if id <= 0 {
		return apperr.InvalidField("id", "must be greater than 0")
	}
	return nil
}

func (s *Service) CreateContact(ctx context.Context, in records.ContactInput) (*records.Contact, error) {
	c, err := validation.Contact(in)
	if err != nil {
		return nil, err
	}
	out, err := s.store.CreateContact(ctx, c)
	observe("contact", "create", err)
	if err != nil {
		return nil, storeErr(err, "contact")
	}
	return out, nil
}

func (s *Service) ListContacts(ctx context.Context) ([]records.Contact, error) {
	out, err := s.store.ListContacts(ctx, 0, 0)
	observe("contact", "list", err)
	if err != nil {
		return nil, storeErr(err, "contact")
	}
	return out, nil
}

func (s *Service) GetContact(ctx context.Context, id int64) (*records.Contact, error) {
	if err := validID(id); err != nil {
		return nil, err
	}
	out, err := s.store.GetContact(ctx, id)
	observe("contact", "get", err)
	if err != nil {
		return nil, storeErr(err, "contact")
	}
	return out, nil
}

// UpdateContact validates the present patch fields and merges them into the
// stored contact. Absent fields are left as stored.
func (s *Service) UpdateContact(ctx context.Context, id int64, in records.ContactPatchInput) (*records.Contact, error) {
	if err := validID(id); err != nil {
		return nil, err
	}
	p, err := validation.ContactPatch(in)
	if err != nil {
		return nil, err
	}
	out, err := s.store.UpdateContact(ctx, id, p)
	observe("contact", "update", err)
	if err != nil {
		return nil, storeErr(err, "contact")
	}
	return out, nil
}

func (s *Service) DeleteContact(ctx context.Context, id int64) error {
	if err := validID(id); err != nil {
		return err
	}
	err := s.store.DeleteContact(ctx, id)
	observe("contact", "delete", err)
	if err != nil {
		return storeErr(err, "contact")
	}
	return nil
}

// SearchContact returns the first contact matching the highest priority
// non-empty parameter (name, then lastname, then email), or nil when nothing
// matches or no parameter was given.
func (s *Service) SearchContact(ctx context.Context, q records.SearchQuery) (*records.Contact, error) {
	field, value, ok := q.Pick()
	if !ok {
		return nil, nil
	}
	if field == records.FieldEmail {
		if err := validation.Email(value); err != nil {
			return nil, err
		}
	}
	found, err := s.store.FindContacts(ctx, field, value)
	observe("contact", "search", err)
	if err != nil {
		return nil, storeErr(err, "contact")
	}
	if len(found) == 0 {
		return nil, nil
	}
	return &found[0], nil
}

// UpcomingBirthdays returns contacts whose next birthday falls within the
// configured window starting today.
func (s *Service) UpcomingBirthdays(ctx context.Context) ([]records.Contact, error) {
	today := s.opts.Now()
	out, err := repository.FilterContacts(ctx, s.store, func(c records.Contact) bool {
		return BirthdayWithin(c.BornDate, today, s.opts.BirthdayWindowDays)
	})
	observe("contact", "birthdays", err)
	if err != nil {
		return nil, storeErr(err, "contact")
	}
	return out, nil
}

func (s *Service) CreateNote(ctx context.Context, in records.NoteInput) (*records.Note, error) {
	n, err := validation.Note(in)
	if err != nil {
		return nil, err
	}
	out, err := s.store.CreateNote(ctx, n)
	observe("note", "create", err)
	if err != nil {
		return nil, storeErr(err, "note")
	}
	return out, nil
}

// NoteLimit clamps a requested page size into [NotesMinLimit, NotesMaxLimit].
// A missing limit (0) gets the minimum.
func (s *Service) NoteLimit(limit int) int {
	if limit < s.opts.NotesMinLimit {
		return s.opts.NotesMinLimit
	}
	if limit > s.opts.NotesMaxLimit {
		return s.opts.NotesMaxLimit
	}
	return limit
}

func (s *Service) ListNotes(ctx context.Context, skip, limit int) ([]records.Note, error) {
	if skip < 0 {
		return nil, apperr.InvalidField("skip", "must not be negative")
	}
	out, err := s.store.ListNotes(ctx, skip, s.NoteLimit(limit))
	observe("note", "list", err)
	if err != nil {
		return nil, storeErr(err, "note")
	}
	return out, nil
}

func (s *Service) GetNote(ctx context.Context, id int64) (*records.Note, error) {
	if id <= 0 || id > s.opts.NotesMaxID {
		return nil, apperr.InvalidField("id", "out of range")
	}
	out, err := s.store.GetNote(ctx, id)
	observe("note", "get", err)
	if err != nil {
		return nil, storeErr(err, "note")
	}
	return out, nil
}

// Ping reports whether the store answers.
func (s *Service) Ping(ctx context.Context) error {
	if err := s.store.Ping(ctx); err != nil {
		return apperr.WrapInternal(err, "Error connecting to the database")
	}
	return nil
}
