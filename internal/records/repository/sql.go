package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/Masterminds/squirrel"

	"github.com/recordbook/recordbook/internal/records"
)

// Dialect captures what differs between the SQL engines the store runs on.
type Dialect struct {
	Name        string
	Placeholder squirrel.PlaceholderFormat
	Schema      []string
}

var Postgres = Dialect{
	Name:        "postgres",
	Placeholder: squirrel.Dollar,
	Schema: []string{
		`CREATE TABLE IF NOT EXISTS notes (
			id BIGSERIAL PRIMARY KEY,
			name VARCHAR(50) NOT NULL DEFAULT '',
			description VARCHAR(250) NOT NULL DEFAULT '',
			done BOOLEAN NOT NULL DEFAULT FALSE
		)`,
		`CREATE TABLE IF NOT EXISTS contacts (
			id BIGSERIAL PRIMARY KEY,
			name VARCHAR(50) NOT NULL,
			lastname VARCHAR(50) NOT NULL,
			email VARCHAR(254) NOT NULL,
			phone VARCHAR(20) NOT NULL,
			born_date DATE NOT NULL,
			description VARCHAR(250)
		)`,
		`CREATE INDEX IF NOT EXISTS contacts_name_idx ON contacts (name)`,
		`CREATE INDEX IF NOT EXISTS contacts_lastname_idx ON contacts (lastname)`,
		`CREATE INDEX IF NOT EXISTS contacts_email_idx ON contacts (email)`,
	},
}

var SQLite = Dialect{
	Name:        "sqlite",
	Placeholder: squirrel.Question,
	Schema: []string{
		`CREATE TABLE IF NOT EXISTS notes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			done BOOLEAN NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS contacts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			lastname TEXT NOT NULL,
			email TEXT NOT NULL,
			phone TEXT NOT NULL,
			born_date DATE NOT NULL,
			description TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS contacts_name_idx ON contacts (name)`,
		`CREATE INDEX IF NOT EXISTS contacts_lastname_idx ON contacts (lastname)`,
		`CREATE INDEX IF NOT EXISTS contacts_email_idx ON contacts (email)`,
	},
}

var (
	noteColumns    = []string{"id", "name", "description", "done"}
	contactColumns = []string{"id", "name", "lastname", "email", "phone", "born_date", "description"}
)

// SQLStore is a Store over database/sql. Every call takes its own
// connection from the pool and returns it before the call ends.
type SQLStore struct {
	db *sql.DB
	qb squirrel.StatementBuilderType
	d  Dialect
}

func NewSQLStore(db *sql.DB, d Dialect) *SQLStore {
	return &SQLStore{
		db: db,
		qb: squirrel.StatementBuilder.PlaceholderFormat(d.Placeholder),
		d:  d,
	}
}

// EnsureSchema creates the tables when they do not exist yet.
func (s *SQLStore) EnsureSchema(ctx context.Context) error {
	return s.withConn(ctx, func(conn *sql.Conn) error {
		for _, stmt := range s.d.Schema {
			if _, err := conn.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("fail to create %s schema: %w", s.d.Name, err)
			}
		}
		return nil
	})
}

func (s *SQLStore) withConn(ctx context.Context, fn func(conn *sql.Conn) error) error {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("fail to acquire connection: %w", err)
	}
	defer conn.Close()
	return fn(conn)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNote(row rowScanner) (*records.Note, error) {
	var n records.Note
	if err := row.Scan(&n.ID, &n.Name, &n.Description, &n.Done); err != nil {
		return nil, err
	}
	return &n, nil
}

func scanContact(row rowScanner) (*records.Contact, error) {
	var c records.Contact
	if err := row.Scan(&c.ID, &c.Name, &c.Lastname, &c.Email, &c.Phone, &c.BornDate, &c.Description); err != nil {
		return nil, err
	}
	return &c, nil
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func returning(cols []string) string {
	return "RETURNING " + strings.Join(cols, ", ")
}

func (s *SQLStore) queryRow(ctx context.Context, b squirrel.Sqlizer, scan func(rowScanner) error) error {
	query, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("fail to build query: %w", err)
	}
	return s.withConn(ctx, func(conn *sql.Conn) error {
		return notFound(scan(conn.QueryRowContext(ctx, query, args...)))
	})
}

func (s *SQLStore) query(ctx context.Context, b squirrel.Sqlizer, scan func(rowScanner) error) error {
	query, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("fail to build query: %w", err)
	}
	return s.withConn(ctx, func(conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("fail to query: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			if err := scan(rows); err != nil {
				return fmt.Errorf("fail to scan: %w", err)
			}
		}
		return rows.Err()
	})
}

func (s *SQLStore) deleteByID(ctx context.Context, table string, id int64) error {
	query, args, err := s.qb.Delete(table).Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("fail to build query: %w", err)
	}
	return s.withConn(ctx, func(conn *sql.Conn) error {
		res, err := conn.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("fail to exec: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// paged orders by id and applies offset/limit. SQLite rejects OFFSET without
// LIMIT, so an unbounded page with an offset gets the largest limit.
func paged(b squirrel.SelectBuilder, offset, limit int) squirrel.SelectBuilder {
	b = b.OrderBy("id")
	if limit > 0 {
		b = b.Limit(uint64(limit))
	} else if offset > 0 {
		b = b.Limit(math.MaxInt64)
	}
	if offset > 0 {
		b = b.Offset(uint64(offset))
	}
	return b
}

func (s *SQLStore) CreateNote(ctx context.Context, n *records.Note) (*records.Note, error) {
	b := s.qb.Insert("notes").
		SetMap(map[string]any{"name": n.Name, "description": n.Description, "done": n.Done}).
		Suffix(returning(noteColumns))
	var out *records.Note
	err := s.queryRow(ctx, b, func(row rowScanner) (err error) {
		out, err = scanNote(row)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("fail to insert note: %w", err)
	}
	return out, nil
}

func (s *SQLStore) GetNote(ctx context.Context, id int64) (*records.Note, error) {
	b := s.qb.Select(noteColumns...).From("notes").Where(squirrel.Eq{"id": id})
	var out *records.Note
	err := s.queryRow(ctx, b, func(row rowScanner) (err error) {
		out, err = scanNote(row)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *SQLStore) ListNotes(ctx context.Context, offset, limit int) ([]records.Note, error) {
	b := paged(s.qb.Select(noteColumns...).From("notes"), offset, limit)
	out := []records.Note{}
	err := s.query(ctx, b, func(row rowScanner) error {
		n, err := scanNote(row)
		if err != nil {
			return err
		}
		out = append(out, *n)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *SQLStore) DeleteNote(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, "notes", id)
}

func (s *SQLStore) CreateContact(ctx context.Context, c *records.Contact) (*records.Contact, error) {
	b := s.qb.Insert("contacts").
		SetMap(map[string]any{
			"name":        c.Name,
			"lastname":    c.Lastname,
			"email":       c.Email,
			"phone":       c.Phone,
			"born_date":   c.BornDate,
			"description": c.Description,
		}).
		Suffix(returning(contactColumns))
	var out *records.Contact
	err := s.queryRow(ctx, b, func(row rowScanner) (err error) {
		out, err = scanContact(row)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("fail to insert contact: %w", err)
	}
	return out, nil
}

func (s *SQLStore) GetContact(ctx context.Context, id int64) (*records.Contact, error) {
	b := s.qb.Select(contactColumns...).From("contacts").Where(squirrel.Eq{"id": id})
	var out *records.Contact
	err := s.queryRow(ctx, b, func(row rowScanner) (err error) {
		out, err = scanContact(row)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *SQLStore) ListContacts(ctx context.Context, offset, limit int) ([]records.Contact, error) {
	return s.selectContacts(ctx, paged(s.qb.Select(contactColumns...).From("contacts"), offset, limit))
}

func (s *SQLStore) selectContacts(ctx context.Context, b squirrel.SelectBuilder) ([]records.Contact, error) {
	out := []records.Contact{}
	err := s.query(ctx, b, func(row rowScanner) error {
		c, err := scanContact(row)
		if err != nil {
			return err
		}
		out = append(out, *c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateContact writes only the columns present in p. The merge happens in a
// single UPDATE ... RETURNING so no read-modify-write window is left open.
func (s *SQLStore) UpdateContact(ctx context.Context, id int64, p records.ContactPatch) (*records.Contact, error) {
	if p.Empty() {
		return s.GetContact(ctx, id)
	}
	b := s.qb.Update("contacts").
		SetMap(p.Columns()).
		Where(squirrel.Eq{"id": id}).
		Suffix(returning(contactColumns))
	var out *records.Contact
	err := s.queryRow(ctx, b, func(row rowScanner) (err error) {
		out, err = scanContact(row)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *SQLStore) DeleteContact(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, "contacts", id)
}

func (s *SQLStore) FindContacts(ctx context.Context, field records.ContactField, value string) ([]records.Contact, error) {
	if !field.Valid() {
		return nil, ErrUnknownField
	}
	b := s.qb.Select(contactColumns...).From("contacts").
		Where(squirrel.Eq{string(field): value}).
		OrderBy("id")
	return s.selectContacts(ctx, b)
}

func (s *SQLStore) Ping(ctx context.Context) error {
	return s.withConn(ctx, func(conn *sql.Conn) error {
		var one int
		return conn.QueryRowContext(ctx, "SELECT 1").Scan(&one)
	})
}

func (s *SQLStore) Close(context.Context) error {
	return s.db.Close()
}
