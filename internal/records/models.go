package records

// Note is a short todo-style record. Notes are created and read; they are
// never patched.
type Note struct {
	ID          int64  `json:"id" bson:"_id"`
	Name        string `json:"name" bson:"name"`
	Description string `json:"description" bson:"description"`
	Done        bool   `json:"done" bson:"done"`
}

// Contact is an address-book entry.
type Contact struct {
	ID          int64   `json:"id" bson:"_id"`
	Name        string  `json:"name" bson:"name"`
	Lastname    string  `json:"lastname" bson:"lastname"`
	Email       string  `json:"email" bson:"email"`
	Phone       string  `json:"phone" bson:"phone"`
	BornDate    Date    `json:"born_date" bson:"born_date"`
	Description *string `json:"description" bson:"description"`
}

// NoteInput is the body accepted when creating a note.
type NoteInput struct {
	Name        string `json:"name" validate:"max=50"`
	Description string `json:"description" validate:"max=250"`
	Done        bool   `json:"done"`
}

// ContactInput is the body accepted when creating a contact. BornDate stays
// a string until validation so a malformed date is reported per field.
type ContactInput struct {
	Name        string  `json:"name" validate:"required,min=3,max=50"`
	Lastname    string  `json:"lastname" validate:"required,min=3,max=50"`
	Email       string  `json:"email" validate:"required,max=254,email"`
	Phone       string  `json:"phone" validate:"required,min=12,max=20,phone"`
	BornDate    string  `json:"born_date" validate:"required,datetime=2006-01-02"`
	Description *string `json:"description" validate:"omitempty,max=250"`
}

// ContactPatchInput carries raw, unvalidated patch values.
type ContactPatchInput struct {
	Name        Optional[string]
	Lastname    Optional[string]
	Email       Optional[string]
	Phone       Optional[string]
	BornDate    Optional[string]
	Description Optional[string]
}

// ContactPatch is a validated merge-update. Absent fields leave the stored
// value untouched.
type ContactPatch struct {
	Name        Optional[string]
	Lastname    Optional[string]
	Email       Optional[string]
	Phone       Optional[string]
	BornDate    Optional[Date]
	Description Optional[string]
}

// Empty reports whether the patch changes nothing.
func (p ContactPatch) Empty() bool {
	return !p.Name.Set && !p.Lastname.Set && !p.Email.Set && !p.Phone.Set &&
		!p.BornDate.Set && !p.Description.Set
}

// Apply merges the present fields into c. A present empty description
// clears it.
func (p ContactPatch) Apply(c *Contact) {
	if v, ok := p.Name.Get(); ok {
		c.Name = v
	}
	if v, ok := p.Lastname.Get(); ok {
		c.Lastname = v
	}
	if v, ok := p.Email.Get(); ok {
		c.Email = v
	}
	if v, ok := p.Phone.Get(); ok {
		c.Phone = v
	}
	if v, ok := p.BornDate.Get(); ok {
		c.BornDate = v
	}
	if v, ok := p.Description.Get(); ok {
		c.Description = nullableString(v)
	}
}

// Columns returns the stored column values the patch overwrites.
func (p ContactPatch) Columns() map[string]any {
	out := make(map[string]any, 6)
	if v, ok := p.Name.Get(); ok {
		out["name"] = v
	}
	if v, ok := p.Lastname.Get(); ok {
		out["lastname"] = v
	}
	if v, ok := p.Email.Get(); ok {
		out["email"] = v
	}
	if v, ok := p.Phone.Get(); ok {
		out["phone"] = v
	}
	if v, ok := p.BornDate.Get(); ok {
		out["born_date"] = v
	}
	if v, ok := p.Description.Get(); ok {
		if d := nullableString(v); d != nil {
			out["description"] = *d
		} else {
			out["description"] = nil
		}
	}
	return out
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// ContactField names a column contacts can be searched by.
type ContactField string

const (
	FieldName     ContactField = "name"
	FieldLastname ContactField = "lastname"
	FieldEmail    ContactField = "email"
)

func (f ContactField) Valid() bool {
	switch f {
	case FieldName, FieldLastname, FieldEmail:
		return true
	}
	return false
}

// SearchQuery holds the /search parameters. The first non-empty field in
// Name, Lastname, Email order is the one searched.
type SearchQuery struct {
	Name     string
	Lastname string
	Email    string
}

// Pick returns the field and value a search should use, or ok=false when no
// parameter was supplied.
func (q SearchQuery) Pick() (field ContactField, value string, ok bool) {
	switch {
	case q.Name != "":
		return FieldName, q.Name, true
	case q.Lastname != "":
		return FieldLastname, q.Lastname, true
	case q.Email != "":
		return FieldEmail, q.Email, true
	}
	return "", "", false
}
