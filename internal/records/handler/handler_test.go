package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/recordbook/recordbook/internal/records"
	"github.com/recordbook/recordbook/internal/records/repository"
	"github.com/recordbook/recordbook/internal/records/service"
)

func newRouter(t *testing.T, today time.Time) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	opts := service.DefaultOptions()
	opts.Now = func() time.Time { return today }
	g := gin.New()
	Register(g, service.New(repository.NewMemoryStore(), opts))
	return g
}

func do(g *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	g.ServeHTTP(w, req)
	return w
}

func contactBody(name, email, born string) string {
	return fmt.Sprintf(`{"name":%q,"lastname":"Koval","email":%q,"phone":"+1(234)567-8901","born_date":%q,"description":"colleague"}`,
		name, email, born)
}

func createContact(t *testing.T, g *gin.Engine, name, email, born string) records.Contact {
	t.Helper()
	w := do(g, http.MethodPost, "/contacts", contactBody(name, email, born))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var c records.Contact
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &c))
	return c
}

func message(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	msg, _ := body["message"].(string)
	return msg
}

func TestContactHandler_CRUD(t *testing.T) {
	g := newRouter(t, time.Now())

	c := createContact(t, g, "Olena", "olena@example.com", "1990-06-05")
	require.NotZero(t, c.ID)
	require.Equal(t, "Olena", c.Name)
	require.Equal(t, "Koval", c.Lastname)
	require.Equal(t, "olena@example.com", c.Email)
	require.Equal(t, "+1(234)567-8901", c.Phone)
	require.Equal(t, "1990-06-05", c.BornDate.String())
	require.Equal(t, "colleague", *c.Description)

	other := createContact(t, g, "Petro", "petro@example.com", "1985-01-01")
	require.NotEqual(t, c.ID, other.ID)

	// get
	w := do(g, http.MethodGet, fmt.Sprintf("/contacts/%d", c.ID), "")
	require.Equal(t, http.StatusOK, w.Code)
	var got records.Contact
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Equal(t, c, got)

	// list
	w = do(g, http.MethodGet, "/contacts", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []records.Contact
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 2)

	// delete
	w = do(g, http.MethodDelete, fmt.Sprintf("/contacts/%d", c.ID), "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "contact deleted successfully", message(t, w))

	w = do(g, http.MethodGet, fmt.Sprintf("/contacts/%d", c.ID), "")
	require.Equal(t, http.StatusNotFound, w.Code)
	require.NotEmpty(t, message(t, w))
}

func TestContactHandler_DeleteMissing(t *testing.T) {
	g := newRouter(t, time.Now())
	w := do(g, http.MethodDelete, "/contacts/12345", "")
	require.Equal(t, http.StatusNotFound, w.Code)
	require.NotEmpty(t, message(t, w))
}

func TestContactHandler_InvalidPhone(t *testing.T) {
	g := newRouter(t, time.Now())
	body := `{"name":"Olena","lastname":"Koval","email":"olena@example.com","phone":"abc","born_date":"1990-06-05"}`
	w := do(g, http.MethodPost, "/contacts", body)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp struct {
		Message string `json:"message"`
		Errors  []struct {
			Field  string `json:"field"`
			Reason string `json:"reason"`
		} `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "Invalid input data", resp.Message)
	require.Len(t, resp.Errors, 1)
	require.Equal(t, "phone", resp.Errors[0].Field)
}

func TestContactHandler_MalformedBody(t *testing.T) {
	g := newRouter(t, time.Now())
	w := do(g, http.MethodPost, "/contacts", `{"name":`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "Invalid input data", message(t, w))
}

func TestContactHandler_BadID(t *testing.T) {
	g := newRouter(t, time.Now())
	require.Equal(t, http.StatusBadRequest, do(g, http.MethodGet, "/contacts/abc", "").Code)
	require.Equal(t, http.StatusBadRequest, do(g, http.MethodGet, "/contacts/0", "").Code)
	require.Equal(t, http.StatusBadRequest, do(g, http.MethodGet, "/contacts/-3", "").Code)
}

func TestContactHandler_PatchMergesNameOnly(t *testing.T) {
	g := newRouter(t, time.Now())
	c := createContact(t, g, "Olena", "olena@example.com", "1990-06-05")

	w := do(g, http.MethodPatch, fmt.Sprintf("/contacts/%d?name=Olha", c.ID), "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "record was successfully updated", message(t, w))

	w = do(g, http.MethodGet, fmt.Sprintf("/contacts/%d", c.ID), "")
	var got records.Contact
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	want := c
	want.Name = "Olha"
	require.Equal(t, want, got)
}

func TestContactHandler_PatchClearsDescription(t *testing.T) {
	g := newRouter(t, time.Now())
	c := createContact(t, g, "Olena", "olena@example.com", "1990-06-05")

	w := do(g, http.MethodPatch, fmt.Sprintf("/contacts/%d?description=&born_date=1991-01-15", c.ID), "")
	require.Equal(t, http.StatusOK, w.Code)

	w = do(g, http.MethodGet, fmt.Sprintf("/contacts/%d", c.ID), "")
	var got records.Contact
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Nil(t, got.Description)
	require.Equal(t, "1991-01-15", got.BornDate.String())
	require.Equal(t, "Olena", got.Name)
}

func TestContactHandler_PatchErrors(t *testing.T) {
	g := newRouter(t, time.Now())
	c := createContact(t, g, "Olena", "olena@example.com", "1990-06-05")

	w := do(g, http.MethodPatch, fmt.Sprintf("/contacts/%d?email=broken", c.ID), "")
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = do(g, http.MethodPatch, "/contacts/999?name=Olha", "")
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestSearchHandler(t *testing.T) {
	g := newRouter(t, time.Now())
	olena := createContact(t, g, "Olena", "olena@example.com", "1990-06-05")
	createContact(t, g, "Petro", "petro@example.com", "1985-01-01")

	q := url.Values{"name": {"Olena"}, "email": {"petro@example.com"}}
	w := do(g, http.MethodGet, "/search?"+q.Encode(), "")
	require.Equal(t, http.StatusOK, w.Code)
	var got records.Contact
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Equal(t, olena.ID, got.ID)

	w = do(g, http.MethodGet, "/search?lastname=Nobody", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"message":"Not Found"}`, w.Body.String())

	w = do(g, http.MethodGet, "/search", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"message":"Not Found"}`, w.Body.String())

	w = do(g, http.MethodGet, "/search?email=not-an-email", "")
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBirthdayHandler(t *testing.T) {
	g := newRouter(t, time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC))
	createContact(t, g, "Olena", "a@example.com", "1990-06-05")
	createContact(t, g, "Petro", "b@example.com", "1990-06-10")
	createContact(t, g, "Marta", "c@example.com", "1990-05-31")

	w := do(g, http.MethodGet, "/birthday", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []records.Contact
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	require.Equal(t, "Olena", list[0].Name)
}

func TestBirthdayHandler_EmptyIsArray(t *testing.T) {
	g := newRouter(t, time.Now())
	w := do(g, http.MethodGet, "/birthday", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `[]`, w.Body.String())
}

func TestNoteHandler(t *testing.T) {
	g := newRouter(t, time.Now())
	for i := 0; i < 12; i++ {
		w := do(g, http.MethodPost, "/notes", fmt.Sprintf(`{"name":"note %d","description":"d"}`, i))
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := do(g, http.MethodGet, "/notes/3", "")
	require.Equal(t, http.StatusOK, w.Code)
	var n records.Note
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &n))
	require.Equal(t, int64(3), n.ID)
	require.Equal(t, "note 2", n.Name)
	require.False(t, n.Done)

	require.Equal(t, http.StatusBadRequest, do(g, http.MethodGet, "/notes/11", "").Code)
	require.Equal(t, http.StatusBadRequest, do(g, http.MethodGet, "/notes/0", "").Code)

	w = do(g, http.MethodPost, "/notes", fmt.Sprintf(`{"name":%q}`, strings.Repeat("x", 51)))
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNoteHandler_LimitClamp(t *testing.T) {
	g := newRouter(t, time.Now())
	for i := 0; i < 120; i++ {
		require.Equal(t, http.StatusCreated, do(g, http.MethodPost, "/notes", `{"name":"n"}`).Code)
	}

	count := func(target string) int {
		w := do(g, http.MethodGet, target, "")
		require.Equal(t, http.StatusOK, w.Code)
		var list []records.Note
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
		return len(list)
	}
	require.Equal(t, 100, count("/notes?limit=200"))
	require.Equal(t, 10, count("/notes?limit=1"))
	require.Equal(t, 10, count("/notes"))
	require.Equal(t, 20, count("/notes?skip=100&limit=50"))

	require.Equal(t, http.StatusBadRequest, do(g, http.MethodGet, "/notes?skip=-1", "").Code)
	require.Equal(t, http.StatusBadRequest, do(g, http.MethodGet, "/notes?limit=ten", "").Code)
}
