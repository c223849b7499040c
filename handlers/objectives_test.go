package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"patient-activation/handlers"
	"patient-activation/models"
	"patient-activation/storage"
)

type errorBody struct {
	Message string                  `json:"message"`
	Errors  []models.FieldViolation `json:"errors"`
}

func newRouter(store storage.Store) *mux.Router {
	r := mux.NewRouter()
	r.Use(handlers.LoggingMiddleware)
	handlers.NewObjectiveHandler(store).Register(r)
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func create(t *testing.T, h http.Handler, title, targetDate string) models.Objective {
	t.Helper()
	body := `{"title":"` + title + `","category":"Monitoring","priority":"medium","targetDate":"` + targetDate + `"}`
	rec := do(t, h, http.MethodPost, "/api/objectives", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[models.Objective](t, rec)
}

func TestCreate_DefaultsStatus(t *testing.T) {
	h := newRouter(storage.NewMemoryStore())

	rec := do(t, h, http.MethodPost, "/api/objectives",
		`{"title":"Walk 20 minutes","category":"Physical Therapy","priority":"high","targetDate":"2024-03-15"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	got := decode[models.Objective](t, rec)
	assert.NotEmpty(t, got.ID)
	assert.Equal(t, "Walk 20 minutes", got.Title)
	assert.Equal(t, models.CategoryPhysicalTherapy, got.Category)
	assert.Equal(t, models.StatusPending, got.Status)
	assert.Equal(t, models.PriorityHigh, got.Priority)
	assert.Equal(t, "2024-03-15", got.TargetDate)
}

func TestCreate_RejectsEmptyTitle(t *testing.T) {
	store := storage.NewMemoryStore()
	h := newRouter(store)

	rec := do(t, h, http.MethodPost, "/api/objectives",
		`{"title":"","category":"Monitoring","priority":"low","targetDate":"2024-03-15"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[errorBody](t, rec)
	assert.Contains(t, body.Message, "Title is required")
	require.Len(t, body.Errors, 1)
	assert.Equal(t, "title", body.Errors[0].Field)

	list, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCreate_ReportsEveryMissingField(t *testing.T) {
	h := newRouter(storage.NewMemoryStore())

	rec := do(t, h, http.MethodPost, "/api/objectives", `{}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[errorBody](t, rec)
	fields := make([]string, 0, len(body.Errors))
	for _, e := range body.Errors {
		fields = append(fields, e.Field)
	}
	assert.Equal(t, []string{"title", "category", "priority", "targetDate"}, fields)
}

func TestCreate_InvalidJSON(t *testing.T) {
	h := newRouter(storage.NewMemoryStore())

	rec := do(t, h, http.MethodPost, "/api/objectives", `{"title":`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid JSON payload", decode[errorBody](t, rec).Message)
}

func TestGet(t *testing.T) {
	h := newRouter(storage.NewMemoryStore())
	created := create(t, h, "Log glucose", "2024-03-20")

	rec := do(t, h, http.MethodGet, "/api/objectives/"+created.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, created, decode[models.Objective](t, rec))

	rec = do(t, h, http.MethodGet, "/api/objectives/nonexistent-id", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Objective not found", decode[errorBody](t, rec).Message)
}

func TestList_OrderedByTargetDate(t *testing.T) {
	h := newRouter(storage.NewMemoryStore())

	rec := do(t, h, http.MethodGet, "/api/objectives", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	a := create(t, h, "A", "2024-05-01")
	b := create(t, h, "B", "2024-04-01")

	rec = do(t, h, http.MethodGet, "/api/objectives", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []models.Objective{b, a}, decode[[]models.Objective](t, rec))
}

func TestList_Filters(t *testing.T) {
	h := newRouter(storage.NewMemoryStore())
	first := create(t, h, "First", "2024-04-01")
	second := create(t, h, "Second", "2024-05-01")

	rec := do(t, h, http.MethodPatch, "/api/objectives/"+second.ID, `{"status":"completed"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/objectives?status=pending", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []models.Objective{first}, decode[[]models.Objective](t, rec))

	rec = do(t, h, http.MethodGet, "/api/objectives?category=Monitoring&priority=medium", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Objective](t, rec), 2)

	rec = do(t, h, http.MethodGet, "/api/objectives?priority=urgent", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, `invalid priority filter "urgent"`, decode[errorBody](t, rec).Message)
}

func TestUpdate(t *testing.T) {
	h := newRouter(storage.NewMemoryStore())
	created := create(t, h, "Log glucose", "2024-03-20")

	t.Run("OnlyPresentFieldsChange", func(t *testing.T) {
		rec := do(t, h, http.MethodPatch, "/api/objectives/"+created.ID, `{"status":"in-progress"}`)
		require.Equal(t, http.StatusOK, rec.Code)

		want := created
		want.Status = models.StatusInProgress
		assert.Equal(t, want, decode[models.Objective](t, rec))
	})

	t.Run("EmptyPatchReturnsRecord", func(t *testing.T) {
		rec := do(t, h, http.MethodPatch, "/api/objectives/"+created.ID, `{}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, created.Title, decode[models.Objective](t, rec).Title)
	})

	t.Run("InvalidField", func(t *testing.T) {
		rec := do(t, h, http.MethodPatch, "/api/objectives/"+created.ID, `{"priority":"urgent"}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		body := decode[errorBody](t, rec)
		require.Len(t, body.Errors, 1)
		assert.Equal(t, "priority", body.Errors[0].Field)
	})

	t.Run("NullField", func(t *testing.T) {
		rec := do(t, h, http.MethodPatch, "/api/objectives/"+created.ID, `{"title":null}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("NotFound", func(t *testing.T) {
		rec := do(t, h, http.MethodPatch, "/api/objectives/nonexistent-id", `{"status":"completed"}`)
		require.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Objective not found", decode[errorBody](t, rec).Message)
	})
}

func TestDelete(t *testing.T) {
	h := newRouter(storage.NewMemoryStore())
	created := create(t, h, "Log glucose", "2024-03-20")

	rec := do(t, h, http.MethodDelete, "/api/objectives/"+created.ID, "")
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/api/objectives/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodDelete, "/api/objectives/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

type brokenStore struct {
	*storage.MemoryStore
}

var errBroken = storage.Unavailable("query", errors.New("connection refused"))

func (brokenStore) List(context.Context) ([]models.Objective, error) { return nil, errBroken }
func (brokenStore) Get(context.Context, string) (models.Objective, error) {
	return models.Objective{}, errBroken
}
func (brokenStore) Create(context.Context, models.InsertObjective) (models.Objective, error) {
	return models.Objective{}, errBroken
}
func (brokenStore) Update(context.Context, string, models.ObjectivePatch) (models.Objective, error) {
	return models.Objective{}, errBroken
}
func (brokenStore) Delete(context.Context, string) error { return errBroken }
func (brokenStore) Ping(context.Context) error { return errBroken }

func TestBackendFailures(t *testing.T) {
	h := newRouter(brokenStore{storage.NewMemoryStore()})
	valid := `{"title":"Walk","category":"Education","priority":"low","targetDate":"2024-03-15"}`

	tests := []struct {
		name    string
		method  string
		path    string
		body    string
		message string
	}{
		{"list", http.MethodGet, "/api/objectives", "", "Failed to fetch objectives"},
		{"get", http.MethodGet, "/api/objectives/abc", "", "Failed to fetch objective"},
		{"create", http.MethodPost, "/api/objectives", valid, "Failed to create objective"},
		{"update", http.MethodPatch, "/api/objectives/abc", `{"status":"completed"}`, "Failed to update objective"},
		{"delete", http.MethodDelete, "/api/objectives/abc", "", "Failed to delete objective"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, tt.method, tt.path, tt.body)
			require.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.Equal(t, tt.message, decode[errorBody](t, rec).Message)
		})
	}
}

func TestCreate_InvalidPayloadSkipsStore(t *testing.T) {
	h := newRouter(brokenStore{storage.NewMemoryStore()})

	rec := do(t, h, http.MethodPost, "/api/objectives", `{"title":"Walk"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProbes(t *testing.T) {
	rec := httptest.NewRecorder()
	handlers.Healthz(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	handlers.Readyz(storage.NewMemoryStore())(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ready"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	handlers.Readyz(brokenStore{storage.NewMemoryStore()})(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":"storage_not_ready"}`, rec.Body.String())
}
