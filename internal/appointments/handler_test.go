package appointments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cityclinic/desk-assistant/pkg/logging"
)

// memStore keeps appointments in memory, newest-created first.
type memStore struct {
	appts []Appointment
	next  int
}

func (m *memStore) Create(_ context.Context, f Fields) (*Appointment, error) {
	m.next++
	a := Appointment{
		ID: fmt.Sprintf("appt-%d", m.next), Name: f.Name, Contact: f.Contact,
		Doctor: f.Doctor, Date: f.Date, Time: f.Time,
		CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC(),
	}
	m.appts = append([]Appointment{a}, m.appts...)
	return &a, nil
}

func (m *memStore) List(_ context.Context) ([]Appointment, error) {
	return m.appts, nil
}

func (m *memStore) GetByID(_ context.Context, id string) (*Appointment, error) {
	for i := range m.appts {
		if m.appts[i].ID == id {
			return &m.appts[i], nil
		}
	}
	return nil, ErrNotFound
}

func (m *memStore) Update(_ context.Context, id string, f Fields) (*Appointment, error) {
	for i := range m.appts {
		if m.appts[i].ID == id {
			m.appts[i].Name = f.Name
			m.appts[i].Contact = f.Contact
			m.appts[i].Doctor = f.Doctor
			m.appts[i].Date = f.Date
			m.appts[i].Time = f.Time
			m.appts[i].UpdatedAt = time.Now().UTC()
			return &m.appts[i], nil
		}
	}
	return nil, ErrNotFound
}

func (m *memStore) Delete(_ context.Context, id string) error {
	for i := range m.appts {
		if m.appts[i].ID == id {
			m.appts = append(m.appts[:i], m.appts[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func newTestRouter(store Store) chi.Router {
	h := NewHandler(store, logging.New("error"))
	r := chi.NewRouter()
	r.Mount("/appointments", h.Routes())
	return r
}

func seedStore(t *testing.T) *memStore {
	t.Helper()
	store := &memStore{}
	_, err := store.Create(context.Background(), Fields{
		Name: "Jane Doe", Contact: "9876543210", Doctor: "surgeon",
		Date: "2025-06-10", Time: "4:00 PM",
	})
	require.NoError(t, err)
	return store
}

func TestListAppointments(t *testing.T) {
	r := newTestRouter(seedStore(t))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/appointments/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var got []Appointment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "Jane Doe", got[0].Name)
}

func TestGetAppointmentNotFound(t *testing.T) {
	store := seedStore(t)
	r := newTestRouter(store)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/appointments/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "appointment not found")
	// no side effects
	assert.Len(t, store.appts, 1)
}

func TestUpdateAppointmentInvalidPhone(t *testing.T) {
	store := seedStore(t)
	id := store.appts[0].ID
	r := newTestRouter(store)

	body := bytes.NewBufferString(`{"contact": "12345"}`)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("PUT", "/appointments/"+id, body))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid phone number")
	// stored record unchanged
	assert.Equal(t, "9876543210", store.appts[0].Contact)
}

func TestUpdateAppointmentPartial(t *testing.T) {
	store := seedStore(t)
	id := store.appts[0].ID
	r := newTestRouter(store)

	body := bytes.NewBufferString(`{"time": "4:10 PM", "contact": "111 222 3344"}`)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("PUT", "/appointments/"+id, body))

	require.Equal(t, http.StatusOK, rec.Code)
	var got Appointment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "4:10 PM", got.Time)
	assert.Equal(t, "111 222 3344", got.Contact)
	assert.Equal(t, "Jane Doe", got.Name) // untouched field preserved
}

func TestUpdateAppointmentMissing(t *testing.T) {
	r := newTestRouter(seedStore(t))

	body := bytes.NewBufferString(`{"name": "Someone"}`)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("PUT", "/appointments/ghost", body))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteAppointment(t *testing.T) {
	store := seedStore(t)
	id := store.appts[0].ID
	r := newTestRouter(store)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("DELETE", "/appointments/"+id, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, store.appts)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("DELETE", "/appointments/"+id, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateAppointmentValidatesPhone(t *testing.T) {
	store := &memStore{}
	r := newTestRouter(store)

	body := bytes.NewBufferString(`{"name":"A","contact":"12ab","doctor":"surgeon","date":"2025-06-10","time":"4:00 PM"}`)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("POST", "/appointments/", body))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, store.appts)
}

func TestValidPhone(t *testing.T) {
	tests := []struct {
		contact string
		want    bool
	}{
		{"9876543210", true},
		{"987 654 3210", true},
		{"12345", false},
		{"98765432100", false},
		{"98765abc10", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ValidPhone(tt.contact), "contact %q", tt.contact)
	}
}
