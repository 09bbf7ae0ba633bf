package google

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	domain "github.com/example/schedule-sync/domain/user"
	"github.com/example/schedule-sync/modules/auth"
)

// memStore is an in-memory credential store.
type memStore struct {
	mu    sync.Mutex
	users map[string]domain.User
}

func newMemStore(users ...domain.User) *memStore {
	s := &memStore{users: make(map[string]domain.User)}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *memStore) FindUser(_ context.Context, userID string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, auth.ErrUserNotFound
	}
	return &u, nil
}

func (s *memStore) SaveGoogleAuth(_ context.Context, userID string, bundle domain.GoogleAuth) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return auth.ErrUserNotFound
	}
	u.GoogleAuth.AccessToken = bundle.AccessToken
	u.GoogleAuth.ExpiresAt = bundle.ExpiresAt
	if bundle.RefreshToken != "" {
		u.GoogleAuth.RefreshToken = bundle.RefreshToken
	}
	s.users[userID] = u
	return nil
}

func (s *memStore) SaveCalendarID(_ context.Context, userID, calendarID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return auth.ErrUserNotFound
	}
	u.CalendarID = calendarID
	s.users[userID] = u
	return nil
}

func (s *memStore) user(t *testing.T, userID string) domain.User {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		t.Fatalf("user %s not in store", userID)
	}
	return u
}

// fakeGoogle serves the token endpoint and the Calendar API paths the module uses.
type fakeGoogle struct {
	*httptest.Server

	mu            sync.Mutex
	grants        []url.Values
	calendarCalls int
	eventCalls    map[string]int
	lastEvent     map[string]any
	lastEventPath string
	nextEventID   int

	tokenBody      map[string]any
	tokenStatus    int
	tokenDelay     time.Duration
	calendarStatus int
	eventStatus    int
	deleteStatus   int
}

func newFakeGoogle(t *testing.T) *fakeGoogle {
	t.Helper()

	f := &fakeGoogle{
		eventCalls: make(map[string]int),
		tokenBody: map[string]any{
			"access_token": "new-access",
			"token_type":   "Bearer",
			"expires_in":   3600,
		},
		tokenStatus:    http.StatusOK,
		calendarStatus: http.StatusOK,
		eventStatus:    http.StatusOK,
		deleteStatus:   http.StatusNoContent,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /token", f.handleToken)
	mux.HandleFunc("POST /calendars", f.handleCalendar)
	mux.HandleFunc("POST /calendars/{cal}/events", f.handleEvent)
	mux.HandleFunc("PUT /calendars/{cal}/events/{id}", f.handleEvent)
	mux.HandleFunc("DELETE /calendars/{cal}/events/{id}", f.handleDelete)

	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Close)
	return f
}

func (f *fakeGoogle) handleToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	f.grants = append(f.grants, r.PostForm)
	status, body, delay := f.tokenStatus, f.tokenBody, f.tokenDelay
	f.mu.Unlock()

	time.Sleep(delay)
	writeJSON(w, status, body)
}

func (f *fakeGoogle) handleCalendar(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	_ = json.NewDecoder(r.Body).Decode(&body)

	f.mu.Lock()
	f.calendarCalls++
	status := f.calendarStatus
	n := f.calendarCalls
	f.mu.Unlock()

	if status != http.StatusOK {
		writeJSON(w, status, map[string]any{"error": map[string]any{"code": status, "message": "calendar failure"}})
		return
	}
	writeJSON(w, status, map[string]any{
		"id":       fmt.Sprintf("cal-%d", n),
		"summary":  body["summary"],
		"timeZone": body["timeZone"],
	})
}

func (f *fakeGoogle) handleEvent(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	_ = json.NewDecoder(r.Body).Decode(&body)

	f.mu.Lock()
	f.eventCalls[r.Method]++
	f.lastEvent = body
	f.lastEventPath = r.URL.Path
	status := f.eventStatus
	id := r.PathValue("id")
	if id == "" {
		f.nextEventID++
		id = fmt.Sprintf("evt-%d", f.nextEventID)
	}
	f.mu.Unlock()

	if status >= http.StatusBadRequest {
		writeJSON(w, status, map[string]any{"error": map[string]any{"code": status, "message": "event failure"}})
		return
	}
	if body == nil {
		body = map[string]any{}
	}
	body["id"] = id
	writeJSON(w, status, body)
}

func (f *fakeGoogle) handleDelete(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.eventCalls[r.Method]++
	f.lastEventPath = r.URL.Path
	status := f.deleteStatus
	f.mu.Unlock()

	if status >= http.StatusBadRequest {
		writeJSON(w, status, map[string]any{"error": map[string]any{"code": status, "message": "not found"}})
		return
	}
	w.WriteHeader(status)
}

func (f *fakeGoogle) tokenCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.grants)
}

func (f *fakeGoogle) calendarCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calendarCalls
}

func (f *fakeGoogle) eventCount(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.eventCalls[method]
}

// event returns the last event payload and the path it was sent to.
func (f *fakeGoogle) event() (map[string]any, string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastEvent, f.lastEventPath
}

func (f *fakeGoogle) grant(i int) url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.grants[i]
}

func (f *fakeGoogle) set(fn func(f *fakeGoogle)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

func (f *fakeGoogle) config() Config {
	return Config{
		ClientID:         "client-id",
		ClientSecret:     "client-secret",
		RedirectURL:      "postmessage",
		TokenURL:         f.URL + "/token",
		CalendarEndpoint: f.URL + "/",
		CalendarName:     "Appointments",
		TimeZone:         "America/Sao_Paulo",
		EventSummary:     "Appointment",
		SourceTitle:      "Open schedule",
		SourceURL:        "https://example.com/app/schedule",
		HTTPTimeout:      5 * time.Second,
		RetryBackoff:     10 * time.Millisecond,
		SyncTimeout:      20 * time.Second,
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// linkedUser returns a user holding a credential bundle that expires at expiresAt.
func linkedUser(id string, expiresAt time.Time) domain.User {
	return domain.User{
		ID:    id,
		Name:  "Linked User",
		Email: id + "@example.com",
		GoogleAuth: domain.GoogleAuth{
			AccessToken:  "old-access",
			RefreshToken: "refresh-1",
			ExpiresAt:    expiresAt,
		},
	}
}
