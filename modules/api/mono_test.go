package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/example/schedule-sync/database"
	"github.com/example/schedule-sync/modules/api"
	"github.com/example/schedule-sync/modules/auth"
	"github.com/example/schedule-sync/modules/google"
	"github.com/example/schedule-sync/modules/notification"
	"github.com/example/schedule-sync/modules/schedule"
	"github.com/go-monolith/mono"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// server is the whole application booted on mono and reached over HTTP.
type server struct {
	base   string
	client *http.Client
}

type reply struct {
	Status int
	Header http.Header
	Body   map[string]any
}

func freePort(t *testing.T) int {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())
	return port
}

func startServer(t *testing.T) *server {
	t.Helper()

	db, err := database.Open("sqlite", ":memory:")
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	app, err := mono.NewMonoApplication(
		mono.WithLogLevel(mono.LogLevelError),
		mono.WithNATSDontListen(),
		mono.WithNATSInProcessConn(),
	)
	require.NoError(t, err)

	port := freePort(t)
	require.NoError(t, app.Register(notification.NewModule()))
	require.NoError(t, app.Register(auth.NewModule(db, auth.SessionConfig{SecretKey: "mono-secret", Issuer: "schedule-sync"})))
	require.NoError(t, app.Register(google.NewModule(google.Config{HTTPTimeout: time.Second, SyncTimeout: 5 * time.Second})))
	require.NoError(t, app.Register(schedule.NewModule(db)))
	require.NoError(t, app.Register(api.NewModule(api.Config{
		Port:            port,
		RateLimitMax:    100,
		RateLimitWindow: time.Minute,
	})))

	require.NoError(t, app.Start(context.Background()))
	t.Cleanup(func() {
		_ = app.Stop(context.Background())
		_ = database.Close(db)
	})

	s := &server{
		base:   fmt.Sprintf("http://127.0.0.1:%d", port),
		client: &http.Client{Timeout: 10 * time.Second},
	}
	require.Eventually(t, func() bool {
		resp, err := s.client.Get(s.base + "/health")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond, "server never became ready")
	return s
}

func (s *server) do(t *testing.T, method, path, token string, body any) reply {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, s.base+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := reply{Status: resp.StatusCode, Header: resp.Header}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out.Body), "body: %s", raw)
	}
	return out
}

func (s *server) signUpAndIn(t *testing.T, email string) string {
	t.Helper()

	resp := s.do(t, http.MethodPost, "/user/signup", "", map[string]any{
		"name": "Alice", "email": email, "password": "secret-pass",
	})
	require.Equal(t, http.StatusCreated, resp.Status, resp.Body)

	resp = s.do(t, http.MethodPost, "/user/signin", "", map[string]any{
		"email": email, "password": "secret-pass",
	})
	require.Equal(t, http.StatusOK, resp.Status, resp.Body)
	token, _ := resp.Body["data"].(map[string]any)["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestMonoApplication(t *testing.T) {
	s := startServer(t)

	alice := s.signUpAndIn(t, "alice@example.com")
	mallory := s.signUpAndIn(t, "mallory@example.com")

	t.Run("duplicate signup", func(t *testing.T) {
		resp := s.do(t, http.MethodPost, "/user/signup", "", map[string]any{
			"name": "Alice", "email": "alice@example.com", "password": "secret-pass",
		})
		assert.Equal(t, http.StatusConflict, resp.Status)
		assert.Equal(t, "conflict", resp.Body["error"])
	})

	t.Run("wrong password", func(t *testing.T) {
		resp := s.do(t, http.MethodPost, "/user/signin", "", map[string]any{
			"email": "alice@example.com", "password": "wrong-pass",
		})
		assert.Equal(t, http.StatusForbidden, resp.Status)
		assert.Equal(t, "invalid_credentials", resp.Body["error"])
	})

	t.Run("invalid session", func(t *testing.T) {
		resp := s.do(t, http.MethodGet, "/schedule", "not-a-jwt", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.Status)
		assert.Equal(t, "unauthenticated", resp.Body["error"])
	})

	t.Run("google not linked", func(t *testing.T) {
		resp := s.do(t, http.MethodGet, "/user/google/access_token", alice, nil)
		assert.Equal(t, http.StatusPreconditionFailed, resp.Status)
		assert.Equal(t, "precondition_failed", resp.Body["error"])
	})

	t.Run("temporal range", func(t *testing.T) {
		resp := s.do(t, http.MethodPost, "/schedule", alice, map[string]any{
			"description": "Dentist visit",
			"start_time":  "2026-06-15T10:00:00Z",
			"end_time":    "2026-06-15T09:00:00Z",
		})
		assert.Equal(t, http.StatusNotAcceptable, resp.Status)
		assert.Equal(t, "invalid_temporal_range", resp.Body["error"])
	})

	t.Run("schedule lifecycle", func(t *testing.T) {
		resp := s.do(t, http.MethodPost, "/schedule", alice, map[string]any{
			"description": "Dentist visit",
			"start_time":  "2026-06-15T09:00:00Z",
			"end_time":    "2026-06-15T09:30:00Z",
		})
		require.Equal(t, http.StatusCreated, resp.Status, resp.Body)
		renewed := resp.Header.Get(api.SessionHeader)
		assert.NotEmpty(t, renewed)
		created := resp.Body["data"].(map[string]any)
		id := created["id"].(string)
		assert.Empty(t, created["google_event_id"])

		resp = s.do(t, http.MethodDelete, "/schedule/"+id, mallory, nil)
		assert.Equal(t, http.StatusNotAcceptable, resp.Status)
		assert.Equal(t, "forbidden", resp.Body["error"])

		resp = s.do(t, http.MethodGet, "/schedule/"+id, renewed, nil)
		require.Equal(t, http.StatusOK, resp.Status, resp.Body)
		assert.Equal(t, "Dentist visit", resp.Body["data"].(map[string]any)["description"])

		resp = s.do(t, http.MethodDelete, "/schedule/"+id, renewed, nil)
		assert.Equal(t, http.StatusOK, resp.Status, resp.Body)

		resp = s.do(t, http.MethodGet, "/schedule/"+id, renewed, nil)
		assert.Equal(t, http.StatusNotFound, resp.Status)
		assert.Equal(t, "not_found", resp.Body["error"])
	})

	t.Run("failed pushes are listed", func(t *testing.T) {
		assert.Eventually(t, func() bool {
			resp := s.do(t, http.MethodGet, "/user/notifications", alice, nil)
			if resp.Status != http.StatusOK {
				return false
			}
			notices, _ := resp.Body["data"].([]any)
			for _, n := range notices {
				if n.(map[string]any)["operation"] == schedule.OpPush {
					return true
				}
			}
			return false
		}, 3*time.Second, 50*time.Millisecond)

		resp := s.do(t, http.MethodGet, "/user/notifications", mallory, nil)
		assert.Equal(t, []any{}, resp.Body["data"], "notices are per user")
	})
}
