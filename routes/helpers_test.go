package routes

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"eventhub/middlewares"
	"eventhub/mocks"
	"eventhub/models"
	"eventhub/roles"
	"eventhub/session"
	"eventhub/utils"
	"eventhub/views"
)

type testServer struct {
	s        *gin.Engine
	users    *mocks.UserRepo
	roles    *mocks.RoleRepo
	events   *mocks.EventRepo
	regs     *mocks.RegRepo
	sessions *session.Provider
	mr       *miniredis.Miniredis
}

func roomy() middlewares.LimiterConfig {
	return middlewares.LimiterConfig{RPS: 1000, Burst: 1000, IdleTTL: time.Minute}
}

func setup(t *testing.T, events ...models.Event) testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	rr := mocks.NewRoleRepo()
	ts := testServer{
		s:      gin.New(),
		users:  mocks.NewUserRepo(rr),
		roles:  rr,
		events: mocks.NewEventRepo(events...),
		regs:   mocks.NewRegRepo(),
		mr:     mr,
	}
	hub := session.NewHub()
	t.Cleanup(hub.Close)
	ts.sessions = session.NewProvider("routes-secret", time.Hour, session.NewRedisDenylist(rdb), hub)
	resolver := roles.NewResolver(rr, log)

	stop := RegisterRoutes(ts.s, Deps{
		Users:        ts.users,
		Events:       ts.events,
		Regs:         ts.regs,
		Roles:        resolver,
		Sessions:     ts.sessions,
		Views:        views.NewRenderer(ts.events, ts.regs, resolver),
		Redis:        rdb,
		Inv:          utils.NewCacheInvalidator(rdb),
		CacheTTL:     time.Minute,
		DailyQuota:   1000,
		PreviewLimit: 6,
		Limits:       Limits{Global: roomy(), Auth: roomy(), User: roomy()},
		Log:          log,
	})
	t.Cleanup(stop)
	return ts
}

func (ts testServer) do(method, path string, body any, token string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.s.ServeHTTP(w, req)
	return w
}

// signUp registers through the API and returns the access token and user id.
func (ts testServer) signUp(t *testing.T, email, role string) (string, string) {
	t.Helper()
	w := ts.do(http.MethodPost, "/auth/signup", map[string]string{
		"email": email, "password": "secret1", "full_name": "Test " + role, "role": role,
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var out struct {
		Session session.Session `json:"session"`
	}
	decode(t, w, &out)
	return out.Session.AccessToken, out.Session.User.ID
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

type notificationBody struct {
	Notification utils.Notification `json:"notification"`
}

func notificationOf(t *testing.T, w *httptest.ResponseRecorder) utils.Notification {
	t.Helper()
	var b notificationBody
	decode(t, w, &b)
	return b.Notification
}

func intp(n int) *int { return &n }

var soon = time.Date(2026, time.December, 1, 18, 0, 0, 0, time.UTC)

func anEvent(id, organiser string, capacity *int) models.Event {
	return models.Event{
		ID: id, Title: "Event " + id, Location: "Hall 1",
		StartDate: soon, EndDate: soon.Add(2 * time.Hour),
		OrganiserID: organiser, MaxAttendees: capacity,
	}
}
