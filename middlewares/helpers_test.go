package middlewares

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"eventhub/models"
	"eventhub/session"
)

func init() { gin.SetMode(gin.TestMode) }

func newRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return rdb, mr
}

func newProvider(t *testing.T) *session.Provider {
	t.Helper()
	p, _ := newProviderWithRedis(t)
	return p
}

func newProviderWithRedis(t *testing.T) (*session.Provider, *miniredis.Miniredis) {
	t.Helper()
	rdb, mr := newRedis(t)
	return session.NewProvider("mw-secret", time.Hour, session.NewRedisDenylist(rdb), session.NewHub()), mr
}

func signIn(t *testing.T, p *session.Provider, id string) session.Session {
	t.Helper()
	s, err := p.SignIn(context.Background(), models.User{ID: id, Email: id + "@example.com", FullName: "User " + id})
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	return s
}

func do(s http.Handler, method, path, token string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	s.ServeHTTP(w, req)
	return w
}
