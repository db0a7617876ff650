package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backoffice/internal/core/apperror"
	"backoffice/internal/infrastructure/storage/postgres"
)

func init() { gin.SetMode(gin.TestMode) }

type memStore struct {
	entries   map[string]*postgres.IdempotencyReplay
	completed map[string]bool
	failed    map[string]bool
}

func newMemStore() *memStore {
	return &memStore{
		entries:   map[string]*postgres.IdempotencyReplay{},
		completed: map[string]bool{},
		failed:    map[string]bool{},
	}
}

func (s *memStore) AcquireKey(_ context.Context, key, _, _ string) (*postgres.IdempotencyReplay, error) {
	if r, ok := s.entries[key]; ok {
		if r == nil {
			return nil, apperror.NewIdempotencyConflict(key)
		}
		return r, nil
	}
	s.entries[key] = nil
	return nil, nil
}

func (s *memStore) store(key string, status int, ct string, response any) {
	b, _ := json.Marshal(response)
	s.entries[key] = &postgres.IdempotencyReplay{StatusCode: status, ContentType: ct, Body: b}
}

func (s *memStore) CompleteKey(_ context.Context, key string, status int, ct string, response any) error {
	s.completed[key] = true
	s.store(key, status, ct, response)
	return nil
}

func (s *memStore) FailKey(_ context.Context, key string, status int, ct string, response any) error {
	s.failed[key] = true
	s.store(key, status, ct, response)
	return nil
}

func newEngine(store IdempotencyStore, h gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(Trace(), ErrorHandler(), Recovery())
	if store != nil {
		r.POST("/sales", Idempotency(store), h)
	} else {
		r.POST("/sales", h)
	}
	return r
}

func post(r http.Handler, key, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/sales", strings.NewReader(body))
	if key != "" {
		req.Header.Set(HeaderIdempotencyKey, key)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestErrorHandler_AppError(t *testing.T) {
	r := newEngine(nil, func(c *gin.Context) {
		_ = c.Error(apperror.NewInsufficientStock("p1", 5, 2))
		c.Abort()
	})

	w := post(r, "", "{}")

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, apperror.CodeInsufficientStock, body["code"])
	assert.NotEmpty(t, w.Header().Get(HeaderRequestID))
}

func TestErrorHandler_HidesUnknownErrors(t *testing.T) {
	r := newEngine(nil, func(c *gin.Context) {
		_ = c.Error(errors.New("connection reset by peer"))
		c.Abort()
	})

	w := post(r, "", "{}")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection reset")
}

func TestRecovery(t *testing.T) {
	r := newEngine(nil, func(c *gin.Context) { panic("boom") })

	w := post(r, "", "{}")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), apperror.CodeInternal)
}

func TestIdempotency_ReplaysCompletedRequest(t *testing.T) {
	store := newMemStore()
	calls := 0
	r := newEngine(store, func(c *gin.Context) {
		calls++
		resp := gin.H{"number": "V-000001"}
		require.NoError(t, CompleteIdempotency(c, http.StatusCreated, "application/json", resp))
		c.JSON(http.StatusCreated, resp)
	})

	first := post(r, "k1", `{"sellerId":"x"}`)
	second := post(r, "k1", `{"sellerId":"x"}`)

	assert.Equal(t, 1, calls)
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.True(t, store.completed["k1"])
}

func TestIdempotency_ReplaysFailure(t *testing.T) {
	store := newMemStore()
	calls := 0
	r := newEngine(store, func(c *gin.Context) {
		calls++
		_ = c.Error(apperror.NewValidation("seller is required"))
		c.Abort()
	})

	post(r, "k2", "{}")
	w := post(r, "k2", "{}")

	assert.Equal(t, 1, calls)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.True(t, store.failed["k2"])
}

func TestIdempotency_InProgress(t *testing.T) {
	store := newMemStore()
	store.entries["busy"] = nil
	r := newEngine(store, func(c *gin.Context) { c.Status(http.StatusCreated) })

	w := post(r, "busy", "{}")

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), apperror.CodeIdempotency)
}

func TestIdempotency_NoKeyPassesThrough(t *testing.T) {
	store := newMemStore()
	calls := 0
	r := newEngine(store, func(c *gin.Context) {
		calls++
		c.Status(http.StatusCreated)
	})

	post(r, "", "{}")
	post(r, "", "{}")

	assert.Equal(t, 2, calls)
	assert.Empty(t, store.entries)
}
