package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"taskboard-service/repositories"
	"taskboard-service/services"
)

type testServer struct {
	t       *testing.T
	handler http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db, err := repositories.OpenGorm("sqlite", ":memory:")
	require.NoError(t, err)
	require.NoError(t, repositories.MigrateGorm(db))
	store := repositories.NewGormStore(db)
	t.Cleanup(func() { _ = store.Close(context.Background()) })

	ids := services.NewIDGenerator()
	jwtService := services.NewJWTService("router-secret", 30*time.Minute)
	breaker := services.NewStorageBreaker("test-storage", 3, time.Second)
	comments := services.NewCommentService(store.Comments, store.Tasks, ids, breaker)

	return &testServer{t: t, handler: NewRouter(Router{
		Auth:      NewAuthHandler(services.NewUserService(store.Users, jwtService, ids, nil, bcrypt.MinCost, breaker)),
		Projects:  NewProjectHandler(services.NewProjectService(store.Projects, ids, breaker)),
		Tasks:     NewTaskHandler(services.NewTaskService(store.Tasks, ids, breaker), comments),
		Comments:  NewCommentHandler(comments),
		Health:    NewHealthHandler(store),
		Validator: jwtService,
	})}
}

func (s *testServer) do(method, path, token string, body interface{}) (int, map[string]interface{}) {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	out := map[string]interface{}{}
	if rec.Body.Len() > 0 {
		require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec.Code, out
}

func (s *testServer) login(email, name string) string {
	s.t.Helper()
	code, _ := s.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": email, "name": name, "password": "correct-horse",
	})
	require.Equal(s.t, http.StatusCreated, code)

	code, body := s.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": email, "password": "correct-horse",
	})
	require.Equal(s.t, http.StatusOK, code)
	token, _ := body["token"].(string)
	require.NotEmpty(s.t, token)
	return token
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t)

	code, body := s.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "alice@example.com", "name": "Alice", "password": "correct-horse",
	})
	require.Equal(t, http.StatusCreated, code)
	user := body["user"].(map[string]interface{})
	assert.Equal(t, "alice@example.com", user["email"])
	assert.Equal(t, true, user["isUser"])
	assert.NotContains(t, user, "password")

	code, _ = s.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "alice@example.com", "name": "Alice", "password": "correct-horse",
	})
	assert.Equal(t, http.StatusConflict, code)

	code, body = s.do(http.MethodPost, "/api/auth/register", "", map[string]string{"email": "bob@example.com"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.NotEmpty(t, body["message"])

	code, _ = s.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "alice@example.com", "password": "wrong-horse",
	})
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = s.do(http.MethodPost, "/api/auth/login", "", "{not json")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)
	for _, path := range []string{"/api/tasks", "/api/projets", "/api/projects", "/api/tasks/stats"} {
		code, body := s.do(http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, code, path)
		assert.NotEmpty(t, body["message"], path)
	}
	code, _ := s.do(http.MethodGet, "/api/tasks", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestProjectEndpoints(t *testing.T) {
	s := newTestServer(t)
	alice := s.login("alice@example.com", "Alice")
	bob := s.login("bob@example.com", "Bob")

	code, body := s.do(http.MethodPost, "/api/projets", alice, map[string]interface{}{
		"name": "Website", "description": "Landing page", "status": "EN_COURS", "priority": "HAUTE",
	})
	require.Equal(t, http.StatusCreated, code)
	id := body["id"].(string)
	assert.Len(t, id, 5)
	assert.Equal(t, "Alice", body["owner"].(map[string]interface{})["name"])

	code, _ = s.do(http.MethodPost, "/api/projets", alice, map[string]interface{}{
		"name": "Bad", "status": "A_FAIRE", "priority": "HAUTE",
	})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = s.do(http.MethodPost, "/api/projects", alice, map[string]interface{}{"name": "No enums"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, body = s.do(http.MethodGet, "/api/projets", alice, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(1), body["total"])
	assert.Len(t, body["projets"], 1)

	code, body = s.do(http.MethodGet, "/api/projets", bob, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(0), body["total"])
	assert.NotNil(t, body["projets"])

	code, _ = s.do(http.MethodGet, "/api/projets/"+id, bob, nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = s.do(http.MethodGet, "/api/projets?status=BOGUS", alice, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, body = s.do(http.MethodGet, "/api/projects?search=landing&status=all", alice, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(1), body["total"])

	code, body = s.do(http.MethodPut, "/api/projets/"+id, alice, map[string]interface{}{"description": nil, "status": "TERMINE"})
	require.Equal(t, http.StatusOK, code)
	assert.Nil(t, body["description"])
	assert.Equal(t, "TERMINE", body["status"])
	assert.Equal(t, "Website", body["name"])

	code, _ = s.do(http.MethodPut, "/api/projets/"+id, alice, map[string]interface{}{"priority": "URGENT"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = s.do(http.MethodPut, "/api/projets/"+id, bob, map[string]interface{}{"name": "Mine"})
	assert.Equal(t, http.StatusNotFound, code)

	code, body = s.do(http.MethodGet, "/api/projets/stats", alice, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(1), body["total"])
	assert.Equal(t, float64(1), body["completed"])

	code, body = s.do(http.MethodDelete, "/api/projets/"+id, alice, nil)
	require.Equal(t, http.StatusOK, code)
	deleted := body["projet"].(map[string]interface{})
	assert.Equal(t, id, deleted["id"])
	assert.NotNil(t, deleted["deletedAt"])

	code, _ = s.do(http.MethodDelete, "/api/projets/"+id, alice, nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, body = s.do(http.MethodGet, "/api/projets", alice, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(0), body["total"])
}

func TestTaskAndCommentEndpoints(t *testing.T) {
	s := newTestServer(t)
	alice := s.login("alice@example.com", "Alice")
	bob := s.login("bob@example.com", "Bob")

	code, body := s.do(http.MethodPost, "/api/tasks", alice, map[string]interface{}{
		"title": "Write report", "status": "A_FAIRE", "priority": "ELEVEE", "dueDate": "2024-06-01",
	})
	require.Equal(t, http.StatusCreated, code)
	taskID := body["id"].(string)
	assert.Equal(t, "2024-06-01T00:00:00Z", body["dueDate"])
	assert.Equal(t, "alice@example.com", body["user"].(map[string]interface{})["email"])

	code, _ = s.do(http.MethodPost, "/api/tasks", alice, map[string]interface{}{
		"title": "Bad date", "status": "A_FAIRE", "priority": "ELEVEE", "dueDate": "tomorrow",
	})
	assert.Equal(t, http.StatusBadRequest, code)

	code, body = s.do(http.MethodPost, "/api/tasks", alice, map[string]interface{}{
		"title": "Call plumber", "status": "EN_ATTENTE", "priority": "FAIBLE", "dueDate": "",
	})
	require.Equal(t, http.StatusCreated, code)
	assert.Nil(t, body["dueDate"])

	code, body = s.do(http.MethodGet, "/api/tasks?sort=priority", alice, nil)
	require.Equal(t, http.StatusOK, code)
	tasks := body["tasks"].([]interface{})
	require.Len(t, tasks, 2)
	assert.Equal(t, "Write report", tasks[0].(map[string]interface{})["title"])

	code, body = s.do(http.MethodGet, "/api/tasks?priority=FAIBLE", alice, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(1), body["total"])

	code, body = s.do(http.MethodPut, "/api/tasks/"+taskID, alice, map[string]interface{}{"status": "EN_COURS", "dueDate": nil})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "EN_COURS", body["status"])
	assert.Nil(t, body["dueDate"])

	code, body = s.do(http.MethodGet, "/api/tasks/stats", alice, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(2), body["total"])
	assert.Equal(t, float64(1), body["inProgress"])
	assert.Equal(t, float64(1), body["onHold"])

	code, _ = s.do(http.MethodPost, "/api/comments", bob, map[string]string{"content": "hi", "taskId": taskID})
	assert.Equal(t, http.StatusNotFound, code)

	code, body = s.do(http.MethodPost, "/api/comments", alice, map[string]string{"content": "Draft ready", "taskId": taskID})
	require.Equal(t, http.StatusCreated, code)
	commentID := body["id"].(string)

	code, body = s.do(http.MethodGet, "/api/tasks/"+taskID+"/comments", alice, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(1), body["total"])

	code, body = s.do(http.MethodPut, "/api/comments/"+commentID, alice, map[string]string{"content": "Final"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Final", body["content"])

	code, _ = s.do(http.MethodDelete, "/api/comments/"+commentID, bob, nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = s.do(http.MethodDelete, "/api/comments/"+commentID, alice, nil)
	assert.Equal(t, http.StatusOK, code)

	code, body = s.do(http.MethodDelete, "/api/tasks/"+taskID, alice, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, taskID, body["task"].(map[string]interface{})["id"])

	code, _ = s.do(http.MethodGet, "/api/tasks/"+taskID, alice, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestHealthAndPreflight(t *testing.T) {
	s := newTestServer(t)
	code, body := s.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])

	req := httptest.NewRequest(http.MethodOptions, "/api/tasks", nil)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	code, _ = s.do(http.MethodGet, "/api/nowhere", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

type downStore struct{}

func (downStore) Ping(context.Context) error { return errors.New("connection refused") }

func TestHealthReportsUnavailableStore(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHealthHandler(downStore{}).Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestWriteErrorMapsUnavailable(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, httptest.NewRequest(http.MethodGet, "/", nil), services.ErrUnavailable, "x")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"message":"Service temporarily unavailable, please retry"}`, rec.Body.String())
}
