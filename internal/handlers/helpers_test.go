package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/taskforge/taskforge-backend/internal/handlers"
	"github.com/taskforge/taskforge-backend/internal/middleware"
	"github.com/taskforge/taskforge-backend/internal/repository"
	"github.com/taskforge/taskforge-backend/internal/routes"
	"github.com/taskforge/taskforge-backend/internal/services"
)

// testApp wires the full router over in-memory repositories so handler tests
// exercise the same routing, middleware, and JSON surface as production.
type testApp struct {
	router *chi.Mux
	users  *repository.MemoryUserRepository
	tasks  *repository.MemoryTaskRepository
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	userRepo := repository.NewMemoryUserRepository()
	taskRepo := repository.NewMemoryTaskRepository()

	userSvc := services.NewUserService(userRepo, taskRepo)
	tokenSvc := services.NewTokenService("handlers-test-secret", userRepo)
	avatarSvc := services.NewAvatarService(userRepo)
	taskSvc := services.NewTaskService(taskRepo)

	auth := middleware.NewAuth(tokenSvc, userRepo)
	router := chi.NewRouter()
	routes.SetupRoutes(router,
		auth,
		handlers.NewUserHandler(userSvc, tokenSvc),
		handlers.NewAvatarHandler(userSvc, avatarSvc),
		handlers.NewTaskHandler(taskSvc),
	)

	return &testApp{router: router, users: userRepo, tasks: taskRepo}
}

func (a *testApp) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

// doRaw sends a request with a pre-built body and content type, for malformed
// JSON and multipart uploads.
func (a *testApp) doRaw(t *testing.T, method, path, token, contentType string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

// signup registers a user through the API and returns the decoded response.
func (a *testApp) signup(t *testing.T, name, email, password string) authBody {
	t.Helper()

	w := a.do(t, http.MethodPost, "/users", "", map[string]any{
		"name":     name,
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusCreated, w.Code, "signup: %s", w.Body.String())
	return decodeAuth(t, w)
}

type userBody struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Age   int    `json:"age"`
}

type authBody struct {
	User  userBody `json:"user"`
	Token string   `json:"token"`
}

func decodeAuth(t *testing.T, w *httptest.ResponseRecorder) authBody {
	t.Helper()
	var body authBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotEmpty(t, body.Token)
	require.NotEmpty(t, body.User.ID)
	return body
}

func decodeJSON[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), "body: %s", w.Body.String())
	return v
}

func errorBody(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Error
}

// multipartAvatar builds a multipart body with a single `avatar` file field.
func multipartAvatar(t *testing.T, filename string, data []byte) (string, io.Reader) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("avatar", filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return mw.FormDataContentType(), &buf
}

func jsonReader(s string) io.Reader {
	return strings.NewReader(s)
}

func taskPath(id string) string {
	return fmt.Sprintf("/tasks/%s", id)
}
