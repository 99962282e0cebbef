package handlers_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/taskforge/taskforge-backend/internal/repository"
)

func TestSignup(t *testing.T) {
	app := newTestApp(t)

	w := app.do(t, http.MethodPost, "/users", "", map[string]any{
		"name":     "Mike",
		"email":    "Mike@Example.com",
		"password": "MyPass777!",
		"age":      27,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	body := decodeAuth(t, w)
	assert.Equal(t, "Mike", body.User.Name)
	assert.Equal(t, "mike@example.com", body.User.Email)
	assert.Equal(t, 27, body.User.Age)

	// Credentials and sessions never leak into the JSON surface.
	raw := w.Body.String()
	assert.NotContains(t, raw, "MyPass777!")
	assert.NotContains(t, raw, `"password"`)
	assert.NotContains(t, raw, `"tokens"`)
	assert.NotContains(t, raw, `"avatar"`)

	// Signup logs the user straight in: the token works on protected routes.
	me := app.do(t, http.MethodGet, "/users/me", body.Token, nil)
	assert.Equal(t, http.StatusOK, me.Code)
}

func TestSignupRejections(t *testing.T) {
	app := newTestApp(t)
	app.signup(t, "Mike", "mike@example.com", "MyPass777!")

	tests := []struct {
		name string
		body map[string]any
	}{
		{"duplicate email", map[string]any{"name": "Other", "email": "mike@example.com", "password": "MyPass777!"}},
		{"short password", map[string]any{"name": "A", "email": "a@b.com", "password": "short"}},
		{"password contains password", map[string]any{"name": "A", "email": "a@b.com", "password": "password123"}},
		{"missing name", map[string]any{"email": "a@b.com", "password": "MyPass777!"}},
		{"bad email", map[string]any{"name": "A", "email": "not-an-email", "password": "MyPass777!"}},
		{"negative age", map[string]any{"name": "A", "email": "a@b.com", "password": "MyPass777!", "age": -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := app.do(t, http.MethodPost, "/users", "", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.NotEmpty(t, errorBody(t, w))
		})
	}
}

func TestSignupMalformedBody(t *testing.T) {
	app := newTestApp(t)

	w := app.doRaw(t, http.MethodPost, "/users", "", "application/json", jsonReader("{not json"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid request body", errorBody(t, w))
}

func TestLogin(t *testing.T) {
	app := newTestApp(t)
	signedUp := app.signup(t, "Mike", "mike@example.com", "MyPass777!")

	w := app.do(t, http.MethodPost, "/users/login", "", map[string]any{
		"email":    "mike@example.com",
		"password": "MyPass777!",
	})
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeAuth(t, w)
	assert.Equal(t, signedUp.User.ID, body.User.ID)
	// A fresh session, not a replay of the signup token.
	assert.NotEqual(t, signedUp.Token, body.Token)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	app := newTestApp(t)
	app.signup(t, "Mike", "mike@example.com", "MyPass777!")

	unknown := app.do(t, http.MethodPost, "/users/login", "", map[string]any{
		"email":    "nobody@example.com",
		"password": "MyPass777!",
	})
	wrongPass := app.do(t, http.MethodPost, "/users/login", "", map[string]any{
		"email":    "mike@example.com",
		"password": "WrongPass777!",
	})

	assert.Equal(t, http.StatusBadRequest, unknown.Code)
	assert.Equal(t, http.StatusBadRequest, wrongPass.Code)
	assert.Equal(t, unknown.Body.String(), wrongPass.Body.String())
	assert.Equal(t, "unable to login", errorBody(t, unknown))
}

func TestLogoutRevokesOnlyCurrentSession(t *testing.T) {
	app := newTestApp(t)
	app.signup(t, "Mike", "mike@example.com", "MyPass777!")

	login := func() string {
		w := app.do(t, http.MethodPost, "/users/login", "", map[string]any{
			"email":    "mike@example.com",
			"password": "MyPass777!",
		})
		require.Equal(t, http.StatusOK, w.Code)
		return decodeAuth(t, w).Token
	}
	first, second := login(), login()

	w := app.do(t, http.MethodPost, "/users/logout", first, nil)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, http.StatusUnauthorized, app.do(t, http.MethodGet, "/users/me", first, nil).Code)
	assert.Equal(t, http.StatusOK, app.do(t, http.MethodGet, "/users/me", second, nil).Code)
}

func TestLogoutAllRevokesEverySession(t *testing.T) {
	app := newTestApp(t)
	signedUp := app.signup(t, "Mike", "mike@example.com", "MyPass777!")

	loginW := app.do(t, http.MethodPost, "/users/login", "", map[string]any{
		"email":    "mike@example.com",
		"password": "MyPass777!",
	})
	require.Equal(t, http.StatusOK, loginW.Code)
	other := decodeAuth(t, loginW).Token

	w := app.do(t, http.MethodPost, "/users/logoutAll", other, nil)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, http.StatusUnauthorized, app.do(t, http.MethodGet, "/users/me", signedUp.Token, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, app.do(t, http.MethodGet, "/users/me", other, nil).Code)
}

func TestGetUserByID(t *testing.T) {
	app := newTestApp(t)
	signedUp := app.signup(t, "Mike", "mike@example.com", "MyPass777!")

	w := app.do(t, http.MethodGet, "/users/"+signedUp.User.ID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Mike", decodeJSON[userBody](t, w).Name)

	missing := app.do(t, http.MethodGet, "/users/"+primitive.NewObjectID().Hex(), "", nil)
	assert.Equal(t, http.StatusNotFound, missing.Code)

	badID := app.do(t, http.MethodGet, "/users/not-a-hex-id", "", nil)
	assert.Equal(t, http.StatusNotFound, badID.Code)
}

func TestUpdateMe(t *testing.T) {
	app := newTestApp(t)
	signedUp := app.signup(t, "Mike", "mike@example.com", "MyPass777!")

	w := app.do(t, http.MethodPatch, "/users/me", signedUp.Token, map[string]any{
		"name": "Michael",
		"age":  28,
	})
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeJSON[userBody](t, w)
	assert.Equal(t, "Michael", body.Name)
	assert.Equal(t, 28, body.Age)

	me := app.do(t, http.MethodGet, "/users/me", signedUp.Token, nil)
	assert.Equal(t, "Michael", decodeJSON[userBody](t, me).Name)
}

func TestUpdateMePassword(t *testing.T) {
	app := newTestApp(t)
	signedUp := app.signup(t, "Mike", "mike@example.com", "MyPass777!")

	w := app.do(t, http.MethodPatch, "/users/me", signedUp.Token, map[string]any{
		"password": "NewPass888!",
	})
	require.Equal(t, http.StatusOK, w.Code)

	old := app.do(t, http.MethodPost, "/users/login", "", map[string]any{
		"email":    "mike@example.com",
		"password": "MyPass777!",
	})
	assert.Equal(t, http.StatusBadRequest, old.Code)

	fresh := app.do(t, http.MethodPost, "/users/login", "", map[string]any{
		"email":    "mike@example.com",
		"password": "NewPass888!",
	})
	assert.Equal(t, http.StatusOK, fresh.Code)
}

func TestUpdateMeRejectsUnknownFields(t *testing.T) {
	app := newTestApp(t)
	signedUp := app.signup(t, "Mike", "mike@example.com", "MyPass777!")

	tests := []struct {
		name string
		body map[string]any
	}{
		{"unknown field", map[string]any{"nickname": "mikey"}},
		{"id is immutable", map[string]any{"id": primitive.NewObjectID().Hex()}},
		{"valid and unknown mixed", map[string]any{"name": "Michael", "height": 180}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := app.do(t, http.MethodPatch, "/users/me", signedUp.Token, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "invalid updates", errorBody(t, w))
		})
	}

	// The mixed update must not have been partially applied.
	me := app.do(t, http.MethodGet, "/users/me", signedUp.Token, nil)
	assert.Equal(t, "Mike", decodeJSON[userBody](t, me).Name)
}

func TestUpdateMeRejectsBadValues(t *testing.T) {
	app := newTestApp(t)
	signedUp := app.signup(t, "Mike", "mike@example.com", "MyPass777!")

	w := app.do(t, http.MethodPatch, "/users/me", signedUp.Token, map[string]any{"age": -1})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = app.do(t, http.MethodPatch, "/users/me", signedUp.Token, map[string]any{"email": "broken"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteMeCascadesTasks(t *testing.T) {
	app := newTestApp(t)
	mike := app.signup(t, "Mike", "mike@example.com", "MyPass777!")
	jess := app.signup(t, "Jess", "jess@example.com", "Red12345!")

	created := app.do(t, http.MethodPost, "/tasks", mike.Token, map[string]any{"description": "pack bags"})
	require.Equal(t, http.StatusCreated, created.Code)
	kept := app.do(t, http.MethodPost, "/tasks", jess.Token, map[string]any{"description": "water plants"})
	require.Equal(t, http.StatusCreated, kept.Code)

	w := app.do(t, http.MethodDelete, "/users/me", mike.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Mike", decodeJSON[userBody](t, w).Name)

	// The account and its sessions are gone.
	assert.Equal(t, http.StatusUnauthorized, app.do(t, http.MethodGet, "/users/me", mike.Token, nil).Code)

	// Mike's tasks went with the account; Jess's survived.
	mikeID, err := primitive.ObjectIDFromHex(mike.User.ID)
	require.NoError(t, err)
	jessID, err := primitive.ObjectIDFromHex(jess.User.ID)
	require.NoError(t, err)

	orphaned, err := app.tasks.FindByOwner(context.Background(), mikeID, repository.TaskListOptions{})
	require.NoError(t, err)
	assert.Empty(t, orphaned)

	remaining, err := app.tasks.FindByOwner(context.Background(), jessID, repository.TaskListOptions{})
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "water plants", remaining[0].Description)
}
