package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/taskforge/taskforge-backend/internal/handlers"
	"github.com/taskforge/taskforge-backend/internal/middleware"
)

func SetupRoutes(r *chi.Mux, auth *middleware.Auth, users *handlers.UserHandler, avatars *handlers.AvatarHandler, tasks *handlers.TaskHandler) {
	// Public routes
	r.Post("/users", users.Signup)
	r.Post("/users/login", users.Login)
	r.Get("/users/{id}", users.GetByID)
	r.Get("/users/{id}/avatar", avatars.Get)

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth)

		r.Post("/users/logout", users.Logout)
		r.Post("/users/logoutAll", users.LogoutAll)
		r.Get("/users/me", users.Me)
		r.Patch("/users/me", users.UpdateMe)
		r.Delete("/users/me", users.DeleteMe)
		r.Post("/users/me/avatar", avatars.Upload)
		r.Delete("/users/me/avatar", avatars.Delete)

		r.Post("/tasks", tasks.Create)
		r.Get("/tasks", tasks.List)
		r.Get("/tasks/{id}", tasks.GetByID)
		r.Patch("/tasks/{id}", tasks.Update)
		r.Delete("/tasks/{id}", tasks.Delete)
	})
}
