package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/natthaphonb/taskhub-api/internal/auth"
	"github.com/natthaphonb/taskhub-api/internal/config"
)

// NewRouter assembles the full HTTP surface. Everything under /api/projects
// and /api/tasks sits behind the bearer token authenticator.
func NewRouter(
	cfg *config.Config,
	jwtAuth auth.JWTAuthenticator,
	authHandler *AuthHandler,
	projectHandler *ProjectHandler,
	taskHandler *TaskHandler,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", authHandler.Signup)
			r.Post("/verify-email", authHandler.VerifyEmail)
			r.Post("/resend-code", authHandler.ResendCode)
			r.Post("/login", authHandler.Login)
			r.Post("/forgot-password", authHandler.ForgotPassword)
			r.Post("/reset-password", authHandler.ResetPassword)
		})

		r.Group(func(r chi.Router) {
			r.Use(Authenticator(jwtAuth, cfg.Token.Secret))

			r.Route("/projects", func(r chi.Router) {
				r.Get("/", projectHandler.List)
				r.Post("/", projectHandler.Create)

				r.Route("/{projectID}", func(r chi.Router) {
					r.Get("/", projectHandler.Get)
					r.Put("/", projectHandler.Update)
					r.Delete("/", projectHandler.Delete)

					r.Get("/tasks", taskHandler.ListByProject)

					r.Post("/collaborators", projectHandler.AddCollaborator)
					r.Put("/collaborators/{userID}", projectHandler.UpdateCollaborator)
					r.Delete("/collaborators/{userID}", projectHandler.RemoveCollaborator)

					r.Post("/boards", projectHandler.AddBoard)
					r.Put("/boards/{boardID}", projectHandler.RenameBoard)
					r.Delete("/boards/{boardID}", projectHandler.RemoveBoard)
				})
			})

			r.Route("/tasks", func(r chi.Router) {
				r.Post("/", taskHandler.Create)

				r.Route("/{taskID}", func(r chi.Router) {
					r.Get("/", taskHandler.Get)
					r.Put("/", taskHandler.Update)
					r.Patch("/", taskHandler.UpdateStatus)
					r.Delete("/", taskHandler.Delete)
					r.Post("/comments", taskHandler.AddComment)
				})
			})
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		respondMessage(w, http.StatusOK, "ok")
	})

	return r
}
