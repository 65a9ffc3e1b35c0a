package rest

import (
	"log/slog"

	"github.com/frahmantamala/task-management/internal"
	"github.com/frahmantamala/task-management/internal/analytics"
	"github.com/frahmantamala/task-management/internal/attachment"
	"github.com/frahmantamala/task-management/internal/auth"
	"github.com/frahmantamala/task-management/internal/department"
	"github.com/frahmantamala/task-management/internal/evaluation"
	"github.com/frahmantamala/task-management/internal/task"
	"github.com/frahmantamala/task-management/internal/transport/middleware"
	"github.com/frahmantamala/task-management/internal/transport/swagger"
	"github.com/frahmantamala/task-management/internal/user"
	"github.com/go-chi/chi"
)

// Handlers groups everything the router mounts. Nil entries are skipped.
type Handlers struct {
	Health     *HealthHandler
	Auth       *auth.Handler
	User       *user.Handler
	Department *department.Handler
	Task       *task.Handler
	Evaluation *evaluation.Handler
	Attachment *attachment.Handler
	Analytics  *analytics.Handler

	OpenAPISpec    []byte
	AllowedOrigins []string
}

func RegisterAllRoutes(router *chi.Mux, h Handlers, logger *slog.Logger) {
	managers := middleware.RequireRoles(logger, internal.RoleAdmin, internal.RoleManager)
	admins := middleware.RequireRoles(logger, internal.RoleAdmin)

	router.Use(middleware.CORS(h.AllowedOrigins))
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	if len(h.OpenAPISpec) > 0 {
		router.Get(swagger.SpecPath, swagger.SpecHandler(h.OpenAPISpec))
		router.Handle("/swagger/*", swagger.Handler())
	}

	router.Route("/api/v1", func(r chi.Router) {
		if h.Health != nil {
			r.Get("/health", h.Health.Health)
			r.Get("/ping", h.Health.Ping)
		}

		if h.Auth == nil {
			return
		}

		r.Post("/auth/login", h.Auth.Login)
		r.Post("/auth/refresh", h.Auth.RefreshToken)

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)
			pr.Use(middleware.UserContext)

			pr.Post("/auth/logout", h.Auth.Logout)

			if h.User != nil {
				pr.Get("/users/me", h.User.GetCurrentUser)
				pr.Get("/users", h.User.ListUsers)
				pr.Get("/users/{id}", h.User.GetUser)
			}

			if h.Department != nil {
				pr.Route("/departments", func(dr chi.Router) {
					dr.Get("/", h.Department.ListDepartments)
					dr.Get("/tree", h.Department.GetTree)
					dr.Get("/{id}", h.Department.GetDepartment)

					dr.Group(func(ar chi.Router) {
						ar.Use(admins)
						ar.Post("/", h.Department.CreateDepartment)
						ar.Put("/{id}", h.Department.UpdateDepartment)
						ar.Delete("/{id}", h.Department.DeleteDepartment)
					})
				})
			}

			if h.Task != nil {
				pr.Route("/tasks", func(tr chi.Router) {
					tr.Get("/", h.Task.ListTasks)
					tr.Post("/", h.Task.CreateTask)

					// literal segments before {id}
					tr.Get("/calendar", h.Task.Calendar)
					tr.Get("/calendar.ics", h.Task.CalendarICS)
					tr.Get("/export", h.Task.Export)

					tr.Get("/{id}", h.Task.GetTask)
					tr.Put("/{id}", h.Task.UpdateTask)
					tr.Patch("/{id}", h.Task.UpdateTask)
					tr.Delete("/{id}", h.Task.DeleteTask)

					tr.Get("/{id}/comments", h.Task.ListComments)
					tr.Post("/{id}/comments", h.Task.AddComment)
					tr.Get("/{id}/history", h.Task.ListHistory)
					tr.Get("/{id}/time-logs", h.Task.ListTimeLogs)
					tr.Post("/{id}/time-logs", h.Task.AddTimeLog)

					if h.Attachment != nil {
						tr.Get("/{id}/attachments", h.Attachment.ListAttachments)
						tr.Post("/{id}/attachments", h.Attachment.UploadAttachment)
					}
				})
			}

			if h.Attachment != nil {
				pr.Delete("/attachments/{id}", h.Attachment.DeleteAttachment)
			}

			if h.Evaluation != nil {
				pr.Get("/evaluations", h.Evaluation.ListEvaluations)
				pr.Get("/evaluations/{id}", h.Evaluation.GetEvaluation)
				pr.With(managers).Post("/evaluations", h.Evaluation.CreateEvaluation)
			}

			if h.Analytics != nil {
				pr.With(managers).Post("/analytics/analyze", h.Analytics.Analyze)
			}
		})
	})
}
