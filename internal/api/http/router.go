package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/task-service/internal/api/http/handlers"
	"github.com/spec-kit/task-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Tasks          *handlers.TasksHandler
	Subtasks       *handlers.SubtasksHandler
	Teams          *handlers.TeamsHandler
	Timesheet      *handlers.TimesheetHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes. Reads need any authenticated user; writes
// are refused to portal users.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	authGroup := app.Group("/auth")
	authGroup.Post("/users/register", cfg.Users.Register)
	authGroup.Post("/users/login", cfg.Users.Login)

	api := app.Group("", cfg.AuthMiddleware.Handle, auth.RequireAnyRole())
	write := auth.RequireInternalUser()

	api.Post("/tasks", write, cfg.Tasks.CreateTask)
	api.Get("/tasks", cfg.Tasks.ListTasks)
	api.Get("/tasks/:id", cfg.Tasks.GetTask)
	api.Put("/tasks/:id", write, cfg.Tasks.UpdateTask)
	api.Delete("/tasks/:id", write, cfg.Tasks.DeleteTask)
	api.Get("/tasks/:id/progress-preview", cfg.Tasks.ProgressPreview)
	api.Get("/tasks/:id/subtasks", cfg.Subtasks.ListByTask)
	api.Get("/tasks/:id/timesheet-lines", cfg.Timesheet.ListByTask)

	api.Post("/subtasks/onchange/deadline", cfg.Subtasks.CheckDeadline)
	api.Post("/subtasks/onchange/done", write, cfg.Subtasks.ToggleDone)
	api.Post("/subtasks", write, cfg.Subtasks.CreateSubtask)
	api.Get("/subtasks/:id", cfg.Subtasks.GetSubtask)
	api.Put("/subtasks/:id", write, cfg.Subtasks.UpdateSubtask)
	api.Delete("/subtasks/:id", write, cfg.Subtasks.DeleteSubtask)

	api.Post("/teams", write, cfg.Teams.CreateTeam)
	api.Get("/teams", cfg.Teams.ListTeams)
	api.Get("/teams/:id", cfg.Teams.GetTeam)
	api.Put("/teams/:id", write, cfg.Teams.UpdateTeam)
	api.Delete("/teams/:id", write, cfg.Teams.DeleteTeam)
	api.Get("/teams/:id/history", cfg.Teams.History)
	api.Post("/teams/:id/actions/create-task", cfg.Teams.CreateTaskAction)
	api.Post("/teams/:id/actions/view-tasks", cfg.Teams.ViewTasksAction)

	api.Post("/timesheet-lines/onchange/subtask", cfg.Timesheet.ChooseSubtask)
	api.Post("/timesheet-lines", write, cfg.Timesheet.CreateLine)
	api.Get("/timesheet-lines/:id", cfg.Timesheet.GetLine)
	api.Put("/timesheet-lines/:id", write, cfg.Timesheet.UpdateLine)
	api.Delete("/timesheet-lines/:id", write, cfg.Timesheet.DeleteLine)
}
