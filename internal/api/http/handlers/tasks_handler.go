package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/task-service/internal/api/dto"
	"github.com/spec-kit/task-service/internal/domain"
	"github.com/spec-kit/task-service/internal/repository"
	"github.com/spec-kit/task-service/internal/service"
)

// TasksHandler manages task endpoints.
type TasksHandler struct {
	service *service.TaskService
}

// NewTasksHandler constructs handler.
func NewTasksHandler(taskService *service.TaskService) *TasksHandler {
	return &TasksHandler{service: taskService}
}

// CreateTask POST /tasks.
func (h *TasksHandler) CreateTask(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.TaskRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	task, err := h.service.CreateTask(c.UserContext(), user, taskInput(req))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": taskResponse(task)})
}

// ListTasks GET /tasks.
func (h *TasksHandler) ListTasks(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	teamID, err := optionalIDQuery(c, "team_id")
	if err != nil {
		return err
	}
	limit, offset := pagination(c)
	company := user.CompanyID
	tasks, err := h.service.ListTasks(c.UserContext(), repository.TaskFilter{
		TeamID:    teamID,
		CompanyID: &company,
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		return err
	}
	items := make([]dto.TaskResponse, 0, len(tasks))
	for i := range tasks {
		items = append(items, taskResponse(&tasks[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetTask GET /tasks/:id.
func (h *TasksHandler) GetTask(c *fiber.Ctx) error {
	id, err := pathID(c, "task")
	if err != nil {
		return err
	}
	task, err := h.service.GetTask(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": taskResponse(task)})
}

// UpdateTask PUT /tasks/:id.
func (h *TasksHandler) UpdateTask(c *fiber.Ctx) error {
	id, err := pathID(c, "task")
	if err != nil {
		return err
	}
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.TaskRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	task, err := h.service.UpdateTask(c.UserContext(), user, id, taskInput(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": taskResponse(task)})
}

// DeleteTask DELETE /tasks/:id.
func (h *TasksHandler) DeleteTask(c *fiber.Ctx) error {
	id, err := pathID(c, "task")
	if err != nil {
		return err
	}
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteTask(c.UserContext(), user, id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// ProgressPreview GET /tasks/:id/progress-preview.
func (h *TasksHandler) ProgressPreview(c *fiber.Ctx) error {
	id, err := pathID(c, "task")
	if err != nil {
		return err
	}
	view, err := h.service.ProgressPreview(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.ProgressPreviewResponse{
		TaskID:   view.TaskID,
		Progress: view.Stored,
		Preview:  view.Preview,
	}})
}

func taskInput(req dto.TaskRequest) service.TaskInput {
	return service.TaskInput{
		Name:     req.Name,
		TeamID:   req.TeamID,
		TaskType: req.TaskType,
		Deadline: req.Deadline,
	}
}

func taskResponse(task *domain.Task) dto.TaskResponse {
	return dto.TaskResponse{
		ID:        task.ID,
		Name:      task.Name,
		TeamID:    task.TeamID,
		TaskType:  task.TaskType,
		Deadline:  task.Deadline,
		Progress:  task.Progress,
		CompanyID: task.CompanyID,
		CreatedAt: task.CreatedAt,
		UpdatedAt: task.UpdatedAt,
	}
}
