package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/task-service/internal/api/dto"
	"github.com/spec-kit/task-service/internal/domain"
	"github.com/spec-kit/task-service/internal/service"
	apperrors "github.com/spec-kit/task-service/pkg/util/errorutil"
)

// SubtasksHandler manages subtask endpoints and their interactive checks.
type SubtasksHandler struct {
	service *service.SubtaskService
}

// NewSubtasksHandler constructs handler.
func NewSubtasksHandler(subtaskService *service.SubtaskService) *SubtasksHandler {
	return &SubtasksHandler{service: subtaskService}
}

// CreateSubtask POST /subtasks.
func (h *SubtasksHandler) CreateSubtask(c *fiber.Ctx) error {
	var req dto.SubtaskRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	if req.ParentTaskID == "" {
		return apperrors.NewValidationError("parent_task_id is required", map[string]any{"parent_task_id": "required"})
	}
	input, err := subtaskInput(req)
	if err != nil {
		return err
	}
	st, err := h.service.CreateSubtask(c.UserContext(), input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": subtaskResponse(st)})
}

// ListByTask GET /tasks/:id/subtasks.
func (h *SubtasksHandler) ListByTask(c *fiber.Ctx) error {
	id, err := pathID(c, "task")
	if err != nil {
		return err
	}
	subtasks, err := h.service.ListSubtasks(c.UserContext(), id)
	if err != nil {
		return err
	}
	items := make([]dto.SubtaskResponse, 0, len(subtasks))
	for i := range subtasks {
		items = append(items, subtaskResponse(&subtasks[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetSubtask GET /subtasks/:id.
func (h *SubtasksHandler) GetSubtask(c *fiber.Ctx) error {
	id, err := pathID(c, "subtask")
	if err != nil {
		return err
	}
	st, err := h.service.GetSubtask(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": subtaskResponse(st)})
}

// UpdateSubtask PUT /subtasks/:id.
func (h *SubtasksHandler) UpdateSubtask(c *fiber.Ctx) error {
	id, err := pathID(c, "subtask")
	if err != nil {
		return err
	}
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.SubtaskRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	input, err := subtaskInput(req)
	if err != nil {
		return err
	}
	st, err := h.service.UpdateSubtask(c.UserContext(), user, id, input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": subtaskResponse(st)})
}

// DeleteSubtask DELETE /subtasks/:id.
func (h *SubtasksHandler) DeleteSubtask(c *fiber.Ctx) error {
	id, err := pathID(c, "subtask")
	if err != nil {
		return err
	}
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteSubtask(c.UserContext(), user, id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// CheckDeadline POST /subtasks/onchange/deadline. Always 200; the warning is advisory.
func (h *SubtasksHandler) CheckDeadline(c *fiber.Ctx) error {
	var req dto.SubtaskDeadlineCheckRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	deadline, err := parseDate("deadline", req.Deadline)
	if err != nil {
		return err
	}
	warning, err := h.service.CheckDeadline(c.UserContext(), req.ParentTaskID, deadline)
	if err != nil {
		return err
	}
	var resp *dto.WarningResponse
	if warning != nil {
		resp = &dto.WarningResponse{Title: warning.Title, Message: warning.Message}
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"warning": resp}})
}

// ToggleDone POST /subtasks/onchange/done.
func (h *SubtasksHandler) ToggleDone(c *fiber.Ctx) error {
	var req dto.SubtaskDoneRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	toggle := service.DoneToggle{Subtask: subtaskRow(req.Subtask)}
	if req.Siblings != nil {
		toggle.Siblings = make([]domain.Subtask, 0, len(req.Siblings))
		for _, row := range req.Siblings {
			toggle.Siblings = append(toggle.Siblings, subtaskRow(row))
		}
	}
	outcome, err := h.service.ToggleDone(c.UserContext(), toggle)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.SubtaskDoneResponse{TaskID: outcome.TaskID, Progress: outcome.Progress}})
}

func subtaskInput(req dto.SubtaskRequest) (service.SubtaskInput, error) {
	deadline, err := parseDate("deadline", req.Deadline)
	if err != nil {
		return service.SubtaskInput{}, err
	}
	return service.SubtaskInput{
		ParentTaskID: req.ParentTaskID,
		Name:         req.Name,
		Sequence:     req.Sequence,
		AssigneeID:   req.AssigneeID,
		IsDone:       req.IsDone,
		Deadline:     deadline,
		Description:  req.Description,
	}, nil
}

func subtaskRow(row dto.SubtaskRowRequest) domain.Subtask {
	return domain.Subtask{ID: row.ID, ParentTaskID: row.ParentTaskID, IsDone: row.IsDone}
}

func subtaskResponse(st *domain.Subtask) dto.SubtaskResponse {
	return dto.SubtaskResponse{
		ID:             st.ID,
		Name:           st.Name,
		Sequence:       st.Sequence,
		ParentTaskID:   st.ParentTaskID,
		AssigneeID:     st.AssigneeID,
		IsDone:         st.IsDone,
		Deadline:       formatDate(st.Deadline),
		Description:    st.Description,
		ParentDeadline: st.ParentDeadline,
		CreatedAt:      st.CreatedAt,
		UpdatedAt:      st.UpdatedAt,
	}
}
