package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/task-service/internal/api/dto"
	"github.com/spec-kit/task-service/internal/domain"
	"github.com/spec-kit/task-service/internal/repository"
	"github.com/spec-kit/task-service/internal/service"
)

// TimesheetHandler manages time log endpoints.
type TimesheetHandler struct {
	service *service.TimesheetService
}

// NewTimesheetHandler constructs handler.
func NewTimesheetHandler(timesheetService *service.TimesheetService) *TimesheetHandler {
	return &TimesheetHandler{service: timesheetService}
}

// CreateLine POST /timesheet-lines.
func (h *TimesheetHandler) CreateLine(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.TimesheetLineRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	input, err := timesheetInput(req)
	if err != nil {
		return err
	}
	line, err := h.service.CreateLine(c.UserContext(), user, input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": timesheetResponse(line)})
}

// ListByTask GET /tasks/:id/timesheet-lines.
func (h *TimesheetHandler) ListByTask(c *fiber.Ctx) error {
	taskID, err := pathID(c, "task")
	if err != nil {
		return err
	}
	limit, offset := pagination(c)
	from, err := parseDate("date_from", c.Query("date_from"))
	if err != nil {
		return err
	}
	to, err := parseDate("date_to", c.Query("date_to"))
	if err != nil {
		return err
	}
	userID, err := optionalIDQuery(c, "user_id")
	if err != nil {
		return err
	}
	lines, err := h.service.ListLines(c.UserContext(), repository.TimesheetFilter{
		TaskID:   &taskID,
		UserID:   userID,
		DateFrom: from,
		DateTo:   to,
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		return err
	}
	items := make([]dto.TimesheetLineResponse, 0, len(lines))
	for i := range lines {
		items = append(items, timesheetResponse(&lines[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetLine GET /timesheet-lines/:id.
func (h *TimesheetHandler) GetLine(c *fiber.Ctx) error {
	id, err := pathID(c, "timesheet line")
	if err != nil {
		return err
	}
	line, err := h.service.GetLine(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": timesheetResponse(line)})
}

// UpdateLine PUT /timesheet-lines/:id.
func (h *TimesheetHandler) UpdateLine(c *fiber.Ctx) error {
	id, err := pathID(c, "timesheet line")
	if err != nil {
		return err
	}
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.TimesheetLineRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	input, err := timesheetInput(req)
	if err != nil {
		return err
	}
	line, err := h.service.UpdateLine(c.UserContext(), user, id, input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": timesheetResponse(line)})
}

// DeleteLine DELETE /timesheet-lines/:id.
func (h *TimesheetHandler) DeleteLine(c *fiber.Ctx) error {
	id, err := pathID(c, "timesheet line")
	if err != nil {
		return err
	}
	if err := h.service.DeleteLine(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// ChooseSubtask POST /timesheet-lines/onchange/subtask.
func (h *TimesheetHandler) ChooseSubtask(c *fiber.Ctx) error {
	var req dto.TimesheetSubtaskChoiceRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	line, err := h.service.ChooseSubtask(c.UserContext(), domain.TimesheetLine{
		TaskID:        req.TaskID,
		SubtaskID:     req.SubtaskID,
		Description:   req.Description,
		DurationHours: req.DurationHours,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": timesheetResponse(line)})
}

func timesheetInput(req dto.TimesheetLineRequest) (service.TimesheetInput, error) {
	date, err := parseDate("date", req.Date)
	if err != nil {
		return service.TimesheetInput{}, err
	}
	return service.TimesheetInput{
		TaskID:        req.TaskID,
		SubtaskID:     req.SubtaskID,
		Description:   req.Description,
		UserID:        req.UserID,
		Date:          date,
		DurationHours: req.DurationHours,
	}, nil
}

func timesheetResponse(line *domain.TimesheetLine) dto.TimesheetLineResponse {
	var date string
	if !line.Date.IsZero() {
		date = line.Date.Format(time.DateOnly)
	}
	return dto.TimesheetLineResponse{
		ID:              line.ID,
		Description:     line.Description,
		TaskID:          line.TaskID,
		SubtaskID:       line.SubtaskID,
		UserID:          line.UserID,
		Date:            date,
		DurationHours:   line.DurationHours,
		DisplayName:     line.DisplayName,
		HoursDisplay:    line.HoursDisplay(),
		UnusualDuration: line.UnusualDuration(),
		CompanyID:       line.CompanyID,
		CreatedAt:       line.CreatedAt,
		UpdatedAt:       line.UpdatedAt,
	}
}
