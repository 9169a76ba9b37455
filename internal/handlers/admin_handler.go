package handlers

import (
	"strconv"

	"charity-run-backend/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// ListRegistrations returns paginated registration summaries for admin
// review, optionally filtered by payment status.
func (h *Handler) ListRegistrations(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	pageSize, _ := strconv.Atoi(c.Query("page_size", "20"))
	status := c.Query("status")

	summaries, total, totalPages, err := h.regSvc.ListRegistrations(status, page, pageSize)
	if err != nil {
		return serviceError(c, err)
	}

	meta := &utils.Meta{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: totalPages,
	}

	return utils.SuccessWithMeta(c, summaries, meta, "Registrations retrieved successfully")
}

func (h *Handler) GetRegistration(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return utils.Error(c, "Invalid registration ID", fiber.StatusBadRequest)
	}

	registration, err := h.regSvc.GetRegistration(id)
	if err != nil {
		return serviceError(c, err)
	}

	return utils.Success(c, registration, "Registration retrieved successfully")
}
