package handlers

import (
	"charity-run-backend/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// ListCategories returns all race categories with their computed early-bird
// availability.
func (h *Handler) ListCategories(c *fiber.Ctx) error {
	categories, err := h.categorySvc.ListCategories()
	if err != nil {
		return serviceError(c, err)
	}
	return utils.Success(c, categories, "Categories retrieved successfully")
}

func (h *Handler) GetCategory(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return utils.Error(c, "Invalid category ID", fiber.StatusBadRequest)
	}

	category, err := h.categorySvc.GetCategory(id)
	if err != nil {
		return serviceError(c, err)
	}
	return utils.Success(c, category, "Category retrieved successfully")
}

func (h *Handler) ListJerseys(c *fiber.Ctx) error {
	jerseys, err := h.categorySvc.ListJerseyOptions()
	if err != nil {
		return serviceError(c, err)
	}
	return utils.Success(c, jerseys, "Jersey options retrieved successfully")
}
