package handlers

import (
	"charity-run-backend/internal/middleware"
	"charity-run-backend/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AccessCodeRequest struct {
	AccessCode string `json:"access_code" validate:"required"`
}

// Login authenticates an admin and returns a JWT.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := middleware.ValidateBody(&req)(c); err != nil {
		return err
	}

	result, err := h.authSvc.Authenticate(req.Email, req.Password)
	if err != nil {
		return serviceError(c, err)
	}

	return utils.Success(c, result, "Login successful")
}

// AccessCodeLogin is the runner self-service entry point: access code in,
// profile plus registrations out.
func (h *Handler) AccessCodeLogin(c *fiber.Ctx) error {
	var req AccessCodeRequest
	if err := middleware.ValidateBody(&req)(c); err != nil {
		return err
	}

	result, err := h.authSvc.AccessCodeLogin(req.AccessCode)
	if err != nil {
		return serviceError(c, err)
	}

	return utils.Success(c, result, "Access code accepted")
}
