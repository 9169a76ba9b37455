package handlers

import (
	"charity-run-backend/internal/middleware"
	"charity-run-backend/internal/services"
	"charity-run-backend/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type ClaimRequestBody struct {
	QrCodeData        string   `json:"qr_code_data" validate:"required"`
	ParticipantIDs    []string `json:"participant_ids"`
	PacksClaimedCount int      `json:"packs_claimed_count"`
	ClaimedBy         string   `json:"claimed_by" validate:"required"`
	ClaimType         string   `json:"claim_type" validate:"required,oneof=self staff"`
	Password          string   `json:"password" validate:"required"`
}

// GetQrView resolves a QR token for the claim UI.
func (h *Handler) GetQrView(c *fiber.Ctx) error {
	token := c.Query("qr")
	if token == "" {
		return utils.Error(c, "qr query parameter is required", fiber.StatusBadRequest)
	}

	view, err := h.claimSvc.ResolveQr(token)
	if err != nil {
		return serviceError(c, err)
	}

	return utils.Success(c, view, "QR code resolved")
}

// ClaimRacePack validates and executes a race-pack claim.
func (h *Handler) ClaimRacePack(c *fiber.Ctx) error {
	var req ClaimRequestBody
	if err := middleware.ValidateBody(&req)(c); err != nil {
		return err
	}

	result, err := h.claimSvc.Claim(services.ClaimRequest{
		QrCodeData:        req.QrCodeData,
		ParticipantIDs:    req.ParticipantIDs,
		PacksClaimedCount: req.PacksClaimedCount,
		ClaimedBy:         req.ClaimedBy,
		ClaimType:         req.ClaimType,
		Password:          req.Password,
	})
	if err != nil {
		return serviceError(c, err)
	}

	return utils.Success(c, result, "Race pack claimed")
}
