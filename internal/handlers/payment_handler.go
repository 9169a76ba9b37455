package handlers

import (
	"encoding/json"
	"fmt"

	"charity-run-backend/internal/middleware"
	"charity-run-backend/internal/services"
	"charity-run-backend/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type JerseyCountBody struct {
	Size  string `json:"size" validate:"required"`
	Count int    `json:"count" validate:"required,min=1"`
}

type CartItemBody struct {
	CategoryID string            `json:"category_id" validate:"required,uuid"`
	Jerseys    []JerseyCountBody `json:"jerseys" validate:"required,min=1,dive"`
}

type SubmitRegistrationBody struct {
	Name              string `json:"name" validate:"required"`
	Email             string `json:"email" validate:"required,email"`
	Phone             string `json:"phone" validate:"required"`
	Gender            string `json:"gender"`
	BloodType         string `json:"blood_type"`
	MedicalConditions string `json:"medical_conditions"`
	EmergencyContact  string `json:"emergency_contact"`

	RegistrationType string         `json:"registration_type" validate:"required,oneof=individual community family"`
	GroupName        string         `json:"group_name"`
	Items            []CartItemBody `json:"items" validate:"required,min=1,dive"`

	ProofOfPayment  string `json:"proof_of_payment" validate:"required"` // base64 image
	ProofSenderName string `json:"proof_sender_name" validate:"required"`
	TransactionID   string `json:"transaction_id"`
}

type PaymentDecisionRequest struct {
	RegistrationID string `json:"registration_id" validate:"required,uuid"`
	Reason         string `json:"reason"`
}

// SubmitRegistrationBase64 creates user, registration, participants and
// payment from a JSON body carrying the payment proof as base64.
func (h *Handler) SubmitRegistrationBase64(c *fiber.Ctx) error {
	var req SubmitRegistrationBody
	if err := middleware.ValidateBody(&req)(c); err != nil {
		return err
	}

	filename, err := utils.SaveBase64File(req.ProofOfPayment, h.cfg.ProofDir)
	if err != nil {
		return utils.Error(c, "Invalid payment proof image", fiber.StatusBadRequest)
	}

	return h.submit(c, &req, fmt.Sprintf("/proofs/%s", filename))
}

// SubmitRegistrationMultipart is the multipart variant: form fields plus a
// "proof" file part, with cart items as a JSON-encoded "items" field.
func (h *Handler) SubmitRegistrationMultipart(c *fiber.Ctx) error {
	file, err := c.FormFile("proof")
	if err != nil {
		return utils.Error(c, "Payment proof file is required", fiber.StatusBadRequest)
	}
	if file.Size > h.cfg.MaxUploadSize {
		return utils.Error(c, "Payment proof file too large", fiber.StatusRequestEntityTooLarge)
	}
	if err := utils.ValidateImageFile(file); err != nil {
		return utils.Error(c, err.Error(), fiber.StatusBadRequest)
	}

	var items []CartItemBody
	if err := json.Unmarshal([]byte(c.FormValue("items")), &items); err != nil || len(items) == 0 {
		return utils.Error(c, "Invalid cart items", fiber.StatusBadRequest)
	}

	req := SubmitRegistrationBody{
		Name:              c.FormValue("name"),
		Email:             c.FormValue("email"),
		Phone:             c.FormValue("phone"),
		Gender:            c.FormValue("gender"),
		BloodType:         c.FormValue("blood_type"),
		MedicalConditions: c.FormValue("medical_conditions"),
		EmergencyContact:  c.FormValue("emergency_contact"),
		RegistrationType:  c.FormValue("registration_type"),
		GroupName:         c.FormValue("group_name"),
		Items:             items,
		ProofSenderName:   c.FormValue("proof_sender_name"),
		TransactionID:     c.FormValue("transaction_id"),
	}
	if req.Name == "" || req.Email == "" || req.RegistrationType == "" {
		return utils.Error(c, "name, email and registration_type are required", fiber.StatusBadRequest)
	}

	filename := utils.GenerateUniqueFilename(file.Filename)
	if err := utils.SaveUploadedFile(file, h.cfg.ProofDir, filename); err != nil {
		return utils.Error(c, "Failed to store payment proof", fiber.StatusInternalServerError)
	}

	return h.submit(c, &req, fmt.Sprintf("/proofs/%s", filename))
}

func (h *Handler) submit(c *fiber.Ctx, req *SubmitRegistrationBody, proofPath string) error {
	items := make([]services.CartItem, 0, len(req.Items))
	for _, item := range req.Items {
		jerseys := make([]services.JerseyCount, 0, len(item.Jerseys))
		for _, jc := range item.Jerseys {
			jerseys = append(jerseys, services.JerseyCount{Size: jc.Size, Count: jc.Count})
		}
		items = append(items, services.CartItem{CategoryID: item.CategoryID, Jerseys: jerseys})
	}

	result, err := h.regSvc.Submit(services.SubmitRegistrationRequest{
		Name:              req.Name,
		Email:             req.Email,
		Phone:             req.Phone,
		Gender:            req.Gender,
		BloodType:         req.BloodType,
		MedicalConditions: req.MedicalConditions,
		EmergencyContact:  req.EmergencyContact,
		RegistrationType:  req.RegistrationType,
		GroupName:         req.GroupName,
		Items:             items,
		ProofOfPayment:    proofPath,
		ProofSenderName:   req.ProofSenderName,
		TransactionID:     req.TransactionID,
	})
	if err != nil {
		return serviceError(c, err)
	}

	return utils.Success(c, result, "Registration submitted successfully", fiber.StatusCreated)
}

// ConfirmPayment transitions a registration to confirmed, assigns bibs and
// emails the access code plus QR codes.
func (h *Handler) ConfirmPayment(c *fiber.Ctx) error {
	var req PaymentDecisionRequest
	if err := middleware.ValidateBody(&req)(c); err != nil {
		return err
	}

	decision, err := h.paymentSvc.Confirm(req.RegistrationID)
	if err != nil {
		return serviceError(c, err)
	}

	return utils.Success(c, decision, "Payment confirmed")
}

// DeclinePayment transitions a registration to declined and restores
// early-bird capacity.
func (h *Handler) DeclinePayment(c *fiber.Ctx) error {
	var req PaymentDecisionRequest
	if err := middleware.ValidateBody(&req)(c); err != nil {
		return err
	}
	if req.Reason == "" {
		return utils.Error(c, "A decline reason is required", fiber.StatusBadRequest)
	}

	decision, err := h.paymentSvc.Decline(req.RegistrationID, req.Reason)
	if err != nil {
		return serviceError(c, err)
	}

	return utils.Success(c, decision, "Payment declined")
}
