package services

import (
	"time"

	"charity-run-backend/internal/models"
)

// RegistrationSummary is the typed admin listing row. Pending rows carry the
// proof reference for review; confirmed rows carry the claim progress.
type RegistrationSummary struct {
	ID               string    `json:"id"`
	UserName         string    `json:"user_name"`
	Email            string    `json:"email"`
	RegistrationType string    `json:"registration_type"`
	GroupName        string    `json:"group_name,omitempty"`
	TotalAmount      int       `json:"total_amount"`
	PaymentStatus    string    `json:"payment_status"`
	ProofOfPayment   string    `json:"proof_of_payment,omitempty"`
	ProofSenderName  string    `json:"proof_sender_name,omitempty"`
	SubmittedAt      time.Time `json:"submitted_at"`
}

func (s *RegistrationService) ListRegistrations(status string, page, pageSize int) ([]RegistrationSummary, int64, int, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	switch status {
	case "", models.PaymentPending, models.PaymentConfirmed, models.PaymentDeclined:
	default:
		return nil, 0, 0, NewDomainError("invalid status filter", ErrInvalidInput, nil)
	}

	offset := (page - 1) * pageSize
	registrations, total, err := s.repo.RegistrationRepo.ListRegistrations(status, offset, pageSize)
	if err != nil {
		return nil, 0, 0, NewDomainError("failed to list registrations", ErrDatabaseError, err)
	}

	summaries := make([]RegistrationSummary, 0, len(registrations))
	for _, reg := range registrations {
		summary := RegistrationSummary{
			ID:               reg.ID.String(),
			UserName:         reg.User.Name,
			Email:            reg.User.Email,
			RegistrationType: reg.RegistrationType,
			GroupName:        reg.GroupName,
			TotalAmount:      reg.TotalAmount,
			PaymentStatus:    reg.PaymentStatus,
			SubmittedAt:      reg.CreatedAt,
		}
		if reg.Payment != nil && reg.PaymentStatus == models.PaymentPending {
			summary.ProofOfPayment = reg.Payment.ProofOfPayment
			summary.ProofSenderName = reg.Payment.ProofSenderName
		}
		summaries = append(summaries, summary)
	}

	totalPages := (int(total) + pageSize - 1) / pageSize
	return summaries, total, totalPages, nil
}

func (s *RegistrationService) GetRegistration(id string) (*models.Registration, error) {
	registration, err := s.repo.RegistrationRepo.GetRegistrationByID(id)
	if err != nil {
		return nil, NewDomainError("registration not found", ErrNotFound, err)
	}
	return registration, nil
}
