package services

import (
	"errors"
	"fmt"

	"charity-run-backend/internal/config"
	"charity-run-backend/internal/models"
	"charity-run-backend/internal/repositories"
	"charity-run-backend/internal/utils"
	"charity-run-backend/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ClaimService struct {
	repo *repositories.Repository
	cfg  *config.Config
}

func NewClaimService(repo *repositories.Repository, cfg *config.Config) *ClaimService {
	return &ClaimService{repo: repo, cfg: cfg}
}

// IssueForRegistration creates one QR code per distinct category within the
// registration, budgeted with the participant count for that category. Pairs
// that already hold a code are skipped, so re-issuance cannot duplicate rows.
func (s *ClaimService) IssueForRegistration(registrationID string) ([]models.QrCode, error) {
	participants, err := s.repo.RegistrationRepo.ListParticipantsByRegistration(registrationID)
	if err != nil {
		return nil, NewDomainError("failed to load participants", ErrDatabaseError, err)
	}
	if len(participants) == 0 {
		return nil, NewDomainError("registration has no participants", ErrNotFound, nil)
	}

	regID, err := uuid.Parse(registrationID)
	if err != nil {
		return nil, NewDomainError("invalid registration ID", ErrInvalidInput, err)
	}

	counts := make(map[uuid.UUID]int)
	order := make([]uuid.UUID, 0)
	for _, p := range participants {
		if _, seen := counts[p.CategoryID]; !seen {
			order = append(order, p.CategoryID)
		}
		counts[p.CategoryID]++
	}

	issued := make([]models.QrCode, 0, len(order))
	for _, categoryID := range order {
		existing, err := s.repo.ClaimRepo.GetQrCodeByRegistrationAndCategory(regID, categoryID)
		if err == nil {
			issued = append(issued, *existing)
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewDomainError("failed to check existing QR code", ErrDatabaseError, err)
		}

		token := utils.GenerateClaimToken()
		qr := &models.QrCode{
			ID:             uuid.New(),
			RegistrationID: regID,
			CategoryID:     categoryID,
			QrCodeData:     token,
			TotalPacks:     counts[categoryID],
			MaxScans:       counts[categoryID],
			ScansRemaining: counts[categoryID],
		}

		// The rendered PNG is a convenience; the token is the source of truth.
		if filename, err := utils.GenerateQRCodeImage(s.ClaimURL(token), s.cfg.QRDir); err != nil {
			logger.Warnf("QR image render failed for %s: %v", token, err)
		} else {
			qr.ImagePath = fmt.Sprintf("/qrcodes/%s", filename)
		}

		if err := s.repo.ClaimRepo.CreateQrCode(qr); err != nil {
			return nil, NewDomainError("failed to create QR code", ErrDatabaseError, err)
		}
		issued = append(issued, *qr)
	}

	return issued, nil
}

// ClaimURL is the public claim-UI address carried inside the QR image.
func (s *ClaimService) ClaimURL(token string) string {
	return fmt.Sprintf("%s/claim/%s", s.cfg.BaseURL, token)
}

type QrView struct {
	QrCode       *models.QrCode       `json:"qr_code"`
	Registration *models.Registration `json:"registration"`
	Participants []models.Participant `json:"participants"`
}

// ResolveQr returns the QR code plus its registration and in-scope
// participants for claim-UI rendering.
func (s *ClaimService) ResolveQr(token string) (*QrView, error) {
	if token == "" {
		return nil, NewDomainError("QR token is required", ErrInvalidInput, nil)
	}

	qr, err := s.repo.ClaimRepo.GetQrCodeByData(token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewDomainError("QR code not found", ErrNotFound, err)
		}
		return nil, NewDomainError("failed to load QR code", ErrDatabaseError, err)
	}

	registration, err := s.repo.RegistrationRepo.GetRegistrationByID(qr.RegistrationID.String())
	if err != nil {
		return nil, NewDomainError("failed to load registration", ErrDatabaseError, err)
	}

	inScope := make([]models.Participant, 0)
	for _, p := range registration.Participants {
		if p.CategoryID == qr.CategoryID {
			inScope = append(inScope, p)
		}
	}

	return &QrView{QrCode: qr, Registration: registration, Participants: inScope}, nil
}

type ClaimRequest struct {
	QrCodeData        string
	ParticipantIDs    []string
	PacksClaimedCount int
	ClaimedBy         string
	ClaimType         string // self|staff
	Password          string
}

type ClaimResult struct {
	ClaimID        uuid.UUID   `json:"claim_id"`
	ParticipantIDs []uuid.UUID `json:"participant_ids"`
	PacksClaimed   int         `json:"packs_claimed"`
	ScansRemaining int         `json:"scans_remaining"`
}

// Claim validates and executes one race-pack claim. The header, details,
// participant flags and budget decrement commit as a single transaction.
func (s *ClaimService) Claim(req ClaimRequest) (*ClaimResult, error) {
	if err := s.authorize(req.ClaimType, req.Password); err != nil {
		return nil, err
	}
	if req.ClaimedBy == "" {
		return nil, NewDomainError("claimed_by is required", ErrInvalidInput, nil)
	}

	qr, err := s.repo.ClaimRepo.GetQrCodeByData(req.QrCodeData)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewDomainError("QR code not found", ErrNotFound, err)
		}
		return nil, NewDomainError("failed to load QR code", ErrDatabaseError, err)
	}

	var result *ClaimResult

	err = s.repo.ClaimRepo.Transaction(func(tx *gorm.DB) error {
		claimRepo := s.repo.ClaimRepo.WithTx(tx)
		regRepo := s.repo.RegistrationRepo.WithTx(tx)

		targets, err := s.selectParticipants(claimRepo, regRepo, qr, &req)
		if err != nil {
			return err
		}

		if len(targets) > qr.ScansRemaining {
			return NewDomainError("claim exceeds remaining scans", ErrBudgetExceeded, nil)
		}

		claim := &models.RacePackClaim{
			ID:                uuid.New(),
			QrCodeID:          qr.ID,
			ClaimedBy:         req.ClaimedBy,
			ClaimType:         req.ClaimType,
			PacksClaimedCount: len(targets),
		}
		if err := claimRepo.CreateRacePackClaim(claim); err != nil {
			return NewDomainError("failed to create claim", ErrDatabaseError, err)
		}

		details := make([]models.ClaimDetail, 0, len(targets))
		ids := make([]uuid.UUID, 0, len(targets))
		for _, p := range targets {
			details = append(details, models.ClaimDetail{
				ID:              uuid.New(),
				RacePackClaimID: claim.ID,
				ParticipantID:   p.ID,
			})
			ids = append(ids, p.ID)
		}
		if err := claimRepo.CreateClaimDetails(details); err != nil {
			return NewDomainError("participant already claimed", ErrAlreadyClaimed, err)
		}

		if err := regRepo.MarkParticipantsClaimed(ids); err != nil {
			return NewDomainError("participant already claimed", ErrAlreadyClaimed, err)
		}

		if err := claimRepo.DecrementScansRemaining(qr.ID, len(ids)); err != nil {
			return NewDomainError("claim exceeds remaining scans", ErrBudgetExceeded, err)
		}

		result = &ClaimResult{
			ClaimID:        claim.ID,
			ParticipantIDs: ids,
			PacksClaimed:   len(ids),
			ScansRemaining: qr.ScansRemaining - len(ids),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (s *ClaimService) authorize(claimType, password string) error {
	var want string
	switch claimType {
	case "self":
		want = s.cfg.ClaimSelfPassword
	case "staff":
		want = s.cfg.ClaimStaffPassword
	default:
		return NewDomainError("invalid claim type", ErrInvalidInput, nil)
	}

	if password == "" || password != want {
		return NewDomainError("invalid claim password", ErrUnauthorized, nil)
	}
	return nil
}

// selectParticipants resolves the claim targets: either the explicit ID list,
// validated against the QR scope, or the first N unclaimed participants in id
// order.
func (s *ClaimService) selectParticipants(
	claimRepo repositories.ClaimRepository,
	regRepo repositories.RegistrationRepository,
	qr *models.QrCode,
	req *ClaimRequest,
) ([]models.Participant, error) {
	if len(req.ParticipantIDs) > 0 {
		ids := make([]uuid.UUID, 0, len(req.ParticipantIDs))
		for _, raw := range req.ParticipantIDs {
			id, err := uuid.Parse(raw)
			if err != nil {
				return nil, NewDomainError("invalid participant ID: "+raw, ErrInvalidInput, err)
			}
			ids = append(ids, id)
		}

		participants, err := regRepo.GetParticipantsByIDs(ids)
		if err != nil {
			return nil, NewDomainError("failed to load participants", ErrDatabaseError, err)
		}
		if len(participants) != len(ids) {
			return nil, NewDomainError("one or more participants not found", ErrNotFound, nil)
		}

		for _, p := range participants {
			if p.RegistrationID != qr.RegistrationID || p.CategoryID != qr.CategoryID {
				return nil, NewDomainError("participant does not belong to this QR code", ErrInvalidInput, nil)
			}
			if p.PackClaimed {
				return nil, NewDomainError("participant already claimed a race pack", ErrAlreadyClaimed, nil)
			}
		}

		claimed, err := claimRepo.CountClaimedParticipants(ids)
		if err != nil {
			return nil, NewDomainError("failed to check claim history", ErrDatabaseError, err)
		}
		if claimed > 0 {
			return nil, NewDomainError("participant already claimed a race pack", ErrAlreadyClaimed, nil)
		}

		return participants, nil
	}

	if req.PacksClaimedCount <= 0 {
		return nil, NewDomainError("packs_claimed_count must be positive", ErrInvalidInput, nil)
	}

	unclaimed, err := regRepo.ListUnclaimedParticipants(qr.RegistrationID.String(), qr.CategoryID.String(), req.PacksClaimedCount)
	if err != nil {
		return nil, NewDomainError("failed to load unclaimed participants", ErrDatabaseError, err)
	}
	if len(unclaimed) < req.PacksClaimedCount {
		return nil, NewDomainError("not enough unclaimed participants", ErrInvalidInput, nil)
	}

	return unclaimed, nil
}
