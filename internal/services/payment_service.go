package services

import (
	"errors"

	"charity-run-backend/internal/config"
	"charity-run-backend/internal/mailer"
	"charity-run-backend/internal/models"
	"charity-run-backend/internal/repositories"
	"charity-run-backend/internal/utils"
	"charity-run-backend/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentService struct {
	repo     *repositories.Repository
	cfg      *config.Config
	claimSvc *ClaimService
	mail     mailer.Mailer
}

func NewPaymentService(repo *repositories.Repository, cfg *config.Config, claimSvc *ClaimService, mail mailer.Mailer) *PaymentService {
	return &PaymentService{repo: repo, cfg: cfg, claimSvc: claimSvc, mail: mail}
}

type PaymentDecision struct {
	RegistrationID string   `json:"registration_id"`
	Status         string   `json:"status"`
	AccessCode     string   `json:"access_code,omitempty"`
	BibNumbers     []string `json:"bib_numbers,omitempty"`
	EmailSent      bool     `json:"email_sent"`
}

// Confirm moves a registration to confirmed: both status rows flip, the user
// gets an access code if they lack one, and every participant without a bib
// receives the next number for its category prefix. Bibs assigned by an
// earlier confirmation survive a decline/re-confirm override untouched.
func (s *PaymentService) Confirm(registrationID string) (*PaymentDecision, error) {
	registration, err := s.loadRegistration(registrationID)
	if err != nil {
		return nil, err
	}
	if registration.PaymentStatus == models.PaymentConfirmed {
		return nil, NewDomainError("registration is already confirmed", ErrInvalidStatus, nil)
	}

	decision := &PaymentDecision{RegistrationID: registrationID, Status: models.PaymentConfirmed}

	err = s.repo.RegistrationRepo.Transaction(func(tx *gorm.DB) error {
		regRepo := s.repo.RegistrationRepo.WithTx(tx)
		userRepo := s.repo.UserRepo.WithTx(tx)

		if err := regRepo.UpdateRegistrationStatus(registrationID, models.PaymentConfirmed); err != nil {
			return NewDomainError("failed to update registration status", ErrDatabaseError, err)
		}
		if err := regRepo.UpdatePaymentStatus(registrationID, models.PaymentConfirmed); err != nil {
			return NewDomainError("failed to update payment status", ErrDatabaseError, err)
		}

		accessCode, err := s.ensureAccessCode(userRepo, &registration.User)
		if err != nil {
			return err
		}
		decision.AccessCode = accessCode

		bibs, err := s.assignBibs(regRepo, registration.Participants)
		if err != nil {
			return err
		}
		decision.BibNumbers = bibs

		return nil
	})
	if err != nil {
		return nil, err
	}

	// Notification is best-effort: the state transition stands even if the
	// mail transport is down.
	decision.EmailSent = s.sendConfirmationEmail(registration, decision.AccessCode)

	return decision, nil
}

// Decline moves a registration to declined and restores early-bird capacity:
// for each category the most recent claim rows are deleted, capped at the
// number of individual participants this registration holds there. Community
// and family registrations never consumed slots, so nothing is restored.
func (s *PaymentService) Decline(registrationID, reason string) (*PaymentDecision, error) {
	registration, err := s.loadRegistration(registrationID)
	if err != nil {
		return nil, err
	}
	if registration.PaymentStatus == models.PaymentDeclined {
		return nil, NewDomainError("registration is already declined", ErrInvalidStatus, nil)
	}

	err = s.repo.RegistrationRepo.Transaction(func(tx *gorm.DB) error {
		regRepo := s.repo.RegistrationRepo.WithTx(tx)
		categoryRepo := s.repo.CategoryRepo.WithTx(tx)

		if err := regRepo.UpdateRegistrationStatus(registrationID, models.PaymentDeclined); err != nil {
			return NewDomainError("failed to update registration status", ErrDatabaseError, err)
		}
		if err := regRepo.UpdatePaymentStatus(registrationID, models.PaymentDeclined); err != nil {
			return NewDomainError("failed to update payment status", ErrDatabaseError, err)
		}

		if registration.RegistrationType == models.RegistrationIndividual {
			counts := make(map[uuid.UUID]int)
			for _, p := range registration.Participants {
				counts[p.CategoryID]++
			}
			for categoryID, count := range counts {
				if _, err := categoryRepo.DeleteLatestEarlyBirdClaims(categoryID.String(), count); err != nil {
					return NewDomainError("failed to restore early-bird capacity", ErrDatabaseError, err)
				}
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	emailSent := true
	if err := s.mail.SendDecline(registration.User.Email, registration.User.Name, reason); err != nil {
		logger.Errorf("decline email for registration %s failed: %v", registrationID, err)
		emailSent = false
	}

	return &PaymentDecision{
		RegistrationID: registrationID,
		Status:         models.PaymentDeclined,
		EmailSent:      emailSent,
	}, nil
}

func (s *PaymentService) loadRegistration(registrationID string) (*models.Registration, error) {
	if registrationID == "" {
		return nil, NewDomainError("registration ID is required", ErrInvalidInput, nil)
	}

	registration, err := s.repo.RegistrationRepo.GetRegistrationByID(registrationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewDomainError("registration not found", ErrNotFound, err)
		}
		return nil, NewDomainError("failed to load registration", ErrDatabaseError, err)
	}
	return registration, nil
}

// ensureAccessCode lazily generates the runner's bearer credential on first
// confirmation.
func (s *PaymentService) ensureAccessCode(userRepo repositories.UserRepository, user *models.User) (string, error) {
	if user.AccessCode != nil && *user.AccessCode != "" {
		return *user.AccessCode, nil
	}

	code, err := utils.GenerateAccessCode(8)
	if err != nil {
		return "", NewDomainError("failed to generate access code", ErrDatabaseError, err)
	}

	user.AccessCode = &code
	if err := userRepo.UpdateUser(user); err != nil {
		return "", NewDomainError("failed to store access code", ErrDatabaseError, err)
	}
	return code, nil
}

func (s *PaymentService) assignBibs(regRepo repositories.RegistrationRepository, participants []models.Participant) ([]string, error) {
	bibs := make([]string, 0, len(participants))
	for _, p := range participants {
		if p.BibNumber != nil {
			bibs = append(bibs, *p.BibNumber)
			continue
		}

		prefix := BibPrefix(p.Category.Name)
		seq, err := regRepo.NextBibSeq(prefix)
		if err != nil {
			return nil, NewDomainError("failed to allocate bib number", ErrDatabaseError, err)
		}

		bib := FormatBib(prefix, seq)
		if err := regRepo.SetBibNumber(p.ID, bib); err != nil {
			return nil, NewDomainError("failed to assign bib number", ErrDatabaseError, err)
		}
		bibs = append(bibs, bib)
	}
	return bibs, nil
}

func (s *PaymentService) sendConfirmationEmail(registration *models.Registration, accessCode string) bool {
	qrCodes, err := s.repo.ClaimRepo.ListQrCodesByRegistration(registration.ID.String())
	if err != nil {
		logger.Errorf("failed to load QR codes for confirmation email: %v", err)
		return false
	}

	inlines := make([]mailer.QrInline, 0, len(qrCodes))
	for _, qr := range qrCodes {
		png, err := utils.EncodeQRCodePNG(s.claimSvc.ClaimURL(qr.QrCodeData))
		if err != nil {
			logger.Warnf("failed to render QR for email: %v", err)
			continue
		}
		inlines = append(inlines, mailer.QrInline{
			CategoryName: qr.Category.Name,
			ClaimURL:     s.claimSvc.ClaimURL(qr.QrCodeData),
			PNG:          png,
		})
	}

	if err := s.mail.SendConfirmation(registration.User.Email, registration.User.Name, accessCode, inlines); err != nil {
		logger.Errorf("confirmation email for registration %s failed: %v", registration.ID, err)
		return false
	}
	return true
}
