package services

import (
	"errors"
	"strings"

	"charity-run-backend/internal/config"
	"charity-run-backend/internal/mailer"
	"charity-run-backend/internal/models"
	"charity-run-backend/internal/repositories"
	"charity-run-backend/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Community registrations must bring at least this many runners across the
// whole cart.
const communityMinimum = 10

type RegistrationService struct {
	repo     *repositories.Repository
	cfg      *config.Config
	claimSvc *ClaimService
	mail     mailer.Mailer
}

func NewRegistrationService(repo *repositories.Repository, cfg *config.Config, claimSvc *ClaimService, mail mailer.Mailer) *RegistrationService {
	return &RegistrationService{repo: repo, cfg: cfg, claimSvc: claimSvc, mail: mail}
}

type JerseyCount struct {
	Size  string
	Count int
}

type CartItem struct {
	CategoryID string
	Jerseys    []JerseyCount
}

type SubmitRegistrationRequest struct {
	Name              string
	Email             string
	Phone             string
	Gender            string
	BloodType         string
	MedicalConditions string
	EmergencyContact  string

	RegistrationType string
	GroupName        string
	Items            []CartItem

	ProofOfPayment  string
	ProofSenderName string
	TransactionID   string
}

type SubmitRegistrationResponse struct {
	RegistrationID uuid.UUID       `json:"registration_id"`
	PaymentID      uuid.UUID       `json:"payment_id"`
	TotalAmount    int             `json:"total_amount"`
	QrCodes        []models.QrCode `json:"qr_codes"`
}

// Submit runs the whole cart as one transaction: find-or-create the user,
// create the pending registration, expand cart items into participant rows,
// record early-bird claims for individual participants that got the discount,
// and attach the payment. QR issuance and the acknowledgement email happen
// after the transaction, best-effort.
func (s *RegistrationService) Submit(req SubmitRegistrationRequest) (*SubmitRegistrationResponse, error) {
	if err := s.validateSubmit(&req); err != nil {
		return nil, err
	}

	var result *SubmitRegistrationResponse

	err := s.repo.RegistrationRepo.Transaction(func(tx *gorm.DB) error {
		categoryRepo := s.repo.CategoryRepo.WithTx(tx)
		userRepo := s.repo.UserRepo.WithTx(tx)
		regRepo := s.repo.RegistrationRepo.WithTx(tx)

		// Lock each category row up front; early-bird consumption is
		// check-then-insert and the lock closes the race window.
		categories := make(map[string]*models.RaceCategory)
		categoryTotals := make(map[string]int)
		for _, item := range req.Items {
			if _, ok := categories[item.CategoryID]; !ok {
				cat, err := categoryRepo.GetCategoryByIDForUpdate(item.CategoryID)
				if err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return NewDomainError("race category not found", ErrNotFound, err)
					}
					return NewDomainError("failed to load category", ErrDatabaseError, err)
				}
				categories[item.CategoryID] = cat
			}
			for _, jc := range item.Jerseys {
				categoryTotals[item.CategoryID] += jc.Count
			}
		}

		earlyBirdLeft := make(map[string]int)
		if req.RegistrationType == models.RegistrationIndividual {
			for id, cat := range categories {
				claims, err := categoryRepo.CountEarlyBirdClaims(id)
				if err != nil {
					return NewDomainError("failed to count early-bird claims", ErrDatabaseError, err)
				}
				earlyBirdLeft[id] = EarlyBirdRemaining(cat.EarlyBirdCapacity, claims)
			}
		}

		user, err := s.findOrCreateUser(userRepo, &req)
		if err != nil {
			return err
		}

		registration := &models.Registration{
			ID:               uuid.New(),
			UserID:           user.ID,
			RegistrationType: req.RegistrationType,
			GroupName:        req.GroupName,
			PaymentStatus:    models.PaymentPending,
		}
		if err := regRepo.CreateRegistration(registration); err != nil {
			return NewDomainError("failed to create registration", ErrDatabaseError, err)
		}

		var participants []models.Participant
		var birdClaims []models.EarlyBirdClaim
		totalAmount := 0

		for _, item := range req.Items {
			cat := categories[item.CategoryID]

			if req.RegistrationType == models.RegistrationFamily {
				if cat.BundlePrice == nil {
					return NewDomainError("category does not offer family bundles", ErrInvalidInput, nil)
				}
				// Bundle price is fixed per cart entry, independent of headcount.
				totalAmount += *cat.BundlePrice
			}

			for _, jc := range item.Jerseys {
				jersey, err := categoryRepo.GetJerseyBySize(jc.Size)
				if err != nil {
					return NewDomainError("unknown jersey size: "+jc.Size, ErrInvalidInput, err)
				}

				for i := 0; i < jc.Count; i++ {
					participants = append(participants, models.Participant{
						ID:             uuid.New(),
						RegistrationID: registration.ID,
						CategoryID:     cat.ID,
						JerseyID:       jersey.ID,
					})
					totalAmount += jersey.Price

					switch req.RegistrationType {
					case models.RegistrationIndividual:
						remaining := earlyBirdLeft[item.CategoryID]
						totalAmount += ResolveUnitPrice(cat, req.RegistrationType, categoryTotals[item.CategoryID], remaining)
						if remaining > 0 {
							earlyBirdLeft[item.CategoryID] = remaining - 1
							birdClaims = append(birdClaims, models.EarlyBirdClaim{
								ID:         uuid.New(),
								CategoryID: cat.ID,
							})
						}
					case models.RegistrationCommunity:
						totalAmount += ResolveUnitPrice(cat, req.RegistrationType, categoryTotals[item.CategoryID], 0)
					}
				}
			}
		}

		if err := regRepo.CreateParticipants(participants); err != nil {
			return NewDomainError("failed to create participants", ErrDatabaseError, err)
		}
		if err := categoryRepo.CreateEarlyBirdClaims(birdClaims); err != nil {
			return NewDomainError("failed to record early-bird claims", ErrDatabaseError, err)
		}

		payment := &models.Payment{
			ID:              uuid.New(),
			RegistrationID:  registration.ID,
			TransactionID:   req.TransactionID,
			ProofOfPayment:  req.ProofOfPayment,
			ProofSenderName: req.ProofSenderName,
			Amount:          totalAmount,
			Status:          models.PaymentPending,
		}
		if err := regRepo.CreatePayment(payment); err != nil {
			return NewDomainError("failed to create payment", ErrDatabaseError, err)
		}

		registration.TotalAmount = totalAmount
		if err := regRepo.UpdateRegistrationTotal(registration.ID.String(), totalAmount); err != nil {
			return NewDomainError("failed to update registration total", ErrDatabaseError, err)
		}

		result = &SubmitRegistrationResponse{
			RegistrationID: registration.ID,
			PaymentID:      payment.ID,
			TotalAmount:    totalAmount,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Post-transaction, best-effort: QR issuance and the acknowledgement
	// email must not fail the submission.
	qrCodes, err := s.claimSvc.IssueForRegistration(result.RegistrationID.String())
	if err != nil {
		logger.Errorf("QR issuance failed for registration %s: %v", result.RegistrationID, err)
	} else {
		result.QrCodes = qrCodes
	}

	go func(to, name string, regID string, amount int) {
		if err := s.mail.SendAcknowledgement(to, name, regID, amount); err != nil {
			logger.Warnf("acknowledgement email to %s failed: %v", to, err)
		}
	}(req.Email, req.Name, result.RegistrationID.String(), result.TotalAmount)

	return result, nil
}

func (s *RegistrationService) validateSubmit(req *SubmitRegistrationRequest) error {
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	switch req.RegistrationType {
	case models.RegistrationIndividual, models.RegistrationCommunity, models.RegistrationFamily:
	default:
		return NewDomainError("invalid registration type", ErrInvalidInput, nil)
	}

	if len(req.Items) == 0 {
		return NewDomainError("cart is empty", ErrInvalidInput, nil)
	}

	total := 0
	for _, item := range req.Items {
		if item.CategoryID == "" {
			return NewDomainError("cart item is missing a category", ErrInvalidInput, nil)
		}
		for _, jc := range item.Jerseys {
			if jc.Count <= 0 {
				return NewDomainError("jersey count must be positive", ErrInvalidInput, nil)
			}
			total += jc.Count
		}
	}
	if total == 0 {
		return NewDomainError("cart has no participants", ErrInvalidInput, nil)
	}

	if req.RegistrationType == models.RegistrationCommunity && total < communityMinimum {
		return NewDomainError("community registrations need at least 10 participants", ErrInvalidInput, nil)
	}

	return nil
}

func (s *RegistrationService) findOrCreateUser(userRepo repositories.UserRepository, req *SubmitRegistrationRequest) (*models.User, error) {
	user, err := userRepo.GetUserByEmail(req.Email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NewDomainError("failed to look up user", ErrDatabaseError, err)
	}

	user = &models.User{
		ID:                uuid.New(),
		Name:              req.Name,
		Email:             req.Email,
		Phone:             req.Phone,
		Role:              "user",
		Gender:            req.Gender,
		BloodType:         req.BloodType,
		MedicalConditions: req.MedicalConditions,
		EmergencyContact:  req.EmergencyContact,
	}
	if err := userRepo.CreateUser(user); err != nil {
		// A concurrent submission with the same email wins the insert.
		return nil, NewDomainError("a registration already exists for this email", ErrConflict, err)
	}
	return user, nil
}
