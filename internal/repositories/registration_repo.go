package repositories

import (
	"errors"
	"fmt"

	"charity-run-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type registrationRepo struct {
	db *gorm.DB
}

func NewRegistrationRepository(db *gorm.DB) RegistrationRepository {
	return &registrationRepo{db: db}
}

func (r *registrationRepo) WithTx(tx *gorm.DB) RegistrationRepository {
	return &registrationRepo{db: tx}
}

func (r *registrationRepo) Transaction(txFunc func(tx *gorm.DB) error) error {
	return r.db.Transaction(txFunc)
}

func (r *registrationRepo) CreateRegistration(reg *models.Registration) error {
	return r.db.Create(reg).Error
}

func (r *registrationRepo) GetRegistrationByID(id string) (*models.Registration, error) {
	if id == "" {
		return nil, errors.New("registration ID cannot be empty")
	}

	var reg models.Registration
	if err := r.db.
		Preload("User").
		Preload("Payment").
		Preload("Participants", func(db *gorm.DB) *gorm.DB {
			return db.Order("participants.created_at ASC")
		}).
		Preload("Participants.Category").
		Preload("Participants.Jersey").
		Preload("QrCodes").
		Where("id = ?", id).
		First(&reg).Error; err != nil {
		return nil, err
	}

	return &reg, nil
}

func (r *registrationRepo) ListRegistrations(status string, offset, limit int) ([]models.Registration, int64, error) {
	var regs []models.Registration
	var total int64

	query := r.db.Model(&models.Registration{})
	if status != "" {
		query = query.Where("payment_status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count registrations: %w", err)
	}

	if err := query.
		Preload("User").
		Preload("Payment").
		Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&regs).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list registrations: %w", err)
	}

	return regs, total, nil
}

func (r *registrationRepo) ListRegistrationsByUser(userID string) ([]models.Registration, error) {
	var regs []models.Registration
	if err := r.db.
		Preload("Participants").
		Preload("Participants.Category").
		Preload("QrCodes").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&regs).Error; err != nil {
		return nil, err
	}
	return regs, nil
}

func (r *registrationRepo) UpdateRegistrationStatus(registrationID, status string) error {
	result := r.db.Model(&models.Registration{}).
		Where("id = ?", registrationID).
		Update("payment_status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *registrationRepo) UpdateRegistrationTotal(registrationID string, total int) error {
	result := r.db.Model(&models.Registration{}).
		Where("id = ?", registrationID).
		Update("total_amount", total)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *registrationRepo) CreateParticipants(participants []models.Participant) error {
	if len(participants) == 0 {
		return nil
	}
	return r.db.Create(&participants).Error
}

func (r *registrationRepo) ListParticipantsByRegistration(registrationID string) ([]models.Participant, error) {
	var participants []models.Participant
	if err := r.db.
		Preload("Category").
		Where("registration_id = ?", registrationID).
		Order("created_at ASC, id ASC").
		Find(&participants).Error; err != nil {
		return nil, err
	}
	return participants, nil
}

// ListUnclaimedParticipants returns unclaimed participants within one QR
// scope, ordered by id so implicit claims pick deterministically.
func (r *registrationRepo) ListUnclaimedParticipants(registrationID, categoryID string, limit int) ([]models.Participant, error) {
	var participants []models.Participant
	query := r.db.
		Where("registration_id = ? AND category_id = ? AND pack_claimed = ?", registrationID, categoryID, false).
		Order("id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&participants).Error; err != nil {
		return nil, err
	}
	return participants, nil
}

func (r *registrationRepo) GetParticipantsByIDs(ids []uuid.UUID) ([]models.Participant, error) {
	var participants []models.Participant
	if len(ids) == 0 {
		return participants, nil
	}
	if err := r.db.Where("id IN ?", ids).Order("id ASC").Find(&participants).Error; err != nil {
		return nil, err
	}
	return participants, nil
}

// SetBibNumber writes a bib exactly once; rows that already carry one are
// never touched.
func (r *registrationRepo) SetBibNumber(participantID uuid.UUID, bib string) error {
	result := r.db.Model(&models.Participant{}).
		Where("id = ? AND bib_number IS NULL", participantID).
		Update("bib_number", bib)
	if result.Error != nil {
		return result.Error
	}
	return nil
}

func (r *registrationRepo) MarkParticipantsClaimed(ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	result := r.db.Model(&models.Participant{}).
		Where("id IN ? AND pack_claimed = ?", ids, false).
		Update("pack_claimed", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected != int64(len(ids)) {
		return errors.New("participant already claimed")
	}
	return nil
}

// NextBibSeq bumps the per-prefix counter under a row lock and returns the
// sequence number to use. Must be called inside a transaction.
func (r *registrationRepo) NextBibSeq(prefix string) (int, error) {
	var counter models.BibCounter
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("prefix = ?", prefix).
		First(&counter).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		counter = models.BibCounter{Prefix: prefix, NextSeq: 1}
		if err := r.db.Create(&counter).Error; err != nil {
			return 0, fmt.Errorf("failed to create bib counter: %w", err)
		}
	} else if err != nil {
		return 0, fmt.Errorf("failed to lock bib counter: %w", err)
	}

	seq := counter.NextSeq
	if err := r.db.Model(&models.BibCounter{}).
		Where("prefix = ?", prefix).
		Update("next_seq", seq+1).Error; err != nil {
		return 0, fmt.Errorf("failed to advance bib counter: %w", err)
	}

	return seq, nil
}

func (r *registrationRepo) CreatePayment(payment *models.Payment) error {
	return r.db.Create(payment).Error
}

func (r *registrationRepo) GetPaymentByRegistrationID(registrationID string) (*models.Payment, error) {
	var payment models.Payment
	if err := r.db.Where("registration_id = ?", registrationID).First(&payment).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *registrationRepo) UpdatePaymentStatus(registrationID, status string) error {
	result := r.db.Model(&models.Payment{}).
		Where("registration_id = ?", registrationID).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
