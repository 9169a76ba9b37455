package repositories

import (
	"errors"

	"charity-run-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type claimRepo struct {
	db *gorm.DB
}

func NewClaimRepository(db *gorm.DB) ClaimRepository {
	return &claimRepo{db: db}
}

func (r *claimRepo) WithTx(tx *gorm.DB) ClaimRepository {
	return &claimRepo{db: tx}
}

func (r *claimRepo) Transaction(txFunc func(tx *gorm.DB) error) error {
	return r.db.Transaction(txFunc)
}

func (r *claimRepo) CreateQrCode(qr *models.QrCode) error {
	return r.db.Create(qr).Error
}

func (r *claimRepo) GetQrCodeByData(token string) (*models.QrCode, error) {
	var qr models.QrCode
	if err := r.db.
		Preload("Category").
		Where("qr_code_data = ?", token).
		First(&qr).Error; err != nil {
		return nil, err
	}
	return &qr, nil
}

func (r *claimRepo) GetQrCodeByRegistrationAndCategory(registrationID, categoryID uuid.UUID) (*models.QrCode, error) {
	var qr models.QrCode
	if err := r.db.
		Where("registration_id = ? AND category_id = ?", registrationID, categoryID).
		First(&qr).Error; err != nil {
		return nil, err
	}
	return &qr, nil
}

func (r *claimRepo) ListQrCodesByRegistration(registrationID string) ([]models.QrCode, error) {
	var qrs []models.QrCode
	if err := r.db.
		Preload("Category").
		Where("registration_id = ?", registrationID).
		Find(&qrs).Error; err != nil {
		return nil, err
	}
	return qrs, nil
}

// DecrementScansRemaining is guarded so the budget can never go negative,
// even under concurrent claims against the same code.
func (r *claimRepo) DecrementScansRemaining(qrCodeID uuid.UUID, count int) error {
	result := r.db.Model(&models.QrCode{}).
		Where("id = ? AND scans_remaining >= ?", qrCodeID, count).
		Update("scans_remaining", gorm.Expr("scans_remaining - ?", count))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.New("insufficient scans remaining")
	}
	return nil
}

func (r *claimRepo) CreateRacePackClaim(claim *models.RacePackClaim) error {
	return r.db.Create(claim).Error
}

func (r *claimRepo) CreateClaimDetails(details []models.ClaimDetail) error {
	if len(details) == 0 {
		return nil
	}
	return r.db.Create(&details).Error
}

func (r *claimRepo) CountClaimedParticipants(participantIDs []uuid.UUID) (int64, error) {
	if len(participantIDs) == 0 {
		return 0, nil
	}
	var count int64
	if err := r.db.Model(&models.ClaimDetail{}).
		Where("participant_id IN ?", participantIDs).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
