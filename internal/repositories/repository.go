package repositories

import (
	"charity-run-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository struct {
	DB               *gorm.DB
	CategoryRepo     CategoryRepository
	UserRepo         UserRepository
	RegistrationRepo RegistrationRepository
	ClaimRepo        ClaimRepository
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		DB:               db,
		CategoryRepo:     NewCategoryRepository(db),
		UserRepo:         NewUserRepository(db),
		RegistrationRepo: NewRegistrationRepository(db),
		ClaimRepo:        NewClaimRepository(db),
	}
}

func AutoMigrate(db *gorm.DB) error {
	// Enable UUID extension
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
		return err
	}

	// Migrate models
	return db.AutoMigrate(
		&models.RaceCategory{},
		&models.JerseyOption{},
		&models.User{},
		&models.Registration{},
		&models.Participant{},
		&models.Payment{},
		&models.QrCode{},
		&models.EarlyBirdClaim{},
		&models.RacePackClaim{},
		&models.ClaimDetail{},
		&models.BibCounter{},
	)
}

// Interface definitions. WithTx returns a copy of the repository bound to the
// given transaction so multi-repo writes can share one atomic unit.

type CategoryRepository interface {
	WithTx(tx *gorm.DB) CategoryRepository
	ListCategories() ([]models.RaceCategory, error)
	GetCategoryByID(id string) (*models.RaceCategory, error)
	GetCategoryByIDForUpdate(id string) (*models.RaceCategory, error)
	ListJerseyOptions() ([]models.JerseyOption, error)
	GetJerseyBySize(size string) (*models.JerseyOption, error)
	CountEarlyBirdClaims(categoryID string) (int64, error)
	CreateEarlyBirdClaims(claims []models.EarlyBirdClaim) error
	DeleteLatestEarlyBirdClaims(categoryID string, count int) (int64, error)
}

type UserRepository interface {
	WithTx(tx *gorm.DB) UserRepository
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	GetUserByAccessCode(code string) (*models.User, error)
	CreateUser(user *models.User) error
	UpdateUser(user *models.User) error
}

type RegistrationRepository interface {
	WithTx(tx *gorm.DB) RegistrationRepository
	Transaction(txFunc func(tx *gorm.DB) error) error
	CreateRegistration(reg *models.Registration) error
	GetRegistrationByID(id string) (*models.Registration, error)
	ListRegistrations(status string, offset, limit int) ([]models.Registration, int64, error)
	ListRegistrationsByUser(userID string) ([]models.Registration, error)
	UpdateRegistrationStatus(registrationID, status string) error
	UpdateRegistrationTotal(registrationID string, total int) error
	CreateParticipants(participants []models.Participant) error
	ListParticipantsByRegistration(registrationID string) ([]models.Participant, error)
	ListUnclaimedParticipants(registrationID, categoryID string, limit int) ([]models.Participant, error)
	GetParticipantsByIDs(ids []uuid.UUID) ([]models.Participant, error)
	SetBibNumber(participantID uuid.UUID, bib string) error
	MarkParticipantsClaimed(ids []uuid.UUID) error
	NextBibSeq(prefix string) (int, error)
	CreatePayment(payment *models.Payment) error
	GetPaymentByRegistrationID(registrationID string) (*models.Payment, error)
	UpdatePaymentStatus(registrationID, status string) error
}

type ClaimRepository interface {
	WithTx(tx *gorm.DB) ClaimRepository
	Transaction(txFunc func(tx *gorm.DB) error) error
	CreateQrCode(qr *models.QrCode) error
	GetQrCodeByData(token string) (*models.QrCode, error)
	GetQrCodeByRegistrationAndCategory(registrationID, categoryID uuid.UUID) (*models.QrCode, error)
	ListQrCodesByRegistration(registrationID string) ([]models.QrCode, error)
	DecrementScansRemaining(qrCodeID uuid.UUID, count int) error
	CreateRacePackClaim(claim *models.RacePackClaim) error
	CreateClaimDetails(details []models.ClaimDetail) error
	CountClaimedParticipants(participantIDs []uuid.UUID) (int64, error)
}
