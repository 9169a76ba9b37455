package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/google/uuid"
)

// Registration types
const (
	RegistrationIndividual = "individual"
	RegistrationCommunity  = "community"
	RegistrationFamily     = "family"
)

// Payment statuses
const (
	PaymentPending   = "pending"
	PaymentConfirmed = "confirmed"
	PaymentDeclined  = "declined"
)

// RaceCategory holds the full price table for one race distance.
// Tier ranges are inclusive on both ends; a nil max means unbounded.
type RaceCategory struct {
	ID                uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name              string    `gorm:"uniqueIndex;not null" json:"name"`
	BasePrice         int       `gorm:"not null" json:"base_price"`
	EarlyBirdPrice    int       `gorm:"not null" json:"early_bird_price"`
	EarlyBirdCapacity int       `gorm:"not null;default:0" json:"early_bird_capacity"`
	Tier1Price        int       `json:"tier1_price"`
	Tier1Min          int       `json:"tier1_min"`
	Tier1Max          *int      `json:"tier1_max"`
	Tier2Price        int       `json:"tier2_price"`
	Tier2Min          int       `json:"tier2_min"`
	Tier2Max          *int      `json:"tier2_max"` // nil = unbounded
	Tier3Price        int       `json:"tier3_price"`
	Tier3Min          int       `json:"tier3_min"`
	BundlePrice       *int      `json:"bundle_price"` // family bundles, nil = not offered
	BundleSize        *int      `json:"bundle_size"`
	ImageURL          string    `json:"image_url"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

type JerseyOption struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Size        string    `gorm:"uniqueIndex;not null" json:"size"`
	Type        string    `gorm:"type:varchar(10);not null;default:'adult'" json:"type"` // adult|kids
	Price       int       `gorm:"not null;default:0" json:"price"`                       // extra-size surcharge
	IsExtraSize bool      `gorm:"default:false" json:"is_extra_size"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// User is created on first registration submission. Non-admin users have no
// password; the access code, generated at payment confirmation, is their only
// credential.
type User struct {
	ID                uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name              string     `gorm:"not null" json:"name"`
	Email             string     `gorm:"uniqueIndex;not null" json:"email"`
	Phone             string     `json:"phone"`
	Password          string     `json:"-"` // admin accounts only
	AccessCode        *string    `gorm:"uniqueIndex" json:"access_code,omitempty"`
	Role              string     `gorm:"type:varchar(20);not null;default:'user'" json:"role"` // user|admin
	Gender            string     `json:"gender"`
	BirthDate         *time.Time `json:"birth_date"`
	BloodType         string     `json:"blood_type"`
	MedicalConditions string     `json:"medical_conditions"`
	EmergencyContact  string     `json:"emergency_contact"`
	IDCardPhoto       string     `json:"id_card_photo"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`

	// Relations
	Registrations []Registration `gorm:"foreignKey:UserID" json:"registrations,omitempty"`
}

type Registration struct {
	ID               uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID           uuid.UUID      `gorm:"type:uuid;index;not null" json:"user_id"`
	RegistrationType string         `gorm:"type:varchar(20);not null" json:"registration_type"` // individual|community|family
	GroupName        string         `json:"group_name"`
	TotalAmount      int            `gorm:"not null" json:"total_amount"`
	PaymentStatus    string         `gorm:"type:varchar(20);not null;default:'pending'" json:"payment_status"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	User         User          `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Participants []Participant `gorm:"foreignKey:RegistrationID" json:"participants,omitempty"`
	Payment      *Payment      `gorm:"foreignKey:RegistrationID" json:"payment,omitempty"`
	QrCodes      []QrCode      `gorm:"foreignKey:RegistrationID" json:"qr_codes,omitempty"`
}

// Participant is one runner slot within a registration. BibNumber stays nil
// until payment confirmation and is never reassigned once set.
type Participant struct {
	ID             uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	RegistrationID uuid.UUID `gorm:"type:uuid;index;not null" json:"registration_id"`
	CategoryID     uuid.UUID `gorm:"type:uuid;index;not null" json:"category_id"`
	JerseyID       uuid.UUID `gorm:"type:uuid;index;not null" json:"jersey_id"`
	BibNumber      *string   `gorm:"uniqueIndex" json:"bib_number"`
	PackClaimed    bool      `gorm:"default:false" json:"pack_claimed"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	// Relations
	Category RaceCategory `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Jersey   JerseyOption `gorm:"foreignKey:JerseyID" json:"jersey,omitempty"`
}

// Payment is the manual transfer proof attached to a registration. Exactly one
// per registration, enforced by the unique index on RegistrationID.
type Payment struct {
	ID              uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	RegistrationID  uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"registration_id"`
	TransactionID   string    `json:"transaction_id"`
	ProofOfPayment  string    `json:"proof_of_payment"`
	ProofSenderName string    `json:"proof_sender_name"`
	Amount          int       `gorm:"not null" json:"amount"`
	Status          string    `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// QrCode carries the race-pack budget for one (registration, category) pair.
// Invariant: 0 <= ScansRemaining <= MaxScans.
type QrCode struct {
	ID             uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	RegistrationID uuid.UUID `gorm:"type:uuid;index;not null" json:"registration_id"`
	CategoryID     uuid.UUID `gorm:"type:uuid;index;not null" json:"category_id"`
	QrCodeData     string    `gorm:"uniqueIndex;not null" json:"qr_code_data"`
	TotalPacks     int       `gorm:"not null" json:"total_packs"`
	MaxScans       int       `gorm:"not null" json:"max_scans"`
	ScansRemaining int       `gorm:"not null" json:"scans_remaining"`
	ImagePath      string    `json:"image_path"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	// Relations
	Category RaceCategory `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

// EarlyBirdClaim consumes one early-bird slot by existing. Deleted to restore
// capacity when a registration is declined.
type EarlyBirdClaim struct {
	ID         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CategoryID uuid.UUID `gorm:"type:uuid;index;not null" json:"category_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// RacePackClaim is the append-only audit header for one claim action.
type RacePackClaim struct {
	ID                uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	QrCodeID          uuid.UUID `gorm:"type:uuid;index;not null" json:"qr_code_id"`
	ClaimedBy         string    `gorm:"not null" json:"claimed_by"`
	ClaimType         string    `gorm:"type:varchar(10);not null" json:"claim_type"` // self|staff
	PacksClaimedCount int       `gorm:"not null" json:"packs_claimed_count"`
	CreatedAt         time.Time `json:"created_at"`

	// Relations
	Details []ClaimDetail `gorm:"foreignKey:RacePackClaimID" json:"details,omitempty"`
}

type ClaimDetail struct {
	ID              uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	RacePackClaimID uuid.UUID `gorm:"type:uuid;index;not null" json:"race_pack_claim_id"`
	ParticipantID   uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"participant_id"`
	CreatedAt       time.Time `json:"created_at"`
}

// BibCounter is the per-prefix sequence source for bib numbers. Rows are
// bumped under SELECT ... FOR UPDATE inside the confirmation transaction so
// concurrent confirmations cannot hand out the same suffix.
type BibCounter struct {
	Prefix  string `gorm:"primaryKey;type:varchar(4)" json:"prefix"`
	NextSeq int    `gorm:"not null;default:1" json:"next_seq"`
}
