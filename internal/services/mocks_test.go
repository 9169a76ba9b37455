package services

import (
	"errors"
	"sync"

	"charity-run-backend/internal/mailer"
	"charity-run-backend/internal/models"
	"charity-run-backend/internal/repositories"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// In-memory repository fakes. WithTx returns the fake itself and Transaction
// just runs the closure; the services under test only care about the
// repository contracts, not the SQL underneath.

type MockCategoryRepo struct {
	Categories map[string]*models.RaceCategory
	Jerseys    map[string]*models.JerseyOption
	BirdClaims []models.EarlyBirdClaim
}

func NewMockCategoryRepo() *MockCategoryRepo {
	return &MockCategoryRepo{
		Categories: make(map[string]*models.RaceCategory),
		Jerseys:    make(map[string]*models.JerseyOption),
	}
}

func (m *MockCategoryRepo) WithTx(tx *gorm.DB) repositories.CategoryRepository { return m }

func (m *MockCategoryRepo) ListCategories() ([]models.RaceCategory, error) {
	out := make([]models.RaceCategory, 0, len(m.Categories))
	for _, cat := range m.Categories {
		out = append(out, *cat)
	}
	return out, nil
}

func (m *MockCategoryRepo) GetCategoryByID(id string) (*models.RaceCategory, error) {
	cat, ok := m.Categories[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return cat, nil
}

func (m *MockCategoryRepo) GetCategoryByIDForUpdate(id string) (*models.RaceCategory, error) {
	return m.GetCategoryByID(id)
}

func (m *MockCategoryRepo) ListJerseyOptions() ([]models.JerseyOption, error) {
	out := make([]models.JerseyOption, 0, len(m.Jerseys))
	for _, j := range m.Jerseys {
		out = append(out, *j)
	}
	return out, nil
}

func (m *MockCategoryRepo) GetJerseyBySize(size string) (*models.JerseyOption, error) {
	j, ok := m.Jerseys[size]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return j, nil
}

func (m *MockCategoryRepo) CountEarlyBirdClaims(categoryID string) (int64, error) {
	var count int64
	for _, claim := range m.BirdClaims {
		if claim.CategoryID.String() == categoryID {
			count++
		}
	}
	return count, nil
}

func (m *MockCategoryRepo) CreateEarlyBirdClaims(claims []models.EarlyBirdClaim) error {
	m.BirdClaims = append(m.BirdClaims, claims...)
	return nil
}

func (m *MockCategoryRepo) DeleteLatestEarlyBirdClaims(categoryID string, count int) (int64, error) {
	deleted := int64(0)
	for i := len(m.BirdClaims) - 1; i >= 0 && deleted < int64(count); i-- {
		if m.BirdClaims[i].CategoryID.String() == categoryID {
			m.BirdClaims = append(m.BirdClaims[:i], m.BirdClaims[i+1:]...)
			deleted++
		}
	}
	return deleted, nil
}

type MockUserRepo struct {
	Users map[uuid.UUID]*models.User
}

func NewMockUserRepo() *MockUserRepo {
	return &MockUserRepo{Users: make(map[uuid.UUID]*models.User)}
}

func (m *MockUserRepo) WithTx(tx *gorm.DB) repositories.UserRepository { return m }

func (m *MockUserRepo) GetUserByEmail(email string) (*models.User, error) {
	for _, u := range m.Users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockUserRepo) GetUserByID(id string) (*models.User, error) {
	for _, u := range m.Users {
		if u.ID.String() == id {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockUserRepo) GetUserByAccessCode(code string) (*models.User, error) {
	for _, u := range m.Users {
		if u.AccessCode != nil && *u.AccessCode == code {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockUserRepo) CreateUser(user *models.User) error {
	if _, err := m.GetUserByEmail(user.Email); err == nil {
		return errors.New("duplicate key value violates unique constraint")
	}
	m.Users[user.ID] = user
	return nil
}

func (m *MockUserRepo) UpdateUser(user *models.User) error {
	m.Users[user.ID] = user
	return nil
}

type MockRegistrationRepo struct {
	Cats          *MockCategoryRepo
	Users         *MockUserRepo
	Registrations map[uuid.UUID]*models.Registration
	Participants  map[uuid.UUID]*models.Participant
	PartOrder     []uuid.UUID
	Payments      map[uuid.UUID]*models.Payment // keyed by registration ID
	Counters      map[string]int
}

func NewMockRegistrationRepo(cats *MockCategoryRepo, users *MockUserRepo) *MockRegistrationRepo {
	return &MockRegistrationRepo{
		Cats:          cats,
		Users:         users,
		Registrations: make(map[uuid.UUID]*models.Registration),
		Participants:  make(map[uuid.UUID]*models.Participant),
		Payments:      make(map[uuid.UUID]*models.Payment),
		Counters:      make(map[string]int),
	}
}

func (m *MockRegistrationRepo) WithTx(tx *gorm.DB) repositories.RegistrationRepository { return m }

func (m *MockRegistrationRepo) Transaction(txFunc func(tx *gorm.DB) error) error {
	return txFunc(nil)
}

func (m *MockRegistrationRepo) CreateRegistration(reg *models.Registration) error {
	m.Registrations[reg.ID] = reg
	return nil
}

func (m *MockRegistrationRepo) GetRegistrationByID(id string) (*models.Registration, error) {
	regID, err := uuid.Parse(id)
	if err != nil {
		return nil, gorm.ErrRecordNotFound
	}
	reg, ok := m.Registrations[regID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}

	out := *reg
	out.Participants = nil
	for _, pid := range m.PartOrder {
		p := m.Participants[pid]
		if p.RegistrationID != regID {
			continue
		}
		cp := *p
		if cat, ok := m.Cats.Categories[p.CategoryID.String()]; ok {
			cp.Category = *cat
		}
		out.Participants = append(out.Participants, cp)
	}
	if user, ok := m.Users.Users[reg.UserID]; ok {
		out.User = *user
	}
	if payment, ok := m.Payments[regID]; ok {
		cp := *payment
		out.Payment = &cp
	}
	return &out, nil
}

func (m *MockRegistrationRepo) ListRegistrations(status string, offset, limit int) ([]models.Registration, int64, error) {
	var out []models.Registration
	for id := range m.Registrations {
		reg, _ := m.GetRegistrationByID(id.String())
		if status == "" || reg.PaymentStatus == status {
			out = append(out, *reg)
		}
	}
	return out, int64(len(out)), nil
}

func (m *MockRegistrationRepo) ListRegistrationsByUser(userID string) ([]models.Registration, error) {
	var out []models.Registration
	for id, reg := range m.Registrations {
		if reg.UserID.String() == userID {
			full, _ := m.GetRegistrationByID(id.String())
			out = append(out, *full)
		}
	}
	return out, nil
}

func (m *MockRegistrationRepo) UpdateRegistrationStatus(registrationID, status string) error {
	regID, _ := uuid.Parse(registrationID)
	reg, ok := m.Registrations[regID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	reg.PaymentStatus = status
	return nil
}

func (m *MockRegistrationRepo) UpdateRegistrationTotal(registrationID string, total int) error {
	regID, _ := uuid.Parse(registrationID)
	reg, ok := m.Registrations[regID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	reg.TotalAmount = total
	return nil
}

func (m *MockRegistrationRepo) CreateParticipants(participants []models.Participant) error {
	for i := range participants {
		p := participants[i]
		m.Participants[p.ID] = &p
		m.PartOrder = append(m.PartOrder, p.ID)
	}
	return nil
}

func (m *MockRegistrationRepo) ListParticipantsByRegistration(registrationID string) ([]models.Participant, error) {
	var out []models.Participant
	for _, pid := range m.PartOrder {
		p := m.Participants[pid]
		if p.RegistrationID.String() != registrationID {
			continue
		}
		cp := *p
		if cat, ok := m.Cats.Categories[p.CategoryID.String()]; ok {
			cp.Category = *cat
		}
		out = append(out, cp)
	}
	return out, nil
}

func (m *MockRegistrationRepo) ListUnclaimedParticipants(registrationID, categoryID string, limit int) ([]models.Participant, error) {
	var out []models.Participant
	for _, pid := range m.PartOrder {
		p := m.Participants[pid]
		if p.RegistrationID.String() == registrationID &&
			p.CategoryID.String() == categoryID && !p.PackClaimed {
			out = append(out, *p)
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (m *MockRegistrationRepo) GetParticipantsByIDs(ids []uuid.UUID) ([]models.Participant, error) {
	var out []models.Participant
	for _, id := range ids {
		if p, ok := m.Participants[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *MockRegistrationRepo) SetBibNumber(participantID uuid.UUID, bib string) error {
	p, ok := m.Participants[participantID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if p.BibNumber == nil {
		p.BibNumber = &bib
	}
	return nil
}

func (m *MockRegistrationRepo) MarkParticipantsClaimed(ids []uuid.UUID) error {
	for _, id := range ids {
		p, ok := m.Participants[id]
		if !ok || p.PackClaimed {
			return errors.New("participant already claimed")
		}
	}
	for _, id := range ids {
		m.Participants[id].PackClaimed = true
	}
	return nil
}

func (m *MockRegistrationRepo) NextBibSeq(prefix string) (int, error) {
	if m.Counters[prefix] == 0 {
		m.Counters[prefix] = 1
	}
	seq := m.Counters[prefix]
	m.Counters[prefix] = seq + 1
	return seq, nil
}

func (m *MockRegistrationRepo) CreatePayment(payment *models.Payment) error {
	if _, exists := m.Payments[payment.RegistrationID]; exists {
		return errors.New("duplicate key value violates unique constraint")
	}
	m.Payments[payment.RegistrationID] = payment
	return nil
}

func (m *MockRegistrationRepo) GetPaymentByRegistrationID(registrationID string) (*models.Payment, error) {
	regID, _ := uuid.Parse(registrationID)
	payment, ok := m.Payments[regID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return payment, nil
}

func (m *MockRegistrationRepo) UpdatePaymentStatus(registrationID, status string) error {
	payment, err := m.GetPaymentByRegistrationID(registrationID)
	if err != nil {
		return err
	}
	payment.Status = status
	return nil
}

type MockClaimRepo struct {
	QrCodes map[uuid.UUID]*models.QrCode
	ByToken map[string]uuid.UUID
	Claims  []*models.RacePackClaim
	Details map[uuid.UUID]uuid.UUID // participant -> claim
	Cats    *MockCategoryRepo
}

func NewMockClaimRepo(cats *MockCategoryRepo) *MockClaimRepo {
	return &MockClaimRepo{
		QrCodes: make(map[uuid.UUID]*models.QrCode),
		ByToken: make(map[string]uuid.UUID),
		Details: make(map[uuid.UUID]uuid.UUID),
		Cats:    cats,
	}
}

func (m *MockClaimRepo) WithTx(tx *gorm.DB) repositories.ClaimRepository { return m }

func (m *MockClaimRepo) Transaction(txFunc func(tx *gorm.DB) error) error {
	return txFunc(nil)
}

func (m *MockClaimRepo) CreateQrCode(qr *models.QrCode) error {
	if _, exists := m.ByToken[qr.QrCodeData]; exists {
		return errors.New("duplicate key value violates unique constraint")
	}
	m.QrCodes[qr.ID] = qr
	m.ByToken[qr.QrCodeData] = qr.ID
	return nil
}

func (m *MockClaimRepo) GetQrCodeByData(token string) (*models.QrCode, error) {
	id, ok := m.ByToken[token]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	qr := *m.QrCodes[id]
	if cat, ok := m.Cats.Categories[qr.CategoryID.String()]; ok {
		qr.Category = *cat
	}
	return &qr, nil
}

func (m *MockClaimRepo) GetQrCodeByRegistrationAndCategory(registrationID, categoryID uuid.UUID) (*models.QrCode, error) {
	for _, qr := range m.QrCodes {
		if qr.RegistrationID == registrationID && qr.CategoryID == categoryID {
			return qr, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockClaimRepo) ListQrCodesByRegistration(registrationID string) ([]models.QrCode, error) {
	var out []models.QrCode
	for _, qr := range m.QrCodes {
		if qr.RegistrationID.String() == registrationID {
			cp := *qr
			if cat, ok := m.Cats.Categories[qr.CategoryID.String()]; ok {
				cp.Category = *cat
			}
			out = append(out, cp)
		}
	}
	return out, nil
}

func (m *MockClaimRepo) DecrementScansRemaining(qrCodeID uuid.UUID, count int) error {
	qr, ok := m.QrCodes[qrCodeID]
	if !ok || qr.ScansRemaining < count {
		return errors.New("insufficient scans remaining")
	}
	qr.ScansRemaining -= count
	return nil
}

func (m *MockClaimRepo) CreateRacePackClaim(claim *models.RacePackClaim) error {
	m.Claims = append(m.Claims, claim)
	return nil
}

func (m *MockClaimRepo) CreateClaimDetails(details []models.ClaimDetail) error {
	for _, d := range details {
		if _, exists := m.Details[d.ParticipantID]; exists {
			return errors.New("duplicate key value violates unique constraint")
		}
	}
	for _, d := range details {
		m.Details[d.ParticipantID] = d.RacePackClaimID
	}
	return nil
}

func (m *MockClaimRepo) CountClaimedParticipants(participantIDs []uuid.UUID) (int64, error) {
	var count int64
	for _, id := range participantIDs {
		if _, ok := m.Details[id]; ok {
			count++
		}
	}
	return count, nil
}

// MockMailer records every send so tests can assert on notification
// behavior without a transport.
type MockMailer struct {
	mu            sync.Mutex
	Acks          []string
	Confirmations []string
	Declines      []string
	LastQrs       []mailer.QrInline
	LastReason    string
	FailNext      bool
}

func (m *MockMailer) SendAcknowledgement(to, name, registrationID string, amount int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailNext {
		return errors.New("smtp unavailable")
	}
	m.Acks = append(m.Acks, to)
	return nil
}

func (m *MockMailer) SendConfirmation(to, name, accessCode string, qrs []mailer.QrInline) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailNext {
		return errors.New("smtp unavailable")
	}
	m.Confirmations = append(m.Confirmations, to)
	m.LastQrs = qrs
	return nil
}

func (m *MockMailer) SendDecline(to, name, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailNext {
		return errors.New("smtp unavailable")
	}
	m.Declines = append(m.Declines, to)
	m.LastReason = reason
	return nil
}
