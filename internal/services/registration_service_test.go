package services

import (
	"testing"

	"charity-run-backend/internal/config"
	"charity-run-backend/internal/models"
	"charity-run-backend/internal/repositories"

	"github.com/google/uuid"
)

type submitFixture struct {
	cats   *MockCategoryRepo
	users  *MockUserRepo
	regs   *MockRegistrationRepo
	claims *MockClaimRepo
	mail   *MockMailer
	svc    *RegistrationService

	cat3  *models.RaceCategory
	cat5  *models.RaceCategory
	cat10 *models.RaceCategory
}

func newSubmitFixture(t *testing.T) *submitFixture {
	t.Helper()

	cats := NewMockCategoryRepo()
	users := NewMockUserRepo()
	regs := NewMockRegistrationRepo(cats, users)
	claims := NewMockClaimRepo(cats)

	repo := &repositories.Repository{
		CategoryRepo:     cats,
		UserRepo:         users,
		RegistrationRepo: regs,
		ClaimRepo:        claims,
	}
	cfg := &config.Config{
		BaseURL:            "http://localhost:3000",
		QRDir:              t.TempDir(),
		ClaimSelfPassword:  "self-secret",
		ClaimStaffPassword: "staff-secret",
	}
	mail := &MockMailer{}
	claimSvc := NewClaimService(repo, cfg)

	f := &submitFixture{
		cats:   cats,
		users:  users,
		regs:   regs,
		claims: claims,
		mail:   mail,
		svc:    NewRegistrationService(repo, cfg, claimSvc, mail),
	}

	f.cat3 = &models.RaceCategory{
		ID:          uuid.New(),
		Name:        "3km Fun Run",
		BasePrice:   100000,
		BundlePrice: intp(500000),
		BundleSize:  intp(4),
	}
	f.cat5 = communityCategory()
	f.cat5.ID = uuid.New()
	f.cat10 = &models.RaceCategory{
		ID:                uuid.New(),
		Name:              "10km Charity Run",
		BasePrice:         150000,
		EarlyBirdPrice:    120000,
		EarlyBirdCapacity: 3,
	}
	for _, cat := range []*models.RaceCategory{f.cat3, f.cat5, f.cat10} {
		cats.Categories[cat.ID.String()] = cat
	}

	cats.Jerseys["M"] = &models.JerseyOption{ID: uuid.New(), Size: "M"}
	cats.Jerseys["XXL"] = &models.JerseyOption{ID: uuid.New(), Size: "XXL", Price: 20000, IsExtraSize: true}

	return f
}

func (f *submitFixture) request(regType string, items []CartItem) SubmitRegistrationRequest {
	return SubmitRegistrationRequest{
		Name:             "Jane Runner",
		Email:            "jane@example.com",
		Phone:            "081234567890",
		RegistrationType: regType,
		Items:            items,
		ProofOfPayment:   "/proofs/abc.jpg",
		ProofSenderName:  "Jane Runner",
	}
}

func TestSubmitIndividualEarlyBird(t *testing.T) {
	f := newSubmitFixture(t)

	result, err := f.svc.Submit(f.request(models.RegistrationIndividual, []CartItem{
		{CategoryID: f.cat10.ID.String(), Jerseys: []JerseyCount{{Size: "M", Count: 1}}},
	}))
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	if result.TotalAmount != 120000 {
		t.Errorf("expected early-bird total 120000, got %d", result.TotalAmount)
	}

	reg := f.regs.Registrations[result.RegistrationID]
	if reg == nil {
		t.Fatal("registration not persisted")
	}
	if reg.PaymentStatus != models.PaymentPending {
		t.Errorf("registration status = %s, want pending", reg.PaymentStatus)
	}
	if reg.TotalAmount != 120000 {
		t.Errorf("stored total = %d", reg.TotalAmount)
	}

	payment := f.regs.Payments[result.RegistrationID]
	if payment == nil || payment.Status != models.PaymentPending || payment.Amount != 120000 {
		t.Errorf("payment not stored as pending 120000: %+v", payment)
	}

	claims, _ := f.cats.CountEarlyBirdClaims(f.cat10.ID.String())
	if claims != 1 {
		t.Errorf("expected 1 early-bird claim, got %d", claims)
	}

	if len(result.QrCodes) != 1 {
		t.Fatalf("expected 1 QR code, got %d", len(result.QrCodes))
	}
	if qr := result.QrCodes[0]; qr.TotalPacks != 1 || qr.ScansRemaining != 1 {
		t.Errorf("QR budget %d/%d, expected 1/1", qr.TotalPacks, qr.ScansRemaining)
	}

	user, err := f.users.GetUserByEmail("jane@example.com")
	if err != nil {
		t.Fatal("user not created")
	}
	if user.Role != "user" {
		t.Errorf("user role = %s", user.Role)
	}
}

func TestSubmitIndividualEarlyBirdExhausted(t *testing.T) {
	f := newSubmitFixture(t)
	for i := 0; i < f.cat10.EarlyBirdCapacity; i++ {
		f.cats.BirdClaims = append(f.cats.BirdClaims, models.EarlyBirdClaim{
			ID: uuid.New(), CategoryID: f.cat10.ID,
		})
	}

	result, err := f.svc.Submit(f.request(models.RegistrationIndividual, []CartItem{
		{CategoryID: f.cat10.ID.String(), Jerseys: []JerseyCount{{Size: "M", Count: 1}}},
	}))
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	if result.TotalAmount != 150000 {
		t.Errorf("expected base total 150000, got %d", result.TotalAmount)
	}
	claims, _ := f.cats.CountEarlyBirdClaims(f.cat10.ID.String())
	if claims != int64(f.cat10.EarlyBirdCapacity) {
		t.Errorf("exhausted pool grew to %d claims", claims)
	}
}

// With one slot left, a two-runner submission gets one early-bird price and
// one base price.
func TestSubmitIndividualEarlyBirdPartial(t *testing.T) {
	f := newSubmitFixture(t)
	for i := 0; i < 2; i++ {
		f.cats.BirdClaims = append(f.cats.BirdClaims, models.EarlyBirdClaim{
			ID: uuid.New(), CategoryID: f.cat10.ID,
		})
	}

	result, err := f.svc.Submit(f.request(models.RegistrationIndividual, []CartItem{
		{CategoryID: f.cat10.ID.String(), Jerseys: []JerseyCount{{Size: "M", Count: 2}}},
	}))
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	if result.TotalAmount != 120000+150000 {
		t.Errorf("expected 270000, got %d", result.TotalAmount)
	}
	claims, _ := f.cats.CountEarlyBirdClaims(f.cat10.ID.String())
	if claims != 3 {
		t.Errorf("expected pool drained to 3 claims, got %d", claims)
	}
}

func TestSubmitCommunityTierPricing(t *testing.T) {
	f := newSubmitFixture(t)

	result, err := f.svc.Submit(f.request(models.RegistrationCommunity, []CartItem{
		{CategoryID: f.cat5.ID.String(), Jerseys: []JerseyCount{{Size: "M", Count: 35}}},
	}))
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	if result.TotalAmount != 35*180000 {
		t.Errorf("expected 35 x tier2, got %d", result.TotalAmount)
	}

	claims, _ := f.cats.CountEarlyBirdClaims(f.cat5.ID.String())
	if claims != 0 {
		t.Errorf("community submission consumed %d early-bird slots", claims)
	}

	parts, _ := f.regs.ListParticipantsByRegistration(result.RegistrationID.String())
	if len(parts) != 35 {
		t.Errorf("expected 35 participants, got %d", len(parts))
	}
}

func TestSubmitCommunityBelowMinimum(t *testing.T) {
	f := newSubmitFixture(t)

	_, err := f.svc.Submit(f.request(models.RegistrationCommunity, []CartItem{
		{CategoryID: f.cat5.ID.String(), Jerseys: []JerseyCount{{Size: "M", Count: 9}}},
	}))
	if ErrorCodeOf(err) != ErrInvalidInput {
		t.Errorf("expected %s, got %v", ErrInvalidInput, err)
	}
}

func TestSubmitFamilyBundle(t *testing.T) {
	f := newSubmitFixture(t)

	t.Run("bundle price covers the whole entry", func(t *testing.T) {
		result, err := f.svc.Submit(f.request(models.RegistrationFamily, []CartItem{
			{CategoryID: f.cat3.ID.String(), Jerseys: []JerseyCount{{Size: "M", Count: 4}}},
		}))
		if err != nil {
			t.Fatalf("submit failed: %v", err)
		}
		if result.TotalAmount != 500000 {
			t.Errorf("expected bundle total 500000, got %d", result.TotalAmount)
		}
		parts, _ := f.regs.ListParticipantsByRegistration(result.RegistrationID.String())
		if len(parts) != 4 {
			t.Errorf("expected 4 participants, got %d", len(parts))
		}
	})

	t.Run("category without a bundle", func(t *testing.T) {
		_, err := f.svc.Submit(f.request(models.RegistrationFamily, []CartItem{
			{CategoryID: f.cat10.ID.String(), Jerseys: []JerseyCount{{Size: "M", Count: 4}}},
		}))
		if ErrorCodeOf(err) != ErrInvalidInput {
			t.Errorf("expected %s, got %v", ErrInvalidInput, err)
		}
	})
}

func TestSubmitJerseySurcharge(t *testing.T) {
	f := newSubmitFixture(t)
	f.cat10.EarlyBirdCapacity = 0

	result, err := f.svc.Submit(f.request(models.RegistrationIndividual, []CartItem{
		{CategoryID: f.cat10.ID.String(), Jerseys: []JerseyCount{{Size: "XXL", Count: 1}}},
	}))
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if result.TotalAmount != 150000+20000 {
		t.Errorf("expected base plus surcharge 170000, got %d", result.TotalAmount)
	}
}

func TestSubmitValidation(t *testing.T) {
	f := newSubmitFixture(t)
	item := CartItem{CategoryID: f.cat10.ID.String(), Jerseys: []JerseyCount{{Size: "M", Count: 1}}}

	t.Run("unknown registration type", func(t *testing.T) {
		_, err := f.svc.Submit(f.request("corporate", []CartItem{item}))
		if ErrorCodeOf(err) != ErrInvalidInput {
			t.Errorf("expected %s, got %v", ErrInvalidInput, err)
		}
	})

	t.Run("empty cart", func(t *testing.T) {
		_, err := f.svc.Submit(f.request(models.RegistrationIndividual, nil))
		if ErrorCodeOf(err) != ErrInvalidInput {
			t.Errorf("expected %s, got %v", ErrInvalidInput, err)
		}
	})

	t.Run("zero jersey count", func(t *testing.T) {
		bad := CartItem{CategoryID: f.cat10.ID.String(), Jerseys: []JerseyCount{{Size: "M", Count: 0}}}
		_, err := f.svc.Submit(f.request(models.RegistrationIndividual, []CartItem{bad}))
		if ErrorCodeOf(err) != ErrInvalidInput {
			t.Errorf("expected %s, got %v", ErrInvalidInput, err)
		}
	})

	t.Run("unknown category", func(t *testing.T) {
		bad := CartItem{CategoryID: uuid.New().String(), Jerseys: []JerseyCount{{Size: "M", Count: 1}}}
		_, err := f.svc.Submit(f.request(models.RegistrationIndividual, []CartItem{bad}))
		if ErrorCodeOf(err) != ErrNotFound {
			t.Errorf("expected %s, got %v", ErrNotFound, err)
		}
	})

	t.Run("unknown jersey size", func(t *testing.T) {
		bad := CartItem{CategoryID: f.cat10.ID.String(), Jerseys: []JerseyCount{{Size: "XS", Count: 1}}}
		_, err := f.svc.Submit(f.request(models.RegistrationIndividual, []CartItem{bad}))
		if ErrorCodeOf(err) != ErrInvalidInput {
			t.Errorf("expected %s, got %v", ErrInvalidInput, err)
		}
	})
}

// A returning email reuses the existing user row instead of duplicating it.
func TestSubmitReusesExistingUser(t *testing.T) {
	f := newSubmitFixture(t)
	item := CartItem{CategoryID: f.cat10.ID.String(), Jerseys: []JerseyCount{{Size: "M", Count: 1}}}

	first, err := f.svc.Submit(f.request(models.RegistrationIndividual, []CartItem{item}))
	if err != nil {
		t.Fatalf("first submit failed: %v", err)
	}
	second, err := f.svc.Submit(f.request(models.RegistrationIndividual, []CartItem{item}))
	if err != nil {
		t.Fatalf("second submit failed: %v", err)
	}

	if len(f.users.Users) != 1 {
		t.Fatalf("expected 1 user, got %d", len(f.users.Users))
	}
	if f.regs.Registrations[first.RegistrationID].UserID != f.regs.Registrations[second.RegistrationID].UserID {
		t.Error("registrations belong to different users")
	}
}
