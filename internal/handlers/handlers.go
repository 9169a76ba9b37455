package handlers

import (
	"charity-run-backend/internal/config"
	"charity-run-backend/internal/middleware"
	"charity-run-backend/internal/services"
	"charity-run-backend/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	authSvc     *services.AuthService
	categorySvc *services.CategoryService
	regSvc      *services.RegistrationService
	paymentSvc  *services.PaymentService
	claimSvc    *services.ClaimService
	cfg         *config.Config
}

func NewHandler(
	authSvc *services.AuthService,
	categorySvc *services.CategoryService,
	regSvc *services.RegistrationService,
	paymentSvc *services.PaymentService,
	claimSvc *services.ClaimService,
	cfg *config.Config,
) *Handler {
	return &Handler{
		authSvc:     authSvc,
		categorySvc: categorySvc,
		regSvc:      regSvc,
		paymentSvc:  paymentSvc,
		claimSvc:    claimSvc,
		cfg:         cfg,
	}
}

func (h *Handler) RegisterRoutes(router fiber.Router) {
	// Public routes
	auth := router.Group("/auth")
	{
		auth.Post("/login", middleware.LoginRateLimiter(), h.Login)
		auth.Post("/access-code", h.AccessCodeLogin)
	}

	categories := router.Group("/categories")
	{
		categories.Get("/", h.ListCategories)
		categories.Get("/:id", h.GetCategory)
	}

	router.Get("/jerseys", h.ListJerseys)

	payments := router.Group("/payments")
	{
		payments.Post("/base64", h.SubmitRegistrationBase64)
		payments.Post("/", h.SubmitRegistrationMultipart)
	}

	racePack := router.Group("/racePack")
	{
		racePack.Get("/qr", h.GetQrView)
		racePack.Post("/claim", h.ClaimRacePack)
	}

	// Admin routes (JWT required)
	protected := router.Group("", middleware.JWTMiddleware(h.cfg), middleware.AdminOnly)
	{
		protected.Post("/payments/confirm", h.ConfirmPayment)
		protected.Post("/payments/decline", h.DeclinePayment)

		admin := protected.Group("/admin")
		admin.Get("/registrations", h.ListRegistrations)
		admin.Get("/registrations/:id", h.GetRegistration)
	}
}

// ErrorHandler handles global errors
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return utils.Error(c, message, code)
}

// serviceError maps a domain error code onto the HTTP status taxonomy.
func serviceError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch services.ErrorCodeOf(err) {
	case services.ErrInvalidInput, services.ErrAlreadyClaimed,
		services.ErrBudgetExceeded, services.ErrInvalidStatus:
		status = fiber.StatusBadRequest
	case services.ErrUnauthorized:
		status = fiber.StatusUnauthorized
	case services.ErrNotFound:
		status = fiber.StatusNotFound
	case services.ErrConflict:
		status = fiber.StatusConflict
	}

	message := err.Error()
	if derr, ok := err.(*services.DomainError); ok {
		message = derr.Message
	}

	return utils.Error(c, message, status)
}
