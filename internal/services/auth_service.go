package services

import (
	"errors"
	"strings"
	"time"

	"charity-run-backend/internal/config"
	"charity-run-backend/internal/models"
	"charity-run-backend/internal/repositories"
	"charity-run-backend/internal/utils"

	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"
)

type AuthService struct {
	repo *repositories.Repository
	cfg  *config.Config
}

func NewAuthService(repo *repositories.Repository, cfg *config.Config) *AuthService {
	return &AuthService{repo: repo, cfg: cfg}
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Authenticate is the admin login path: email plus bcrypt password, JWT out.
func (s *AuthService) Authenticate(email, password string) (*LoginResponse, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	if email == "" || password == "" {
		return nil, NewDomainError("email and password are required", ErrInvalidInput, nil)
	}

	user, err := s.repo.UserRepo.GetUserByEmail(email)
	if err != nil {
		return nil, NewDomainError("invalid credentials", ErrUnauthorized, nil)
	}

	if user.Role != "admin" || user.Password == "" {
		return nil, NewDomainError("invalid credentials", ErrUnauthorized, nil)
	}

	if err := utils.CheckPassword(password, user.Password); err != nil {
		return nil, NewDomainError("invalid credentials", ErrUnauthorized, nil)
	}

	token, err := s.generateJWT(user)
	if err != nil {
		return nil, NewDomainError("failed to generate token", ErrDatabaseError, err)
	}

	user.Password = ""
	return &LoginResponse{Token: token, User: user}, nil
}

type AccessCodeResponse struct {
	User          *models.User          `json:"user"`
	Registrations []models.Registration `json:"registrations"`
}

// AccessCodeLogin exchanges a runner's access code, their only credential,
// for their profile and registrations.
func (s *AuthService) AccessCodeLogin(code string) (*AccessCodeResponse, error) {
	code = strings.TrimSpace(strings.ToUpper(code))
	if code == "" {
		return nil, NewDomainError("access code is required", ErrInvalidInput, nil)
	}

	user, err := s.repo.UserRepo.GetUserByAccessCode(code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewDomainError("invalid access code", ErrUnauthorized, nil)
		}
		return nil, NewDomainError("failed to look up access code", ErrDatabaseError, err)
	}

	registrations, err := s.repo.RegistrationRepo.ListRegistrationsByUser(user.ID.String())
	if err != nil {
		return nil, NewDomainError("failed to load registrations", ErrDatabaseError, err)
	}

	user.Password = ""
	return &AccessCodeResponse{User: user, Registrations: registrations}, nil
}

func (s *AuthService) generateJWT(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID.String(),
		"email":   user.Email,
		"role":    user.Role,
		"exp":     time.Now().Add(24 * time.Hour).Unix(),
		"iat":     time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}
