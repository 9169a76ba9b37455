package services

import (
	"errors"

	"charity-run-backend/internal/config"
	"charity-run-backend/internal/models"
	"charity-run-backend/internal/repositories"

	"gorm.io/gorm"
)

type CategoryService struct {
	repo *repositories.Repository
	cfg  *config.Config
}

func NewCategoryService(repo *repositories.Repository, cfg *config.Config) *CategoryService {
	return &CategoryService{repo: repo, cfg: cfg}
}

// CategoryView is a category plus its computed early-bird availability,
// recomputed from claim rows on every listing.
type CategoryView struct {
	models.RaceCategory
	EarlyBirdRemaining int `json:"early_bird_remaining"`
}

func (s *CategoryService) ListCategories() ([]CategoryView, error) {
	categories, err := s.repo.CategoryRepo.ListCategories()
	if err != nil {
		return nil, NewDomainError("failed to list categories", ErrDatabaseError, err)
	}

	views := make([]CategoryView, 0, len(categories))
	for _, cat := range categories {
		claims, err := s.repo.CategoryRepo.CountEarlyBirdClaims(cat.ID.String())
		if err != nil {
			return nil, NewDomainError("failed to count early-bird claims", ErrDatabaseError, err)
		}
		views = append(views, CategoryView{
			RaceCategory:       cat,
			EarlyBirdRemaining: EarlyBirdRemaining(cat.EarlyBirdCapacity, claims),
		})
	}

	return views, nil
}

func (s *CategoryService) GetCategory(id string) (*CategoryView, error) {
	cat, err := s.repo.CategoryRepo.GetCategoryByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewDomainError("race category not found", ErrNotFound, err)
		}
		return nil, NewDomainError("failed to load category", ErrDatabaseError, err)
	}

	claims, err := s.repo.CategoryRepo.CountEarlyBirdClaims(cat.ID.String())
	if err != nil {
		return nil, NewDomainError("failed to count early-bird claims", ErrDatabaseError, err)
	}

	return &CategoryView{
		RaceCategory:       *cat,
		EarlyBirdRemaining: EarlyBirdRemaining(cat.EarlyBirdCapacity, claims),
	}, nil
}

func (s *CategoryService) ListJerseyOptions() ([]models.JerseyOption, error) {
	jerseys, err := s.repo.CategoryRepo.ListJerseyOptions()
	if err != nil {
		return nil, NewDomainError("failed to list jersey options", ErrDatabaseError, err)
	}
	return jerseys, nil
}
