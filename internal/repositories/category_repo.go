package repositories

import (
	"errors"
	"fmt"

	"charity-run-backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type categoryRepo struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepo{db: db}
}

func (r *categoryRepo) WithTx(tx *gorm.DB) CategoryRepository {
	return &categoryRepo{db: tx}
}

func (r *categoryRepo) ListCategories() ([]models.RaceCategory, error) {
	var categories []models.RaceCategory
	if err := r.db.Order("name ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

func (r *categoryRepo) GetCategoryByID(id string) (*models.RaceCategory, error) {
	if id == "" {
		return nil, errors.New("category ID cannot be empty")
	}

	var category models.RaceCategory
	if err := r.db.Where("id = ?", id).First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// GetCategoryByIDForUpdate locks the category row for the duration of the
// enclosing transaction. Used to serialize early-bird slot consumption.
func (r *categoryRepo) GetCategoryByIDForUpdate(id string) (*models.RaceCategory, error) {
	var category models.RaceCategory
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepo) ListJerseyOptions() ([]models.JerseyOption, error) {
	var jerseys []models.JerseyOption
	if err := r.db.Order("type ASC, size ASC").Find(&jerseys).Error; err != nil {
		return nil, fmt.Errorf("failed to list jersey options: %w", err)
	}
	return jerseys, nil
}

func (r *categoryRepo) GetJerseyBySize(size string) (*models.JerseyOption, error) {
	var jersey models.JerseyOption
	if err := r.db.Where("size = ?", size).First(&jersey).Error; err != nil {
		return nil, err
	}
	return &jersey, nil
}

func (r *categoryRepo) CountEarlyBirdClaims(categoryID string) (int64, error) {
	var count int64
	if err := r.db.Model(&models.EarlyBirdClaim{}).
		Where("category_id = ?", categoryID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *categoryRepo) CreateEarlyBirdClaims(claims []models.EarlyBirdClaim) error {
	if len(claims) == 0 {
		return nil
	}
	return r.db.Create(&claims).Error
}

// DeleteLatestEarlyBirdClaims removes up to count of the most recent claim
// rows for a category, restoring that much early-bird capacity. Returns the
// number of rows actually deleted.
func (r *categoryRepo) DeleteLatestEarlyBirdClaims(categoryID string, count int) (int64, error) {
	if count <= 0 {
		return 0, nil
	}

	result := r.db.Exec(`
		DELETE FROM early_bird_claims
		WHERE id IN (
			SELECT id FROM early_bird_claims
			WHERE category_id = ?
			ORDER BY created_at DESC
			LIMIT ?
		)`, categoryID, count)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to restore early-bird capacity: %w", result.Error)
	}

	return result.RowsAffected, nil
}
