package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Hedwigsan/cookshare/internal/models"
)

type FavoriteRepository interface {
	Add(ctx context.Context, userID, recipeID uint) error
	Remove(ctx context.Context, userID, recipeID uint) error
	Exists(ctx context.Context, userID, recipeID uint) (bool, error)
	CountForRecipe(ctx context.Context, recipeID uint) (int64, error)
	ListRecipes(ctx context.Context, userID uint, order string) ([]models.Recipe, error)
}

type favoriteRepository struct {
	db *gorm.DB
}

func NewFavoriteRepository(db *gorm.DB) FavoriteRepository {
	return &favoriteRepository{db: db}
}

// Add is idempotent: the composite primary key plus ON CONFLICT DO NOTHING
// makes a repeated favorite a no-op instead of a rejected insert.
func (r *favoriteRepository) Add(ctx context.Context, userID, recipeID uint) error {
	fav := models.Favorite{UserID: userID, RecipeID: recipeID}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&fav).Error; err != nil {
		return fmt.Errorf("add favorite: %w", err)
	}
	return nil
}

func (r *favoriteRepository) Remove(ctx context.Context, userID, recipeID uint) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(&models.Favorite{}).Error
	if err != nil {
		return fmt.Errorf("remove favorite: %w", err)
	}
	return nil
}

func (r *favoriteRepository) Exists(ctx context.Context, userID, recipeID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Favorite{}).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *favoriteRepository) CountForRecipe(ctx context.Context, recipeID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Favorite{}).
		Where("recipe_id = ?", recipeID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count favorites: %w", err)
	}
	return count, nil
}

func (r *favoriteRepository) ListRecipes(ctx context.Context, userID uint, order string) ([]models.Recipe, error) {
	var recipes []models.Recipe
	db := r.db.WithContext(ctx).
		Model(&models.Recipe{}).
		Where("id IN (?)",
			r.db.Model(&models.Favorite{}).Select("recipe_id").Where("user_id = ?", userID))
	if err := applyOrder(db, order).Preload("Tags").Find(&recipes).Error; err != nil {
		return nil, fmt.Errorf("list favorite recipes: %w", err)
	}
	return recipes, nil
}
