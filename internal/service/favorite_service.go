package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Hedwigsan/cookshare/internal/models"
	"github.com/Hedwigsan/cookshare/internal/repository"
)

type FavoriteService interface {
	Favorite(ctx context.Context, userID, recipeID uint) error
	Unfavorite(ctx context.Context, userID, recipeID uint) error
	Status(ctx context.Context, userID *uint, recipeID uint) (count int64, favorited bool, err error)
	ListRecipes(ctx context.Context, userID uint, order string) ([]models.Recipe, error)
}

type favoriteService struct {
	repo       repository.FavoriteRepository
	recipeRepo repository.RecipeRepository
}

func NewFavoriteService(repo repository.FavoriteRepository, recipeRepo repository.RecipeRepository) FavoriteService {
	return &favoriteService{repo: repo, recipeRepo: recipeRepo}
}

// Favorite marks the recipe for the user. Favoriting twice is a no-op.
func (s *favoriteService) Favorite(ctx context.Context, userID, recipeID uint) error {
	if _, err := s.recipeRepo.GetByID(ctx, recipeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRecipeNotFound
		}
		return err
	}
	return s.repo.Add(ctx, userID, recipeID)
}

// Unfavorite removes the mark; removing a mark that never existed is a no-op.
func (s *favoriteService) Unfavorite(ctx context.Context, userID, recipeID uint) error {
	return s.repo.Remove(ctx, userID, recipeID)
}

// Status reports the favorite count for a recipe and, when userID is non-nil,
// whether that user has favorited it.
func (s *favoriteService) Status(ctx context.Context, userID *uint, recipeID uint) (int64, bool, error) {
	count, err := s.repo.CountForRecipe(ctx, recipeID)
	if err != nil {
		return 0, false, err
	}
	if userID == nil {
		return count, false, nil
	}
	favorited, err := s.repo.Exists(ctx, *userID, recipeID)
	if err != nil {
		return 0, false, err
	}
	return count, favorited, nil
}

func (s *favoriteService) ListRecipes(ctx context.Context, userID uint, order string) ([]models.Recipe, error) {
	return s.repo.ListRecipes(ctx, userID, order)
}
