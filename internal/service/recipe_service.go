package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Hedwigsan/cookshare/internal/models"
	"github.com/Hedwigsan/cookshare/internal/repository"
)

var (
	ErrRecipeNotFound = errors.New("recipe not found")
	ErrNotOwner       = errors.New("recipe belongs to another user")
)

// RecipeDraft carries the parsed form content of a create or edit submission.
// A nil MainImage on update keeps the stored image.
type RecipeDraft struct {
	Title       string
	Description string
	MainImage   *string
	Ingredients []models.Ingredient
	Steps       []models.Step
	TagNames    []string
}

type RecipeService interface {
	List(ctx context.Context, filter repository.ListFilter) ([]models.Recipe, error)
	Get(ctx context.Context, id uint) (*models.Recipe, error)
	GetOwned(ctx context.Context, id, userID uint) (*models.Recipe, error)
	View(ctx context.Context, id uint) (*models.Recipe, error)
	Create(ctx context.Context, authorID uint, draft RecipeDraft) (*models.Recipe, error)
	Update(ctx context.Context, id, userID uint, draft RecipeDraft) error
	Delete(ctx context.Context, id, userID uint) error
}

type recipeService struct {
	repo repository.RecipeRepository
}

func NewRecipeService(repo repository.RecipeRepository) RecipeService {
	return &recipeService{repo: repo}
}

func (s *recipeService) List(ctx context.Context, filter repository.ListFilter) ([]models.Recipe, error) {
	return s.repo.List(ctx, filter)
}

func (s *recipeService) Get(ctx context.Context, id uint) (*models.Recipe, error) {
	recipe, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRecipeNotFound
	}
	if err != nil {
		return nil, err
	}
	return recipe, nil
}

// GetOwned fetches a recipe and enforces that userID is its author.
func (s *recipeService) GetOwned(ctx context.Context, id, userID uint) (*models.Recipe, error) {
	recipe, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if recipe.AuthorID == nil || *recipe.AuthorID != userID {
		return nil, ErrNotOwner
	}
	return recipe, nil
}

// View records one detail-page view and returns the recipe with the updated
// counter. Every request counts; there is no per-viewer dedup.
func (s *recipeService) View(ctx context.Context, id uint) (*models.Recipe, error) {
	if err := s.repo.IncrementViewCount(ctx, id); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *recipeService) Create(ctx context.Context, authorID uint, draft RecipeDraft) (*models.Recipe, error) {
	recipe := &models.Recipe{
		Title:       draft.Title,
		Description: draft.Description,
		MainImage:   draft.MainImage,
		AuthorID:    &authorID,
	}
	if err := s.repo.Create(ctx, recipe, draft.Ingredients, draft.Steps, draft.TagNames); err != nil {
		return nil, err
	}
	return recipe, nil
}

func (s *recipeService) Update(ctx context.Context, id, userID uint, draft RecipeDraft) error {
	recipe, err := s.GetOwned(ctx, id, userID)
	if err != nil {
		return err
	}

	recipe.Title = draft.Title
	recipe.Description = draft.Description
	recipe.MainImage = draft.MainImage
	return s.repo.Update(ctx, recipe, draft.Ingredients, draft.Steps, draft.TagNames)
}

func (s *recipeService) Delete(ctx context.Context, id, userID uint) error {
	if _, err := s.GetOwned(ctx, id, userID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
