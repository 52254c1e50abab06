package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Hedwigsan/cookshare/internal/models"
)

// Recipe list orderings, matching the "order" query parameter.
const (
	OrderNew   = "new"
	OrderOld   = "old"
	OrderViews = "views"
)

// ListFilter narrows the recipe listing. Zero values mean "no filtering".
type ListFilter struct {
	Query string // substring match on title OR description
	Tag   string // exact tag name; unknown tags yield an empty list
	Order string // OrderNew (default), OrderOld or OrderViews
}

type RecipeRepository interface {
	List(ctx context.Context, filter ListFilter) ([]models.Recipe, error)
	GetByID(ctx context.Context, id uint) (*models.Recipe, error)
	Create(ctx context.Context, recipe *models.Recipe, ingredients []models.Ingredient, steps []models.Step, tagNames []string) error
	Update(ctx context.Context, recipe *models.Recipe, ingredients []models.Ingredient, steps []models.Step, tagNames []string) error
	Delete(ctx context.Context, id uint) error
	IncrementViewCount(ctx context.Context, id uint) error
}

type recipeRepository struct {
	db *gorm.DB
}

func NewRecipeRepository(db *gorm.DB) RecipeRepository {
	return &recipeRepository{db: db}
}

func (r *recipeRepository) List(ctx context.Context, filter ListFilter) ([]models.Recipe, error) {
	db := r.db.WithContext(ctx).Model(&models.Recipe{})

	if filter.Query != "" {
		pattern := "%" + filter.Query + "%"
		db = db.Where("title LIKE ? OR description LIKE ?", pattern, pattern)
	}

	if tag := strings.TrimSpace(filter.Tag); tag != "" {
		var t models.Tag
		err := r.db.WithContext(ctx).Where("name = ?", tag).First(&t).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Filtering by a tag nobody uses is an empty result, not an error.
			return []models.Recipe{}, nil
		}
		if err != nil {
			return nil, fmt.Errorf("resolve tag: %w", err)
		}
		db = db.Where("id IN (?)",
			r.db.Model(&models.RecipeTag{}).Select("recipe_id").Where("tag_id = ?", t.ID))
	}

	db = applyOrder(db, filter.Order)

	var recipes []models.Recipe
	if err := db.Preload("Tags").Find(&recipes).Error; err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	return recipes, nil
}

func applyOrder(db *gorm.DB, order string) *gorm.DB {
	switch order {
	case OrderOld:
		return db.Order("id ASC")
	case OrderViews:
		return db.Order("view_count DESC")
	default:
		return db.Order("id DESC")
	}
}

func (r *recipeRepository) GetByID(ctx context.Context, id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	err := r.db.WithContext(ctx).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_no ASC")
		}).
		Preload("Steps", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_no ASC")
		}).
		Preload("Tags").
		First(&recipe, id).Error
	if err != nil {
		return nil, err
	}
	return &recipe, nil
}

// Create persists the recipe with its children and tag links in one
// transaction.
func (r *recipeRepository) Create(ctx context.Context, recipe *models.Recipe, ingredients []models.Ingredient, steps []models.Step, tagNames []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(recipe).Error; err != nil {
			return fmt.Errorf("create recipe: %w", err)
		}
		if err := createChildren(tx, recipe.ID, ingredients, steps); err != nil {
			return err
		}
		return linkTags(tx, recipe.ID, tagNames)
	})
}

// Update rewrites the recipe row, then fully deletes and recreates its
// ingredients and steps (no diffing) and links any new tags. Existing tag
// links are kept; edits never prune tags.
func (r *recipeRepository) Update(ctx context.Context, recipe *models.Recipe, ingredients []models.Ingredient, steps []models.Step, tagNames []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"title":       recipe.Title,
			"description": recipe.Description,
		}
		if recipe.MainImage != nil {
			updates["main_image"] = *recipe.MainImage
		}
		if err := tx.Model(&models.Recipe{}).Where("id = ?", recipe.ID).Updates(updates).Error; err != nil {
			return fmt.Errorf("update recipe: %w", err)
		}

		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.Ingredient{}).Error; err != nil {
			return fmt.Errorf("clear ingredients: %w", err)
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.Step{}).Error; err != nil {
			return fmt.Errorf("clear steps: %w", err)
		}

		if err := createChildren(tx, recipe.ID, ingredients, steps); err != nil {
			return err
		}
		return linkTags(tx, recipe.ID, tagNames)
	})
}

// Delete removes the recipe and every row referencing it, all in one
// transaction so no orphan children survive.
func (r *recipeRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", id).Delete(&models.Ingredient{}).Error; err != nil {
			return fmt.Errorf("delete ingredients: %w", err)
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&models.Step{}).Error; err != nil {
			return fmt.Errorf("delete steps: %w", err)
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&models.RecipeTag{}).Error; err != nil {
			return fmt.Errorf("delete tag links: %w", err)
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&models.Favorite{}).Error; err != nil {
			return fmt.Errorf("delete favorites: %w", err)
		}
		if err := tx.Delete(&models.Recipe{}, id).Error; err != nil {
			return fmt.Errorf("delete recipe: %w", err)
		}
		return nil
	})
}

// IncrementViewCount bumps the counter in a single UPDATE so concurrent views
// never lose increments.
func (r *recipeRepository) IncrementViewCount(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).
		Model(&models.Recipe{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
	if err != nil {
		return fmt.Errorf("increment view count: %w", err)
	}
	return nil
}

func createChildren(tx *gorm.DB, recipeID uint, ingredients []models.Ingredient, steps []models.Step) error {
	for i := range ingredients {
		ingredients[i].ID = 0
		ingredients[i].RecipeID = recipeID
	}
	if len(ingredients) > 0 {
		if err := tx.Create(&ingredients).Error; err != nil {
			return fmt.Errorf("create ingredients: %w", err)
		}
	}
	for i := range steps {
		steps[i].ID = 0
		steps[i].RecipeID = recipeID
	}
	if len(steps) > 0 {
		if err := tx.Create(&steps).Error; err != nil {
			return fmt.Errorf("create steps: %w", err)
		}
	}
	return nil
}

// linkTags resolves each name to a tag row, creating missing ones, and links
// them to the recipe. Both inserts ride the unique constraints with
// ON CONFLICT DO NOTHING, so concurrent identical tag creation cannot
// duplicate rows.
func linkTags(tx *gorm.DB, recipeID uint, tagNames []string) error {
	for _, raw := range tagNames {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}

		tag := models.Tag{Name: name}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).Create(&tag).Error; err != nil {
			return fmt.Errorf("upsert tag %q: %w", name, err)
		}
		if tag.ID == 0 {
			// Conflict path: the row already existed, fetch its id.
			if err := tx.Where("name = ?", name).First(&tag).Error; err != nil {
				return fmt.Errorf("reload tag %q: %w", name, err)
			}
		}

		link := models.RecipeTag{RecipeID: recipeID, TagID: tag.ID}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&link).Error; err != nil {
			return fmt.Errorf("link tag %q: %w", name, err)
		}
	}
	return nil
}
