package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Hedwigsan/cookshare/internal/media"
	"github.com/Hedwigsan/cookshare/internal/middleware"
	"github.com/Hedwigsan/cookshare/internal/models"
	"github.com/Hedwigsan/cookshare/internal/repository"
	"github.com/Hedwigsan/cookshare/internal/service"
)

const mutationTimeout = 5 * time.Second

type RecipeHandler struct {
	recipes   service.RecipeService
	favorites service.FavoriteService
	media     *media.Store
}

func NewRecipeHandler(recipes service.RecipeService, favorites service.FavoriteService, store *media.Store) *RecipeHandler {
	return &RecipeHandler{recipes: recipes, favorites: favorites, media: store}
}

func (h *RecipeHandler) RegisterRoutes(r *gin.Engine, csrf gin.HandlerFunc) {
	login := middleware.LoginRequired()

	r.GET("/", h.Index)
	r.GET("/recipes/new", login, h.NewForm)
	r.POST("/recipes", csrf, login, h.Create)
	r.GET("/recipes/:id", h.Detail)
	r.GET("/recipes/:id/edit", login, h.EditForm)
	r.POST("/recipes/:id/edit", csrf, login, h.Update)
	r.POST("/recipes/:id/delete", csrf, login, h.Delete)
}

// Index lists recipes with optional substring search, tag filter and
// ordering.
func (h *RecipeHandler) Index(c *gin.Context) {
	filter := repository.ListFilter{
		Query: c.Query("q"),
		Tag:   c.Query("tag"),
		Order: c.DefaultQuery("order", repository.OrderNew),
	}

	recipes, err := h.recipes.List(c.Request.Context(), filter)
	if err != nil {
		renderError(c, http.StatusInternalServerError, "Failed to load recipes")
		return
	}

	c.HTML(http.StatusOK, "index.html", mergeContext(pageContext(c), gin.H{
		"recipes": recipes,
		"q":       filter.Query,
		"tag":     filter.Tag,
		"order":   filter.Order,
	}))
}

func (h *RecipeHandler) NewForm(c *gin.Context) {
	c.HTML(http.StatusOK, "recipe_new.html", pageContext(c))
}

// Create persists a new recipe with its ingredients, steps, step images and
// tags, then renders the detail page directly.
func (h *RecipeHandler) Create(c *gin.Context) {
	user, _ := middleware.UserFrom(c)

	draft, formErrs := parseRecipeForm(c, h.media)
	if formErrs != nil {
		c.HTML(http.StatusUnprocessableEntity, "recipe_new.html", mergeContext(pageContext(c), gin.H{
			"errors":      formErrs,
			"title":       draft.Title,
			"description": draft.Description,
			"tags_csv":    strings.Join(draft.TagNames, ", "),
		}))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), mutationTimeout)
	defer cancel()

	created, err := h.recipes.Create(ctx, user.ID, draft)
	if err != nil {
		renderError(c, http.StatusInternalServerError, "Failed to save recipe")
		return
	}

	// Re-fetch for the ordered children and joined tags the template needs.
	recipe, err := h.recipes.Get(ctx, created.ID)
	if err != nil {
		renderError(c, http.StatusInternalServerError, "Failed to load recipe")
		return
	}
	h.renderDetail(c, recipe)
}

// Detail shows one recipe and unconditionally counts the view; there is no
// dedup by viewer.
func (h *RecipeHandler) Detail(c *gin.Context) {
	id, ok := recipeID(c)
	if !ok {
		return
	}

	recipe, err := h.recipes.View(c.Request.Context(), id)
	if errors.Is(err, service.ErrRecipeNotFound) {
		renderError(c, http.StatusNotFound, "Recipe not found")
		return
	}
	if err != nil {
		renderError(c, http.StatusInternalServerError, "Failed to load recipe")
		return
	}
	h.renderDetail(c, recipe)
}

func (h *RecipeHandler) renderDetail(c *gin.Context, recipe *models.Recipe) {
	user, _ := middleware.UserFrom(c)
	var userID *uint
	if user != nil {
		userID = &user.ID
	}

	favCount, isFav, err := h.favorites.Status(c.Request.Context(), userID, recipe.ID)
	if err != nil {
		renderError(c, http.StatusInternalServerError, "Failed to load recipe")
		return
	}

	isOwner := user != nil && recipe.AuthorID != nil && *recipe.AuthorID == user.ID

	c.HTML(http.StatusOK, "recipe_detail.html", mergeContext(pageContext(c), gin.H{
		"recipe":    recipe,
		"fav_count": favCount,
		"is_fav":    isFav,
		"is_owner":  isOwner,
	}))
}

func (h *RecipeHandler) EditForm(c *gin.Context) {
	id, ok := recipeID(c)
	if !ok {
		return
	}
	user, _ := middleware.UserFrom(c)

	recipe, err := h.recipes.GetOwned(c.Request.Context(), id, user.ID)
	if !h.renderOwnershipError(c, err) {
		return
	}

	names := make([]string, 0, len(recipe.Tags))
	for _, t := range recipe.Tags {
		names = append(names, t.Name)
	}

	c.HTML(http.StatusOK, "recipe_edit.html", mergeContext(pageContext(c), gin.H{
		"recipe":   recipe,
		"tags_csv": strings.Join(names, ", "),
	}))
}

// Update rewrites the recipe: children are deleted and recreated from the
// submission, tags are added but never pruned, and the main image changes
// only when a new upload is present.
func (h *RecipeHandler) Update(c *gin.Context) {
	id, ok := recipeID(c)
	if !ok {
		return
	}
	user, _ := middleware.UserFrom(c)

	draft, formErrs := parseRecipeForm(c, h.media)
	if formErrs != nil {
		c.HTML(http.StatusUnprocessableEntity, "recipe_edit.html", mergeContext(pageContext(c), gin.H{
			"errors":   formErrs,
			"recipe":   &models.Recipe{ID: id, Title: draft.Title, Description: draft.Description},
			"tags_csv": strings.Join(draft.TagNames, ", "),
		}))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), mutationTimeout)
	defer cancel()

	err := h.recipes.Update(ctx, id, user.ID, draft)
	if !h.renderOwnershipError(c, err) {
		return
	}
	c.Redirect(http.StatusSeeOther, fmt.Sprintf("/recipes/%d", id))
}

func (h *RecipeHandler) Delete(c *gin.Context) {
	id, ok := recipeID(c)
	if !ok {
		return
	}
	user, _ := middleware.UserFrom(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), mutationTimeout)
	defer cancel()

	err := h.recipes.Delete(ctx, id, user.ID)
	if !h.renderOwnershipError(c, err) {
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// renderOwnershipError maps the not-found/forbidden sentinels onto their
// pages. Returns false when a response was written.
func (h *RecipeHandler) renderOwnershipError(c *gin.Context, err error) bool {
	switch {
	case err == nil:
		return true
	case errors.Is(err, service.ErrRecipeNotFound):
		renderError(c, http.StatusNotFound, "Recipe not found")
	case errors.Is(err, service.ErrNotOwner):
		renderError(c, http.StatusForbidden, "You do not own this recipe")
	default:
		renderError(c, http.StatusInternalServerError, "Something went wrong")
	}
	return false
}

func recipeID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		renderError(c, http.StatusNotFound, "Recipe not found")
		return 0, false
	}
	return uint(id), true
}
