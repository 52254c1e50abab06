package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Hedwigsan/cookshare/internal/middleware"
	"github.com/Hedwigsan/cookshare/internal/repository"
	"github.com/Hedwigsan/cookshare/internal/service"
)

type FavoriteHandler struct {
	favorites service.FavoriteService
}

func NewFavoriteHandler(favorites service.FavoriteService) *FavoriteHandler {
	return &FavoriteHandler{favorites: favorites}
}

func (h *FavoriteHandler) RegisterRoutes(r *gin.Engine, csrf gin.HandlerFunc) {
	login := middleware.LoginRequired()

	r.POST("/recipes/:id/favorite", csrf, login, h.Favorite)
	r.POST("/recipes/:id/unfavorite", csrf, login, h.Unfavorite)
	r.GET("/favorites", login, h.List)
}

func (h *FavoriteHandler) Favorite(c *gin.Context) {
	id, ok := recipeID(c)
	if !ok {
		return
	}
	user, _ := middleware.UserFrom(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), mutationTimeout)
	defer cancel()

	err := h.favorites.Favorite(ctx, user.ID, id)
	if errors.Is(err, service.ErrRecipeNotFound) {
		renderError(c, http.StatusNotFound, "Recipe not found")
		return
	}
	if err != nil {
		renderError(c, http.StatusInternalServerError, "Failed to favorite recipe")
		return
	}
	c.Redirect(http.StatusSeeOther, fmt.Sprintf("/recipes/%d", id))
}

func (h *FavoriteHandler) Unfavorite(c *gin.Context) {
	id, ok := recipeID(c)
	if !ok {
		return
	}
	user, _ := middleware.UserFrom(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), mutationTimeout)
	defer cancel()

	if err := h.favorites.Unfavorite(ctx, user.ID, id); err != nil {
		renderError(c, http.StatusInternalServerError, "Failed to unfavorite recipe")
		return
	}
	c.Redirect(http.StatusSeeOther, fmt.Sprintf("/recipes/%d", id))
}

// List shows the signed-in user's favorites with the same ordering options
// as the front page.
func (h *FavoriteHandler) List(c *gin.Context) {
	user, _ := middleware.UserFrom(c)
	order := c.DefaultQuery("order", repository.OrderNew)

	recipes, err := h.favorites.ListRecipes(c.Request.Context(), user.ID, order)
	if err != nil {
		renderError(c, http.StatusInternalServerError, "Failed to load favorites")
		return
	}

	c.HTML(http.StatusOK, "favorites.html", mergeContext(pageContext(c), gin.H{
		"recipes": recipes,
		"order":   order,
	}))
}
