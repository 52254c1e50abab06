package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Hedwigsan/cookshare/internal/config"
	"github.com/Hedwigsan/cookshare/internal/media"
	"github.com/Hedwigsan/cookshare/internal/middleware"
	"github.com/Hedwigsan/cookshare/internal/repository"
	"github.com/Hedwigsan/cookshare/internal/service"
)

// NewRouter wires repositories, services and handlers onto a gin engine.
// Every route shares the session, body-cap and user-loading middleware; the
// mutating routes additionally go through the CSRF guard inside each
// handler's RegisterRoutes.
func NewRouter(cfg *config.Config, db *gorm.DB, logger *slog.Logger) (*gin.Engine, error) {
	userRepo := repository.NewUserRepository(db)
	recipeRepo := repository.NewRecipeRepository(db)
	favoriteRepo := repository.NewFavoriteRepository(db)

	authService := service.NewAuthService(userRepo)
	recipeService := service.NewRecipeService(recipeRepo)
	favoriteService := service.NewFavoriteService(favoriteRepo, recipeRepo)

	store, err := media.NewStore(cfg.MediaDir, logger)
	if err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(middleware.MaxBodyBytes(cfg.UploadMaxBytes))
	r.Use(middleware.Sessions(cfg.SessionSecret, cfg.SessionMaxAge, cfg.IsProduction()))
	r.Use(middleware.LoadUser(authService))

	r.LoadHTMLGlob(cfg.TemplateGlob)
	r.Static("/static", cfg.StaticDir)
	r.Static("/media", cfg.MediaDir)

	csrf := middleware.VerifyCSRF()
	limit := middleware.NewRateLimiter(cfg.LoginRateLimit, cfg.LoginRateBurst).Middleware()

	NewAuthHandler(authService).RegisterRoutes(r, csrf, limit)
	NewRecipeHandler(recipeService, favoriteService, store).RegisterRoutes(r, csrf)
	NewFavoriteHandler(favoriteService).RegisterRoutes(r, csrf)
	NewPWAHandler(cfg.StaticDir).RegisterRoutes(r)

	return r, nil
}
