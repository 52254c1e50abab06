package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Hedwigsan/cookshare/internal/middleware"
	"github.com/Hedwigsan/cookshare/internal/service"
)

type AuthHandler struct {
	authService service.AuthService
}

func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterRoutes mounts signup/login/logout plus the account page. The
// credential submissions sit behind the CSRF guard and the per-IP limiter.
func (h *AuthHandler) RegisterRoutes(r *gin.Engine, csrf, limit gin.HandlerFunc) {
	r.GET("/signup", h.SignupForm)
	r.POST("/signup", limit, csrf, h.Signup)
	r.GET("/login", h.LoginForm)
	r.POST("/login", limit, csrf, h.Login)
	r.POST("/logout", csrf, h.Logout)
	r.GET("/account", middleware.LoginRequired(), h.Account)
}

func (h *AuthHandler) SignupForm(c *gin.Context) {
	c.HTML(http.StatusOK, "signup.html", pageContext(c))
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var form signupForm
	if err := c.ShouldBind(&form); err != nil {
		c.HTML(http.StatusUnprocessableEntity, "signup.html", mergeContext(pageContext(c), gin.H{
			"errors": fieldErrors(err),
			"email":  c.PostForm("email"),
		}))
		return
	}

	user, err := h.authService.Register(c.Request.Context(), form.Email, form.Password)
	if errors.Is(err, service.ErrEmailInUse) {
		c.HTML(http.StatusOK, "signup.html", mergeContext(pageContext(c), gin.H{
			"error": "This email is already registered.",
			"email": form.Email,
		}))
		return
	}
	if err != nil {
		renderError(c, http.StatusInternalServerError, "Signup failed")
		return
	}

	if err := middleware.SignIn(c, user.ID); err != nil {
		renderError(c, http.StatusInternalServerError, "Signup failed")
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *AuthHandler) LoginForm(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", pageContext(c))
}

func (h *AuthHandler) Login(c *gin.Context) {
	var form loginForm
	if err := c.ShouldBind(&form); err != nil {
		c.HTML(http.StatusUnprocessableEntity, "login.html", mergeContext(pageContext(c), gin.H{
			"errors": fieldErrors(err),
			"email":  c.PostForm("email"),
		}))
		return
	}

	user, err := h.authService.Login(c.Request.Context(), form.Email, form.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		c.HTML(http.StatusOK, "login.html", mergeContext(pageContext(c), gin.H{
			"error": "Wrong email or password.",
			"email": form.Email,
		}))
		return
	}
	if err != nil {
		renderError(c, http.StatusInternalServerError, "Login failed")
		return
	}

	if err := middleware.SignIn(c, user.ID); err != nil {
		renderError(c, http.StatusInternalServerError, "Login failed")
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if err := middleware.SignOut(c); err != nil {
		renderError(c, http.StatusInternalServerError, "Logout failed")
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *AuthHandler) Account(c *gin.Context) {
	c.HTML(http.StatusOK, "account.html", pageContext(c))
}
