package middleware

import (
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"

	"github.com/Hedwigsan/cookshare/internal/models"
	"github.com/Hedwigsan/cookshare/internal/service"
)

const (
	sessionName = "cookshare_session"

	keyUserID    = "user_id"
	keyCSRFToken = "csrf_token"

	ctxUserKey = "current_user"
)

// Sessions installs the cookie-backed session store every other middleware
// reads from.
func Sessions(secret string, maxAge time.Duration, secure bool) gin.HandlerFunc {
	store := cookie.NewStore([]byte(secret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
	return sessions.Sessions(sessionName, store)
}

// LoadUser resolves the session's user id to a full user record and stores it
// on the request context. A stale id (account deleted) clears the session.
func LoadUser(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		raw := session.Get(keyUserID)
		if raw == nil {
			c.Next()
			return
		}
		id, ok := raw.(uint)
		if !ok {
			clearSession(session)
			_ = session.Save()
			c.Next()
			return
		}

		user, err := authService.GetUser(c.Request.Context(), id)
		if err != nil {
			clearSession(session)
			_ = session.Save()
			c.Next()
			return
		}

		c.Set(ctxUserKey, user)
		c.Next()
	}
}

// LoginRequired sends anonymous visitors to the login form. Screen-flow
// protection, so a redirect rather than an error page.
func LoginRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := UserFrom(c); !ok {
			c.Redirect(http.StatusSeeOther, "/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// UserFrom returns the authenticated user loaded by LoadUser, if any.
func UserFrom(c *gin.Context) (*models.User, bool) {
	v, exists := c.Get(ctxUserKey)
	if !exists {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok
}

// SignIn binds the session to the given user.
func SignIn(c *gin.Context, userID uint) error {
	session := sessions.Default(c)
	session.Set(keyUserID, userID)
	return session.Save()
}

// SignOut drops everything held in the session, token included.
func SignOut(c *gin.Context) error {
	session := sessions.Default(c)
	clearSession(session)
	return session.Save()
}

func clearSession(session sessions.Session) {
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
}
