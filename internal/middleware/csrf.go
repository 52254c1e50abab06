package middleware

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const csrfFormField = "csrf_token"

// EnsureToken lazily generates the per-session anti-forgery token and returns
// it for embedding in forms.
func EnsureToken(c *gin.Context) string {
	session := sessions.Default(c)
	if token, ok := session.Get(keyCSRFToken).(string); ok && token != "" {
		return token
	}

	token := newToken()
	session.Set(keyCSRFToken, token)
	_ = session.Save()
	return token
}

// VerifyCSRF rejects any state-changing request whose csrf_token form field
// does not match the session token. Runs before the handler, so a mismatch
// means nothing was written.
func VerifyCSRF() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		stored, _ := session.Get(keyCSRFToken).(string)
		supplied := c.PostForm(csrfFormField)

		if stored == "" || supplied == "" ||
			subtle.ConstantTimeCompare([]byte(stored), []byte(supplied)) != 1 {
			user, _ := UserFrom(c)
			c.HTML(http.StatusBadRequest, "error.html", gin.H{
				"status":       http.StatusBadRequest,
				"message":      "Invalid CSRF token",
				"current_user": user,
				"csrf_token":   EnsureToken(c),
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

func newToken() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		panic(err) // the OS entropy source is gone; nothing sensible to do
	}
	return base64.RawURLEncoding.EncodeToString(b)
}
