package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Hedwigsan/cookshare/internal/middleware"
)

// renderError shows the shared error page. Handlers map service sentinels to
// statuses here at the route boundary and nowhere else.
func renderError(c *gin.Context, status int, message string) {
	c.HTML(status, "error.html", mergeContext(pageContext(c), gin.H{
		"status":  status,
		"message": message,
	}))
}

// pageContext seeds the template data every page shares: the logged-in user
// (if any) and the per-session CSRF token.
func pageContext(c *gin.Context) gin.H {
	user, _ := middleware.UserFrom(c)
	return gin.H{
		"current_user": user,
		"csrf_token":   middleware.EnsureToken(c),
	}
}

func mergeContext(base gin.H, extra gin.H) gin.H {
	for k, v := range extra {
		base[k] = v
	}
	return base
}
