package handler

import (
	"net/http"

	"commish/internal/service"

	"github.com/gin-gonic/gin"
)

// RedirectHandler is the one unauthenticated page-facing surface: it turns a
// shared tracking link into a storefront redirect.
type RedirectHandler struct {
	svc *service.RedirectService
}

func NewRedirectHandler(svc *service.RedirectService) *RedirectHandler {
	return &RedirectHandler{svc: svc}
}

// Go resolves ?ref=CODE (or the legacy ?c=creator&m=merchant pair) and
// redirects. Every failure renders the same generic message so the endpoint
// cannot be used to probe which codes exist.
func (h *RedirectHandler) Go(c *gin.Context) {
	finalURL, _, err := h.svc.Resolve(
		c.Query("ref"),
		c.Query("c"),
		c.Query("m"),
		c.ClientIP(),
	)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "this link is invalid or has expired"})
		return
	}
	c.Redirect(http.StatusFound, finalURL)
}
