package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/click-call/click-call-backend/internal/projects/domain"
	"github.com/click-call/click-call-backend/internal/projects/service"
)

// PublicHandler resolves public call addresses. It never authenticates and
// never exposes more than the call page needs.
type PublicHandler struct {
	svc           *service.Service
	canonicalHost string
}

func RegisterPublic(rg *gin.RouterGroup, svc *service.Service, canonicalHost string) {
	h := &PublicHandler{svc: svc, canonicalHost: canonicalHost}

	rg.GET("/call/:user/:call", h.resolve)
	// Query-string fallback for hosts without path rewrites.
	rg.GET("/call", h.resolve)
}

// resolve looks a project up by its two path segments. Absent segments
// coerce to empty strings; a miss is a display state, reported as a plain
// not-found body rather than an error.
func (h *PublicHandler) resolve(c *gin.Context) {
	user := c.Param("user")
	call := c.Param("call")
	if user == "" {
		user = c.Query("user")
	}
	if call == "" {
		call = c.Query("call")
	}

	p := h.svc.GetBySegments(c.Request.Context(), user, call)
	if p == nil {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "project not found"})
		return
	}

	view := p.WithDefaults()
	c.JSON(http.StatusOK, gin.H{
		"ok":             true,
		"project":        view,
		"canonical_link": domain.CanonicalLink(h.canonicalHost, view),
	})
}
