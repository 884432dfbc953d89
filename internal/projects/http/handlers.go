package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/click-call/click-call-backend/internal/projects/domain"
	"github.com/click-call/click-call-backend/internal/projects/repository"
	"github.com/click-call/click-call-backend/internal/projects/service"
)

// Handler serves the admin project CRUD plus export/import and sync.
type Handler struct {
	svc           *service.Service
	canonicalHost string
}

// Register mounts the project CRUD under {admin}/projects and the whole-list
// store operations under {admin}/store.
func Register(admin *gin.RouterGroup, svc *service.Service, canonicalHost string) {
	h := &Handler{svc: svc, canonicalHost: canonicalHost}

	pg := admin.Group("/projects")
	pg.GET("", h.list)
	pg.POST("", h.upsert)
	pg.GET("/:id", h.get)
	pg.PUT("/:id", h.update)
	pg.DELETE("/:id", h.delete)

	sg := admin.Group("/store")
	sg.GET("/export", h.export)
	sg.POST("/import", h.importList)
	sg.POST("/sync", h.sync)
}

type projectView struct {
	domain.Project
	CanonicalLink string `json:"canonical_link"`
}

func (h *Handler) view(p domain.Project) projectView {
	return projectView{Project: p, CanonicalLink: domain.CanonicalLink(h.canonicalHost, p)}
}

func (h *Handler) list(c *gin.Context) {
	items := h.svc.List(c.Request.Context())
	views := make([]projectView, 0, len(items))
	for _, p := range items {
		views = append(views, h.view(p))
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "projects": views})
}

func (h *Handler) get(c *gin.Context) {
	p := h.svc.GetByID(c.Request.Context(), c.Param("id"))
	if p == nil {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "project not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": h.view(*p)})
}

func (h *Handler) upsert(c *gin.Context) {
	var p domain.Project
	if err := c.ShouldBindJSON(&p); err != nil || strings.TrimSpace(p.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}
	p.Name = strings.TrimSpace(p.Name)

	saved, err := h.svc.Upsert(c.Request.Context(), p)
	if err != nil {
		writeRemoteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "project": h.view(*saved)})
}

func (h *Handler) update(c *gin.Context) {
	var p domain.Project
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}
	p.ID = c.Param("id")

	saved, err := h.svc.Upsert(c.Request.Context(), p)
	if err != nil {
		writeRemoteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": h.view(*saved)})
}

func (h *Handler) delete(c *gin.Context) {
	ok, err := h.svc.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeRemoteError(c, err)
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "project not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) export(c *gin.Context) {
	c.Header("Content-Disposition", `attachment; filename="cc_projects.json"`)
	c.JSON(http.StatusOK, h.svc.Export(c.Request.Context()))
}

func (h *Handler) importList(c *gin.Context) {
	var records []domain.Project
	if err := c.ShouldBindJSON(&records); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	n, err := h.svc.Import(c.Request.Context(), records)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"ok": false, "imported": n, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "imported": n})
}

func (h *Handler) sync(c *gin.Context) {
	res := h.svc.SyncLocal(c.Request.Context())

	body := gin.H{
		"ok":       res.OK(),
		"upserted": res.Upserted,
		"inserted": res.Inserted,
	}
	if err := res.Err(); err != nil {
		body["error"] = err.Error()
	}

	status := http.StatusOK
	if !res.OK() {
		status = res.Status()
	}
	c.JSON(status, body)
}

// writeRemoteError propagates the row-store failure verbatim: message and
// status as reported by the backend.
func writeRemoteError(c *gin.Context, err error) {
	if re, ok := err.(*repository.RemoteError); ok {
		c.JSON(re.Status, gin.H{"ok": false, "error": re.Message})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
}
