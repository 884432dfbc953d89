package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/click-call/click-call-backend/internal/callsession"
	"github.com/click-call/click-call-backend/internal/feedback"
	"github.com/click-call/click-call-backend/internal/projects/service"
)

// Handler exposes the public call-session surface: the visitor's page
// creates a session for a resolved project, drives it with events and polls
// the snapshot to know what to render and play.
type Handler struct {
	projects *service.Service
	manager  *callsession.Manager
}

func Register(rg *gin.RouterGroup, projects *service.Service, manager *callsession.Manager) {
	h := &Handler{projects: projects, manager: manager}

	rg.POST("/call/:user/:call/sessions", h.create)
	rg.GET("/sessions/:id", h.get)
	rg.POST("/sessions/:id/events", h.event)
	rg.DELETE("/sessions/:id", h.close)
}

func (h *Handler) create(c *gin.Context) {
	user := c.Param("user")
	call := c.Param("call")

	p := h.projects.GetBySegments(c.Request.Context(), user, call)
	if p == nil {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "project not found"})
		return
	}

	sess := h.manager.Create(p.WithDefaults(), user, call)
	c.JSON(http.StatusCreated, gin.H{"ok": true, "session": sess.Snapshot()})
}

func (h *Handler) get(c *gin.Context) {
	sess, ok := h.manager.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "session not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "session": sess.Snapshot()})
}

type eventReq struct {
	Type    string `json:"type" binding:"required"`
	Quality string `json:"quality"`
}

func (h *Handler) event(c *gin.Context) {
	sess, ok := h.manager.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "session not found"})
		return
	}

	var req eventReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	var (
		applied bool
		err     error
	)
	switch req.Type {
	case "start":
		applied = sess.Start()
	case "accept":
		applied = sess.Accept()
	case "reject":
		applied = sess.Reject()
	case "end":
		applied = sess.End()
	case "playback_done":
		applied = sess.NotifyPlaybackDone()
	case "mute":
		sess.SetMuted(true)
		applied = true
	case "unmute":
		sess.SetMuted(false)
		applied = true
	case "feedback":
		applied, err = sess.SubmitFeedback(feedback.Quality(req.Quality))
	default:
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "unknown event type"})
		return
	}

	if err == callsession.ErrInvalidQuality {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"ok": false, "error": err.Error()})
		return
	}
	if !applied {
		c.JSON(http.StatusConflict, gin.H{
			"ok":      false,
			"error":   "event not allowed in current state",
			"session": sess.Snapshot(),
		})
		return
	}
	if err != nil {
		// The transition happened; only the feedback write failed.
		c.JSON(http.StatusBadGateway, gin.H{
			"ok":      false,
			"error":   err.Error(),
			"session": sess.Snapshot(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "session": sess.Snapshot()})
}

func (h *Handler) close(c *gin.Context) {
	h.manager.Close(c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
