package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	gate *Gate
}

func Register(rg *gin.RouterGroup, gate *Gate) {
	h := &Handler{gate: gate}

	rg.POST("/login", h.login)
	rg.POST("/logout", h.logout)
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	if !h.gate.Enabled() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "error": "admin credentials not configured"})
		return
	}

	token, ok := h.gate.Login(req.Email, req.Password)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "invalid credentials"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "token": token})
}

func (h *Handler) logout(c *gin.Context) {
	h.gate.Logout(bearerToken(c.GetHeader("Authorization")))
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
