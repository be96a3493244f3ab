// Package handlers exposes the session-management surface over the
// local HTTP server started by `authctl serve`.
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"matdepot/authctl/internal/auth"
	"matdepot/authctl/internal/middleware"
	"matdepot/authctl/internal/session"
)

type HandlerSet struct {
	log      zerolog.Logger
	manager  *auth.Manager
	sessions *session.Manager
}

func NewHandlerSet(log zerolog.Logger, manager *auth.Manager, sessions *session.Manager) HandlerSet {
	return HandlerSet{
		log:      log,
		manager:  manager,
		sessions: sessions,
	}
}

func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	v1 := router.Group("/v1")
	v1.Use(middleware.Auth(h.manager))
	{
		v1.GET("/me", h.Me)
		v1.POST("/logout", h.Logout)
		v1.GET("/sessions", h.ListSessions)
		v1.DELETE("/sessions/:sessionId", h.RevokeSession)
		v1.DELETE("/sessions", h.RevokeOtherSessions)
	}
}
