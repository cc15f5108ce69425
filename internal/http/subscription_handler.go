package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"vidtube/internal/domain"
	"vidtube/internal/service"
)

// SubscriptionHandler expone suscripciones y el perfil público de canal.
type SubscriptionHandler struct {
	logger  *zap.Logger
	subServ *service.SubscriptionService
}

func NewSubscriptionHandler(logger *zap.Logger, subServ *service.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{logger: logger, subServ: subServ}
}

// Subscribe maneja POST /api/v1/subscriptions/c/:channelId.
func (h *SubscriptionHandler) Subscribe(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		respondError(c, h.logger, domain.Unauthorized("Unauthorized request"))
		return
	}

	sub, created, err := h.subServ.Subscribe(c.Request.Context(), claims.UserID, c.Param("channelId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	if !created {
		respond(c, http.StatusOK, sub, "Already subscribed")
		return
	}
	respond(c, http.StatusCreated, sub, "Subscribed successfully")
}

// Unsubscribe maneja DELETE /api/v1/subscriptions/c/:channelId.
func (h *SubscriptionHandler) Unsubscribe(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		respondError(c, h.logger, domain.Unauthorized("Unauthorized request"))
		return
	}

	if err := h.subServ.Unsubscribe(c.Request.Context(), claims.UserID, c.Param("channelId")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, gin.H{}, "Unsubscribed successfully")
}

// ChannelProfile maneja GET /api/v1/users/c/:username.
func (h *SubscriptionHandler) ChannelProfile(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		respondError(c, h.logger, domain.Unauthorized("Unauthorized request"))
		return
	}

	profile, err := h.subServ.ChannelProfile(c.Request.Context(), c.Param("username"), claims.UserID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, profile, "Channel fetched successfully")
}
