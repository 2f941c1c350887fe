package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/inazuma-gg/ladder-backend/internal/delivery/http/middleware"
	"github.com/inazuma-gg/ladder-backend/internal/usecase/queue"
)

// QueueHandler handles matchmaking queue requests
type QueueHandler struct {
	queueUsecase *queue.Usecase
}

func NewQueueHandler(queueUsecase *queue.Usecase) *QueueHandler {
	return &QueueHandler{queueUsecase: queueUsecase}
}

// Join godoc
// @Summary Join the matchmaking queue
// @Description Enqueues the authenticated player and starts searching for an opponent
// @Tags queue
// @Produce json
// @Success 201 {object} domain.QueueEntry
// @Failure 401 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /queue [post]
// @Security BearerAuth
func (h *QueueHandler) Join(c *gin.Context) {
	profileID := middleware.GetProfileID(c)

	entry, err := h.queueUsecase.StartSearch(c.Request.Context(), profileID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// Leave godoc
// @Summary Leave the matchmaking queue
// @Tags queue
// @Produce json
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /queue [delete]
// @Security BearerAuth
func (h *QueueHandler) Leave(c *gin.Context) {
	profileID := middleware.GetProfileID(c)

	if err := h.queueUsecase.CancelSearch(c.Request.Context(), profileID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Status godoc
// @Summary Get current search status
// @Description Returns the widening phase and eligible tiers of the player's active search
// @Tags queue
// @Produce json
// @Success 200 {object} queue.Status
// @Failure 404 {object} ErrorResponse
// @Router /queue/status [get]
// @Security BearerAuth
func (h *QueueHandler) Status(c *gin.Context) {
	profileID := middleware.GetProfileID(c)

	status, err := h.queueUsecase.GetStatus(c.Request.Context(), profileID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// Heartbeat godoc
// @Summary Refresh queue presence
// @Description Keeps the player's queue entry alive; entries without heartbeats are reaped
// @Tags queue
// @Produce json
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /queue/heartbeat [put]
// @Security BearerAuth
func (h *QueueHandler) Heartbeat(c *gin.Context) {
	profileID := middleware.GetProfileID(c)

	if err := h.queueUsecase.Heartbeat(c.Request.Context(), profileID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
