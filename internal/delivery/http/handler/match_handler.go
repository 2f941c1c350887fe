package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/inazuma-gg/ladder-backend/internal/delivery/http/middleware"
	"github.com/inazuma-gg/ladder-backend/internal/domain"
	"github.com/inazuma-gg/ladder-backend/internal/usecase/ladder"
	"github.com/inazuma-gg/ladder-backend/internal/usecase/result"
)

// MatchHandler handles match and result requests
type MatchHandler struct {
	reconciler    *result.Reconciler
	ladderUsecase *ladder.Usecase
}

func NewMatchHandler(reconciler *result.Reconciler, ladderUsecase *ladder.Usecase) *MatchHandler {
	return &MatchHandler{reconciler: reconciler, ladderUsecase: ladderUsecase}
}

type submitResultRequest struct {
	Outcome string `json:"outcome" binding:"required,oneof=win lose"`
}

type fileDisputeRequest struct {
	Reason      string  `json:"reason" binding:"required,min=3,max=500"`
	EvidenceURL *string `json:"evidence_url" binding:"omitempty,url"`
}

// List godoc
// @Summary List the caller's match history
// @Tags matches
// @Produce json
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Page offset" default(0)
// @Success 200 {array} domain.Match
// @Router /matches [get]
// @Security BearerAuth
func (h *MatchHandler) List(c *gin.Context) {
	profileID := middleware.GetProfileID(c)
	limit, offset := pagination(c, 20)

	matches, err := h.ladderUsecase.History(c.Request.Context(), profileID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, matches)
}

// Get godoc
// @Summary Get a match by id
// @Description Includes the confirmation deadline and forfeit state for pending matches
// @Tags matches
// @Produce json
// @Param id path string true "Match ID"
// @Success 200 {object} result.View
// @Failure 404 {object} ErrorResponse
// @Router /matches/{id} [get]
// @Security BearerAuth
func (h *MatchHandler) Get(c *gin.Context) {
	view, err := h.reconciler.Describe(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Preview godoc
// @Summary Preview rating changes for a pending match
// @Description Shows what each outcome would do to both players' ratings
// @Tags matches
// @Produce json
// @Param id path string true "Match ID"
// @Success 200 {object} rating.PreviewResult
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /matches/{id}/preview [get]
// @Security BearerAuth
func (h *MatchHandler) Preview(c *gin.Context) {
	profileID := middleware.GetProfileID(c)

	preview, err := h.ladderUsecase.PreviewMatch(c.Request.Context(), c.Param("id"), profileID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, preview)
}

// SubmitResult godoc
// @Summary Report the outcome of a match
// @Description Records the caller's reported outcome; the second matching report settles the match
// @Tags matches
// @Accept json
// @Produce json
// @Param id path string true "Match ID"
// @Param request body submitResultRequest true "Reported outcome"
// @Success 200 {object} result.Submission
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 410 {object} ErrorResponse
// @Router /matches/{id}/result [post]
// @Security BearerAuth
func (h *MatchHandler) SubmitResult(c *gin.Context) {
	profileID := middleware.GetProfileID(c)

	var req submitResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	submission, err := h.reconciler.SubmitResult(c.Request.Context(), c.Param("id"), profileID, domain.Outcome(req.Outcome))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, submission)
}

// FileDispute godoc
// @Summary Dispute a match result
// @Tags matches
// @Accept json
// @Produce json
// @Param id path string true "Match ID"
// @Param request body fileDisputeRequest true "Dispute details"
// @Success 201 {object} domain.Dispute
// @Success 200 {object} domain.Dispute "Existing dispute"
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /matches/{id}/dispute [post]
// @Security BearerAuth
func (h *MatchHandler) FileDispute(c *gin.Context) {
	profileID := middleware.GetProfileID(c)

	var req fileDisputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	dispute, created, err := h.reconciler.FileDispute(c.Request.Context(), c.Param("id"), profileID, req.Reason, req.EvidenceURL)
	if err != nil {
		respondError(c, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, dispute)
}
