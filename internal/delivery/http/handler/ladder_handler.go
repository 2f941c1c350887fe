package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/inazuma-gg/ladder-backend/internal/delivery/http/middleware"
	"github.com/inazuma-gg/ladder-backend/internal/usecase/ladder"
)

// LadderHandler handles ladder and profile requests
type LadderHandler struct {
	ladderUsecase *ladder.Usecase
}

func NewLadderHandler(ladderUsecase *ladder.Usecase) *LadderHandler {
	return &LadderHandler{ladderUsecase: ladderUsecase}
}

// Top godoc
// @Summary Get the ladder standings
// @Tags ladder
// @Produce json
// @Param limit query int false "Page size" default(50)
// @Param offset query int false "Page offset" default(0)
// @Success 200 {array} ladder.Row
// @Router /ladder [get]
// @Security BearerAuth
func (h *LadderHandler) Top(c *gin.Context) {
	limit, offset := pagination(c, 50)

	rows, err := h.ladderUsecase.Top(c.Request.Context(), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// Me godoc
// @Summary Get the caller's profile and ladder position
// @Tags profiles
// @Produce json
// @Success 200 {object} ladder.ProfileView
// @Failure 404 {object} ErrorResponse
// @Router /profiles/me [get]
// @Security BearerAuth
func (h *LadderHandler) Me(c *gin.Context) {
	profileID := middleware.GetProfileID(c)

	view, err := h.ladderUsecase.GetProfile(c.Request.Context(), profileID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Get godoc
// @Summary Get a profile and its ladder position
// @Tags profiles
// @Produce json
// @Param id path string true "Profile ID"
// @Success 200 {object} ladder.ProfileView
// @Failure 404 {object} ErrorResponse
// @Router /profiles/{id} [get]
// @Security BearerAuth
func (h *LadderHandler) Get(c *gin.Context) {
	view, err := h.ladderUsecase.GetProfile(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}
