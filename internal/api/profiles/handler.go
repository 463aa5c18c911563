package profiles

import (
	"net/http"

	"gallery-la/internal/api/render"
	"gallery-la/internal/domain/profiles"
	"gallery-la/internal/errs"
	profilesvc "gallery-la/internal/service/profiles"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	profiles *profilesvc.Repository
	log      *zap.Logger
}

func NewHandler(profiles *profilesvc.Repository, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{profiles: profiles, log: log}
}

// GET /artists
func (h *Handler) Artists(c *gin.Context) {
	list, err := h.profiles.ListAllWithStats(c.Request.Context())
	if err != nil {
		render.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GET /profiles/:username
func (h *Handler) GetByUsername(c *gin.Context) {
	p, err := h.profiles.GetByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		render.Error(c, h.log, err)
		return
	}
	if p == nil {
		render.Error(c, h.log, errs.NotFound("profiles.GetByUsername", "profile"))
		return
	}
	c.JSON(http.StatusOK, p)
}

type meResponse struct {
	Profile  *profiles.Profile `json:"profile"`
	Complete bool              `json:"complete"`
}

// GET /me/profile
func (h *Handler) Me(c *gin.Context) {
	p, err := h.profiles.Current(c.Request.Context())
	if err != nil {
		render.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, meResponse{Profile: p, Complete: p.IsComplete()})
}

// PUT /me/profile
func (h *Handler) Upsert(c *gin.Context) {
	var in profiles.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		render.BadRequest(c, "Malformed JSON")
		return
	}
	p, err := h.profiles.Upsert(c.Request.Context(), in)
	if err != nil {
		render.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, meResponse{Profile: p, Complete: p.IsComplete()})
}

// GET /me/profile/username-available?u=
func (h *Handler) UsernameAvailable(c *gin.Context) {
	ok, err := h.profiles.CheckUsernameAvailable(c.Request.Context(), c.Query("u"))
	if err != nil {
		render.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"available": ok})
}
