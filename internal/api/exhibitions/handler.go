package exhibitions

import (
	"net/http"

	"gallery-la/internal/api/render"
	"gallery-la/internal/auth"
	"gallery-la/internal/domain/works"
	"gallery-la/internal/errs"
	exhibitionsvc "gallery-la/internal/service/exhibitions"
	profilesvc "gallery-la/internal/service/profiles"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	exhibitions *exhibitionsvc.Repository
	profiles    *profilesvc.Repository
	log         *zap.Logger
}

func NewHandler(exhibitions *exhibitionsvc.Repository, profiles *profilesvc.Repository, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{exhibitions: exhibitions, profiles: profiles, log: log}
}

// GET /feed/exhibitions
func (h *Handler) Feed(c *gin.Context) {
	list, err := h.exhibitions.ListAllPublic(c.Request.Context())
	if err != nil {
		render.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GET /profiles/:username/exhibitions
func (h *Handler) ListByUsername(c *gin.Context) {
	ctx := c.Request.Context()
	p, err := h.profiles.GetByUsername(ctx, c.Param("username"))
	if err != nil {
		render.Error(c, h.log, err)
		return
	}
	if p == nil {
		render.Error(c, h.log, errs.NotFound("exhibitions.ListByUsername", "profile"))
		return
	}
	list, err := h.exhibitions.ListPublicByOwner(ctx, p.ID)
	if err != nil {
		render.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GET /me/exhibitions
func (h *Handler) ListMine(c *gin.Context) {
	id, ok := auth.FromContext(c.Request.Context())
	if !ok {
		render.Error(c, h.log, errs.AuthRequired("exhibitions.ListMine"))
		return
	}
	list, err := h.exhibitions.ListByOwner(c.Request.Context(), id.ID)
	if err != nil {
		render.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GET /exhibitions/:id
func (h *Handler) Get(c *gin.Context) {
	d, err := h.exhibitions.GetDetails(c.Request.Context(), c.Param("id"))
	if err != nil {
		render.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// POST /exhibitions
func (h *Handler) Create(c *gin.Context) {
	var in works.ExhibitionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		render.BadRequest(c, "Malformed JSON")
		return
	}
	e, err := h.exhibitions.Create(c.Request.Context(), in)
	if err != nil {
		render.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, e)
}

// PATCH /exhibitions/:id
func (h *Handler) Update(c *gin.Context) {
	var patch works.ExhibitionPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		render.BadRequest(c, "Malformed JSON")
		return
	}
	e, err := h.exhibitions.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		render.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

// DELETE /exhibitions/:id
func (h *Handler) Delete(c *gin.Context) {
	if err := h.exhibitions.Delete(c.Request.Context(), c.Param("id")); err != nil {
		render.Error(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type artworkIDsRequest struct {
	ArtworkIDs []string `json:"artwork_ids"`
}

// POST /exhibitions/:id/artworks
func (h *Handler) AddArtworks(c *gin.Context) {
	var req artworkIDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		render.BadRequest(c, "Malformed JSON")
		return
	}
	if err := h.exhibitions.AddArtworks(c.Request.Context(), c.Param("id"), req.ArtworkIDs); err != nil {
		render.Error(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DELETE /exhibitions/:id/artworks/:artworkId
func (h *Handler) RemoveArtwork(c *gin.Context) {
	if err := h.exhibitions.RemoveArtwork(c.Request.Context(), c.Param("id"), c.Param("artworkId")); err != nil {
		render.Error(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type orderRequest struct {
	DisplayOrder *int `json:"display_order"`
}

// PUT /exhibitions/:id/artworks/:artworkId/order
func (h *Handler) ReorderArtwork(c *gin.Context) {
	var req orderRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.DisplayOrder == nil {
		render.BadRequest(c, "display_order is required")
		return
	}
	err := h.exhibitions.ReorderArtwork(c.Request.Context(), c.Param("id"), c.Param("artworkId"), *req.DisplayOrder)
	if err != nil {
		render.Error(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// PUT /exhibitions/:id/artworks/reorder
func (h *Handler) Reorder(c *gin.Context) {
	var req artworkIDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		render.BadRequest(c, "Malformed JSON")
		return
	}
	if err := h.exhibitions.Reorder(c.Request.Context(), c.Param("id"), req.ArtworkIDs); err != nil {
		render.Error(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
