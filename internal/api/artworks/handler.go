package artworks

import (
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"gallery-la/internal/api/render"
	"gallery-la/internal/auth"
	"gallery-la/internal/domain/works"
	"gallery-la/internal/errs"
	"gallery-la/internal/mediastore"
	artworksvc "gallery-la/internal/service/artworks"
	profilesvc "gallery-la/internal/service/profiles"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	artworks  *artworksvc.Repository
	profiles  *profilesvc.Repository
	feedLimit int
	log       *zap.Logger
}

func NewHandler(artworks *artworksvc.Repository, profiles *profilesvc.Repository, feedLimit int, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{artworks: artworks, profiles: profiles, feedLimit: feedLimit, log: log}
}

// ------------------------------
// GET /feed/artworks?limit=
// ------------------------------
func (h *Handler) Feed(c *gin.Context) {
	limit := h.feedLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			render.BadRequest(c, "limit must be a positive integer")
			return
		}
		limit = n
	}
	list, err := h.artworks.ListAllPublic(c.Request.Context(), limit)
	if err != nil {
		render.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// ------------------------------
// GET /profiles/:username/artworks
// ------------------------------
func (h *Handler) ListByUsername(c *gin.Context) {
	ctx := c.Request.Context()
	p, err := h.profiles.GetByUsername(ctx, c.Param("username"))
	if err != nil {
		render.Error(c, h.log, err)
		return
	}
	if p == nil {
		render.Error(c, h.log, errs.NotFound("artworks.ListByUsername", "profile"))
		return
	}
	list, err := h.artworks.ListPublicByOwner(ctx, p.ID)
	if err != nil {
		render.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// ------------------------------
// GET /me/artworks
// ------------------------------
func (h *Handler) ListMine(c *gin.Context) {
	id, ok := auth.FromContext(c.Request.Context())
	if !ok {
		render.Error(c, h.log, errs.AuthRequired("artworks.ListMine"))
		return
	}
	list, err := h.artworks.ListByOwner(c.Request.Context(), id.ID)
	if err != nil {
		render.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// ------------------------------
// POST /artworks (multipart: file, cover, title, description, is_public)
// ------------------------------
func (h *Handler) Upload(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		render.BadRequest(c, "file is required")
		return
	}
	file, closeFile, err := open(fh)
	if err != nil {
		render.BadRequest(c, "file could not be read")
		return
	}
	defer closeFile()

	opts := artworksvc.UploadOptions{
		Title:       formString(c, "title"),
		Description: formString(c, "description"),
	}
	if raw, ok := c.GetPostForm("is_public"); ok && raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			render.BadRequest(c, "is_public must be a boolean")
			return
		}
		opts.IsPublic = &v
	}
	if coverHeader, err := c.FormFile("cover"); err == nil {
		cover, closeCover, err := open(coverHeader)
		if err != nil {
			render.BadRequest(c, "cover could not be read")
			return
		}
		defer closeCover()
		opts.Cover = &cover
	}

	a, err := h.artworks.Upload(c.Request.Context(), file, opts)
	if err != nil {
		render.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

// ------------------------------
// PATCH /artworks/:id
// ------------------------------
func (h *Handler) Update(c *gin.Context) {
	var patch works.ArtworkPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		render.BadRequest(c, "Malformed JSON")
		return
	}
	a, err := h.artworks.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		render.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

// ------------------------------
// PUT /artworks/:id/cover (multipart: cover)
// ------------------------------
func (h *Handler) UpdateCover(c *gin.Context) {
	fh, err := c.FormFile("cover")
	if err != nil {
		render.BadRequest(c, "cover is required")
		return
	}
	cover, closeCover, err := open(fh)
	if err != nil {
		render.BadRequest(c, "cover could not be read")
		return
	}
	defer closeCover()

	a, err := h.artworks.UpdateCover(c.Request.Context(), c.Param("id"), cover)
	if err != nil {
		render.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

type toggleRequest struct {
	// Version is the version the client last saw. Zero toggles the stored
	// row as it is now.
	Version int64 `json:"version"`
}

// ------------------------------
// POST /artworks/:id/toggle-public
// ------------------------------
func (h *Handler) TogglePublic(c *gin.Context) {
	var req toggleRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			render.BadRequest(c, "Malformed JSON")
			return
		}
	}
	ctx := c.Request.Context()
	current, err := h.artworks.Get(ctx, c.Param("id"))
	if err != nil {
		render.Error(c, h.log, err)
		return
	}
	if req.Version > 0 {
		current.Version = req.Version
	}
	a, err := h.artworks.TogglePublic(ctx, *current)
	if err != nil {
		render.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

// ------------------------------
// DELETE /artworks/:id
// ------------------------------
func (h *Handler) Delete(c *gin.Context) {
	if err := h.artworks.Delete(c.Request.Context(), c.Param("id")); err != nil {
		render.Error(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func open(fh *multipart.FileHeader) (mediastore.File, func(), error) {
	f, err := fh.Open()
	if err != nil {
		return mediastore.File{}, nil, err
	}
	return mediastore.File{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        f,
	}, func() { f.Close() }, nil
}

func formString(c *gin.Context, key string) *string {
	v, ok := c.GetPostForm(key)
	if !ok {
		return nil
	}
	v = strings.TrimSpace(v)
	return &v
}
