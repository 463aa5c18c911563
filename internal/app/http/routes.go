package routes

import (
	artworksapi "gallery-la/internal/api/artworks"
	exhibitionsapi "gallery-la/internal/api/exhibitions"
	profilesapi "gallery-la/internal/api/profiles"
	"gallery-la/internal/app/http/middleware"
	"gallery-la/internal/auth"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Deps struct {
	Verifier    auth.Verifier
	Artworks    *artworksapi.Handler
	Exhibitions *exhibitionsapi.Handler
	Profiles    *profilesapi.Handler
	// UploadLimiter throttles media uploads. Nil disables it.
	UploadLimiter *middleware.RateLimiter
	Log           *zap.Logger
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	public := r.Group("/")
	public.GET("/feed/artworks", d.Artworks.Feed)
	public.GET("/feed/exhibitions", d.Exhibitions.Feed)
	public.GET("/artists", d.Profiles.Artists)
	public.GET("/profiles/:username", d.Profiles.GetByUsername)
	public.GET("/profiles/:username/artworks", d.Artworks.ListByUsername)
	public.GET("/profiles/:username/exhibitions", d.Exhibitions.ListByUsername)
	public.GET("/exhibitions/:id", middleware.OptionalAuth(d.Verifier), d.Exhibitions.Get)

	// Authenticated
	authed := r.Group("/")
	authed.Use(middleware.AuthMiddleware(d.Verifier, d.Log))
	authed.Use(middleware.SanitizeAndCleanInputMiddleware())

	authed.GET("/me/profile", d.Profiles.Me)
	authed.PUT("/me/profile", d.Profiles.Upsert)
	authed.GET("/me/profile/username-available", d.Profiles.UsernameAvailable)

	upload := func(h gin.HandlerFunc) []gin.HandlerFunc {
		if d.UploadLimiter == nil {
			return []gin.HandlerFunc{h}
		}
		return []gin.HandlerFunc{d.UploadLimiter.Middleware(), h}
	}

	authed.GET("/me/artworks", d.Artworks.ListMine)
	authed.POST("/artworks", upload(d.Artworks.Upload)...)
	authed.PATCH("/artworks/:id", d.Artworks.Update)
	authed.PUT("/artworks/:id/cover", upload(d.Artworks.UpdateCover)...)
	authed.POST("/artworks/:id/toggle-public", d.Artworks.TogglePublic)
	authed.DELETE("/artworks/:id", d.Artworks.Delete)

	authed.GET("/me/exhibitions", d.Exhibitions.ListMine)
	authed.POST("/exhibitions", d.Exhibitions.Create)
	authed.PATCH("/exhibitions/:id", d.Exhibitions.Update)
	authed.DELETE("/exhibitions/:id", d.Exhibitions.Delete)
	authed.POST("/exhibitions/:id/artworks", d.Exhibitions.AddArtworks)
	authed.PUT("/exhibitions/:id/artworks/reorder", d.Exhibitions.Reorder)
	authed.DELETE("/exhibitions/:id/artworks/:artworkId", d.Exhibitions.RemoveArtwork)
	authed.PUT("/exhibitions/:id/artworks/:artworkId/order", d.Exhibitions.ReorderArtwork)
}
