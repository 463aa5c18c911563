package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"gallery-la/config"
	"gallery-la/database"
	artworksapi "gallery-la/internal/api/artworks"
	exhibitionsapi "gallery-la/internal/api/exhibitions"
	profilesapi "gallery-la/internal/api/profiles"
	routes "gallery-la/internal/app/http"
	"gallery-la/internal/app/http/middleware"
	"gallery-la/internal/auth"
	"gallery-la/internal/infra/gormstore"
	"gallery-la/internal/infra/s3blob"
	"gallery-la/internal/mediastore"
	artworksvc "gallery-la/internal/service/artworks"
	exhibitionsvc "gallery-la/internal/service/exhibitions"
	profilesvc "gallery-la/internal/service/profiles"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func runServe(ctx context.Context, migrate bool) error {
	cfg, log, db, err := bootstrap()
	if err != nil {
		return err
	}
	defer log.Sync()

	if migrate {
		if err := database.Migrate(db); err != nil {
			return err
		}
	}

	verifier, err := newVerifier(ctx, cfg)
	if err != nil {
		return err
	}
	blobs, err := s3blob.NewFromConfig(ctx, cfg.S3)
	if err != nil {
		return err
	}

	store := gormstore.New(db)
	identity := auth.ContextProvider{}
	media := mediastore.New(blobs, log.Named("media"),
		mediastore.WithMaxBytes(cfg.MaxUploadBytes),
		mediastore.WithBucket(cfg.S3.Bucket),
	)
	profiles := profilesvc.NewRepository(identity, store, store, log)
	artworks := artworksvc.NewRepository(identity, store, store, media, log)
	exhibitions := exhibitionsvc.NewRepository(identity, store, store, log)

	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	r.MaxMultipartMemory = 8 << 20

	// CORS goes before the routes.
	if cfg.CORSOrigin != "" {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     []string{cfg.CORSOrigin},
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	routes.RegisterRoutes(r, routes.Deps{
		Verifier:      verifier,
		Artworks:      artworksapi.NewHandler(artworks, profiles, cfg.FeedLimit, log),
		Exhibitions:   exhibitionsapi.NewHandler(exhibitions, profiles, log),
		Profiles:      profilesapi.NewHandler(profiles, log),
		UploadLimiter: middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
		Log:           log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newVerifier(ctx context.Context, cfg *config.Config) (auth.Verifier, error) {
	if cfg.OIDCIssuer != "" {
		return auth.NewOIDCVerifier(ctx, cfg.OIDCIssuer, cfg.OIDCClientID)
	}
	return auth.NewHMACVerifier(cfg.JWTSecret), nil
}
