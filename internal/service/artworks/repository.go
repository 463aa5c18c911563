// Package artworks implements artwork persistence: queries, uploads with
// rollback, partial updates, cover swaps and deletion with storage cleanup.
package artworks

import (
	"context"
	"strings"

	"gallery-la/internal/domain/media"
	"gallery-la/internal/domain/works"
	"gallery-la/internal/errs"
	"gallery-la/internal/mediastore"
	"gallery-la/internal/ports"
	"gallery-la/internal/saga"

	"go.uber.org/zap"
)

// DefaultFeedLimit caps the cross-owner feed when no limit is given.
const DefaultFeedLimit = 50

type Repository struct {
	identity ports.IdentityProvider
	store    ports.ArtworkStore
	profiles ports.ProfileStore
	media    *mediastore.Store
	log      *zap.Logger
}

func NewRepository(identity ports.IdentityProvider, store ports.ArtworkStore, profiles ports.ProfileStore, media *mediastore.Store, log *zap.Logger) *Repository {
	if log == nil {
		log = zap.NewNop()
	}
	return &Repository{
		identity: identity,
		store:    store,
		profiles: profiles,
		media:    media,
		log:      log.Named("artworks"),
	}
}

// UploadOptions are the optional fields of an upload. Cover is the image
// shown for audio artworks.
type UploadOptions struct {
	Title       *string
	Description *string
	IsPublic    *bool
	Cover       *mediastore.File
}

// ListByOwner returns every artwork of ownerID, newest first. Callers are
// responsible for only using it on behalf of the owner.
func (r *Repository) ListByOwner(ctx context.Context, ownerID string) ([]works.Artwork, error) {
	out, err := r.store.ListArtworks(ctx, ports.ArtworkQuery{OwnerID: ownerID})
	return out, errs.Wrap("artworks.ListByOwner", err)
}

// ListPublicByOwner returns the public artworks of ownerID, newest first.
func (r *Repository) ListPublicByOwner(ctx context.Context, ownerID string) ([]works.Artwork, error) {
	out, err := r.store.ListArtworks(ctx, ports.ArtworkQuery{OwnerID: ownerID, PublicOnly: true})
	return out, errs.Wrap("artworks.ListPublicByOwner", err)
}

// ListAllPublic returns up to limit public artworks across owners, newest
// first, each with its owner's profile summary. Profiles are fetched in one
// batch rather than joined so that each artwork appears exactly once.
func (r *Repository) ListAllPublic(ctx context.Context, limit int) ([]works.ArtworkWithProfile, error) {
	const op = "artworks.ListAllPublic"
	if limit <= 0 {
		limit = DefaultFeedLimit
	}
	list, err := r.store.ListArtworks(ctx, ports.ArtworkQuery{PublicOnly: true, Limit: limit})
	if err != nil {
		return nil, errs.Wrap(op, err)
	}
	out := make([]works.ArtworkWithProfile, 0, len(list))
	if len(list) == 0 {
		return out, nil
	}

	owners := distinctOwners(list)
	found, err := r.profiles.ListProfilesByIDs(ctx, owners)
	if err != nil {
		return nil, errs.Wrap(op, err)
	}
	summaries := make(map[string]*works.OwnerSummary, len(found))
	for i := range found {
		summaries[found[i].ID] = found[i].Summary()
	}

	for _, a := range list {
		out = append(out, works.ArtworkWithProfile{Artwork: a, Profile: summaries[a.OwnerID]})
	}
	return out, nil
}

func (r *Repository) Get(ctx context.Context, id string) (*works.Artwork, error) {
	a, err := r.store.GetArtwork(ctx, id)
	return a, errs.Wrap("artworks.Get", err)
}

// Upload stores file (and the optional cover) and then inserts the record.
// A failure at any step removes whatever this call already wrote.
func (r *Repository) Upload(ctx context.Context, file mediastore.File, opts UploadOptions) (*works.Artwork, error) {
	const op = "artworks.Upload"
	ident, ok := r.identity.CurrentIdentity(ctx)
	if !ok {
		return nil, errs.AuthRequired(op)
	}

	primary, err := r.media.Sniff(file)
	if err != nil {
		return nil, err
	}
	var cover *mediastore.Payload
	if opts.Cover != nil {
		c, err := r.sniffImage(op, *opts.Cover)
		if err != nil {
			return nil, err
		}
		cover = &c
	}

	var out *works.Artwork
	err = saga.Run(ctx, r.log, op, func(s *saga.Saga) error {
		obj, err := r.media.Put(ctx, ident.ID, primary, mediastore.Primary)
		if err != nil {
			return err
		}
		s.Compensate("store media", func(ctx context.Context) error {
			return r.media.Delete(ctx, obj.Path)
		})

		var coverURL *string
		if cover != nil {
			cobj, err := r.media.Put(ctx, ident.ID, *cover, mediastore.Cover)
			if err != nil {
				return err
			}
			s.Compensate("store cover", func(ctx context.Context) error {
				return r.media.Delete(ctx, cobj.Path)
			})
			coverURL = &cobj.URL
		}

		a := &works.Artwork{
			OwnerID:     ident.ID,
			Title:       works.TitleOrDefault(opts.Title),
			Description: trimOptional(opts.Description),
			MediaURL:    obj.URL,
			CoverURL:    coverURL,
			Kind:        primary.Kind,
			IsPublic:    opts.IsPublic != nil && *opts.IsPublic,
		}
		if err := r.store.InsertArtwork(ctx, a); err != nil {
			return errs.Wrap(op, err)
		}
		s.Step("insert record")
		out = a
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.log.Info("artwork uploaded",
		zap.String("id", out.ID),
		zap.String("owner", out.OwnerID),
		zap.String("kind", string(out.Kind)),
	)
	return out, nil
}

// Update applies a partial update. patch.Version must be the version the
// caller last saw; a stale version fails with a conflict error.
func (r *Repository) Update(ctx context.Context, id string, patch works.ArtworkPatch) (*works.Artwork, error) {
	const op = "artworks.Update"
	current, err := r.owned(ctx, op, id)
	if err != nil {
		return nil, err
	}
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return nil, errs.Validation(op, "title cannot be blank")
	}
	if patch.Empty() {
		return current, nil
	}
	if patch.Version <= 0 {
		return nil, errs.Validation(op, "version is required")
	}

	updated, err := r.store.UpdateArtwork(ctx, id, patch.Fields(), patch.Version)
	return updated, errs.Wrap(op, err)
}

// UpdateCover replaces the cover image. The previous cover object is removed
// only once the record points at the new one; if the record update fails the
// new object is removed instead.
func (r *Repository) UpdateCover(ctx context.Context, id string, file mediastore.File) (*works.Artwork, error) {
	const op = "artworks.UpdateCover"
	current, err := r.owned(ctx, op, id)
	if err != nil {
		return nil, err
	}
	cover, err := r.sniffImage(op, file)
	if err != nil {
		return nil, err
	}

	var updated *works.Artwork
	err = saga.Run(ctx, r.log, op, func(s *saga.Saga) error {
		obj, err := r.media.Put(ctx, current.OwnerID, cover, mediastore.Cover)
		if err != nil {
			return err
		}
		s.Compensate("store cover", func(ctx context.Context) error {
			return r.media.Delete(ctx, obj.Path)
		})

		updated, err = r.store.UpdateArtwork(ctx, id, map[string]any{"cover_url": obj.URL}, current.Version)
		if err != nil {
			return errs.Wrap(op, err)
		}
		s.Step("point record at cover")
		return nil
	})
	if err != nil {
		return nil, err
	}

	if current.CoverURL != nil && *current.CoverURL != "" {
		r.media.Remove(context.WithoutCancel(ctx), *current.CoverURL)
	}
	return updated, nil
}

// TogglePublic flips visibility relative to the given snapshot. A snapshot
// older than the stored row fails with a conflict error rather than
// flipping against stale state.
func (r *Repository) TogglePublic(ctx context.Context, current works.Artwork) (*works.Artwork, error) {
	flipped := !current.IsPublic
	return r.Update(ctx, current.ID, works.ArtworkPatch{IsPublic: &flipped, Version: current.Version})
}

// Delete removes the record first and then, best effort, its media and
// cover objects. A storage failure leaves an invisible orphan object but
// never a visible artwork.
func (r *Repository) Delete(ctx context.Context, id string) error {
	const op = "artworks.Delete"
	a, err := r.owned(ctx, op, id)
	if err != nil {
		return err
	}

	if err := r.store.DeleteArtwork(ctx, id); err != nil {
		return errs.Wrap(op, err)
	}

	cleanup := context.WithoutCancel(ctx)
	r.media.Remove(cleanup, a.MediaURL)
	if a.CoverURL != nil && *a.CoverURL != "" {
		r.media.Remove(cleanup, *a.CoverURL)
	}
	r.log.Info("artwork deleted", zap.String("id", id))
	return nil
}

// owned loads id and checks that the current identity owns it. Artworks of
// other owners are reported as not found.
func (r *Repository) owned(ctx context.Context, op, id string) (*works.Artwork, error) {
	ident, ok := r.identity.CurrentIdentity(ctx)
	if !ok {
		return nil, errs.AuthRequired(op)
	}
	a, err := r.store.GetArtwork(ctx, id)
	if err != nil {
		return nil, errs.Wrap(op, err)
	}
	if a.OwnerID != ident.ID {
		return nil, errs.NotFound(op, "artwork")
	}
	return a, nil
}

func (r *Repository) sniffImage(op string, f mediastore.File) (mediastore.Payload, error) {
	p, err := r.media.Sniff(f)
	if err != nil {
		return mediastore.Payload{}, err
	}
	if p.Kind != media.KindImage {
		return mediastore.Payload{}, errs.Validation(op, "cover must be an image")
	}
	return p, nil
}

func distinctOwners(list []works.Artwork) []string {
	seen := make(map[string]bool, len(list))
	out := make([]string, 0, len(list))
	for _, a := range list {
		if !seen[a.OwnerID] {
			seen[a.OwnerID] = true
			out = append(out, a.OwnerID)
		}
	}
	return out
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
