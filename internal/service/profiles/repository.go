// Package profiles manages artist profiles and the artist directory.
package profiles

import (
	"context"
	"sort"
	"strings"
	"time"

	"gallery-la/internal/domain/profiles"
	"gallery-la/internal/domain/works"
	"gallery-la/internal/errs"
	"gallery-la/internal/ports"

	"go.uber.org/zap"
)

// RecentPreviewCount is how many artworks each directory entry carries.
const RecentPreviewCount = 3

type Repository struct {
	identity ports.IdentityProvider
	store    ports.ProfileStore
	artworks ports.ArtworkStore
	log      *zap.Logger
	now      func() time.Time
}

func NewRepository(identity ports.IdentityProvider, store ports.ProfileStore, artworks ports.ArtworkStore, log *zap.Logger) *Repository {
	if log == nil {
		log = zap.NewNop()
	}
	return &Repository{
		identity: identity,
		store:    store,
		artworks: artworks,
		log:      log.Named("profiles"),
		now:      time.Now,
	}
}

// GetByID returns nil without error when no profile exists.
func (r *Repository) GetByID(ctx context.Context, id string) (*profiles.Profile, error) {
	p, err := r.store.GetProfile(ctx, id)
	return absent(p, errs.Wrap("profiles.GetByID", err))
}

func (r *Repository) GetByUsername(ctx context.Context, username string) (*profiles.Profile, error) {
	p, err := r.store.GetProfileByUsername(ctx, strings.TrimSpace(username))
	return absent(p, errs.Wrap("profiles.GetByUsername", err))
}

func (r *Repository) Current(ctx context.Context) (*profiles.Profile, error) {
	ident, ok := r.identity.CurrentIdentity(ctx)
	if !ok {
		return nil, errs.AuthRequired("profiles.Current")
	}
	return r.GetByID(ctx, ident.ID)
}

// CheckUsernameAvailable reports whether candidate is free for the caller.
// The caller's own username counts as available.
func (r *Repository) CheckUsernameAvailable(ctx context.Context, candidate string) (bool, error) {
	const op = "profiles.CheckUsernameAvailable"
	candidate = strings.TrimSpace(candidate)
	if candidate == "" {
		return false, nil
	}
	existing, err := r.store.GetProfileByUsername(ctx, candidate)
	if errs.Is(err, errs.CodeNotFound) {
		return true, nil
	}
	if err != nil {
		return false, errs.Wrap(op, err)
	}
	ident, ok := r.identity.CurrentIdentity(ctx)
	return ok && existing.ID == ident.ID, nil
}

// Upsert validates in and writes the caller's profile. Nothing reaches the
// store when validation fails.
func (r *Repository) Upsert(ctx context.Context, in profiles.Input) (*profiles.Profile, error) {
	const op = "profiles.Upsert"
	ident, ok := r.identity.CurrentIdentity(ctx)
	if !ok {
		return nil, errs.AuthRequired(op)
	}
	in = in.Normalize()
	if problem := in.Problem(); problem != "" {
		return nil, errs.Validation(op, "%s", problem)
	}

	free, err := r.CheckUsernameAvailable(ctx, in.Username)
	if err != nil {
		return nil, errs.Wrap(op, err)
	}
	if !free {
		return nil, errs.UsernameTaken(op, in.Username)
	}

	p := &profiles.Profile{
		ID:              ident.ID,
		Username:        in.Username,
		Bio:             in.Bio,
		Specialty:       in.Specialty,
		InstagramHandle: in.InstagramHandle,
		Location:        in.Location,
		UpdatedAt:       r.now(),
	}
	if existing, err := r.GetByID(ctx, ident.ID); err != nil {
		return nil, errs.Wrap(op, err)
	} else if existing != nil {
		p.AvatarURL = existing.AvatarURL
		p.GalleryLayout = existing.GalleryLayout
		p.CreatedAt = existing.CreatedAt
	}
	if err := r.store.UpsertProfile(ctx, p); err != nil {
		return nil, errs.Wrap(op, err)
	}
	r.log.Info("profile saved", zap.String("id", p.ID), zap.String("username", p.Username))
	return p, nil
}

func (r *Repository) IsComplete(ctx context.Context) (bool, error) {
	p, err := r.Current(ctx)
	if err != nil {
		return false, err
	}
	return p.IsComplete(), nil
}

// ListAllWithStats builds the artist directory from public artworks.
// Owners without a profile are left out.
func (r *Repository) ListAllWithStats(ctx context.Context) ([]profiles.WithStats, error) {
	const op = "profiles.ListAllWithStats"
	list, err := r.artworks.ListArtworks(ctx, ports.ArtworkQuery{PublicOnly: true})
	if err != nil {
		return nil, errs.Wrap(op, err)
	}

	type group struct {
		count  int
		recent []works.Artwork
	}
	groups := map[string]*group{}
	var owners []string
	for _, a := range list {
		g, ok := groups[a.OwnerID]
		if !ok {
			g = &group{}
			groups[a.OwnerID] = g
			owners = append(owners, a.OwnerID)
		}
		g.count++
		if len(g.recent) < RecentPreviewCount {
			g.recent = append(g.recent, a)
		}
	}

	out := make([]profiles.WithStats, 0, len(owners))
	if len(owners) == 0 {
		return out, nil
	}
	found, err := r.store.ListProfilesByIDs(ctx, owners)
	if err != nil {
		return nil, errs.Wrap(op, err)
	}
	for _, p := range found {
		g, ok := groups[p.ID]
		if !ok {
			continue
		}
		out = append(out, profiles.WithStats{Profile: p, ArtworkCount: g.count, RecentArtworks: g.recent})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].ArtworkCount != out[j].ArtworkCount {
			return out[i].ArtworkCount > out[j].ArtworkCount
		}
		return out[i].Username < out[j].Username
	})
	return out, nil
}

func absent(p *profiles.Profile, err error) (*profiles.Profile, error) {
	if errs.Is(err, errs.CodeNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}
