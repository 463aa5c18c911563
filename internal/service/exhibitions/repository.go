// Package exhibitions implements curated exhibitions and their ordered
// artwork links.
package exhibitions

import (
	"context"
	"strings"

	"gallery-la/internal/domain/works"
	"gallery-la/internal/errs"
	"gallery-la/internal/ports"

	"go.uber.org/zap"
)

type Repository struct {
	identity ports.IdentityProvider
	store    ports.ExhibitionStore
	profiles ports.ProfileStore
	log      *zap.Logger
}

func NewRepository(identity ports.IdentityProvider, store ports.ExhibitionStore, profiles ports.ProfileStore, log *zap.Logger) *Repository {
	if log == nil {
		log = zap.NewNop()
	}
	return &Repository{identity: identity, store: store, profiles: profiles, log: log.Named("exhibitions")}
}

func (r *Repository) ListByOwner(ctx context.Context, ownerID string) ([]works.Exhibition, error) {
	out, err := r.store.ListExhibitions(ctx, ports.ExhibitionQuery{OwnerID: ownerID})
	return out, errs.Wrap("exhibitions.ListByOwner", err)
}

func (r *Repository) ListPublicByOwner(ctx context.Context, ownerID string) ([]works.Exhibition, error) {
	out, err := r.store.ListExhibitions(ctx, ports.ExhibitionQuery{OwnerID: ownerID, PublicOnly: true})
	return out, errs.Wrap("exhibitions.ListPublicByOwner", err)
}

// ListAllPublic returns every public exhibition, newest first, with the
// owner's profile summary attached.
func (r *Repository) ListAllPublic(ctx context.Context) ([]works.ExhibitionWithOwner, error) {
	const op = "exhibitions.ListAllPublic"
	list, err := r.store.ListExhibitions(ctx, ports.ExhibitionQuery{PublicOnly: true})
	if err != nil {
		return nil, errs.Wrap(op, err)
	}
	out := make([]works.ExhibitionWithOwner, 0, len(list))
	if len(list) == 0 {
		return out, nil
	}

	seen := map[string]bool{}
	var owners []string
	for _, e := range list {
		if !seen[e.OwnerID] {
			seen[e.OwnerID] = true
			owners = append(owners, e.OwnerID)
		}
	}
	found, err := r.profiles.ListProfilesByIDs(ctx, owners)
	if err != nil {
		return nil, errs.Wrap(op, err)
	}
	summaries := make(map[string]*works.OwnerSummary, len(found))
	for i := range found {
		summaries[found[i].ID] = found[i].Summary()
	}
	for _, e := range list {
		out = append(out, works.ExhibitionWithOwner{Exhibition: e, Owner: summaries[e.OwnerID]})
	}
	return out, nil
}

// GetDetails returns the exhibition with its artworks in display order.
// Private exhibitions are only visible to their owner.
func (r *Repository) GetDetails(ctx context.Context, id string) (*works.ExhibitionWithArtworks, error) {
	const op = "exhibitions.GetDetails"
	e, err := r.store.GetExhibition(ctx, id)
	if err != nil {
		return nil, errs.Wrap(op, err)
	}
	ident, ok := r.identity.CurrentIdentity(ctx)
	owner := ok && ident.ID == e.OwnerID
	if !e.IsPublic && !owner {
		return nil, errs.NotFound(op, "exhibition")
	}

	links, err := r.store.ListLinks(ctx, id)
	if err != nil {
		return nil, errs.Wrap(op, err)
	}
	out := &works.ExhibitionWithArtworks{Exhibition: *e, Artworks: make([]works.OrderedArtwork, 0, len(links))}
	for _, l := range links {
		if l.Artwork == nil {
			continue
		}
		// Visitors only see the public artworks of a public exhibition.
		if !owner && !l.Artwork.IsPublic {
			continue
		}
		out.Artworks = append(out.Artworks, works.OrderedArtwork{Artwork: *l.Artwork, DisplayOrder: l.DisplayOrder})
	}
	return out, nil
}

func (r *Repository) Create(ctx context.Context, in works.ExhibitionInput) (*works.Exhibition, error) {
	const op = "exhibitions.Create"
	ident, ok := r.identity.CurrentIdentity(ctx)
	if !ok {
		return nil, errs.AuthRequired(op)
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, errs.Validation(op, "title is required")
	}
	layout := in.Layout
	if layout == "" {
		layout = works.LayoutGrid
	}
	if !layout.Valid() {
		return nil, errs.Validation(op, "unknown layout %q", layout)
	}

	e := &works.Exhibition{
		OwnerID:     ident.ID,
		Title:       title,
		Description: trimOptional(in.Description),
		CoverURL:    trimOptional(in.CoverURL),
		IsPublic:    in.IsPublic,
		Layout:      layout,
	}
	if err := r.store.InsertExhibition(ctx, e); err != nil {
		return nil, errs.Wrap(op, err)
	}
	r.log.Info("exhibition created", zap.String("id", e.ID), zap.String("owner", e.OwnerID))
	return e, nil
}

func (r *Repository) Update(ctx context.Context, id string, patch works.ExhibitionPatch) (*works.Exhibition, error) {
	const op = "exhibitions.Update"
	current, err := r.owned(ctx, op, id)
	if err != nil {
		return nil, err
	}
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return nil, errs.Validation(op, "title cannot be blank")
	}
	if patch.Layout != nil && !patch.Layout.Valid() {
		return nil, errs.Validation(op, "unknown layout %q", *patch.Layout)
	}
	if patch.Empty() {
		return current, nil
	}
	if patch.Version <= 0 {
		return nil, errs.Validation(op, "version is required")
	}

	updated, err := r.store.UpdateExhibition(ctx, id, patch.Fields(), patch.Version)
	return updated, errs.Wrap(op, err)
}

// Delete removes the exhibition together with its artwork links. The
// artworks themselves are untouched.
func (r *Repository) Delete(ctx context.Context, id string) error {
	const op = "exhibitions.Delete"
	if _, err := r.owned(ctx, op, id); err != nil {
		return err
	}
	if err := r.store.DeleteExhibition(ctx, id); err != nil {
		return errs.Wrap(op, err)
	}
	r.log.Info("exhibition deleted", zap.String("id", id))
	return nil
}

// AddArtworks appends artworkIDs after the current highest display order,
// keeping the order of the slice.
func (r *Repository) AddArtworks(ctx context.Context, exhibitionID string, artworkIDs []string) error {
	const op = "exhibitions.AddArtworks"
	if _, err := r.owned(ctx, op, exhibitionID); err != nil {
		return err
	}
	if len(artworkIDs) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(artworkIDs))
	for _, id := range artworkIDs {
		if id == "" {
			return errs.Validation(op, "artwork id cannot be empty")
		}
		if seen[id] {
			return errs.Validation(op, "artwork %s listed twice", id)
		}
		seen[id] = true
	}

	links, err := r.store.ListLinks(ctx, exhibitionID)
	if err != nil {
		return errs.Wrap(op, err)
	}
	for _, l := range links {
		if seen[l.ArtworkID] {
			return errs.Validation(op, "artwork %s is already in the exhibition", l.ArtworkID)
		}
	}

	start := 0
	max, ok, err := r.store.MaxDisplayOrder(ctx, exhibitionID)
	if err != nil {
		return errs.Wrap(op, err)
	}
	if ok {
		start = max + 1
	}

	rows := make([]works.ExhibitionArtwork, len(artworkIDs))
	for i, id := range artworkIDs {
		rows[i] = works.ExhibitionArtwork{ExhibitionID: exhibitionID, ArtworkID: id, DisplayOrder: start + i}
	}
	return errs.Wrap(op, r.store.InsertLinks(ctx, rows))
}

// RemoveArtwork unlinks one artwork. Remaining orders keep their gaps.
func (r *Repository) RemoveArtwork(ctx context.Context, exhibitionID, artworkID string) error {
	const op = "exhibitions.RemoveArtwork"
	if _, err := r.owned(ctx, op, exhibitionID); err != nil {
		return err
	}
	return errs.Wrap(op, r.store.DeleteLink(ctx, exhibitionID, artworkID))
}

// ReorderArtwork sets one link's display order. Keeping the overall order
// coherent is up to the caller; see Reorder for a full rewrite.
func (r *Repository) ReorderArtwork(ctx context.Context, exhibitionID, artworkID string, order int) error {
	const op = "exhibitions.ReorderArtwork"
	if order < 0 {
		return errs.Validation(op, "display order must not be negative")
	}
	if _, err := r.owned(ctx, op, exhibitionID); err != nil {
		return err
	}
	return errs.Wrap(op, r.store.UpdateLinkOrder(ctx, exhibitionID, artworkID, order))
}

// Reorder assigns 0..n-1 to the given artworks in slice order. The ids must
// name every artwork in the exhibition exactly once.
func (r *Repository) Reorder(ctx context.Context, exhibitionID string, artworkIDs []string) error {
	const op = "exhibitions.Reorder"
	if len(artworkIDs) == 0 {
		return errs.Validation(op, "artwork_ids required")
	}
	if _, err := r.owned(ctx, op, exhibitionID); err != nil {
		return err
	}

	seen := make(map[string]struct{}, len(artworkIDs))
	for _, id := range artworkIDs {
		if _, dup := seen[id]; dup {
			return errs.Validation(op, "artwork %s listed more than once", id)
		}
		seen[id] = struct{}{}
	}
	links, err := r.store.ListLinks(ctx, exhibitionID)
	if err != nil {
		return errs.Wrap(op, err)
	}
	if len(links) != len(artworkIDs) {
		return errs.Validation(op, "artwork_ids must list all %d artworks in the exhibition", len(links))
	}
	for _, l := range links {
		if _, ok := seen[l.ArtworkID]; !ok {
			return errs.Validation(op, "artwork_ids must list all %d artworks in the exhibition", len(links))
		}
	}

	return errs.Wrap(op, r.store.ReorderLinks(ctx, exhibitionID, artworkIDs))
}

func (r *Repository) owned(ctx context.Context, op, id string) (*works.Exhibition, error) {
	ident, ok := r.identity.CurrentIdentity(ctx)
	if !ok {
		return nil, errs.AuthRequired(op)
	}
	e, err := r.store.GetExhibition(ctx, id)
	if err != nil {
		return nil, errs.Wrap(op, err)
	}
	if e.OwnerID != ident.ID {
		return nil, errs.NotFound(op, "exhibition")
	}
	return e, nil
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
