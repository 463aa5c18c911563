package ports

import (
	"context"

	"gallery-la/internal/domain/profiles"
	"gallery-la/internal/domain/works"
)

// ArtworkQuery selects artworks newest first. Zero values mean no filter.
type ArtworkQuery struct {
	OwnerID    string
	PublicOnly bool
	Limit      int
}

type ExhibitionQuery struct {
	OwnerID    string
	PublicOnly bool
}

// Store implementations report missing rows as errs.NotFound, version
// mismatches as errs.Conflict and any other failure as errs.Record.

type ArtworkStore interface {
	ListArtworks(ctx context.Context, q ArtworkQuery) ([]works.Artwork, error)
	GetArtwork(ctx context.Context, id string) (*works.Artwork, error)
	InsertArtwork(ctx context.Context, a *works.Artwork) error
	// UpdateArtwork applies fields when the stored version equals
	// expectedVersion, bumps the version and returns the new row.
	UpdateArtwork(ctx context.Context, id string, fields map[string]any, expectedVersion int64) (*works.Artwork, error)
	// DeleteArtwork removes the row and every exhibition link to it.
	DeleteArtwork(ctx context.Context, id string) error
}

type ExhibitionStore interface {
	ListExhibitions(ctx context.Context, q ExhibitionQuery) ([]works.Exhibition, error)
	GetExhibition(ctx context.Context, id string) (*works.Exhibition, error)
	InsertExhibition(ctx context.Context, e *works.Exhibition) error
	UpdateExhibition(ctx context.Context, id string, fields map[string]any, expectedVersion int64) (*works.Exhibition, error)
	// DeleteExhibition removes the row and its links together.
	DeleteExhibition(ctx context.Context, id string) error

	// MaxDisplayOrder returns the highest order in the exhibition; ok is
	// false when it has no links.
	MaxDisplayOrder(ctx context.Context, exhibitionID string) (max int, ok bool, err error)
	InsertLinks(ctx context.Context, links []works.ExhibitionArtwork) error
	DeleteLink(ctx context.Context, exhibitionID, artworkID string) error
	UpdateLinkOrder(ctx context.Context, exhibitionID, artworkID string, order int) error
	// ReorderLinks sets artworkIDs[i] to order i. Either every link is
	// rewritten or none is.
	ReorderLinks(ctx context.Context, exhibitionID string, artworkIDs []string) error
	// ListLinks returns links ascending by display order with Artwork set.
	ListLinks(ctx context.Context, exhibitionID string) ([]works.ExhibitionArtwork, error)
}

type ProfileStore interface {
	GetProfile(ctx context.Context, id string) (*profiles.Profile, error)
	GetProfileByUsername(ctx context.Context, username string) (*profiles.Profile, error)
	ListProfilesByIDs(ctx context.Context, ids []string) ([]profiles.Profile, error)
	// UpsertProfile inserts or replaces the row keyed by p.ID.
	UpsertProfile(ctx context.Context, p *profiles.Profile) error
}
