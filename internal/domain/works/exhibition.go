package works

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Layout string

const (
	LayoutGrid      Layout = "grid"
	LayoutMasonry   Layout = "masonry"
	LayoutEditorial Layout = "editorial"
)

func (l Layout) Valid() bool {
	switch l {
	case LayoutGrid, LayoutMasonry, LayoutEditorial:
		return true
	}
	return false
}

type Exhibition struct {
	ID      string `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID string `gorm:"type:uuid;not null;index" json:"owner_id"`

	Title       string  `gorm:"not null" json:"title"`
	Description *string `json:"description"`
	CoverURL    *string `json:"cover_url"`
	IsPublic    bool    `gorm:"not null;default:false;index" json:"is_public"`
	Layout      Layout  `gorm:"type:text;not null;default:'grid'" json:"layout"`
	Version     int64   `gorm:"not null;default:1" json:"version"`

	Items []ExhibitionArtwork `gorm:"foreignKey:ExhibitionID;constraint:OnDelete:CASCADE;" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (e *Exhibition) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Version == 0 {
		e.Version = 1
	}
	if e.Layout == "" {
		e.Layout = LayoutGrid
	}
	return nil
}

// ExhibitionArtwork links an artwork into an exhibition at a display
// position. Orders are unique per exhibition but need not be contiguous.
type ExhibitionArtwork struct {
	ExhibitionID string   `gorm:"type:uuid;primaryKey;index:idx_exhibition_order,priority:1" json:"exhibition_id"`
	ArtworkID    string   `gorm:"type:uuid;primaryKey" json:"artwork_id"`
	DisplayOrder int      `gorm:"not null;default:0;index:idx_exhibition_order,priority:2" json:"display_order"`
	Artwork      *Artwork `gorm:"foreignKey:ArtworkID;constraint:OnDelete:CASCADE;" json:"artwork,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

type OrderedArtwork struct {
	Artwork
	DisplayOrder int `json:"display_order"`
}

type ExhibitionWithArtworks struct {
	Exhibition
	Artworks []OrderedArtwork `json:"artworks"`
}

type ExhibitionWithOwner struct {
	Exhibition
	Owner *OwnerSummary `json:"owner,omitempty"`
}

// ExhibitionInput holds the fields accepted when creating an exhibition.
type ExhibitionInput struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	CoverURL    *string `json:"cover_url"`
	IsPublic    bool    `json:"is_public"`
	Layout      Layout  `json:"layout"`
}

type ExhibitionPatch struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	CoverURL    *string `json:"cover_url"`
	IsPublic    *bool   `json:"is_public"`
	Layout      *Layout `json:"layout"`
	Version     int64   `json:"version"`
}

func (p ExhibitionPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.CoverURL == nil && p.IsPublic == nil && p.Layout == nil
}

func (p ExhibitionPatch) Fields() map[string]any {
	fields := map[string]any{}
	if p.Title != nil {
		fields["title"] = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		fields["description"] = optional(*p.Description)
	}
	if p.CoverURL != nil {
		fields["cover_url"] = optional(*p.CoverURL)
	}
	if p.IsPublic != nil {
		fields["is_public"] = *p.IsPublic
	}
	if p.Layout != nil {
		fields["layout"] = *p.Layout
	}
	return fields
}

func optional(s string) any {
	if s = strings.TrimSpace(s); s != "" {
		return s
	}
	return nil
}
