package works

import (
	"strings"
	"time"

	"gallery-la/internal/domain/media"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultTitle is used when an artwork is uploaded without a title.
const DefaultTitle = "Untitled"

type Artwork struct {
	ID      string `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID string `gorm:"type:uuid;not null;index:idx_artworks_owner_created,priority:1" json:"owner_id"`

	Title       string  `gorm:"not null" json:"title"`
	Description *string `json:"description"`

	MediaURL string     `gorm:"not null" json:"media_url"`
	CoverURL *string    `json:"cover_url"`
	Kind     media.Kind `gorm:"type:text;not null;default:''" json:"kind"`

	IsPublic bool  `gorm:"not null;default:false;index" json:"is_public"`
	Version  int64 `gorm:"not null;default:1" json:"version"`

	CreatedAt time.Time `gorm:"index:idx_artworks_owner_created,priority:2" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (a *Artwork) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Version == 0 {
		a.Version = 1
	}
	return nil
}

// EffectiveKind returns the stored kind, falling back to the URL extension
// for rows written before the kind column existed.
func (a Artwork) EffectiveKind() media.Kind {
	if a.Kind.Valid() {
		return a.Kind
	}
	return media.KindFromURL(a.MediaURL)
}

// Thumbnail is the image shown for the artwork in grids.
func (a Artwork) Thumbnail() string {
	if a.EffectiveKind() == media.KindAudio && a.CoverURL != nil && *a.CoverURL != "" {
		return *a.CoverURL
	}
	return a.MediaURL
}

// TitleOrDefault trims t and substitutes DefaultTitle when it is blank.
func TitleOrDefault(t *string) string {
	if t == nil {
		return DefaultTitle
	}
	if s := strings.TrimSpace(*t); s != "" {
		return s
	}
	return DefaultTitle
}

// ArtworkPatch is a partial update. Nil fields are left unchanged. Version
// is the version the caller last saw.
type ArtworkPatch struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	IsPublic    *bool   `json:"is_public"`
	Version     int64   `json:"version"`
}

func (p ArtworkPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.IsPublic == nil
}

// Fields returns the column updates of the patch.
func (p ArtworkPatch) Fields() map[string]any {
	fields := map[string]any{}
	if p.Title != nil {
		fields["title"] = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		fields["description"] = optional(*p.Description)
	}
	if p.IsPublic != nil {
		fields["is_public"] = *p.IsPublic
	}
	return fields
}

// OwnerSummary is the slice of a profile attached to feed entries.
type OwnerSummary struct {
	Username  string  `json:"username"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

type ArtworkWithProfile struct {
	Artwork
	Profile *OwnerSummary `json:"profile,omitempty"`
}
