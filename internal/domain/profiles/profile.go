package profiles

import (
	"strings"
	"time"
	"unicode/utf8"

	"gallery-la/internal/domain/works"
)

const (
	UsernameMinLen = 3
	UsernameMaxLen = 30
	BioMaxLen      = 500
)

// Specialties offered by the profile form. Any non-empty value is accepted.
const (
	SpecialtyPhotographer  = "photographer"
	SpecialtyAnimator      = "animator"
	SpecialtyPainter       = "painter"
	SpecialtySculptor      = "sculptor"
	SpecialtyDigitalArtist = "digital_artist"
	SpecialtyIllustrator   = "illustrator"
	SpecialtyOther         = "other"
)

// Profile is keyed by the identity id, so there is at most one per account.
type Profile struct {
	ID              string  `gorm:"type:uuid;primaryKey" json:"id"`
	Username        string  `gorm:"not null;uniqueIndex:idx_profiles_username" json:"username"`
	Bio             *string `json:"bio"`
	Specialty       string  `gorm:"not null;default:''" json:"specialty"`
	InstagramHandle *string `gorm:"column:instagram_handle" json:"instagram_handle"`
	Location        *string `json:"location"`
	AvatarURL       *string `gorm:"column:avatar_url" json:"avatar_url"`
	GalleryLayout   string  `gorm:"column:gallery_layout;not null;default:'grid'" json:"gallery_layout"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsComplete reports whether the profile carries the fields required to
// appear as an artist.
func (p *Profile) IsComplete() bool {
	return p != nil && p.Username != "" && p.Specialty != ""
}

func (p *Profile) Summary() *works.OwnerSummary {
	if p == nil {
		return nil
	}
	return &works.OwnerSummary{Username: p.Username, AvatarURL: p.AvatarURL}
}

// Input is what a user submits from the profile form.
type Input struct {
	Username        string  `json:"username"`
	Bio             *string `json:"bio"`
	Specialty       string  `json:"specialty"`
	InstagramHandle *string `json:"instagram_handle"`
	Location        *string `json:"location"`
}

// Normalize trims every field and clears blank optional ones.
func (in Input) Normalize() Input {
	in.Username = strings.TrimSpace(in.Username)
	in.Specialty = strings.TrimSpace(in.Specialty)
	in.Bio = trimOptional(in.Bio)
	in.InstagramHandle = trimOptional(in.InstagramHandle)
	if in.InstagramHandle != nil {
		h := strings.TrimPrefix(*in.InstagramHandle, "@")
		in.InstagramHandle = &h
	}
	in.Location = trimOptional(in.Location)
	return in
}

// Problem returns a description of the first invalid field, or "" when the
// input is acceptable. Call it on normalized input.
func (in Input) Problem() string {
	n := utf8.RuneCountInString(in.Username)
	switch {
	case n < UsernameMinLen:
		return "username must be at least 3 characters"
	case n > UsernameMaxLen:
		return "username must be at most 30 characters"
	case in.Specialty == "":
		return "specialty is required"
	case in.Bio != nil && utf8.RuneCountInString(*in.Bio) > BioMaxLen:
		return "bio must be at most 500 characters"
	}
	return ""
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

// WithStats is an artist listing entry.
type WithStats struct {
	Profile
	ArtworkCount   int             `json:"artwork_count"`
	RecentArtworks []works.Artwork `json:"recent_artworks"`
}
