// Package testkit provides in-memory implementations of the backend ports
// with failure injection, for repository and handler tests.
package testkit

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"gallery-la/internal/domain/media"
	"gallery-la/internal/domain/profiles"
	"gallery-la/internal/domain/works"
	"gallery-la/internal/errs"
	"gallery-la/internal/ports"

	"github.com/google/uuid"
)

var (
	_ ports.ArtworkStore    = (*Records)(nil)
	_ ports.ExhibitionStore = (*Records)(nil)
	_ ports.ProfileStore    = (*Records)(nil)
)

// Records is an in-memory relational store. Every method name can be made
// to fail with FailOn; Calls records method names in call order.
type Records struct {
	mu          sync.Mutex
	artworks    map[string]works.Artwork
	exhibitions map[string]works.Exhibition
	links       map[string]map[string]works.ExhibitionArtwork
	profiles    map[string]profiles.Profile
	failures    map[string]error
	calls       []string
	clock       time.Time
}

func NewRecords() *Records {
	return &Records{
		artworks:    map[string]works.Artwork{},
		exhibitions: map[string]works.Exhibition{},
		links:       map[string]map[string]works.ExhibitionArtwork{},
		profiles:    map[string]profiles.Profile{},
		failures:    map[string]error{},
		clock:       time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// FailOn makes method return err until cleared with a nil err.
func (r *Records) FailOn(method string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err == nil {
		delete(r.failures, method)
		return
	}
	r.failures[method] = err
}

// Calls returns the methods invoked so far.
func (r *Records) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

// enter records the call and returns the injected failure, if any. Callers
// hold r.mu.
func (r *Records) enter(method string) error {
	r.calls = append(r.calls, method)
	if err, ok := r.failures[method]; ok {
		return errs.Record(method, err)
	}
	return nil
}

// tick returns strictly increasing timestamps so newest-first ordering is
// deterministic.
func (r *Records) tick() time.Time {
	r.clock = r.clock.Add(time.Second)
	return r.clock
}

// ---------- artworks

func (r *Records) ListArtworks(ctx context.Context, q ports.ArtworkQuery) ([]works.Artwork, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("ListArtworks"); err != nil {
		return nil, err
	}
	out := make([]works.Artwork, 0)
	for _, a := range r.artworks {
		if q.OwnerID != "" && a.OwnerID != q.OwnerID {
			continue
		}
		if q.PublicOnly && !a.IsPublic {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (r *Records) GetArtwork(ctx context.Context, id string) (*works.Artwork, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("GetArtwork"); err != nil {
		return nil, err
	}
	a, ok := r.artworks[id]
	if !ok {
		return nil, errs.NotFound("GetArtwork", "artwork")
	}
	return &a, nil
}

func (r *Records) InsertArtwork(ctx context.Context, a *works.Artwork) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("InsertArtwork"); err != nil {
		return err
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if _, exists := r.artworks[a.ID]; exists {
		return errs.Record("InsertArtwork", fmt.Errorf("duplicate key %s", a.ID))
	}
	now := r.tick()
	a.CreatedAt, a.UpdatedAt, a.Version = now, now, 1
	r.artworks[a.ID] = *a
	return nil
}

func (r *Records) UpdateArtwork(ctx context.Context, id string, fields map[string]any, expectedVersion int64) (*works.Artwork, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("UpdateArtwork"); err != nil {
		return nil, err
	}
	a, ok := r.artworks[id]
	if !ok {
		return nil, errs.NotFound("UpdateArtwork", "artwork")
	}
	if a.Version != expectedVersion {
		return nil, errs.Conflict("UpdateArtwork", "artwork")
	}
	for k, v := range fields {
		switch k {
		case "title":
			a.Title = v.(string)
		case "description":
			a.Description = optString(v)
		case "cover_url":
			a.CoverURL = optString(v)
		case "is_public":
			a.IsPublic = v.(bool)
		case "kind":
			a.Kind = v.(media.Kind)
		default:
			return nil, errs.Record("UpdateArtwork", fmt.Errorf("unknown column %q", k))
		}
	}
	a.Version++
	a.UpdatedAt = r.tick()
	r.artworks[id] = a
	return &a, nil
}

func (r *Records) DeleteArtwork(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("DeleteArtwork"); err != nil {
		return err
	}
	if _, ok := r.artworks[id]; !ok {
		return errs.NotFound("DeleteArtwork", "artwork")
	}
	delete(r.artworks, id)
	for _, links := range r.links {
		delete(links, id)
	}
	return nil
}

// ---------- exhibitions

func (r *Records) ListExhibitions(ctx context.Context, q ports.ExhibitionQuery) ([]works.Exhibition, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("ListExhibitions"); err != nil {
		return nil, err
	}
	out := make([]works.Exhibition, 0)
	for _, e := range r.exhibitions {
		if q.OwnerID != "" && e.OwnerID != q.OwnerID {
			continue
		}
		if q.PublicOnly && !e.IsPublic {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *Records) GetExhibition(ctx context.Context, id string) (*works.Exhibition, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("GetExhibition"); err != nil {
		return nil, err
	}
	e, ok := r.exhibitions[id]
	if !ok {
		return nil, errs.NotFound("GetExhibition", "exhibition")
	}
	return &e, nil
}

func (r *Records) InsertExhibition(ctx context.Context, e *works.Exhibition) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("InsertExhibition"); err != nil {
		return err
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Layout == "" {
		e.Layout = works.LayoutGrid
	}
	now := r.tick()
	e.CreatedAt, e.UpdatedAt, e.Version = now, now, 1
	r.exhibitions[e.ID] = *e
	return nil
}

func (r *Records) UpdateExhibition(ctx context.Context, id string, fields map[string]any, expectedVersion int64) (*works.Exhibition, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("UpdateExhibition"); err != nil {
		return nil, err
	}
	e, ok := r.exhibitions[id]
	if !ok {
		return nil, errs.NotFound("UpdateExhibition", "exhibition")
	}
	if e.Version != expectedVersion {
		return nil, errs.Conflict("UpdateExhibition", "exhibition")
	}
	for k, v := range fields {
		switch k {
		case "title":
			e.Title = v.(string)
		case "description":
			e.Description = optString(v)
		case "cover_url":
			e.CoverURL = optString(v)
		case "is_public":
			e.IsPublic = v.(bool)
		case "layout":
			e.Layout = v.(works.Layout)
		default:
			return nil, errs.Record("UpdateExhibition", fmt.Errorf("unknown column %q", k))
		}
	}
	e.Version++
	e.UpdatedAt = r.tick()
	r.exhibitions[id] = e
	return &e, nil
}

func (r *Records) DeleteExhibition(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("DeleteExhibition"); err != nil {
		return err
	}
	if _, ok := r.exhibitions[id]; !ok {
		return errs.NotFound("DeleteExhibition", "exhibition")
	}
	delete(r.exhibitions, id)
	delete(r.links, id)
	return nil
}

func (r *Records) MaxDisplayOrder(ctx context.Context, exhibitionID string) (int, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("MaxDisplayOrder"); err != nil {
		return 0, false, err
	}
	max, ok := 0, false
	for _, l := range r.links[exhibitionID] {
		if !ok || l.DisplayOrder > max {
			max, ok = l.DisplayOrder, true
		}
	}
	return max, ok, nil
}

// InsertLinks is all-or-nothing, like a single multi-row insert.
func (r *Records) InsertLinks(ctx context.Context, links []works.ExhibitionArtwork) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("InsertLinks"); err != nil {
		return err
	}
	for _, l := range links {
		if _, ok := r.exhibitions[l.ExhibitionID]; !ok {
			return errs.Record("InsertLinks", fmt.Errorf("exhibition %s does not exist", l.ExhibitionID))
		}
		if _, ok := r.artworks[l.ArtworkID]; !ok {
			return errs.Record("InsertLinks", fmt.Errorf("artwork %s does not exist", l.ArtworkID))
		}
		if _, dup := r.links[l.ExhibitionID][l.ArtworkID]; dup {
			return errs.Record("InsertLinks", fmt.Errorf("duplicate link %s/%s", l.ExhibitionID, l.ArtworkID))
		}
	}
	for _, l := range links {
		if r.links[l.ExhibitionID] == nil {
			r.links[l.ExhibitionID] = map[string]works.ExhibitionArtwork{}
		}
		l.Artwork = nil
		l.CreatedAt = r.tick()
		r.links[l.ExhibitionID][l.ArtworkID] = l
	}
	return nil
}

func (r *Records) DeleteLink(ctx context.Context, exhibitionID, artworkID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("DeleteLink"); err != nil {
		return err
	}
	if _, ok := r.links[exhibitionID][artworkID]; !ok {
		return errs.NotFound("DeleteLink", "exhibition artwork")
	}
	delete(r.links[exhibitionID], artworkID)
	return nil
}

func (r *Records) UpdateLinkOrder(ctx context.Context, exhibitionID, artworkID string, order int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("UpdateLinkOrder"); err != nil {
		return err
	}
	l, ok := r.links[exhibitionID][artworkID]
	if !ok {
		return errs.NotFound("UpdateLinkOrder", "exhibition artwork")
	}
	l.DisplayOrder = order
	r.links[exhibitionID][artworkID] = l
	return nil
}

// ReorderLinks checks every id before writing, so a miss leaves the
// exhibition untouched.
func (r *Records) ReorderLinks(ctx context.Context, exhibitionID string, artworkIDs []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("ReorderLinks"); err != nil {
		return err
	}
	for _, id := range artworkIDs {
		if _, ok := r.links[exhibitionID][id]; !ok {
			return errs.NotFound("ReorderLinks", "exhibition artwork")
		}
	}
	for i, id := range artworkIDs {
		l := r.links[exhibitionID][id]
		l.DisplayOrder = i
		r.links[exhibitionID][id] = l
	}
	return nil
}

func (r *Records) ListLinks(ctx context.Context, exhibitionID string) ([]works.ExhibitionArtwork, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("ListLinks"); err != nil {
		return nil, err
	}
	out := make([]works.ExhibitionArtwork, 0, len(r.links[exhibitionID]))
	for _, l := range r.links[exhibitionID] {
		a, ok := r.artworks[l.ArtworkID]
		if !ok {
			continue
		}
		l.Artwork = &a
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DisplayOrder != out[j].DisplayOrder {
			return out[i].DisplayOrder < out[j].DisplayOrder
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// ---------- profiles

func (r *Records) GetProfile(ctx context.Context, id string) (*profiles.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("GetProfile"); err != nil {
		return nil, err
	}
	p, ok := r.profiles[id]
	if !ok {
		return nil, errs.NotFound("GetProfile", "profile")
	}
	return &p, nil
}

func (r *Records) GetProfileByUsername(ctx context.Context, username string) (*profiles.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("GetProfileByUsername"); err != nil {
		return nil, err
	}
	for _, p := range r.profiles {
		if p.Username == username {
			return &p, nil
		}
	}
	return nil, errs.NotFound("GetProfileByUsername", "profile")
}

func (r *Records) ListProfilesByIDs(ctx context.Context, ids []string) ([]profiles.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("ListProfilesByIDs"); err != nil {
		return nil, err
	}
	out := make([]profiles.Profile, 0, len(ids))
	for _, id := range ids {
		if p, ok := r.profiles[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *Records) UpsertProfile(ctx context.Context, p *profiles.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("UpsertProfile"); err != nil {
		return err
	}
	for id, other := range r.profiles {
		if id != p.ID && other.Username == p.Username {
			return errs.Record("UpsertProfile", fmt.Errorf("duplicate username %q", p.Username))
		}
	}
	now := r.tick()
	if existing, ok := r.profiles[p.ID]; ok {
		p.CreatedAt = existing.CreatedAt
		if p.AvatarURL == nil {
			p.AvatarURL = existing.AvatarURL
		}
	} else {
		p.CreatedAt = now
	}
	if p.GalleryLayout == "" {
		p.GalleryLayout = string(works.LayoutGrid)
	}
	p.UpdatedAt = now
	r.profiles[p.ID] = *p
	return nil
}

// ---------- inspection helpers

// Links returns the stored links of an exhibition keyed by artwork id.
func (r *Records) Links(exhibitionID string) map[string]int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[string]int{}
	for id, l := range r.links[exhibitionID] {
		out[id] = l.DisplayOrder
	}
	return out
}

// ArtworkSnapshot returns the stored artwork without recording a call.
func (r *Records) ArtworkSnapshot(id string) (works.Artwork, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.artworks[id]
	return a, ok
}

// SeedArtwork inserts a without recording a call.
func (r *Records) SeedArtwork(a works.Artwork) works.Artwork {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	now := r.tick()
	a.CreatedAt, a.UpdatedAt = now, now
	if a.Version == 0 {
		a.Version = 1
	}
	r.artworks[a.ID] = a
	return a
}

// SeedProfile inserts p without recording a call.
func (r *Records) SeedProfile(p profiles.Profile) profiles.Profile {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.tick()
	p.CreatedAt, p.UpdatedAt = now, now
	r.profiles[p.ID] = p
	return p
}

func optString(v any) *string {
	switch s := v.(type) {
	case nil:
		return nil
	case string:
		return &s
	case *string:
		return s
	}
	return nil
}
