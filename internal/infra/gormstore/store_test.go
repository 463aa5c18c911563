package gormstore_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"gallery-la/config"
	"gallery-la/database"
	"gallery-la/internal/domain/media"
	"gallery-la/internal/domain/profiles"
	"gallery-la/internal/domain/works"
	"gallery-la/internal/errs"
	"gallery-la/internal/infra/gormstore"
	"gallery-la/internal/ports"

	"go.uber.org/zap"
)

func newStore(t *testing.T) *gormstore.Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	cfg := &config.Config{DBDriver: config.DriverSQLite, DBURL: fmt.Sprintf("file:%s?mode=memory&cache=shared", name)}
	db, err := database.Open(cfg, zap.NewNop())
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return gormstore.New(db)
}

func insertArtwork(t *testing.T, s *gormstore.Store, owner string, public bool) *works.Artwork {
	t.Helper()
	a := &works.Artwork{OwnerID: owner, Title: "t", MediaURL: "https://cdn/x.png", Kind: media.KindImage, IsPublic: public}
	if err := s.InsertArtwork(context.Background(), a); err != nil {
		t.Fatalf("insert artwork: %v", err)
	}
	return a
}

func TestArtworkVersionedUpdate(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	a := insertArtwork(t, s, "owner-1", false)
	if a.ID == "" || a.Version != 1 {
		t.Fatalf("insert did not set id/version: %+v", a)
	}

	updated, err := s.UpdateArtwork(ctx, a.ID, map[string]any{"is_public": true, "description": nil}, 1)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !updated.IsPublic || updated.Version != 2 {
		t.Fatalf("unexpected row %+v", updated)
	}

	if _, err := s.UpdateArtwork(ctx, a.ID, map[string]any{"is_public": false}, 1); !errs.Is(err, errs.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if _, err := s.UpdateArtwork(ctx, "00000000-0000-0000-0000-000000000000", map[string]any{"is_public": false}, 1); !errs.Is(err, errs.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := s.GetArtwork(ctx, "00000000-0000-0000-0000-000000000000"); !errs.Is(err, errs.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListArtworksFilters(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	insertArtwork(t, s, "owner-1", true)
	insertArtwork(t, s, "owner-1", false)
	insertArtwork(t, s, "owner-2", true)

	tests := []struct {
		name string
		q    ports.ArtworkQuery
		want int
	}{
		{"all", ports.ArtworkQuery{}, 3},
		{"owner", ports.ArtworkQuery{OwnerID: "owner-1"}, 2},
		{"owner public", ports.ArtworkQuery{OwnerID: "owner-1", PublicOnly: true}, 1},
		{"public limited", ports.ArtworkQuery{PublicOnly: true, Limit: 1}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.ListArtworks(ctx, tt.q)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(got) != tt.want {
				t.Fatalf("got %d rows, want %d", len(got), tt.want)
			}
		})
	}
}

func TestExhibitionLinks(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	e := &works.Exhibition{OwnerID: "owner-1", Title: "Spring"}
	if err := s.InsertExhibition(ctx, e); err != nil {
		t.Fatalf("insert exhibition: %v", err)
	}
	if e.Layout != works.LayoutGrid {
		t.Fatalf("layout default = %q", e.Layout)
	}

	if _, ok, err := s.MaxDisplayOrder(ctx, e.ID); err != nil || ok {
		t.Fatalf("empty exhibition max = ok:%v err:%v", ok, err)
	}

	a1, a2 := insertArtwork(t, s, "owner-1", true), insertArtwork(t, s, "owner-1", true)
	err := s.InsertLinks(ctx, []works.ExhibitionArtwork{
		{ExhibitionID: e.ID, ArtworkID: a1.ID, DisplayOrder: 1},
		{ExhibitionID: e.ID, ArtworkID: a2.ID, DisplayOrder: 0},
	})
	if err != nil {
		t.Fatalf("insert links: %v", err)
	}
	if max, ok, _ := s.MaxDisplayOrder(ctx, e.ID); !ok || max != 1 {
		t.Fatalf("max = %d ok:%v", max, ok)
	}

	links, err := s.ListLinks(ctx, e.ID)
	if err != nil {
		t.Fatalf("list links: %v", err)
	}
	if len(links) != 2 || links[0].ArtworkID != a2.ID || links[0].Artwork == nil {
		t.Fatalf("links not ordered with artworks: %+v", links)
	}

	if err := s.UpdateLinkOrder(ctx, e.ID, a2.ID, 5); err != nil {
		t.Fatalf("reorder: %v", err)
	}
	if err := s.UpdateLinkOrder(ctx, e.ID, "missing", 5); !errs.Is(err, errs.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	if err := s.DeleteArtwork(ctx, a1.ID); err != nil {
		t.Fatalf("delete artwork: %v", err)
	}
	links, _ = s.ListLinks(ctx, e.ID)
	if len(links) != 1 || links[0].ArtworkID != a2.ID {
		t.Fatalf("artwork delete should drop its link, got %+v", links)
	}

	if err := s.DeleteExhibition(ctx, e.ID); err != nil {
		t.Fatalf("delete exhibition: %v", err)
	}
	links, _ = s.ListLinks(ctx, e.ID)
	if len(links) != 0 {
		t.Fatalf("exhibition delete left links %+v", links)
	}
	if _, err := s.GetArtwork(ctx, a2.ID); err != nil {
		t.Fatalf("artwork should survive: %v", err)
	}
	if err := s.DeleteExhibition(ctx, e.ID); !errs.Is(err, errs.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUpsertProfile(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	avatar := "https://cdn/avatar.png"

	p := &profiles.Profile{ID: "11111111-1111-1111-1111-111111111111", Username: "ada", Specialty: "painter", AvatarURL: &avatar}
	if err := s.UpsertProfile(ctx, p); err != nil {
		t.Fatalf("insert: %v", err)
	}
	again := &profiles.Profile{ID: p.ID, Username: "ada", Specialty: "sculptor"}
	if err := s.UpsertProfile(ctx, again); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := s.GetProfileByUsername(ctx, "ada")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Specialty != "sculptor" || got.AvatarURL == nil || *got.AvatarURL != avatar {
		t.Fatalf("unexpected profile %+v", got)
	}

	other := &profiles.Profile{ID: "22222222-2222-2222-2222-222222222222", Username: "ada", Specialty: "painter"}
	if err := s.UpsertProfile(ctx, other); !errs.Is(err, errs.CodeUsernameTaken) {
		t.Fatalf("expected username taken, got %v", err)
	}

	list, err := s.ListProfilesByIDs(ctx, []string{p.ID, other.ID})
	if err != nil || len(list) != 1 {
		t.Fatalf("list = %v, %v", list, err)
	}
}

func TestReorderLinksRollsBackOnMiss(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	e := &works.Exhibition{OwnerID: "owner-1", Title: "Spring"}
	if err := s.InsertExhibition(ctx, e); err != nil {
		t.Fatalf("insert exhibition: %v", err)
	}
	a1, a2 := insertArtwork(t, s, "owner-1", true), insertArtwork(t, s, "owner-1", true)
	err := s.InsertLinks(ctx, []works.ExhibitionArtwork{
		{ExhibitionID: e.ID, ArtworkID: a1.ID, DisplayOrder: 0},
		{ExhibitionID: e.ID, ArtworkID: a2.ID, DisplayOrder: 1},
	})
	if err != nil {
		t.Fatalf("insert links: %v", err)
	}

	if err := s.ReorderLinks(ctx, e.ID, []string{a2.ID, "missing"}); !errs.Is(err, errs.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	links, _ := s.ListLinks(ctx, e.ID)
	if len(links) != 2 || links[0].ArtworkID != a1.ID || links[0].DisplayOrder != 0 || links[1].DisplayOrder != 1 {
		t.Fatalf("failed reorder left partial writes: %+v", links)
	}

	if err := s.ReorderLinks(ctx, e.ID, []string{a2.ID, a1.ID}); err != nil {
		t.Fatalf("reorder: %v", err)
	}
	links, _ = s.ListLinks(ctx, e.ID)
	if len(links) != 2 || links[0].ArtworkID != a2.ID || links[1].ArtworkID != a1.ID || links[1].DisplayOrder != 1 {
		t.Fatalf("unexpected order after reorder: %+v", links)
	}
}
