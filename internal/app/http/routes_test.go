package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	artworksapi "gallery-la/internal/api/artworks"
	exhibitionsapi "gallery-la/internal/api/exhibitions"
	profilesapi "gallery-la/internal/api/profiles"
	"gallery-la/internal/auth"
	"gallery-la/internal/domain/works"
	"gallery-la/internal/mediastore"
	"gallery-la/internal/ports"
	artworksvc "gallery-la/internal/service/artworks"
	exhibitionsvc "gallery-la/internal/service/exhibitions"
	profilesvc "gallery-la/internal/service/profiles"
	"gallery-la/internal/testkit"

	"github.com/gin-gonic/gin"
)

func init() { gin.SetMode(gin.TestMode) }

// tokens maps bearer tokens to identity ids.
type tokens map[string]string

func (t tokens) Verify(ctx context.Context, token string) (ports.Identity, error) {
	if id, ok := t[token]; ok {
		return ports.Identity{ID: id}, nil
	}
	return ports.Identity{}, auth.ErrInvalidToken
}

type server struct {
	engine  *gin.Engine
	records *testkit.Records
	blobs   *testkit.Blobs
}

func newServer(t *testing.T) *server {
	t.Helper()
	records, blobs := testkit.NewRecords(), testkit.NewBlobs()
	identity := auth.ContextProvider{}
	media := mediastore.New(blobs, nil)

	profiles := profilesvc.NewRepository(identity, records, records, nil)
	artworks := artworksvc.NewRepository(identity, records, records, media, nil)
	exhibitions := exhibitionsvc.NewRepository(identity, records, records, nil)

	r := gin.New()
	RegisterRoutes(r, Deps{
		Verifier:    tokens{"ada-token": "ada", "bea-token": "bea"},
		Artworks:    artworksapi.NewHandler(artworks, profiles, 50, nil),
		Exhibitions: exhibitionsapi.NewHandler(exhibitions, profiles, nil),
		Profiles:    profilesapi.NewHandler(profiles, nil),
	})
	return &server{engine: r, records: records, blobs: blobs}
}

func (s *server) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		b, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func (s *server) upload(t *testing.T, token, name string, data []byte, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("file", name)
	fw.Write(data)
	for k, v := range fields {
		mw.WriteField(k, v)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/artworks", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
	return v
}

func png() []byte {
	return append(append([]byte(nil), testkit.PNGHeader...), bytes.Repeat([]byte{1}, 32)...)
}

func TestHealth(t *testing.T) {
	s := newServer(t)
	if w := s.do(t, http.MethodGet, "/health", "", nil); w.Code != http.StatusOK {
		t.Fatalf("health = %d", w.Code)
	}
}

func TestUploadRequiresToken(t *testing.T) {
	s := newServer(t)
	w := s.upload(t, "nope", "a.png", png(), nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", w.Code)
	}
	if len(s.blobs.Paths()) != 0 {
		t.Fatal("nothing should be stored")
	}
}

func TestUploadToggleAndFeed(t *testing.T) {
	s := newServer(t)

	w := s.upload(t, "ada-token", "sunset.png", png(), map[string]string{"title": "Sunset"})
	if w.Code != http.StatusCreated {
		t.Fatalf("upload = %d %s", w.Code, w.Body.String())
	}
	a := decode[works.Artwork](t, w)
	if a.Title != "Sunset" || a.OwnerID != "ada" || a.IsPublic {
		t.Fatalf("unexpected artwork %+v", a)
	}

	feed := decode[[]works.ArtworkWithProfile](t, s.do(t, http.MethodGet, "/feed/artworks", "", nil))
	if len(feed) != 0 {
		t.Fatalf("private artwork leaked into feed: %+v", feed)
	}

	w = s.do(t, http.MethodPost, "/artworks/"+a.ID+"/toggle-public", "ada-token", map[string]int64{"version": a.Version})
	if w.Code != http.StatusOK {
		t.Fatalf("toggle = %d %s", w.Code, w.Body.String())
	}
	w = s.do(t, http.MethodPost, "/artworks/"+a.ID+"/toggle-public", "ada-token", map[string]int64{"version": a.Version})
	if w.Code != http.StatusConflict {
		t.Fatalf("stale toggle = %d, want 409", w.Code)
	}

	feed = decode[[]works.ArtworkWithProfile](t, s.do(t, http.MethodGet, "/feed/artworks?limit=10", "", nil))
	if len(feed) != 1 || feed[0].ID != a.ID {
		t.Fatalf("feed = %+v", feed)
	}
	if w := s.do(t, http.MethodGet, "/feed/artworks?limit=zero", "", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("bad limit = %d", w.Code)
	}
}

func TestUploadRejectsText(t *testing.T) {
	s := newServer(t)
	w := s.upload(t, "ada-token", "notes.txt", []byte("just some words"), nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	if body := decode[map[string]string](t, w); body["code"] != "VALIDATION" {
		t.Fatalf("body = %v", body)
	}
}

func TestOtherOwnersCannotMutate(t *testing.T) {
	s := newServer(t)
	a := decode[works.Artwork](t, s.upload(t, "ada-token", "a.png", png(), nil))

	if w := s.do(t, http.MethodDelete, "/artworks/"+a.ID, "bea-token", nil); w.Code != http.StatusNotFound {
		t.Fatalf("foreign delete = %d", w.Code)
	}
	if w := s.do(t, http.MethodPatch, "/artworks/"+a.ID, "bea-token", map[string]any{"title": "mine", "version": a.Version}); w.Code != http.StatusNotFound {
		t.Fatalf("foreign patch = %d", w.Code)
	}
	if w := s.do(t, http.MethodDelete, "/artworks/"+a.ID, "ada-token", nil); w.Code != http.StatusNoContent {
		t.Fatalf("owner delete = %d", w.Code)
	}
	if len(s.blobs.Paths()) != 0 {
		t.Fatalf("media left behind: %v", s.blobs.Paths())
	}
}

func TestProfileFlow(t *testing.T) {
	s := newServer(t)

	w := s.do(t, http.MethodPut, "/me/profile", "ada-token", map[string]string{"username": "ab", "specialty": "painter"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("short username = %d", w.Code)
	}

	w = s.do(t, http.MethodPut, "/me/profile", "ada-token", map[string]string{"username": "ada", "specialty": "painter", "bio": "<b>hi</b>"})
	if w.Code != http.StatusOK {
		t.Fatalf("upsert = %d %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"complete":true`) || strings.Contains(w.Body.String(), "<b>") {
		t.Fatalf("unexpected body %s", w.Body.String())
	}

	w = s.do(t, http.MethodPut, "/me/profile", "bea-token", map[string]string{"username": "ada", "specialty": "painter"})
	if w.Code != http.StatusConflict {
		t.Fatalf("taken username = %d", w.Code)
	}

	avail := decode[map[string]bool](t, s.do(t, http.MethodGet, "/me/profile/username-available?u=ada", "bea-token", nil))
	if avail["available"] {
		t.Fatal("ada should be taken for bea")
	}
	avail = decode[map[string]bool](t, s.do(t, http.MethodGet, "/me/profile/username-available?u=ada", "ada-token", nil))
	if !avail["available"] {
		t.Fatal("own username should be available")
	}

	if w := s.do(t, http.MethodGet, "/profiles/ada", "", nil); w.Code != http.StatusOK {
		t.Fatalf("public profile = %d", w.Code)
	}
	if w := s.do(t, http.MethodGet, "/profiles/nobody", "", nil); w.Code != http.StatusNotFound {
		t.Fatalf("missing profile = %d", w.Code)
	}
}

func TestExhibitionFlow(t *testing.T) {
	s := newServer(t)
	var ids []string
	for _, name := range []string{"a.png", "b.png", "c.png"} {
		ids = append(ids, decode[works.Artwork](t, s.upload(t, "ada-token", name, png(), nil)).ID)
	}

	w := s.do(t, http.MethodPost, "/exhibitions", "ada-token", map[string]any{"title": "Spring", "is_public": false})
	if w.Code != http.StatusCreated {
		t.Fatalf("create = %d %s", w.Code, w.Body.String())
	}
	ex := decode[works.Exhibition](t, w)

	if w := s.do(t, http.MethodPost, "/exhibitions/"+ex.ID+"/artworks", "ada-token", map[string]any{"artwork_ids": ids}); w.Code != http.StatusNoContent {
		t.Fatalf("add = %d %s", w.Code, w.Body.String())
	}
	reordered := []string{ids[2], ids[1], ids[0]}
	if w := s.do(t, http.MethodPut, "/exhibitions/"+ex.ID+"/artworks/reorder", "ada-token", map[string]any{"artwork_ids": reordered}); w.Code != http.StatusNoContent {
		t.Fatalf("reorder = %d %s", w.Code, w.Body.String())
	}

	if w := s.do(t, http.MethodGet, "/exhibitions/"+ex.ID, "", nil); w.Code != http.StatusNotFound {
		t.Fatalf("private exhibition for anonymous = %d", w.Code)
	}
	w = s.do(t, http.MethodGet, "/exhibitions/"+ex.ID, "ada-token", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("owner details = %d", w.Code)
	}
	d := decode[works.ExhibitionWithArtworks](t, w)
	for i, a := range d.Artworks {
		if a.ID != reordered[i] {
			t.Fatalf("position %d = %s, want %s", i, a.ID, reordered[i])
		}
	}

	if w := s.do(t, http.MethodPut, "/exhibitions/"+ex.ID+"/artworks/"+ids[0]+"/order", "ada-token", map[string]int{"display_order": -1}); w.Code != http.StatusBadRequest {
		t.Fatalf("negative order = %d", w.Code)
	}
	if w := s.do(t, http.MethodDelete, "/exhibitions/"+ex.ID+"/artworks/"+ids[0], "ada-token", nil); w.Code != http.StatusNoContent {
		t.Fatalf("remove = %d", w.Code)
	}
	if w := s.do(t, http.MethodDelete, "/exhibitions/"+ex.ID, "ada-token", nil); w.Code != http.StatusNoContent {
		t.Fatalf("delete = %d", w.Code)
	}
	if len(s.records.Links(ex.ID)) != 0 {
		t.Fatal("links should be gone")
	}
}
