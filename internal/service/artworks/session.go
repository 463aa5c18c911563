package artworks

import (
	"context"
	"sync"

	"gallery-la/internal/domain/works"
	"gallery-la/internal/errs"
	"gallery-la/internal/mediastore"
	"gallery-la/internal/ports"
)

// Session keeps the artwork list a single client session works with. It only
// reflects writes made through it; other sessions' changes show up after
// Refresh.
//
// The HTTP handlers use Repository directly. Session serves clients that
// stay signed in to one account, such as a CLI or sync tool, and pairs with
// auth.Session as both identity provider and notifier.
type Session struct {
	repo     *Repository
	identity ports.IdentityProvider

	mu    sync.Mutex
	owner string
	items []works.Artwork

	unsubscribe func()
}

// NewSession binds a cache to repo. When notifier is non-nil the cache is
// dropped whenever the signed-in account changes.
func NewSession(repo *Repository, notifier ports.IdentityNotifier) *Session {
	s := &Session{repo: repo, identity: repo.identity}
	if notifier != nil {
		s.unsubscribe = notifier.OnIdentityChange(s.identityChanged)
	}
	return s
}

func (s *Session) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
}

func (s *Session) identityChanged(id *ports.Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id == nil || id.ID != s.owner {
		s.items = nil
		s.owner = ""
		if id != nil {
			s.owner = id.ID
		}
	}
}

// Refresh reloads the signed-in owner's artworks. Signed out, the cache is
// emptied and no error is returned.
func (s *Session) Refresh(ctx context.Context) ([]works.Artwork, error) {
	ident, ok := s.identity.CurrentIdentity(ctx)
	if !ok {
		s.mu.Lock()
		s.items, s.owner = nil, ""
		s.mu.Unlock()
		return nil, nil
	}
	list, err := s.repo.ListByOwner(ctx, ident.ID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.owner = ident.ID
	s.items = append([]works.Artwork(nil), list...)
	s.mu.Unlock()
	return list, nil
}

// Artworks returns a copy of the cached list.
func (s *Session) Artworks() []works.Artwork {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]works.Artwork(nil), s.items...)
}

func (s *Session) Upload(ctx context.Context, file mediastore.File, opts UploadOptions) (*works.Artwork, error) {
	a, err := s.repo.Upload(ctx, file, opts)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.items = append([]works.Artwork{*a}, s.items...)
	s.mu.Unlock()
	return a, nil
}

// Update fills in the cached version when patch carries none.
func (s *Session) Update(ctx context.Context, id string, patch works.ArtworkPatch) (*works.Artwork, error) {
	if patch.Version == 0 {
		if cached, ok := s.lookup(id); ok {
			patch.Version = cached.Version
		}
	}
	a, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	s.replace(*a)
	return a, nil
}

func (s *Session) UpdateCover(ctx context.Context, id string, file mediastore.File) (*works.Artwork, error) {
	a, err := s.repo.UpdateCover(ctx, id, file)
	if err != nil {
		return nil, err
	}
	s.replace(*a)
	return a, nil
}

// TogglePublic flips the cached artwork's visibility.
func (s *Session) TogglePublic(ctx context.Context, id string) (*works.Artwork, error) {
	cached, ok := s.lookup(id)
	if !ok {
		return nil, errs.NotFound("artworks.TogglePublic", "artwork")
	}
	a, err := s.repo.TogglePublic(ctx, cached)
	if err != nil {
		return nil, err
	}
	s.replace(*a)
	return a, nil
}

func (s *Session) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			break
		}
	}
	return nil
}

func (s *Session) lookup(id string) (works.Artwork, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.items {
		if a.ID == id {
			return a, true
		}
	}
	return works.Artwork{}, false
}

func (s *Session) replace(a works.Artwork) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == a.ID {
			s.items[i] = a
			return
		}
	}
}
