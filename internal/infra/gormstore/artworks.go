package gormstore

import (
	"context"

	"gallery-la/internal/domain/works"
	"gallery-la/internal/errs"
	"gallery-la/internal/ports"

	"gorm.io/gorm"
)

func (s *Store) ListArtworks(ctx context.Context, q ports.ArtworkQuery) ([]works.Artwork, error) {
	tx := s.conn(ctx).Order("created_at DESC")
	if q.OwnerID != "" {
		tx = tx.Where("owner_id = ?", q.OwnerID)
	}
	if q.PublicOnly {
		tx = tx.Where("is_public = ?", true)
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}
	out := []works.Artwork{}
	if err := tx.Find(&out).Error; err != nil {
		return nil, errs.Record("ListArtworks", err)
	}
	return out, nil
}

func (s *Store) GetArtwork(ctx context.Context, id string) (*works.Artwork, error) {
	var a works.Artwork
	if err := s.conn(ctx).First(&a, "id = ?", id).Error; err != nil {
		return nil, translate("GetArtwork", "artwork", err)
	}
	return &a, nil
}

func (s *Store) InsertArtwork(ctx context.Context, a *works.Artwork) error {
	return translate("InsertArtwork", "artwork", s.conn(ctx).Create(a).Error)
}

func (s *Store) UpdateArtwork(ctx context.Context, id string, fields map[string]any, expectedVersion int64) (*works.Artwork, error) {
	const op = "UpdateArtwork"
	var out works.Artwork
	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := versioned(tx, &works.Artwork{}, op, "artwork", id, fields, expectedVersion); err != nil {
			return err
		}
		return translate(op, "artwork", tx.First(&out, "id = ?", id).Error)
	})
	if err != nil {
		return nil, errs.Wrap(op, err)
	}
	return &out, nil
}

// DeleteArtwork removes the exhibition links first so the delete does not
// depend on the database enforcing the cascade.
func (s *Store) DeleteArtwork(ctx context.Context, id string) error {
	const op = "DeleteArtwork"
	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("artwork_id = ?", id).Delete(&works.ExhibitionArtwork{}).Error; err != nil {
			return errs.Record(op, err)
		}
		res := tx.Where("id = ?", id).Delete(&works.Artwork{})
		if res.Error != nil {
			return errs.Record(op, res.Error)
		}
		if res.RowsAffected == 0 {
			return errs.NotFound(op, "artwork")
		}
		return nil
	})
	return errs.Wrap(op, err)
}
