package gormstore

import (
	"context"
	"database/sql"

	"gallery-la/internal/domain/works"
	"gallery-la/internal/errs"
	"gallery-la/internal/ports"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (s *Store) ListExhibitions(ctx context.Context, q ports.ExhibitionQuery) ([]works.Exhibition, error) {
	tx := s.conn(ctx).Order("created_at DESC")
	if q.OwnerID != "" {
		tx = tx.Where("owner_id = ?", q.OwnerID)
	}
	if q.PublicOnly {
		tx = tx.Where("is_public = ?", true)
	}
	out := []works.Exhibition{}
	if err := tx.Find(&out).Error; err != nil {
		return nil, errs.Record("ListExhibitions", err)
	}
	return out, nil
}

func (s *Store) GetExhibition(ctx context.Context, id string) (*works.Exhibition, error) {
	var e works.Exhibition
	if err := s.conn(ctx).First(&e, "id = ?", id).Error; err != nil {
		return nil, translate("GetExhibition", "exhibition", err)
	}
	return &e, nil
}

func (s *Store) InsertExhibition(ctx context.Context, e *works.Exhibition) error {
	return translate("InsertExhibition", "exhibition", s.conn(ctx).Omit(clause.Associations).Create(e).Error)
}

func (s *Store) UpdateExhibition(ctx context.Context, id string, fields map[string]any, expectedVersion int64) (*works.Exhibition, error) {
	const op = "UpdateExhibition"
	var out works.Exhibition
	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := versioned(tx, &works.Exhibition{}, op, "exhibition", id, fields, expectedVersion); err != nil {
			return err
		}
		return translate(op, "exhibition", tx.First(&out, "id = ?", id).Error)
	})
	if err != nil {
		return nil, errs.Wrap(op, err)
	}
	return &out, nil
}

func (s *Store) DeleteExhibition(ctx context.Context, id string) error {
	const op = "DeleteExhibition"
	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("exhibition_id = ?", id).Delete(&works.ExhibitionArtwork{}).Error; err != nil {
			return errs.Record(op, err)
		}
		res := tx.Where("id = ?", id).Delete(&works.Exhibition{})
		if res.Error != nil {
			return errs.Record(op, res.Error)
		}
		if res.RowsAffected == 0 {
			return errs.NotFound(op, "exhibition")
		}
		return nil
	})
	return errs.Wrap(op, err)
}

func (s *Store) MaxDisplayOrder(ctx context.Context, exhibitionID string) (int, bool, error) {
	var max sql.NullInt64
	err := s.conn(ctx).Model(&works.ExhibitionArtwork{}).
		Where("exhibition_id = ?", exhibitionID).
		Select("MAX(display_order)").
		Row().Scan(&max)
	if err != nil {
		return 0, false, errs.Record("MaxDisplayOrder", err)
	}
	return int(max.Int64), max.Valid, nil
}

// InsertLinks writes every link in one statement.
func (s *Store) InsertLinks(ctx context.Context, links []works.ExhibitionArtwork) error {
	if len(links) == 0 {
		return nil
	}
	rows := make([]works.ExhibitionArtwork, len(links))
	for i, l := range links {
		l.Artwork = nil
		rows[i] = l
	}
	if err := s.conn(ctx).Omit(clause.Associations).Create(&rows).Error; err != nil {
		return errs.Record("InsertLinks", err)
	}
	return nil
}

func (s *Store) DeleteLink(ctx context.Context, exhibitionID, artworkID string) error {
	res := s.conn(ctx).
		Where("exhibition_id = ? AND artwork_id = ?", exhibitionID, artworkID).
		Delete(&works.ExhibitionArtwork{})
	if res.Error != nil {
		return errs.Record("DeleteLink", res.Error)
	}
	if res.RowsAffected == 0 {
		return errs.NotFound("DeleteLink", "exhibition artwork")
	}
	return nil
}

func (s *Store) UpdateLinkOrder(ctx context.Context, exhibitionID, artworkID string, order int) error {
	res := s.conn(ctx).Model(&works.ExhibitionArtwork{}).
		Where("exhibition_id = ? AND artwork_id = ?", exhibitionID, artworkID).
		Update("display_order", order)
	if res.Error != nil {
		return errs.Record("UpdateLinkOrder", res.Error)
	}
	if res.RowsAffected == 0 {
		return errs.NotFound("UpdateLinkOrder", "exhibition artwork")
	}
	return nil
}

// ReorderLinks rewrites every order in one transaction. A missing link
// rolls the whole batch back.
func (s *Store) ReorderLinks(ctx context.Context, exhibitionID string, artworkIDs []string) error {
	const op = "ReorderLinks"
	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		for i, id := range artworkIDs {
			res := tx.Model(&works.ExhibitionArtwork{}).
				Where("exhibition_id = ? AND artwork_id = ?", exhibitionID, id).
				Update("display_order", i)
			if res.Error != nil {
				return errs.Record(op, res.Error)
			}
			if res.RowsAffected == 0 {
				return errs.NotFound(op, "exhibition artwork")
			}
		}
		return nil
	})
	return errs.Wrap(op, err)
}

func (s *Store) ListLinks(ctx context.Context, exhibitionID string) ([]works.ExhibitionArtwork, error) {
	var links []works.ExhibitionArtwork
	err := s.conn(ctx).
		Preload("Artwork").
		Where("exhibition_id = ?", exhibitionID).
		Order("display_order ASC").
		Order("created_at ASC").
		Find(&links).Error
	if err != nil {
		return nil, errs.Record("ListLinks", err)
	}
	out := links[:0]
	for _, l := range links {
		if l.Artwork != nil {
			out = append(out, l)
		}
	}
	return out, nil
}
