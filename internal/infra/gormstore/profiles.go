package gormstore

import (
	"context"
	"errors"

	"gallery-la/internal/domain/profiles"
	"gallery-la/internal/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (s *Store) GetProfile(ctx context.Context, id string) (*profiles.Profile, error) {
	var p profiles.Profile
	if err := s.conn(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, translate("GetProfile", "profile", err)
	}
	return &p, nil
}

func (s *Store) GetProfileByUsername(ctx context.Context, username string) (*profiles.Profile, error) {
	var p profiles.Profile
	if err := s.conn(ctx).First(&p, "username = ?", username).Error; err != nil {
		return nil, translate("GetProfileByUsername", "profile", err)
	}
	return &p, nil
}

func (s *Store) ListProfilesByIDs(ctx context.Context, ids []string) ([]profiles.Profile, error) {
	out := []profiles.Profile{}
	if len(ids) == 0 {
		return out, nil
	}
	if err := s.conn(ctx).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, errs.Record("ListProfilesByIDs", err)
	}
	return out, nil
}

// UpsertProfile replaces the editable columns on conflict. avatar_url and
// gallery_layout are managed elsewhere and are kept. A username collision
// lost to a concurrent writer is reported as errs.UsernameTaken.
func (s *Store) UpsertProfile(ctx context.Context, p *profiles.Profile) error {
	err := s.conn(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"username", "bio", "specialty", "instagram_handle", "location", "updated_at"}),
	}).Create(p).Error
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return errs.UsernameTaken("UpsertProfile", p.Username)
	default:
		return errs.Record("UpsertProfile", err)
	}
}
