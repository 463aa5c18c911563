// Package gormstore implements the record store ports on top of gorm.
package gormstore

import (
	"context"
	"errors"

	"gallery-la/internal/errs"
	"gallery-la/internal/ports"

	"gorm.io/gorm"
)

var (
	_ ports.ArtworkStore    = (*Store)(nil)
	_ ports.ExhibitionStore = (*Store)(nil)
	_ ports.ProfileStore    = (*Store)(nil)
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// translate maps gorm errors onto the error taxonomy.
func translate(op, what string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return errs.NotFound(op, what)
	default:
		return errs.Record(op, err)
	}
}

// versioned applies fields to the row with id when its version matches,
// then bumps the version. It tells a stale version apart from a missing row.
func versioned(tx *gorm.DB, model any, op, what, id string, fields map[string]any, expected int64) error {
	updates := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		updates[k] = v
	}
	updates["version"] = gorm.Expr("version + 1")

	res := tx.Model(model).Where("id = ? AND version = ?", id, expected).Updates(updates)
	if res.Error != nil {
		return errs.Record(op, res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}

	var n int64
	if err := tx.Model(model).Where("id = ?", id).Count(&n).Error; err != nil {
		return errs.Record(op, err)
	}
	if n == 0 {
		return errs.NotFound(op, what)
	}
	return errs.Conflict(op, what)
}
