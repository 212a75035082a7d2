package helper

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// SetTrash moves one row between active and trashed. The row must currently be
// in the opposite state, else NotFound. Extra scopes narrow ownership.
func SetTrash(ctx context.Context, db *gorm.DB, model any, id uint, trash bool, scopes ...func(*gorm.DB) *gorm.DB) error {
	res := db.WithContext(ctx).
		Model(model).
		Scopes(scopes...).
		Where("id = ? AND trash = ?", id, !trash).
		Updates(map[string]any{"trash": trash, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return errors.Wrap(res.Error, "update trash flag")
	}
	if res.RowsAffected == 0 {
		if trash {
			return NotFound("record %d not found", id)
		}
		return NotFound("record %d not found in trash", id)
	}
	return nil
}

// LoadTrashed loads a trashed row for permanent deletion, locking it.
func LoadTrashed(tx *gorm.DB, dest any, id uint, scopes ...func(*gorm.DB) *gorm.DB) error {
	err := tx.Scopes(scopes...).
		Scopes(TrashScope(ViewTrash, "")).
		Clauses(lockForUpdate).
		First(dest, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFound("record %d not found in trash", id)
	}
	return errors.Wrap(err, "load trashed record")
}
