package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/mwantia/pastebox/pkg/db/models"
)

// Association operations

// AttachTag appends a tag to the end of a paste's tag list.
func (s *SQLiteStore) AttachTag(ctx context.Context, pasteID, tagID int64) error {
	return s.transaction(ctx, "attach tag", func(tx *gorm.DB) error {
		if err := requirePasteAndTag(tx, pasteID, tagID); err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&models.PasteTag{}).
			Where("paste_id = ? AND tag_id = ?", pasteID, tagID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("%w: tag %d already attached to paste %d", ErrConflict, tagID, pasteID)
		}

		var next int64
		if err := tx.Model(&models.PasteTag{}).
			Select("COALESCE(MAX(seq_id), -1) + 1").
			Where("paste_id = ?", pasteID).
			Scan(&next).Error; err != nil {
			return err
		}

		link := models.PasteTag{PasteID: pasteID, TagID: tagID, SeqID: next}
		if err := tx.Create(&link).Error; err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: tag %d already attached to paste %d", ErrConflict, tagID, pasteID)
			}
			return err
		}
		return nil
	})
}

// DetachTag removes one association. Remaining seq_id values keep their gaps.
func (s *SQLiteStore) DetachTag(ctx context.Context, pasteID, tagID int64) error {
	var affected int64
	err := s.run(ctx, "detach tag", func(db *gorm.DB) error {
		result := db.Where("paste_id = ? AND tag_id = ?", pasteID, tagID).Delete(&models.PasteTag{})
		affected = result.RowsAffected
		return result.Error
	})
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: tag %d is not attached to paste %d", ErrNotFound, tagID, pasteID)
	}
	return nil
}

// ReorderTags rewrites the ranks of a paste's tags to 0..n-1 following
// tagIDs, which must be exactly the set of currently attached tags.
func (s *SQLiteStore) ReorderTags(ctx context.Context, pasteID int64, tagIDs []int64) error {
	if err := requireDistinct(tagIDs); err != nil {
		return err
	}

	return s.transaction(ctx, "reorder tags", func(tx *gorm.DB) error {
		ok, err := exists(tx, &models.Paste{}, pasteID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: paste %d", ErrNotFound, pasteID)
		}

		var current []int64
		if err := tx.Model(&models.PasteTag{}).
			Where("paste_id = ?", pasteID).
			Pluck("tag_id", &current).Error; err != nil {
			return err
		}

		if !sameSet(current, tagIDs) {
			return fmt.Errorf("%w: reorder set does not match the %d tags attached to paste %d",
				ErrValidation, len(current), pasteID)
		}

		for seq, tagID := range tagIDs {
			if err := tx.Model(&models.PasteTag{}).
				Where("paste_id = ? AND tag_id = ?", pasteID, tagID).
				Update("seq_id", seq).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// SetTags replaces the whole tag list of a paste with tagIDs in order.
func (s *SQLiteStore) SetTags(ctx context.Context, pasteID int64, tagIDs []int64) error {
	if err := requireDistinct(tagIDs); err != nil {
		return err
	}

	return s.transaction(ctx, "set tags", func(tx *gorm.DB) error {
		ok, err := exists(tx, &models.Paste{}, pasteID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: paste %d", ErrNotFound, pasteID)
		}

		if len(tagIDs) > 0 {
			var count int64
			if err := tx.Model(&models.Tag{}).Where("id IN ?", tagIDs).Count(&count).Error; err != nil {
				return err
			}
			if count != int64(len(tagIDs)) {
				return fmt.Errorf("%w: %d of %d tags", ErrNotFound, int64(len(tagIDs))-count, len(tagIDs))
			}
		}

		if err := tx.Where("paste_id = ?", pasteID).Delete(&models.PasteTag{}).Error; err != nil {
			return err
		}
		if len(tagIDs) == 0 {
			return nil
		}

		links := make([]models.PasteTag, 0, len(tagIDs))
		for seq, tagID := range tagIDs {
			links = append(links, models.PasteTag{PasteID: pasteID, TagID: tagID, SeqID: int64(seq)})
		}
		return tx.Create(&links).Error
	})
}

func requirePasteAndTag(tx *gorm.DB, pasteID, tagID int64) error {
	ok, err := exists(tx, &models.Paste{}, pasteID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: paste %d", ErrNotFound, pasteID)
	}

	ok, err = exists(tx, &models.Tag{}, tagID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: tag %d", ErrNotFound, tagID)
	}
	return nil
}

func requireDistinct(ids []int64) error {
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: tag %d listed more than once", ErrValidation, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

func sameSet(current, requested []int64) bool {
	if len(current) != len(requested) {
		return false
	}

	set := make(map[int64]struct{}, len(current))
	for _, id := range current {
		set[id] = struct{}{}
	}
	for _, id := range requested {
		if _, ok := set[id]; !ok {
			return false
		}
	}
	return true
}

func requireNames(names []string) error {
	for _, name := range names {
		if name == "" {
			return fmt.Errorf("%w: tag name must not be empty", ErrValidation)
		}
	}
	return nil
}

func requireDistinctNames(names []string) error {
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if _, dup := seen[name]; dup {
			return fmt.Errorf("%w: tag '%s' listed more than once", ErrValidation, name)
		}
		seen[name] = struct{}{}
	}
	return nil
}

// tagIDsByName resolves names to tag ids inside tx, creating missing tags.
func tagIDsByName(tx *gorm.DB, names []string, now time.Time) ([]int64, error) {
	ids := make([]int64, 0, len(names))
	for _, name := range names {
		var tag models.Tag
		err := tx.Where("name = ?", name).First(&tag).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			tag = models.Tag{Name: name, CreatedAt: now}
			err = tx.Create(&tag).Error
		}
		if err != nil {
			return nil, err
		}
		ids = append(ids, tag.ID)
	}
	return ids, nil
}

// appendTags attaches tagIDs after the current last tag of a paste, skipping
// tags that are already attached.
func appendTags(tx *gorm.DB, pasteID int64, tagIDs []int64) error {
	if len(tagIDs) == 0 {
		return nil
	}

	var current []int64
	if err := tx.Model(&models.PasteTag{}).
		Where("paste_id = ?", pasteID).
		Pluck("tag_id", &current).Error; err != nil {
		return err
	}

	var next int64
	if err := tx.Model(&models.PasteTag{}).
		Select("COALESCE(MAX(seq_id), -1) + 1").
		Where("paste_id = ?", pasteID).
		Scan(&next).Error; err != nil {
		return err
	}

	attached := make(map[int64]struct{}, len(current)+len(tagIDs))
	for _, id := range current {
		attached[id] = struct{}{}
	}

	for _, tagID := range tagIDs {
		if _, ok := attached[tagID]; ok {
			continue
		}
		attached[tagID] = struct{}{}

		link := models.PasteTag{PasteID: pasteID, TagID: tagID, SeqID: next}
		if err := tx.Create(&link).Error; err != nil {
			return err
		}
		next++
	}
	return nil
}
